package config

import (
	"encoding/json"
	"os"

	"github.com/mkuzmins/authkeeper/internal/flagx"
	"github.com/mkuzmins/authkeeper/internal/timex"
)

// JsonConfig is the DTO for reading JSON configuration files. Duration
// fields use timex.Duration so config files may say "1h" or "600s" as well
// as integer nanoseconds. After unmarshalling, non-zero fields are copied
// into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	JWTPrivateKeyFile            string         `json:"jwt_private_key_file"`
	JWTPublicKeyFile             string         `json:"jwt_public_key_file"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	OTPSecret                    string         `json:"otp_secret"`
	OTPStepSeconds               uint           `json:"otp_step_seconds"`
	OTPDigits                    int            `json:"otp_digits"`
	PasswordHashCost             int            `json:"password_hash_cost"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. An unreadable or
// invalid file panics: the server must not start on broken config.
//
// Only fields present (non-zero) in the file override the defaults; the
// caller then applies command-line flags on top.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.JWTPrivateKeyFile != "" {
		config.JWTPrivateKeyFile = c.JWTPrivateKeyFile
	}
	if c.JWTPublicKeyFile != "" {
		config.JWTPublicKeyFile = c.JWTPublicKeyFile
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.OTPSecret != "" {
		config.OTPSecret = c.OTPSecret
	}
	if c.OTPStepSeconds != 0 {
		config.OTPStepSeconds = c.OTPStepSeconds
	}
	if c.OTPDigits != 0 {
		config.OTPDigits = c.OTPDigits
	}
	if c.PasswordHashCost != 0 {
		config.PasswordHashCost = c.PasswordHashCost
	}
}
