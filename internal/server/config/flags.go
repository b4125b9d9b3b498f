package config

import (
	"flag"
	"os"
	"time"

	"github.com/mkuzmins/authkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-k string   path to RS256 private key PEM
//	-p string   path to RS256 public key PEM
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-o string   OTP shared secret
//	-w uint     OTP step width, seconds
//	-g int      OTP digit count
//	-b int      bcrypt cost factor
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers in minutes and then converted to
// time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-p", "-t", "-r", "-o", "-w", "-g", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTPrivateKeyFile, "k", config.JWTPrivateKeyFile, "path to RS256 private key PEM")
	fs.StringVar(&config.JWTPublicKeyFile, "p", config.JWTPublicKeyFile, "path to RS256 public key PEM")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.OTPSecret, "o", config.OTPSecret, "OTP shared secret")
	fs.UintVar(&config.OTPStepSeconds, "w", config.OTPStepSeconds, "OTP step width (in seconds)")
	fs.IntVar(&config.OTPDigits, "g", config.OTPDigits, "OTP digit count")
	fs.IntVar(&config.PasswordHashCost, "b", config.PasswordHashCost, "bcrypt cost factor")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}
