// Package otp derives and checks time-windowed one-time codes for the
// password-reset flow. A code is a pure function of the process secret, an
// identity seed (the account email) and the current time window, so nothing
// has to be persisted: a code is valid iff it was generated for the same
// seed within the current or immediately adjacent window.
package otp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"strings"
	"time"

	otplib "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// DefaultStepSeconds is the TOTP window width.
	DefaultStepSeconds = 600

	// DefaultDigits is the code length.
	DefaultDigits = 6
)

// Generator produces and validates TOTP codes bound to an identity seed.
//
// Codes are not single-use: within one window every Check for the same seed
// and code succeeds. Repeated Generate calls inside a window return the same
// code, which keeps forgot-password idempotent.
type Generator struct {
	secret []byte
	opts   totp.ValidateOpts
}

// NewGenerator constructs a Generator from the shared process secret.
// Non-positive step or digits fall back to the defaults.
func NewGenerator(secret []byte, stepSeconds uint, digits int) *Generator {
	if stepSeconds == 0 {
		stepSeconds = DefaultStepSeconds
	}
	if digits <= 0 {
		digits = DefaultDigits
	}
	return &Generator{
		secret: secret,
		opts: totp.ValidateOpts{
			Period:    stepSeconds,
			Skew:      1,
			Digits:    otplib.Digits(digits),
			Algorithm: otplib.AlgorithmSHA1,
		},
	}
}

// seedKey derives per-identity key material so codes for different seeds
// never collide even though the process secret is shared. The HMAC output is
// truncated to 20 bytes, which base32-encodes without padding.
func (g *Generator) seedKey(seed string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(strings.ToLower(strings.TrimSpace(seed))))
	return base32.StdEncoding.EncodeToString(mac.Sum(nil)[:20])
}

// Generate returns the code for seed in the current time window.
func (g *Generator) Generate(seed string) (string, error) {
	return g.generateAt(seed, time.Now())
}

// Check reports whether code is valid for seed in the current window or one
// adjacent window. Malformed input counts as a mismatch, never an error.
func (g *Generator) Check(code, seed string) bool {
	return g.checkAt(code, seed, time.Now())
}

func (g *Generator) generateAt(seed string, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(g.seedKey(seed), t, g.opts)
}

func (g *Generator) checkAt(code, seed string, t time.Time) bool {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), g.seedKey(seed), t, g.opts)
	return err == nil && ok
}
