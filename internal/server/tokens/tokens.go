// Package tokens issues and verifies the signed access/refresh token pairs
// used by the authentication flows. Tokens are RS256 JWTs: signing needs the
// private key, verification only the public one, so verifying components can
// be handed the public half alone.
package tokens

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkuzmins/authkeeper/internal/common"
)

// TokenType discriminates what a token may be used for. An access token
// authorizes API calls; a refresh token only mints new pairs.
type TokenType string

const (
	TokenTypeAccess  TokenType = "ACCESS"
	TokenTypeRefresh TokenType = "REFRESH"
)

const (
	// DefaultAccessTokenTTL applies when config supplies no access TTL.
	DefaultAccessTokenTTL = time.Hour

	// DefaultRefreshTokenTTL is deliberately independent of the access TTL.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the token payload: standard registered claims plus the subject's
// role and the token type.
type Claims struct {
	jwt.RegisteredClaims
	Role      string    `json:"role"`
	TokenType TokenType `json:"type"`
}

// TokenPair bundles a short-lived access token and a long-lived refresh
// token. ExpiresIn reports the access token TTL in seconds.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Service signs and verifies tokens with an RSA key pair.
type Service struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService parses PEM-encoded key material and constructs a Service.
// Zero TTLs fall back to the package defaults.
func NewService(privatePEM, publicPEM []byte, accessTTL, refreshTTL time.Duration) (*Service, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, err
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, err
	}
	return NewServiceFromKeys(privateKey, publicKey, accessTTL, refreshTTL), nil
}

// NewServiceFromKeys constructs a Service from already-parsed keys.
func NewServiceFromKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, accessTTL, refreshTTL time.Duration) *Service {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &Service{
		privateKey: privateKey,
		publicKey:  publicKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccessToken mints a short-lived ACCESS token for the subject.
func (s *Service) IssueAccessToken(subjectID, role string) (string, error) {
	return s.issue(subjectID, role, TokenTypeAccess, s.accessTTL)
}

// IssueRefreshToken mints a long-lived REFRESH token for the subject.
func (s *Service) IssueRefreshToken(subjectID, role string) (string, error) {
	return s.issue(subjectID, role, TokenTypeRefresh, s.refreshTTL)
}

// IssuePair mints the access/refresh pair returned by the login, verify-otp
// and refresh flows.
//
// Note: issuing a pair does not invalidate previously issued refresh tokens;
// an old refresh token stays usable until its natural expiry.
func (s *Service) IssuePair(subjectID, role string) (*TokenPair, error) {
	access, err := s.IssueAccessToken(subjectID, role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefreshToken(subjectID, role)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *Service) issue(subjectID, role string, tokenType TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:      role,
		TokenType: tokenType,
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
}

// Verify validates the signature, expiry and shape of tokenString and checks
// that its type matches expected. Expired tokens yield common.ErrTokenExpired;
// every other failure yields common.ErrInvalidToken.
func (s *Service) Verify(tokenString string, expected TokenType) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.publicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}
	if claims.TokenType != expected {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
