// Package api implements the HTTP client for the AuthKeeper server. It
// keeps the current token pair and transparently refreshes the access
// token once when a protected call is rejected.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mkuzmins/authkeeper/internal/common"
)

// User mirrors the identity object returned by the server.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type loginResponse struct {
	User  *User      `json:"user"`
	Token *tokenPair `json:"token"`
}

// Client talks to the AuthKeeper HTTP endpoint.
type Client struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// LoggedIn reports whether the client currently holds a token pair.
func (c *Client) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken != ""
}

// Logout drops the stored token pair.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = ""
	c.refreshToken = ""
}

func (c *Client) setTokens(p *tokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = p.AccessToken
	c.refreshToken = p.RefreshToken
}

func (c *Client) tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// statusToError maps a non-2xx response status to the shared error kinds.
func statusToError(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusBadRequest:
		return common.ErrorBadRequest
	case http.StatusConflict:
		return common.ErrorConflict
	default:
		return common.ErrorInternal
	}
}

// do sends a JSON request and decodes a JSON response into out (when out is
// non-nil). Transport failures are reported as ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body any, header http.Header, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusToError(resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// doAuthorized sends a request with the current access token. On a first
// rejection it refreshes the pair and retries once.
func (c *Client) doAuthorized(ctx context.Context, method, path string, body any, out any) error {
	access, refresh := c.tokens()
	if access == "" {
		return common.ErrorUnauthorized
	}

	h := http.Header{}
	h.Set(common.AccessTokenHeaderName, "Bearer "+access)

	err := c.do(ctx, method, path, body, h, out)
	if err == nil || !errors.Is(err, common.ErrorUnauthorized) || refresh == "" {
		return err
	}

	if err := c.Refresh(ctx); err != nil {
		return common.ErrorUnauthorized
	}

	access, _ = c.tokens()
	h.Set(common.AccessTokenHeaderName, "Bearer "+access)
	return c.do(ctx, method, path, body, h, out)
}

// Register creates a new account. No tokens are issued at this step.
func (c *Client) Register(ctx context.Context, email, password, firstName, lastName string) (*User, error) {
	req := map[string]string{
		"email":     email,
		"password":  password,
		"firstName": firstName,
		"lastName":  lastName,
	}
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and stores the issued token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	req := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Token != nil {
		c.setTokens(resp.Token)
	}
	return resp.User, nil
}

// ForgotPassword asks the server to deliver a reset code for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	req := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", req, nil, nil)
}

// VerifyOTP exchanges a reset code for a token pair and stores it.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) error {
	req := map[string]string{"email": email, "otpCode": code}
	var pair tokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/verify-otp", req, nil, &pair); err != nil {
		return err
	}
	c.setTokens(&pair)
	return nil
}

// ResetPassword sets a new password for email as part of the reset flow.
func (c *Client) ResetPassword(ctx context.Context, email, newPassword string) error {
	req := map[string]string{"email": email, "newPassword": newPassword}
	return c.do(ctx, http.MethodPatch, "/auth/reset-password", req, nil, nil)
}

// CheckEmail reports whether email is free to register.
// common.ErrorConflict means it is already taken.
func (c *Client) CheckEmail(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodGet, "/auth/email-validation?email="+url.QueryEscape(email), nil, nil, nil)
}

// Refresh exchanges the stored refresh token for a fresh pair.
func (c *Client) Refresh(ctx context.Context) error {
	_, refresh := c.tokens()
	if refresh == "" {
		return common.ErrorUnauthorized
	}

	h := http.Header{}
	h.Set(common.RefreshTokenHeaderName, refresh)

	var pair tokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/refresh-token", nil, h, &pair); err != nil {
		return err
	}
	c.setTokens(&pair)
	return nil
}

// ChangePassword replaces the password of the logged-in account.
func (c *Client) ChangePassword(ctx context.Context, newPassword, newPasswordConfirmed string) error {
	req := map[string]string{
		"newPassword":          newPassword,
		"newPasswordConfirmed": newPasswordConfirmed,
	}
	return c.doAuthorized(ctx, http.MethodPatch, "/users/change-password", req, nil)
}

// CurrentUser returns the identity behind the stored access token.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.doAuthorized(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
