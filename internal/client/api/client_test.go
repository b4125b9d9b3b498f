package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkuzmins/authkeeper/internal/common"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestLoginStoresTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req["email"] != "alice@example.com" || req["password"] != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(loginResponse{
			User:  &User{ID: "u1", Email: "alice@example.com"},
			Token: &tokenPair{AccessToken: "acc", RefreshToken: "ref", ExpiresIn: 3600},
		})
	})

	c := newTestClient(t, mux)

	user, err := c.Login(context.Background(), "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "u1")
	}
	if !c.LoggedIn() {
		t.Error("expected client to be logged in")
	}

	c.Logout()
	if c.LoggedIn() {
		t.Error("expected client to be logged out")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	c := newTestClient(t, mux)

	_, err := c.Login(context.Background(), "alice@example.com", "wrong")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("err = %v, want %v", err, common.ErrorUnauthorized)
	}
	if c.LoggedIn() {
		t.Error("client must not be logged in after a failed login")
	}
}

func TestServerUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)

	_, err := c.Login(context.Background(), "a@b.c", "x")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want %v", err, ErrUnavailable)
	}
}

func TestCheckEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/email-validation", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("email") == "taken@example.com" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	c := newTestClient(t, mux)

	if err := c.CheckEmail(context.Background(), "free@example.com"); err != nil {
		t.Errorf("free email: unexpected error %v", err)
	}
	if err := c.CheckEmail(context.Background(), "taken@example.com"); !errors.Is(err, common.ErrorConflict) {
		t.Errorf("taken email: err = %v, want %v", err, common.ErrorConflict)
	}
}

func TestVerifyOTPStoresPair(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/verify-otp", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["otpCode"] != "123456" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(tokenPair{AccessToken: "acc", RefreshToken: "ref"})
	})

	c := newTestClient(t, mux)

	if err := c.VerifyOTP(context.Background(), "a@b.c", "000000"); !errors.Is(err, common.ErrorBadRequest) {
		t.Errorf("wrong code: err = %v, want %v", err, common.ErrorBadRequest)
	}
	if err := c.VerifyOTP(context.Background(), "a@b.c", "123456"); err != nil {
		t.Fatalf("VerifyOTP error: %v", err)
	}
	if !c.LoggedIn() {
		t.Error("expected tokens after otp verification")
	}
}

func TestRefreshSendsRefreshHeader(t *testing.T) {
	var gotHeader string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get(common.RefreshTokenHeaderName)
		json.NewEncoder(w).Encode(tokenPair{AccessToken: "acc2", RefreshToken: "ref2"})
	})

	c := newTestClient(t, mux)
	c.setTokens(&tokenPair{AccessToken: "acc1", RefreshToken: "ref1"})

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if gotHeader != "ref1" {
		t.Errorf("refresh header = %q, want %q", gotHeader, "ref1")
	}

	access, refresh := c.tokens()
	if access != "acc2" || refresh != "ref2" {
		t.Errorf("tokens = (%q, %q), want (acc2, ref2)", access, refresh)
	}
}

func TestRefreshWithoutToken(t *testing.T) {
	c := NewClient("http://ignored", time.Second)
	if err := c.Refresh(context.Background()); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("err = %v, want %v", err, common.ErrorUnauthorized)
	}
}

func TestAuthorizedCallRetriesAfterRefresh(t *testing.T) {
	meCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls++
		if r.Header.Get(common.AccessTokenHeaderName) != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(User{ID: "u1", Email: "alice@example.com"})
	})
	mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(common.RefreshTokenHeaderName) != "ref" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(tokenPair{AccessToken: "fresh", RefreshToken: "ref2"})
	})

	c := newTestClient(t, mux)
	c.setTokens(&tokenPair{AccessToken: "stale", RefreshToken: "ref"})

	user, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser error: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "u1")
	}
	if meCalls != 2 {
		t.Errorf("meCalls = %d, want 2 (rejected once, retried once)", meCalls)
	}
}

func TestAuthorizedCallWithoutLogin(t *testing.T) {
	c := NewClient("http://ignored", time.Second)
	if _, err := c.CurrentUser(context.Background()); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("err = %v, want %v", err, common.ErrorUnauthorized)
	}
}

func TestChangePassword(t *testing.T) {
	var got map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /users/change-password", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(common.AccessTokenHeaderName) != "Bearer acc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	})

	c := newTestClient(t, mux)
	c.setTokens(&tokenPair{AccessToken: "acc", RefreshToken: "ref"})

	if err := c.ChangePassword(context.Background(), "new", "new"); err != nil {
		t.Fatalf("ChangePassword error: %v", err)
	}
	if got["newPassword"] != "new" || got["newPasswordConfirmed"] != "new" {
		t.Errorf("unexpected body: %v", got)
	}
}
