// Package httpapi exposes the authentication flows over HTTP. Handlers stay
// thin: decode JSON, call the service, translate the error kind to a status
// code. No business rule lives here.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mkuzmins/authkeeper/internal/logging"
	"github.com/mkuzmins/authkeeper/internal/server/services"
	"github.com/mkuzmins/authkeeper/internal/server/tokens"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address        string
	logger         logging.Logger
	auth           *services.AuthService
	accessVerifier tokens.Verifier
}

func NewServer(address string, l logging.Logger, auth *services.AuthService, accessVerifier tokens.Verifier) *Server {
	return &Server{
		address:        address,
		logger:         l.With("module", "http_server"),
		auth:           auth,
		accessVerifier: accessVerifier,
	}
}

// Routes builds the request multiplexer. Exposed for handler tests.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/forgot-password", s.handleForgotPassword)
	mux.HandleFunc("POST /auth/verify-otp", s.handleVerifyOTP)
	mux.HandleFunc("PATCH /auth/reset-password", s.handleResetPassword)
	mux.HandleFunc("POST /auth/refresh-token", s.handleRefreshToken)
	mux.HandleFunc("GET /auth/email-validation", s.handleEmailValidation)

	mux.Handle("PATCH /users/change-password", s.requireAccessToken(http.HandlerFunc(s.handleChangePassword)))
	mux.Handle("GET /users/me", s.requireAccessToken(http.HandlerFunc(s.handleCurrentUser)))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.withLogging(s.Routes()),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
