// Package services contains server-side business logic. AuthService
// composes the password hasher, the token service, the OTP generator and
// the user directory into the authentication flows: login, registration,
// forgot-password, verify-otp, reset/change password and token refresh.
//
// Every flow is stateless and re-entrant; nothing survives between calls.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mkuzmins/authkeeper/internal/common"
	"github.com/mkuzmins/authkeeper/internal/dbx"
	"github.com/mkuzmins/authkeeper/internal/hashx"
	"github.com/mkuzmins/authkeeper/internal/server/models"
	"github.com/mkuzmins/authkeeper/internal/server/notify"
	"github.com/mkuzmins/authkeeper/internal/server/otp"
	"github.com/mkuzmins/authkeeper/internal/server/repositories/repomanager"
	"github.com/mkuzmins/authkeeper/internal/server/tokens"
)

// AuthService implements the credential-lifecycle flows.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *tokens.Service
	otp         *otp.Generator
	hasher      *hashx.Hasher
	notifier    notify.Notifier
}

// NewAuthService constructs an AuthService from its collaborators.
func NewAuthService(db *sql.DB, rm repomanager.RepositoryManager, ts *tokens.Service, og *otp.Generator, h *hashx.Hasher, n notify.Notifier) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: rm,
		tokens:      ts,
		otp:         og,
		hasher:      h,
		notifier:    n,
	}
}

// normalizeEmail lowercases the address; the directory stores emails
// lowercase and every flow must agree on the form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies the password for the identity behind email and, on
// success, returns the identity together with a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *tokens.TokenPair, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorNotFound
		}
		return nil, nil, common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil, common.ErrorUnauthorized
	}

	pair, err := s.tokens.IssuePair(user.ID, string(user.Role))
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	return user, pair, nil
}

// Register creates a new identity. The duplicate check and the insert run
// in one transaction so concurrent registrations for the same email cannot
// both pass the check.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	email = normalizeEmail(email)

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, hashx.ErrEmptyPassword) {
			return nil, common.ErrorBadRequest
		}
		return nil, common.ErrorInternal
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		exists, err := repo.EmailExists(ctx, email)
		if err != nil {
			return common.ErrorInternal
		}
		if exists {
			return common.ErrorConflict
		}

		user, err = repo.Create(ctx, &models.User{
			FirstName:    firstName,
			LastName:     lastName,
			Email:        email,
			PasswordHash: passwordHash,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}

// CheckExistingEmail fails with common.ErrorConflict when the email is
// already taken.
func (s *AuthService) CheckExistingEmail(ctx context.Context, email string) error {
	repo := s.repomanager.Users(s.db)

	exists, err := repo.EmailExists(ctx, normalizeEmail(email))
	if err != nil {
		return common.ErrorInternal
	}
	if exists {
		return common.ErrorConflict
	}
	return nil
}

// ForgotPassword derives the reset code for the identity behind email and
// hands it to the notifier for delivery. No token is issued at this step.
// Repeated calls inside one OTP window resend the same code.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	code, err := s.otp.Generate(user.Email)
	if err != nil {
		return common.ErrorInternal
	}

	if err := s.notifier.SendPasswordResetCode(ctx, user.Email, code); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// VerifyOTP checks the reset code for email and, when valid, returns a
// token pair: possession of the mailbox counts as possession of the
// password.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*tokens.TokenPair, error) {
	email = normalizeEmail(email)
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if !s.otp.Check(code, user.Email) {
		return nil, common.ErrorBadRequest
	}

	pair, err := s.tokens.IssuePair(user.ID, string(user.Role))
	if err != nil {
		return nil, common.ErrorInternal
	}
	return pair, nil
}

// ResetPassword replaces the password for the identity behind email.
// The caller is expected to have passed verify-otp first; no token is
// involved in this step.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	email = normalizeEmail(email)
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, hashx.ErrEmptyPassword) {
			return common.ErrorBadRequest
		}
		return common.ErrorInternal
	}

	if err := repo.UpdatePassword(ctx, email, passwordHash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// ChangePassword replaces the password for the authenticated subject.
// The confirmation must match before anything is looked up or stored.
func (s *AuthService) ChangePassword(ctx context.Context, userID, newPassword, newPasswordConfirmed string) error {
	if newPassword == "" || newPassword != newPasswordConfirmed {
		return common.ErrorBadRequest
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	if err := repo.UpdatePassword(ctx, user.Email, passwordHash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// RefreshToken exchanges a valid refresh token for a new pair. The old
// refresh token is not invalidated; it stays usable until natural expiry.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*tokens.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, tokens.TokenTypeRefresh)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	pair, err := s.tokens.IssuePair(user.ID, string(user.Role))
	if err != nil {
		return nil, common.ErrorInternal
	}
	return pair, nil
}

// CurrentUser returns the identity for the authenticated subject.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}
