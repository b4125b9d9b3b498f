// Package notify declares the contract for delivering password-reset codes.
// Actual mail delivery is an external concern; the server only hands the
// code and destination address to a Notifier.
package notify

import (
	"context"

	"github.com/mkuzmins/authkeeper/internal/logging"
)

// Notifier delivers a one-time reset code to the given address.
type Notifier interface {
	SendPasswordResetCode(ctx context.Context, email, code string) error
}

// LogNotifier is the development implementation: it logs that a code was
// issued instead of mailing it. The code itself is never logged.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l.With("module", "notify")}
}

func (n *LogNotifier) SendPasswordResetCode(ctx context.Context, email, code string) error {
	n.logger.Info(ctx, "password reset code issued", "email", email)
	return nil
}
