// Package server initializes and runs the AuthKeeper server: it loads
// configuration, opens the database, runs migrations, builds the signing
// key material and starts the HTTP endpoint with graceful shutdown.
package server

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mkuzmins/authkeeper/internal/hashx"
	"github.com/mkuzmins/authkeeper/internal/logging"
	"github.com/mkuzmins/authkeeper/internal/server/config"
	"github.com/mkuzmins/authkeeper/internal/server/httpapi"
	"github.com/mkuzmins/authkeeper/internal/server/notify"
	"github.com/mkuzmins/authkeeper/internal/server/otp"
	"github.com/mkuzmins/authkeeper/internal/server/repositories/repomanager"
	"github.com/mkuzmins/authkeeper/internal/server/services"
	"github.com/mkuzmins/authkeeper/internal/server/tokens"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	auth   *services.AuthService
	tokens *tokens.Service
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	ts, err := newTokenService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("token service init error: %w", err)
	}

	og := otp.NewGenerator([]byte(cfg.OTPSecret), cfg.OTPStepSeconds, cfg.OTPDigits)
	hasher := hashx.NewHasher(cfg.PasswordHashCost)
	notifier := notify.NewLogNotifier(logger)

	auth := services.NewAuthService(db, rm, ts, og, hasher, notifier)

	return &App{config: cfg, logger: logger, db: db, auth: auth, tokens: ts}, nil
}

// newTokenService loads the RS256 key pair from the configured PEM files.
// When neither file is set it generates an ephemeral pair, which keeps
// local development working but invalidates all tokens on restart.
func newTokenService(ctx context.Context, cfg *config.Config, logger logging.Logger) (*tokens.Service, error) {
	if cfg.JWTPrivateKeyFile == "" && cfg.JWTPublicKeyFile == "" {
		logger.Warn(ctx, "No JWT key files configured, generating an ephemeral signing key")
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, err
		}
		return tokens.NewServiceFromKeys(key, &key.PublicKey,
			cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration), nil
	}

	privatePEM, err := os.ReadFile(cfg.JWTPrivateKeyFile)
	if err != nil {
		return nil, err
	}
	publicPEM, err := os.ReadFile(cfg.JWTPublicKeyFile)
	if err != nil {
		return nil, err
	}
	return tokens.NewService(privatePEM, publicPEM,
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.auth,
		tokens.NewAccessVerifier(app.tokens))

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "Error closing database", "error", err.Error())
	}
}
