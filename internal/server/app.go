// Package server wires the rabetweb server together: database and
// migrations, the identity provider, sessions, services, the HTTP surface
// and the background dependency checks.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/logging"
	"github.com/dmitrijs2005/rabetweb/internal/server/auth"
	"github.com/dmitrijs2005/rabetweb/internal/server/config"
	"github.com/dmitrijs2005/rabetweb/internal/server/identity"
	"github.com/dmitrijs2005/rabetweb/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rabetweb/internal/server/rest"
	"github.com/dmitrijs2005/rabetweb/internal/server/services"
	"github.com/dmitrijs2005/rabetweb/internal/server/web"
)

const (
	startupTimeout = 30 * time.Second
	sweepInterval  = 5 * time.Minute
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	server    *rest.Server
	scheduler *services.DependencyScheduler
	notifier  *rest.Notifier
	limiter   *rest.RateLimiter
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, slog.LevelInfo)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	app, err := build(ctx, c, db, rm, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (*App, error) {
	var external []identity.ExternalVerifier
	if c.OIDCIssuer != "" {
		v, err := identity.NewOIDCVerifier(ctx, c.OIDCIssuer, c.OIDCAudience)
		if err != nil {
			return nil, fmt.Errorf("oidc init error: %w", err)
		}
		external = append(external, v)
	}
	tokens := identity.NewHS256Tokens([]byte(c.IdentitySecret), c.IdentityIssuer, c.IdentityTokenTTL)
	idp := identity.NewLocal(rm.Accounts(db), tokens, external...)

	codec := auth.NewCodec(auth.CodecConfig{
		Secret: []byte(c.SessionSecret),
		Issuer: c.IdentityIssuer,
		TTL:    c.SessionTTL,
		Secure: c.Production,
	}, idp)
	verifier := auth.NewVerifier(codec, idp, rm.Principals(db))

	authSvc := services.NewAuthService(db, rm, idp, codec, logger)
	userSvc := services.NewUserService(db, rm, idp, logger)
	msgSvc := services.NewMessageService(db, rm, logger)

	images, err := services.NewProfileImageService(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	deps, err := services.NewDependencyService(&http.Client{}, c.DependencyRegistry, c.DependencyCacheTTL, logger)
	if err != nil {
		return nil, fmt.Errorf("dependency manifest error: %w", err)
	}
	scheduler, err := services.NewDependencyScheduler(deps, c.DependencySchedule, logger)
	if err != nil {
		return nil, err
	}

	metrics := rest.NewMetrics()
	notifier := rest.NewNotifier(msgSvc, c.CORSOrigins, metrics, logger)
	msgSvc.OnUnreadChanged(notifier)

	handler := rest.NewHandler(rest.HandlerDeps{
		Auth:          authSvc,
		Users:         userSvc,
		Messages:      msgSvc,
		ProfileImages: images,
		Dependencies:  deps,
		Verifier:      verifier,
		Cookies:       codec,
	}, logger)
	limiter := rest.NewRateLimiter(c.AuthRateLimit, c.AuthRateBurst, logger)
	pages := web.NewPages(verifier, userSvc, msgSvc, deps, logger)

	router := rest.NewRouter(rest.RouterDeps{
		Handler:     handler,
		Gate:        rest.NewGate(rest.NewRemoteChecker(c.VerifyBaseURL, c.VerifyTimeout), metrics, logger),
		Limiter:     limiter,
		Metrics:     metrics,
		Notifier:    notifier,
		CORSOrigins: c.CORSOrigins,
		Pages:       pages.Mount,
		Logger:      logger,
	})

	return &App{
		config:    c,
		logger:    logger,
		db:        db,
		server:    rest.NewServer(c.ListenAddr, router, c.ShutdownTimeout, logger),
		scheduler: scheduler,
		notifier:  notifier,
		limiter:   limiter,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.limiter.Sweep(2 * sweepInterval)
		}
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	app.scheduler.Start()

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sweepLimiter(ctx)
	}()

	wg.Wait()

	app.scheduler.Stop()
	app.notifier.Close()
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
