// Package admin is the operator command line: it bootstraps and maintains
// principals directly against the server's stores, for example to create
// the first Administrator.
package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/logging"
	"github.com/dmitrijs2005/rabetweb/internal/server/auth"
	"github.com/dmitrijs2005/rabetweb/internal/server/config"
	"github.com/dmitrijs2005/rabetweb/internal/server/identity"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/dmitrijs2005/rabetweb/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rabetweb/internal/server/services"
)

// Accounts creates identity accounts with their user records.
type Accounts interface {
	SignUp(ctx context.Context, in services.SignUpInput) error
}

// Directory looks up identity accounts by email.
type Directory interface {
	GetUserByEmail(ctx context.Context, email string) (*models.Account, error)
}

// Users changes existing user records.
type Users interface {
	Update(ctx context.Context, id string, u models.PrincipalUpdate) (*models.Principal, error)
	SetDisabled(ctx context.Context, id string, disabled bool) (*models.Principal, error)
	SetProfileImage(ctx context.Context, id, key string) (*models.Principal, error)
}

// Uploads presigns profile image uploads.
type Uploads interface {
	CreateUpload(ctx context.Context, uid string) (*services.ProfileImageUpload, error)
}

// Env is what the commands operate on.
type Env struct {
	Accounts   Accounts
	Directory  Directory
	Users      Users
	Uploads    Uploads
	HTTPClient *http.Client

	close func() error
}

// Close releases the database connection.
func (e *Env) Close() error {
	if e.close == nil {
		return nil
	}
	return e.close()
}

// Opener builds an Env from the loaded configuration.
type Opener func(ctx context.Context, cfg *config.Config) (*Env, error)

// Open connects to the database named by cfg, applies pending migrations
// and builds the same services the server uses.
func Open(ctx context.Context, cfg *config.Config) (*Env, error) {
	logger := logging.NewJSON(os.Stderr, slog.LevelWarn)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	tokens := identity.NewHS256Tokens([]byte(cfg.IdentitySecret), cfg.IdentityIssuer, cfg.IdentityTokenTTL)
	idp := identity.NewLocal(rm.Accounts(db), tokens)
	codec := auth.NewCodec(auth.CodecConfig{
		Secret: []byte(cfg.SessionSecret),
		Issuer: cfg.IdentityIssuer,
		TTL:    cfg.SessionTTL,
		Secure: cfg.Production,
	}, idp)

	images, err := services.NewProfileImageService(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	return &Env{
		Accounts:   services.NewAuthService(db, rm, idp, codec, logger),
		Directory:  idp,
		Users:      services.NewUserService(db, rm, idp, logger),
		Uploads:    images,
		HTTPClient: &http.Client{Timeout: time.Minute},
		close:      db.Close,
	}, nil
}
