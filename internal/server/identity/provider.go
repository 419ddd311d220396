// Package identity is the identity provider: accounts with passwords, ID
// tokens for them, and verification of ID tokens from this provider or an
// external OpenID Connect issuer.
package identity

import (
	"context"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/server/models"
)

// Provider is the narrow identity interface the rest of the server uses.
type Provider interface {
	CreateUser(ctx context.Context, in NewAccount) (*models.Account, error)
	GetUser(ctx context.Context, uid string) (*models.Account, error)
	GetUserByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateUser(ctx context.Context, uid string, u AccountUpdate) (*models.Account, error)
	DeleteUser(ctx context.Context, uid string) error
	VerifyIDToken(ctx context.Context, raw string) (*Token, error)
	SignInWithPassword(ctx context.Context, email, password string) (*IssuedToken, error)
}

// NewAccount is the input to CreateUser.
type NewAccount struct {
	Email       string
	Password    string
	DisplayName string
}

// AccountUpdate changes only its non-nil fields.
type AccountUpdate struct {
	Email       *string
	Password    *string
	DisplayName *string
	Disabled    *bool
}

// Token is a verified ID token. UID is always the local account uid, also
// for tokens minted by an external issuer.
type Token struct {
	UID           string
	Subject       string
	Email         string
	EmailVerified bool
	Issuer        string
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// IssuedToken is an ID token from password sign-in.
type IssuedToken struct {
	IDToken   string        `json:"idToken"`
	ExpiresIn time.Duration `json:"-"`
}
