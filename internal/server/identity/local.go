package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/dmitrijs2005/rabetweb/internal/server/repositories/accounts"
	"golang.org/x/crypto/bcrypt"
)

// ExternalVerifier checks ID tokens from another issuer.
type ExternalVerifier interface {
	Verify(ctx context.Context, raw string) (*Token, error)
}

// Local is the identity provider backed by the accounts table.
type Local struct {
	accounts accounts.Repository
	tokens   *HS256Tokens
	external []ExternalVerifier
	hashCost int
}

// NewLocal builds a provider over repo. ID tokens from external issuers are
// accepted when one of external verifies them.
func NewLocal(repo accounts.Repository, tokens *HS256Tokens, external ...ExternalVerifier) *Local {
	return &Local{
		accounts: repo,
		tokens:   tokens,
		external: external,
		hashCost: bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", common.ErrValidation)
	}
	return strings.ToLower(email), nil
}

// CreateUser registers an account with a bcrypt password hash.
func (l *Local) CreateUser(ctx context.Context, in NewAccount) (*models.Account, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password, l.hashCost)
	if err != nil {
		return nil, err
	}

	return l.accounts.Create(ctx, &models.Account{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(in.DisplayName),
	})
}

func (l *Local) GetUser(ctx context.Context, uid string) (*models.Account, error) {
	return l.accounts.GetByID(ctx, uid)
}

func (l *Local) GetUserByEmail(ctx context.Context, email string) (*models.Account, error) {
	return l.accounts.GetByEmail(ctx, strings.TrimSpace(email))
}

// UpdateUser applies the non-nil fields of u.
func (l *Local) UpdateUser(ctx context.Context, uid string, u AccountUpdate) (*models.Account, error) {
	a, err := l.accounts.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if u.Email != nil {
		email, err := normalizeEmail(*u.Email)
		if err != nil {
			return nil, err
		}
		if email != a.Email {
			a.Email = email
			a.EmailVerified = false
		}
	}
	if u.Password != nil {
		hash, err := HashPassword(*u.Password, l.hashCost)
		if err != nil {
			return nil, err
		}
		a.PasswordHash = hash
	}
	if u.DisplayName != nil {
		a.DisplayName = strings.TrimSpace(*u.DisplayName)
	}
	if u.Disabled != nil {
		a.Disabled = *u.Disabled
	}

	return l.accounts.Update(ctx, a)
}

// DeleteUser removes the account.
func (l *Local) DeleteUser(ctx context.Context, uid string) error {
	return l.accounts.Delete(ctx, uid)
}

// SignInWithPassword checks the password and mints an ID token. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (l *Local) SignInWithPassword(ctx context.Context, email, password string) (*IssuedToken, error) {
	a, err := l.accounts.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(a.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}
	if a.Disabled {
		return nil, common.ErrAccountDisabled
	}

	raw, err := l.tokens.Issue(a)
	if err != nil {
		return nil, fmt.Errorf("issue id token: %w", err)
	}
	return &IssuedToken{IDToken: raw, ExpiresIn: l.tokens.TTL()}, nil
}

// VerifyIDToken accepts this provider's tokens and, failing that, tokens from
// any external verifier whose verified email matches a local account. The
// account must exist and be enabled.
func (l *Local) VerifyIDToken(ctx context.Context, raw string) (*Token, error) {
	tok, err := l.tokens.Parse(raw)
	if err == nil {
		a, err := l.accounts.GetByID(ctx, tok.UID)
		if err != nil {
			return nil, l.lookupFailed(err)
		}
		if err := checkEnabled(a); err != nil {
			return nil, err
		}
		return tok, nil
	}

	for _, v := range l.external {
		ext, verr := v.Verify(ctx, raw)
		if verr != nil {
			continue
		}
		if !ext.EmailVerified || ext.Email == "" {
			return nil, fmt.Errorf("%w: email not verified", common.ErrInvalidToken)
		}
		a, err := l.accounts.GetByEmail(ctx, ext.Email)
		if err != nil {
			return nil, l.lookupFailed(err)
		}
		if err := checkEnabled(a); err != nil {
			return nil, err
		}
		ext.UID = a.UID
		return ext, nil
	}

	return nil, err
}

func (l *Local) lookupFailed(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: no such account", common.ErrInvalidToken)
	}
	return fmt.Errorf("%w: %v", common.ErrUpstream, err)
}

func checkEnabled(a *models.Account) error {
	if a.Disabled {
		return fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrAccountDisabled)
	}
	return nil
}
