// Package services holds the server's business logic: sign-up and sign-in,
// user administration, contact messages, profile images and dependency
// version checks.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/logging"
	"github.com/dmitrijs2005/rabetweb/internal/server/identity"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/dmitrijs2005/rabetweb/internal/server/repositories/repomanager"
)

// SessionMinter exchanges an ID token for a session credential.
type SessionMinter interface {
	Mint(ctx context.Context, idToken string) (string, error)
}

// SignUpInput is the sign-up form. Every field is required.
type SignUpInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// SignInResult carries the minted credential and where to send the user.
type SignInResult struct {
	Credential  string
	Role        models.Role
	RedirectURL string
}

// AuthService provisions principals and opens sessions for them.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	idp         identity.Provider
	sessions    SessionMinter
	logger      logging.Logger
	now         func() time.Time
}

// NewAuthService builds an AuthService.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, idp identity.Provider, sessions SessionMinter, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		idp:         idp,
		sessions:    sessions,
		logger:      logger.With("module", "auth"),
		now:         time.Now,
	}
}

// SignUp creates the identity account and then the principal record. If the
// record cannot be written the account is deleted again. No session is
// opened.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) error {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.Email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return fmt.Errorf("%w: all fields are required", common.ErrValidation)
	}

	acct, err := s.idp.CreateUser(ctx, identity.NewAccount{
		Email:       in.Email,
		Password:    in.Password,
		DisplayName: in.FirstName + " " + in.LastName,
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) || errors.Is(err, common.ErrValidation) {
			return err
		}
		return fmt.Errorf("%w: create account: %v", common.ErrUpstream, err)
	}

	now := s.now()
	p := &models.Principal{
		ID:        acct.UID,
		Email:     acct.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  usernameFromEmail(acct.Email),
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repomanager.Principals(s.db).Create(ctx, p); err != nil {
		if derr := s.idp.DeleteUser(ctx, acct.UID); derr != nil {
			s.logger.Error(ctx, "orphaned identity account", "uid", acct.UID, "error", derr)
		}
		return fmt.Errorf("%w: create user record: %v", common.ErrUpstream, err)
	}

	s.logger.Info(ctx, "user signed up", "uid", acct.UID)
	return nil
}

// SignIn opens a session for the account registered under email, given an
// ID token for that same account.
func (s *AuthService) SignIn(ctx context.Context, email, bearer string) (*SignInResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrValidation)
	}

	acct, err := s.idp.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	principals := s.repomanager.Principals(s.db)
	p, err := principals.GetByID(ctx, acct.UID)
	if err != nil {
		return nil, notFoundOr(err, "user record not found")
	}

	if bearer == "" {
		return nil, fmt.Errorf("%w: no token provided", common.ErrUnauthorized)
	}
	tok, err := s.idp.VerifyIDToken(ctx, bearer)
	if err != nil {
		return nil, unauthorizedOr(err)
	}
	if tok.UID != acct.UID {
		return nil, fmt.Errorf("%w: token does not match user", common.ErrUnauthorized)
	}

	credential, err := s.sessions.Mint(ctx, bearer)
	if err != nil {
		return nil, unauthorizedOr(err)
	}

	if err := principals.TouchLastLogin(ctx, acct.UID, s.now()); err != nil {
		return nil, fmt.Errorf("%w: update last login: %v", common.ErrUpstream, err)
	}

	s.logger.Info(ctx, "user signed in", "uid", acct.UID, "role", p.Role)
	return &SignInResult{Credential: credential, Role: p.Role, RedirectURL: "/"}, nil
}

// IssueIDToken is the identity provider's password sign-in.
func (s *AuthService) IssueIDToken(ctx context.Context, email, password string) (*identity.IssuedToken, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}
	tok, err := s.idp.SignInWithPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) || errors.Is(err, common.ErrAccountDisabled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: password sign-in: %v", common.ErrUpstream, err)
	}
	return tok, nil
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	}
	return fmt.Errorf("%w: %v", common.ErrUpstream, err)
}

func unauthorizedOr(err error) error {
	if errors.Is(err, common.ErrInvalidToken) {
		return fmt.Errorf("%w: invalid token", common.ErrUnauthorized)
	}
	if errors.Is(err, common.ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrUpstream, err)
}
