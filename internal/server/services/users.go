package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/dbx"
	"github.com/dmitrijs2005/rabetweb/internal/logging"
	"github.com/dmitrijs2005/rabetweb/internal/server/identity"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/dmitrijs2005/rabetweb/internal/server/repositories/repomanager"
)

// UserService administers principals. Changes that touch both stores go to
// the identity provider first.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	idp         identity.Provider
	logger      logging.Logger
	now         func() time.Time
}

// NewUserService builds a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, idp identity.Provider, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		idp:         idp,
		logger:      logger.With("module", "users"),
		now:         time.Now,
	}
}

// List returns all user records, newest first.
func (s *UserService) List(ctx context.Context) ([]*models.Principal, error) {
	list, err := s.repomanager.Principals(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	return list, nil
}

// Get returns one user record.
func (s *UserService) Get(ctx context.Context, id string) (*models.Principal, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", common.ErrValidation)
	}
	p, err := s.repomanager.Principals(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return p, nil
}

// Update applies a profile patch. Only the profile fields and role are
// patchable; an email change is made in the identity provider too, after
// the record has been written.
func (s *UserService) Update(ctx context.Context, id string, u models.PrincipalUpdate) (*models.Principal, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", common.ErrValidation)
	}
	u = sanitize(u)
	if u.Role != nil && !u.Role.Valid() {
		return nil, fmt.Errorf("%w: invalid role", common.ErrValidation)
	}
	if u.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", common.ErrValidation)
	}

	var updated *models.Principal
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Principals(tx)

		if _, err := repo.GetByID(ctx, id); err != nil {
			return notFoundOr(err, "user not found in database")
		}
		if _, err := s.idp.GetUser(ctx, id); err != nil {
			return notFoundOr(err, "user not found in authentication")
		}

		var err error
		updated, err = repo.Update(ctx, id, u, s.now())
		if err != nil {
			return notFoundOr(err, "user not found in database")
		}

		// The identity store is not part of tx, so it changes last: a
		// failure here still rolls the record back.
		if u.Email != nil {
			if _, err := s.idp.UpdateUser(ctx, id, identity.AccountUpdate{Email: u.Email}); err != nil {
				return identityError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user updated", "uid", id)
	return updated, nil
}

// SetDisabled toggles the account and the record together.
func (s *UserService) SetDisabled(ctx context.Context, id string, disabled bool) (*models.Principal, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", common.ErrValidation)
	}
	if _, err := s.idp.UpdateUser(ctx, id, identity.AccountUpdate{Disabled: &disabled}); err != nil {
		return nil, identityError(err)
	}

	p, err := s.repomanager.Principals(s.db).Update(ctx, id, models.PrincipalUpdate{Disabled: &disabled}, s.now())
	if err != nil {
		return nil, notFoundOr(err, "user not found in database")
	}

	s.logger.Info(ctx, "user disabled flag changed", "uid", id, "disabled", disabled)
	return p, nil
}

// SetProfileImage records the object key of the user's profile image.
func (s *UserService) SetProfileImage(ctx context.Context, id, key string) (*models.Principal, error) {
	p, err := s.repomanager.Principals(s.db).Update(ctx, id, models.PrincipalUpdate{ProfileImage: &key}, s.now())
	if err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return p, nil
}

// Delete removes the identity account and then the record. Either may
// already be gone.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: user id is required", common.ErrValidation)
	}

	if err := s.idp.DeleteUser(ctx, id); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%w: delete account: %v", common.ErrUpstream, err)
		}
		s.logger.Warn(ctx, "identity account already gone", "uid", id)
	}

	if err := s.repomanager.Principals(s.db).Delete(ctx, id); err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: delete user record: %v", common.ErrUpstream, err)
	}

	s.logger.Info(ctx, "user deleted", "uid", id)
	return nil
}

// sanitize trims strings and drops fields a profile patch may not set.
func sanitize(u models.PrincipalUpdate) models.PrincipalUpdate {
	for _, f := range []**string{&u.FirstName, &u.LastName, &u.Email, &u.Username, &u.PhoneNumber, &u.Bio, &u.Website} {
		if *f != nil {
			v := strings.TrimSpace(**f)
			*f = &v
		}
	}
	u.Disabled = nil
	u.ProfileImage = nil
	return u
}

func identityError(err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return fmt.Errorf("%w: user not found in authentication", common.ErrNotFound)
	case errors.Is(err, common.ErrAlreadyExists), errors.Is(err, common.ErrValidation):
		return err
	default:
		return fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
}
