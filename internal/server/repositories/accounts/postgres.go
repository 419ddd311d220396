package accounts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/dbx"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository stores identity accounts in the accounts table.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectAccount = `SELECT id, email, password_hash, display_name, disabled, email_verified, created_at, updated_at
		 FROM accounts`

// Create inserts account, assigning a uid when it has none.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.UID == "" {
		account.UID = uuid.NewString()
	}

	query :=
		`INSERT INTO accounts (id, email, password_hash, display_name, disabled, email_verified)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		account.UID, account.Email, account.PasswordHash, account.DisplayName,
		account.Disabled, account.EmailVerified,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, uid string) (*models.Account, error) {
	return r.getOne(ctx, selectAccount+` WHERE id = $1`, uid)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, selectAccount+` WHERE lower(email) = lower($1)`, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.UID, &a.Email, &a.PasswordHash, &a.DisplayName,
		&a.Disabled, &a.EmailVerified, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if dbx.IsNotFound(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// Update writes every mutable column of account.
func (r *PostgresRepository) Update(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`UPDATE accounts
		 SET email = $2, password_hash = $3, display_name = $4, disabled = $5, email_verified = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		account.UID, account.Email, account.PasswordHash, account.DisplayName,
		account.Disabled, account.EmailVerified,
	).Scan(&account.UpdatedAt)
	if err != nil {
		switch {
		case dbx.IsNotFound(err):
			return nil, common.ErrNotFound
		case dbx.IsUniqueViolation(err):
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, uid string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, uid)
	if err != nil {
		if dbx.IsNotFound(err) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
