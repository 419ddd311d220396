package principals

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/dbx"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
)

// PostgresRepository stores user records in the principals table.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const columns = `id, email, first_name, last_name, username, role, disabled, email_verified,
		profile_image, bio, phone_number, website, created_at, updated_at, last_login`

type scanner interface {
	Scan(dest ...any) error
}

func scanPrincipal(row scanner) (*models.Principal, error) {
	p := &models.Principal{}
	var role string
	var lastLogin sql.NullTime

	err := row.Scan(
		&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Username, &role, &p.Disabled, &p.EmailVerified,
		&p.ProfileImage, &p.Bio, &p.PhoneNumber, &p.Website, &p.CreatedAt, &p.UpdatedAt, &lastLogin,
	)
	if err != nil {
		return nil, err
	}

	p.Role = models.Role(role)
	if lastLogin.Valid {
		t := lastLogin.Time
		p.LastLogin = &t
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Principal) error {
	query :=
		`INSERT INTO principals (` + columns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	var lastLogin sql.NullTime
	if p.LastLogin != nil {
		lastLogin = sql.NullTime{Time: *p.LastLogin, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Email, p.FirstName, p.LastName, p.Username, string(p.Role), p.Disabled, p.EmailVerified,
		p.ProfileImage, p.Bio, p.PhoneNumber, p.Website, p.CreatedAt, p.UpdatedAt, lastLogin,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	p, err := scanPrincipal(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM principals WHERE id = $1`, id))
	if err != nil {
		if dbx.IsNotFound(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// List returns all records, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Principal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM principals ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Principal, 0)
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Update applies the non-nil fields of u and stamps updated_at with at.
func (r *PostgresRepository) Update(ctx context.Context, id string, u models.PrincipalUpdate, at time.Time) (*models.Principal, error) {
	query :=
		`UPDATE principals SET
		   first_name    = COALESCE($2, first_name),
		   last_name     = COALESCE($3, last_name),
		   email         = COALESCE($4, email),
		   username      = COALESCE($5, username),
		   role          = COALESCE($6, role),
		   phone_number  = COALESCE($7, phone_number),
		   bio           = COALESCE($8, bio),
		   website       = COALESCE($9, website),
		   disabled      = COALESCE($10, disabled),
		   profile_image = COALESCE($11, profile_image),
		   updated_at    = $12
		 WHERE id = $1
		 RETURNING ` + columns

	var role *string
	if u.Role != nil {
		s := string(*u.Role)
		role = &s
	}

	p, err := scanPrincipal(r.db.QueryRowContext(ctx, query,
		id, u.FirstName, u.LastName, u.Email, u.Username, role,
		u.PhoneNumber, u.Bio, u.Website, u.Disabled, u.ProfileImage, at,
	))
	if err != nil {
		if dbx.IsNotFound(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE principals SET last_login = $2 WHERE id = $1`, id, at)
	return affectedOne(res, err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM principals WHERE id = $1`, id)
	return affectedOne(res, err)
}

func affectedOne(res sql.Result, err error) error {
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
