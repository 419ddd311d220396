package messages

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/dbx"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository stores contact messages.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const columns = `id, full_name, email, subject, body, status, is_archived, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (*models.Message, error) {
	m := &models.Message{}
	var status string
	if err := row.Scan(&m.ID, &m.FullName, &m.Email, &m.Subject, &m.Body, &status, &m.IsArchived, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Status = models.MessageStatus(status)
	return m, nil
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = models.MessageNew
	}

	query :=
		`INSERT INTO messages (id, full_name, email, subject, body, status, is_archived)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		m.ID, m.FullName, m.Email, m.Subject, m.Body, string(m.Status), m.IsArchived,
	).Scan(&m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	m, err := scanMessage(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM messages WHERE id = $1`, id))
	if err != nil {
		if dbx.IsNotFound(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// List returns the messages in view, newest first. ViewAll and the status
// views never include archived messages.
func (r *PostgresRepository) List(ctx context.Context, view models.MessageView) ([]*models.Message, error) {
	query := `SELECT ` + columns + ` FROM messages`
	var args []any

	switch view {
	case models.ViewArchived:
		query += ` WHERE is_archived = TRUE`
	case models.ViewAll, "":
		query += ` WHERE is_archived = FALSE`
	default:
		query += ` WHERE status = $1 AND is_archived = FALSE`
		args = append(args, string(view))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, u models.MessageUpdate) (*models.Message, error) {
	query :=
		`UPDATE messages SET
		   status      = COALESCE($2, status),
		   is_archived = COALESCE($3, is_archived)
		 WHERE id = $1
		 RETURNING ` + columns

	var status *string
	if u.Status != nil {
		s := string(*u.Status)
		status = &s
	}

	m, err := scanMessage(r.db.QueryRowContext(ctx, query, id, status, u.IsArchived))
	if err != nil {
		if dbx.IsNotFound(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
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

// CountUnread counts messages with status new that are not archived.
func (r *PostgresRepository) CountUnread(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM messages WHERE status = 'new' AND is_archived = FALSE`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
