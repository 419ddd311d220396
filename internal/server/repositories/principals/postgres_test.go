package principals

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var principalCols = []string{
	"id", "email", "first_name", "last_name", "username", "role", "disabled", "email_verified",
	"profile_image", "bio", "phone_number", "website", "created_at", "updated_at", "last_login",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+principals\s*\(id,\s*email,.*last_login\)\s*VALUES\s*\(\$1,.*\$15\)$`).
		WithArgs("u-1", "ann@example.com", "Ann", "Lee", "ann", "User", false, false,
			"", "", "", "", now, now, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Principal{
		ID: "u-1", Email: "ann@example.com", FirstName: "Ann", LastName: "Lee", Username: "ann",
		Role: models.RoleUser, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+principals`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Principal{ID: "u-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	q := `(?s)^SELECT\s+id,\s*email,.*FROM\s+principals\s+WHERE\s+id\s*=\s*\$1$`

	t.Run("found with last login", func(t *testing.T) {
		mock.ExpectQuery(q).WithArgs("u-1").WillReturnRows(sqlmock.NewRows(principalCols).
			AddRow("u-1", "ann@example.com", "Ann", "Lee", "ann", "Administrator", false, true,
				"profiles/u-1/a.png", "bio", "+100", "https://ann.dev", now, now, now))

		p, err := repo.GetByID(context.Background(), "u-1")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdministrator, p.Role)
		require.NotNil(t, p.LastLogin)
		assert.Equal(t, now, *p.LastLogin)
	})

	t.Run("never logged in", func(t *testing.T) {
		mock.ExpectQuery(q).WithArgs("u-2").WillReturnRows(sqlmock.NewRows(principalCols).
			AddRow("u-2", "bob@example.com", "Bob", "Ray", "bob", "User", false, false,
				"", "", "", "", now, now, nil))

		p, err := repo.GetByID(context.Background(), "u-2")
		require.NoError(t, err)
		assert.Nil(t, p.LastLogin)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery(q).WithArgs("nope").WillReturnError(sql.ErrNoRows)
		_, err := repo.GetByID(context.Background(), "nope")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+principals\s+ORDER\s+BY\s+created_at\s+DESC$`).
		WillReturnRows(sqlmock.NewRows(principalCols).
			AddRow("u-2", "bob@example.com", "Bob", "Ray", "bob", "Moderator", false, false, "", "", "", "", now, now, nil).
			AddRow("u-1", "ann@example.com", "Ann", "Lee", "ann", "User", true, false, "", "", "", "", now, now, nil))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u-2", got[0].ID)
	assert.True(t, got[1].Disabled)
}

func TestList_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+principals`).WillReturnRows(sqlmock.NewRows(principalCols))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUpdate_PartialFields(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	bio := "new bio"
	role := models.RoleModerator

	mock.ExpectQuery(`(?s)^UPDATE\s+principals\s+SET.*first_name\s*=\s*COALESCE\(\$2,\s*first_name\).*updated_at\s*=\s*\$12\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+id,`).
		WithArgs("u-1", nil, nil, nil, nil, "Moderator", nil, "new bio", nil, nil, nil, at).
		WillReturnRows(sqlmock.NewRows(principalCols).
			AddRow("u-1", "ann@example.com", "Ann", "Lee", "ann", "Moderator", false, false, "", "new bio", "", "", at, at, nil))

	p, err := repo.Update(context.Background(), "u-1", models.PrincipalUpdate{Bio: &bio, Role: &role}, at)
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, p.Role)
	assert.Equal(t, "new bio", p.Bio)
	assert.Equal(t, at, p.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_Missing(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`(?s)^UPDATE\s+principals`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "nope", models.PrincipalUpdate{}, time.Now())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTouchLastLogin(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Now()
	q := `^UPDATE\s+principals\s+SET\s+last_login\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1$`

	mock.ExpectExec(q).WithArgs("u-1", at).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.TouchLastLogin(context.Background(), "u-1", at))

	mock.ExpectExec(q).WithArgs("u-9", at).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.TouchLastLogin(context.Background(), "u-9", at), common.ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `^DELETE\s+FROM\s+principals\s+WHERE\s+id\s*=\s*\$1$`

	mock.ExpectExec(q).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "u-1"))

	mock.ExpectExec(q).WithArgs("u-1").WillReturnError(errors.New("boom"))
	assert.Error(t, repo.Delete(context.Background(), "u-1"))
}

func TestMalformedIDIsNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	badUUID := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "not-a-uuid"`}
	role := models.RoleModerator

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+principals\s+WHERE\s+id`).WithArgs("not-a-uuid").WillReturnError(badUUID)
	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrNotFound)

	mock.ExpectQuery(`(?s)^UPDATE\s+principals`).WillReturnError(badUUID)
	_, err = repo.Update(context.Background(), "not-a-uuid", models.PrincipalUpdate{Role: &role}, time.Now())
	assert.ErrorIs(t, err, common.ErrNotFound)

	mock.ExpectExec(`^DELETE\s+FROM\s+principals`).WithArgs("not-a-uuid").WillReturnError(badUUID)
	assert.ErrorIs(t, repo.Delete(context.Background(), "not-a-uuid"), common.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
