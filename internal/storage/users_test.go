package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/members-only/internal/models"
)

var userColumns = []string{"user_id", "name", "email", "password", "user_type", "created_at"}

func newTestUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewUserRepository(&DB{DB: db}), mock
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "Alice", "a@x.com", "$2a$hash", "user").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(id.String(), "Alice", "a@x.com", "$2a$hash", "user", now))

	created, err := repo.CreateUser(context.Background(), models.User{
		Name:         "Alice",
		Email:        "a@x.com",
		PasswordHash: "$2a$hash",
	})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, models.RoleUser, created.Role)
	assert.Equal(t, "$2a$hash", created.PasswordHash)
}

func TestCreateUser_KeepsExplicitRole(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	id := uuid.New()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(id, "root", "root@x.com", "h", "admin").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(id.String(), "root", "root@x.com", "h", "admin", time.Now()))

	created, err := repo.CreateUser(context.Background(), models.User{
		ID: id, Name: "root", Email: "root@x.com", PasswordHash: "h", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, created.Role)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := repo.CreateUser(context.Background(), models.User{Name: "Alice", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestCreateUser_UnexpectedError(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.CreateUser(context.Background(), models.User{Name: "Alice", Email: "a@x.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailAlreadyExists)
	assert.Contains(t, err.Error(), "unexpected DB error")
}

func TestFindByEmail(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(id.String(), "Alice", "a@x.com", "h", nil, time.Now()))

	users, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0].Name)
	// user_type が欠けているレコードは user として扱う
	assert.Equal(t, models.RoleUser, users[0].Role)
}

func TestFindByEmail_NoRows(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	users, err := repo.FindByEmail(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestFindByEmail_QueryError(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnError(errors.New("db down"))

	_, err := repo.FindByEmail(context.Background(), "a@x.com")
	assert.Error(t, err)
}

func TestListUsers(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	alice, bob := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, name, user_type FROM users ORDER BY created_at, name")).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name", "user_type"}).
			AddRow(alice.String(), "Alice", "admin").
			AddRow(bob.String(), "Bob", "user"))

	users, err := repo.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.UserSummary{
		{ID: alice, Name: "Alice", Role: models.RoleAdmin},
		{ID: bob, Name: "Bob", Role: models.RoleUser},
	}, users)
}

func TestSetRole_ByName(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET user_type = $1 WHERE name = $2")).
		WithArgs("admin", "Alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.SetRole(context.Background(), models.RoleTarget{Name: "Alice"}, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSetRole_ByIDAndName(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET user_type = $1 WHERE name = $2 AND user_id = $3")).
		WithArgs("user", "Alice", id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.SetRole(context.Background(), models.RoleTarget{ID: id, Name: "Alice"}, models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSetRole_ExecError(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectExec("UPDATE users").WillReturnError(errors.New("db down"))

	_, err := repo.SetRole(context.Background(), models.RoleTarget{Name: "Alice"}, models.RoleAdmin)
	assert.Error(t, err)
}

func TestHasAdmin(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasAdmin(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}
