package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizgrid/bizgrid-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupUserService(t *testing.T) (*UserService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewUserService(db), mock
}

func userRows(id uuid.UUID, email, name, passwordHash string, verified bool) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "email", "name", "password_hash", "email_verified", "created_at", "updated_at"}).
		AddRow(id, email, name, passwordHash, verified, now, now)
}

func TestUserService_Create(t *testing.T) {
	svc, mock := setupUserService(t)
	userID := uuid.New()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("jane@example.com", "Jane", pgxmock.AnyArg(), false).
		WillReturnRows(userRows(userID, "jane@example.com", "Jane", "hashed", false))

	user, err := svc.Create(context.Background(), "jane@example.com", "Jane", "s3cret-pass", false)

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.False(t, user.EmailVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Create_EmailTaken(t *testing.T) {
	svc, mock := setupUserService(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("jane@example.com", "Jane", pgxmock.AnyArg(), false).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := svc.Create(context.Background(), "jane@example.com", "Jane", "s3cret-pass", false)

	assert.True(t, errors.Is(err, ErrEmailTaken))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Authenticate(t *testing.T) {
	svc, mock := setupUserService(t)
	userID := uuid.New()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("jane@example.com").
		WillReturnRows(userRows(userID, "jane@example.com", "Jane", string(hash), true))

	user, err := svc.Authenticate(context.Background(), "jane@example.com", "s3cret-pass")

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Authenticate_WrongPassword(t *testing.T) {
	svc, mock := setupUserService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("jane@example.com").
		WillReturnRows(userRows(uuid.New(), "jane@example.com", "Jane", string(hash), true))

	_, err = svc.Authenticate(context.Background(), "jane@example.com", "wrong")

	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Authenticate_UnknownEmail(t *testing.T) {
	svc, mock := setupUserService(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Authenticate(context.Background(), "ghost@example.com", "whatever")

	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.NoError(t, mock.ExpectationsWereMet())
}
