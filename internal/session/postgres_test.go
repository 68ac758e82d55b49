package session

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartinventory/internal/model"
)

func TestPostgresStore_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	exp := time.Now().Add(time.Hour).UTC()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions (token, user_id, expires_at)")).
		WithArgs("tok", "u1", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewPostgresStore(db).Save(context.Background(), &model.Session{Token: "tok", UserID: "u1", ExpiresAt: exp})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	query := regexp.QuoteMeta("SELECT token, user_id, expires_at FROM sessions WHERE token = $1")

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		exp := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(query).WithArgs("tok").
			WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "expires_at"}).AddRow("tok", "u1", exp))

		s, err := NewPostgresStore(db).Get(context.Background(), "tok")

		require.NoError(t, err)
		assert.Equal(t, "u1", s.UserID)
		assert.Equal(t, exp, s.ExpiresAt)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(query).WithArgs("nope").WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "expires_at"}))

		_, err = NewPostgresStore(db).Get(context.Background(), "nope")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(query).WillReturnError(errors.New("conn reset"))

		_, err = NewPostgresStore(db).Get(context.Background(), "tok")

		assert.ErrorContains(t, err, "get session: conn reset")
	})
}

func TestPostgresStore_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE token = $1")).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, NewPostgresStore(db).Delete(context.Background(), "tok"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
