package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"smartinventory/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	base := config.DatabaseConfig{Host: "db", Port: "5432", User: "inv", Name: "inventory"}

	t.Run("password and sslmode", func(t *testing.T) {
		c := base
		c.Password = "p@ss word"
		c.SSLMode = "require"
		got, err := BuildPostgresDSN(c)
		require.NoError(t, err)
		assert.Equal(t, "postgres://inv:p%40ss%20word@db:5432/inventory?sslmode=require", got)
	})

	t.Run("no password no sslmode", func(t *testing.T) {
		got, err := BuildPostgresDSN(base)
		require.NoError(t, err)
		assert.Equal(t, "postgres://inv@db:5432/inventory", got)
	})

	for name, mutate := range map[string]func(*config.DatabaseConfig){
		"host": func(c *config.DatabaseConfig) { c.Host = "" },
		"port": func(c *config.DatabaseConfig) { c.Port = "" },
		"user": func(c *config.DatabaseConfig) { c.User = "" },
		"name": func(c *config.DatabaseConfig) { c.Name = "" },
	} {
		t.Run("missing "+name, func(t *testing.T) {
			c := base
			mutate(&c)
			_, err := BuildPostgresDSN(c)
			assert.Error(t, err)
		})
	}
}

// stubOpen makes NewPostgres hand out db instead of dialing.
func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return db, err }
	t.Cleanup(func() { sqlOpen = orig })
}

func TestNewPostgres(t *testing.T) {
	ctx := context.Background()
	conf := config.DatabaseConfig{
		Host:               "db",
		Port:               "5432",
		User:               "inv",
		Password:           "secret",
		Name:               "inventory",
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetimeSec: 300,
	}

	t.Run("applies pool settings", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)
		mock.ExpectPing()

		got, err := NewPostgres(ctx, conf)

		require.NoError(t, err)
		assert.Equal(t, 10, got.Stats().MaxOpenConnections)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("open error", func(t *testing.T) {
		stubOpen(t, nil, errors.New("open error"))

		got, err := NewPostgres(ctx, conf)

		assert.EqualError(t, err, "sql open: open error")
		assert.Nil(t, got)
	})

	t.Run("ping error closes the pool", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)
		mock.ExpectPing().WillReturnError(errors.New("ping failed"))
		mock.ExpectClose()

		got, err := NewPostgres(ctx, conf)

		assert.EqualError(t, err, "db ping: ping failed")
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid config", func(t *testing.T) {
		got, err := NewPostgres(ctx, config.DatabaseConfig{})
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("conn refused"))

	assert.NoError(t, Ping(context.Background(), db))
	assert.ErrorContains(t, Ping(context.Background(), db), "db ping: conn refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewMongo_InvalidConfig(t *testing.T) {
	_, err := NewMongo(context.Background(), config.MongoDBConfig{DBName: "inv"})
	assert.ErrorContains(t, err, "uri is required")

	_, err = NewMongo(context.Background(), config.MongoDBConfig{URI: "mongodb://localhost:27017"})
	assert.ErrorContains(t, err, "database name is required")
}
