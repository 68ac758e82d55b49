package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartinventory/internal/model"
)

// PostgresStore keeps sessions in the sessions table created by the migration package.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore stores sessions in the sessions table created by the migration.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Save(ctx context.Context, s *model.Session) error {
	const q = `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET expires_at = EXCLUDED.expires_at`
	if _, err := p.db.ExecContext(ctx, q, s.Token, s.UserID, s.ExpiresAt); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, token string) (*model.Session, error) {
	const q = `SELECT token, user_id, expires_at FROM sessions WHERE token = $1`
	var s model.Session
	err := p.db.QueryRowContext(ctx, q, token).Scan(&s.Token, &s.UserID, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (p *PostgresStore) Delete(ctx context.Context, token string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
