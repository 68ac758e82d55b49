package postgres

import (
	"context"
	"database/sql"

	"smartinventory/internal/model"
	"smartinventory/internal/repository"
)

// AlertSettingsPostgres is a PostgreSQL implementation of repository.AlertSettingsRepository.
type AlertSettingsPostgres struct {
	db *sql.DB
}

// NewAlertSettingsPostgres creates a new AlertSettingsPostgres repository.
func NewAlertSettingsPostgres(db *sql.DB) *AlertSettingsPostgres {
	return &AlertSettingsPostgres{db: db}
}

var _ repository.AlertSettingsRepository = (*AlertSettingsPostgres)(nil)

const alertColumns = `user_id, enabled, phone_number, low_stock, out_of_stock, updated_at`

func scanAlertSettings(s rowScanner) (*model.AlertSettings, error) {
	var a model.AlertSettings
	if err := s.Scan(&a.UserID, &a.Enabled, &a.PhoneNumber, &a.LowStock, &a.OutOfStock, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AlertSettingsPostgres) Get(ctx context.Context, userID string) (*model.AlertSettings, error) {
	const q = `SELECT ` + alertColumns + ` FROM alert_settings WHERE user_id = $1`
	a, err := scanAlertSettings(r.db.QueryRowContext(ctx, q, userID))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

// Upsert inserts or replaces the user's settings.
func (r *AlertSettingsPostgres) Upsert(ctx context.Context, s *model.AlertSettings) (*model.AlertSettings, error) {
	const q = `
		INSERT INTO alert_settings (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET enabled = EXCLUDED.enabled,
		    phone_number = EXCLUDED.phone_number,
		    low_stock = EXCLUDED.low_stock,
		    out_of_stock = EXCLUDED.out_of_stock,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + alertColumns
	a, err := scanAlertSettings(r.db.QueryRowContext(ctx, q,
		s.UserID,
		s.Enabled,
		s.PhoneNumber,
		s.LowStock,
		s.OutOfStock,
		s.UpdatedAt,
	))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *AlertSettingsPostgres) Delete(ctx context.Context, userID string) error {
	const q = `DELETE FROM alert_settings WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}

func (r *AlertSettingsPostgres) ListEnabled(ctx context.Context) ([]model.AlertSettings, error) {
	const q = `
		SELECT ` + alertColumns + `
		FROM alert_settings
		WHERE enabled AND phone_number <> ''
		ORDER BY user_id
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AlertSettings, 0)
	for rows.Next() {
		a, err := scanAlertSettings(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
