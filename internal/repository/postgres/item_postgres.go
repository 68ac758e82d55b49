package postgres

import (
	"context"
	"database/sql"

	"smartinventory/internal/model"
	"smartinventory/internal/repository"
)

// ItemPostgres is a PostgreSQL implementation of repository.ItemRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ItemPostgres struct {
	db *sql.DB
}

// NewItemPostgres creates a new ItemPostgres repository.
func NewItemPostgres(db *sql.DB) *ItemPostgres {
	return &ItemPostgres{db: db}
}

var _ repository.ItemRepository = (*ItemPostgres)(nil)

const itemColumns = `id, owner_id, name, description, category, quantity, price, low_stock_threshold, created_at, updated_at`

func scanItem(s rowScanner) (*model.Item, error) {
	var it model.Item
	if err := s.Scan(
		&it.ID,
		&it.OwnerID,
		&it.Name,
		&it.Description,
		&it.Category,
		&it.Quantity,
		&it.Price,
		&it.LowStockThreshold,
		&it.CreatedAt,
		&it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserts a new item row and returns the stored record.
func (r *ItemPostgres) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	const q = `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + itemColumns
	row := r.db.QueryRowContext(ctx, q,
		item.ID,
		item.OwnerID,
		item.Name,
		item.Description,
		item.Category,
		item.Quantity,
		item.Price,
		item.LowStockThreshold,
		item.CreatedAt,
		item.UpdatedAt,
	)
	out, err := scanItem(row)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// FindByID fetches a single item of the owner.
func (r *ItemPostgres) FindByID(ctx context.Context, ownerID, id string) (*model.Item, error) {
	const q = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE id = $1 AND owner_id = $2
	`
	it, err := scanItem(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		return nil, mapError(err)
	}
	return it, nil
}

// ListByOwner returns all items of the owner ordered by name.
func (r *ItemPostgres) ListByOwner(ctx context.Context, ownerID string) ([]model.Item, error) {
	const q = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE owner_id = $1
		ORDER BY lower(name) COLLATE "C" ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update overwrites the mutable columns and returns the stored record.
func (r *ItemPostgres) Update(ctx context.Context, item *model.Item) (*model.Item, error) {
	const q = `
		UPDATE items
		SET name = $3, description = $4, category = $5, quantity = $6,
		    price = $7, low_stock_threshold = $8, updated_at = $9
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + itemColumns
	row := r.db.QueryRowContext(ctx, q,
		item.ID,
		item.OwnerID,
		item.Name,
		item.Description,
		item.Category,
		item.Quantity,
		item.Price,
		item.LowStockThreshold,
		item.UpdatedAt,
	)
	out, err := scanItem(row)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// Delete removes the owner's item. It returns repository.ErrNotFound when no row matched.
func (r *ItemPostgres) Delete(ctx context.Context, ownerID, id string) error {
	const q = `DELETE FROM items WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
