package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartinventory/internal/model"
	"smartinventory/internal/repository"
)

var itemCols = []string{"id", "owner_id", "name", "description", "category", "quantity", "price", "low_stock_threshold", "created_at", "updated_at"}

func newItem() *model.Item {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &model.Item{
		ID:                "item-1",
		OwnerID:           "owner-1",
		Name:              "Widget",
		Description:       "blue",
		Category:          "Tools",
		Quantity:          3,
		Price:             decimal.RequireFromString("9.99"),
		LowStockThreshold: 5,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func itemRow(it *model.Item) *sqlmock.Rows {
	return sqlmock.NewRows(itemCols).AddRow(
		it.ID, it.OwnerID, it.Name, it.Description, it.Category,
		it.Quantity, it.Price.String(), it.LowStockThreshold, it.CreatedAt, it.UpdatedAt,
	)
}

func TestItemPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewItemPostgres(db)
	it := newItem()

	mock.ExpectQuery("INSERT INTO items").
		WithArgs(it.ID, it.OwnerID, it.Name, it.Description, it.Category,
			it.Quantity, it.Price, it.LowStockThreshold, it.CreatedAt, it.UpdatedAt).
		WillReturnRows(itemRow(it))

	out, err := repo.Create(context.Background(), it)

	require.NoError(t, err)
	assert.Equal(t, it.ID, out.ID)
	assert.True(t, it.Price.Equal(out.Price))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemPostgres_Create_OutOfRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	it := newItem()
	it.Quantity = 3000000000
	mock.ExpectQuery("INSERT INTO items").
		WillReturnError(&pgconn.PgError{Code: "22003", Message: "integer out of range"})

	out, err := NewItemPostgres(db).Create(context.Background(), it)

	assert.ErrorIs(t, err, repository.ErrOutOfRange)
	assert.Nil(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewItemPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		it := newItem()
		mock.ExpectQuery("SELECT (.+) FROM items WHERE id = (.+) AND owner_id = ").
			WithArgs("item-1", "owner-1").
			WillReturnRows(itemRow(it))

		out, err := repo.FindByID(ctx, "owner-1", "item-1")

		require.NoError(t, err)
		assert.Equal(t, "Widget", out.Name)
		assert.Equal(t, 3, out.Quantity)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM items WHERE id = ").
			WithArgs("missing", "owner-1").
			WillReturnError(sql.ErrNoRows)

		out, err := repo.FindByID(ctx, "owner-1", "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, out)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemPostgres_ListByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewItemPostgres(db)

	a := newItem()
	b := newItem()
	b.ID, b.Name = "item-2", "anvil"
	rows := sqlmock.NewRows(itemCols).
		AddRow(b.ID, b.OwnerID, b.Name, b.Description, b.Category, b.Quantity, b.Price.String(), b.LowStockThreshold, b.CreatedAt, b.UpdatedAt).
		AddRow(a.ID, a.OwnerID, a.Name, a.Description, a.Category, a.Quantity, a.Price.String(), a.LowStockThreshold, a.CreatedAt, a.UpdatedAt)

	mock.ExpectQuery("SELECT (.+) FROM items WHERE owner_id = (.+) ORDER BY lower\\(name\\) COLLATE \"C\" ASC, id ASC").
		WithArgs("owner-1").
		WillReturnRows(rows)

	items, err := repo.ListByOwner(context.Background(), "owner-1")

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "anvil", items[0].Name)
	assert.Equal(t, "Widget", items[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemPostgres_ListByOwner_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM items").
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows(itemCols))

	items, err := NewItemPostgres(db).ListByOwner(context.Background(), "owner-1")

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestItemPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewItemPostgres(db)
	ctx := context.Background()
	it := newItem()

	t.Run("updated", func(t *testing.T) {
		mock.ExpectQuery("UPDATE items SET (.+) WHERE id = (.+) AND owner_id = (.+) RETURNING").
			WithArgs(it.ID, it.OwnerID, it.Name, it.Description, it.Category,
				it.Quantity, it.Price, it.LowStockThreshold, it.UpdatedAt).
			WillReturnRows(itemRow(it))

		out, err := repo.Update(ctx, it)

		require.NoError(t, err)
		assert.Equal(t, it.ID, out.ID)
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectQuery("UPDATE items").WillReturnError(sql.ErrNoRows)

		out, err := repo.Update(ctx, it)

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, out)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewItemPostgres(db)
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM items WHERE id = (.+) AND owner_id = ").
			WithArgs("item-1", "owner-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "owner-1", "item-1"))
	})

	t.Run("nothing deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM items").
			WithArgs("item-9", "owner-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, "owner-1", "item-9"), repository.ErrNotFound)
	})

	t.Run("exec error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM items").
			WillReturnError(errors.New("conn closed"))

		assert.EqualError(t, repo.Delete(ctx, "owner-1", "item-1"), "conn closed")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
