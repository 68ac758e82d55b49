package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartinventory/internal/model"
	"smartinventory/internal/repository"
	repoMocks "smartinventory/internal/repository/mocks"
	"smartinventory/internal/storage"
	storeMocks "smartinventory/internal/storage/mocks"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	calls [][2]*model.Item
}

func (r *recordingNotifier) NotifyStockChange(_ context.Context, _ string, before, after *model.Item) {
	r.calls = append(r.calls, [2]*model.Item{before, after})
}

func newTestInventory(items repository.ItemRepository, store storage.Storage, n StockNotifier) *inventoryService {
	svc := NewInventoryService(items, store, n, nil).(*inventoryService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestInventoryService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		in         ItemInput
		setupMocks func(m *repoMocks.MockItemRepository)
		wantErr    error
		wantErrMsg string
		check      func(t *testing.T, it *model.Item)
	}{
		{
			name: "happy path applies default threshold",
			in:   ItemInput{Name: "  Widget ", Category: " Tools ", Quantity: 3, Price: decimal.RequireFromString("2.499")},
			setupMocks: func(m *repoMocks.MockItemRepository) {
				m.On("Create", ctx, mock.MatchedBy(func(it *model.Item) bool {
					return it.OwnerID == "o1" && it.ID != "" && it.CreatedAt.Equal(fixedNow)
				})).Return(func(_ context.Context, it *model.Item) *model.Item { return it }, nil)
			},
			check: func(t *testing.T, it *model.Item) {
				assert.Equal(t, "Widget", it.Name)
				assert.Equal(t, "Tools", it.Category)
				assert.Equal(t, model.DefaultLowStockThreshold, it.LowStockThreshold)
				assert.Equal(t, "2.50", it.Price.StringFixed(2))
			},
		},
		{
			name: "negative threshold stored as default",
			in:   ItemInput{Name: "w", Quantity: 1, Price: decimal.NewFromInt(1), LowStockThreshold: -1},
			setupMocks: func(m *repoMocks.MockItemRepository) {
				m.On("Create", ctx, mock.MatchedBy(func(it *model.Item) bool {
					return it.LowStockThreshold == model.DefaultLowStockThreshold
				})).Return(func(_ context.Context, it *model.Item) *model.Item { return it }, nil)
			},
			check: func(t *testing.T, it *model.Item) {
				assert.Equal(t, 5, it.LowStockThreshold)
			},
		},
		{
			name: "largest storable values",
			in:   ItemInput{Name: "w", Quantity: model.MaxQuantity, Price: model.MaxPrice, LowStockThreshold: model.MaxQuantity},
			setupMocks: func(m *repoMocks.MockItemRepository) {
				m.On("Create", ctx, mock.Anything).
					Return(func(_ context.Context, it *model.Item) *model.Item { return it }, nil)
			},
			check: func(t *testing.T, it *model.Item) {
				assert.Equal(t, model.MaxQuantity, it.Quantity)
				assert.True(t, model.MaxPrice.Equal(it.Price))
			},
		},
		{
			name:       "quantity above storable range",
			in:         ItemInput{Name: "x", Quantity: model.MaxQuantity + 1},
			setupMocks: func(*repoMocks.MockItemRepository) {},
			wantErr:    ErrInvalidInput,
		},
		{
			name:       "threshold above storable range",
			in:         ItemInput{Name: "x", LowStockThreshold: model.MaxQuantity + 1},
			setupMocks: func(*repoMocks.MockItemRepository) {},
			wantErr:    ErrInvalidInput,
		},
		{
			name:       "price rounds above storable range",
			in:         ItemInput{Name: "x", Price: decimal.RequireFromString("9999999999.996")},
			setupMocks: func(*repoMocks.MockItemRepository) {},
			wantErr:    ErrInvalidInput,
		},
		{
			name: "repository rejects out of range value",
			in:   ItemInput{Name: "x"},
			setupMocks: func(m *repoMocks.MockItemRepository) {
				m.On("Create", ctx, mock.Anything).Return(nil, repository.ErrOutOfRange)
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:       "missing name",
			in:         ItemInput{Name: "   ", Quantity: 1},
			setupMocks: func(*repoMocks.MockItemRepository) {},
			wantErr:    ErrInvalidInput,
		},
		{
			name:       "negative quantity",
			in:         ItemInput{Name: "x", Quantity: -1},
			setupMocks: func(*repoMocks.MockItemRepository) {},
			wantErr:    ErrInvalidInput,
		},
		{
			name:       "negative price",
			in:         ItemInput{Name: "x", Price: decimal.NewFromInt(-1)},
			setupMocks: func(*repoMocks.MockItemRepository) {},
			wantErr:    ErrInvalidInput,
		},
		{
			name: "repository error",
			in:   ItemInput{Name: "x"},
			setupMocks: func(m *repoMocks.MockItemRepository) {
				m.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErrMsg: "create item: db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockItemRepository)
			n := &recordingNotifier{}
			tt.setupMocks(repo)

			it, err := newTestInventory(repo, nil, n).Create(ctx, "o1", tt.in)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, n.calls)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
				assert.Empty(t, n.calls)
			default:
				require.NoError(t, err)
				tt.check(t, it)
				require.Len(t, n.calls, 1)
				assert.Nil(t, n.calls[0][0])
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestInventoryService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo := new(repoMocks.MockItemRepository)
		repo.On("FindByID", ctx, "o1", "i1").Return(&model.Item{ID: "i1"}, nil)

		it, err := newTestInventory(repo, nil, nil).Get(ctx, "o1", "i1")

		require.NoError(t, err)
		assert.Equal(t, "i1", it.ID)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := newTestInventory(new(repoMocks.MockItemRepository), nil, nil).Get(ctx, "o1", "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(repoMocks.MockItemRepository)
		repo.On("FindByID", ctx, "o1", "i1").Return(nil, repository.ErrNotFound)

		_, err := newTestInventory(repo, nil, nil).Get(ctx, "o1", "i1")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestInventoryService_Update(t *testing.T) {
	ctx := context.Background()
	created := fixedNow.Add(-time.Hour)
	before := &model.Item{ID: "i1", OwnerID: "o1", Name: "Widget", Quantity: 10, LowStockThreshold: 5, CreatedAt: created}

	t.Run("happy path keeps created_at", func(t *testing.T) {
		repo := new(repoMocks.MockItemRepository)
		n := &recordingNotifier{}
		repo.On("FindByID", ctx, "o1", "i1").Return(before, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(it *model.Item) bool {
			return it.Quantity == 2 && it.CreatedAt.Equal(created) && it.UpdatedAt.Equal(fixedNow)
		})).Return(func(_ context.Context, it *model.Item) *model.Item { return it }, nil)

		it, err := newTestInventory(repo, nil, n).Update(ctx, "o1", "i1", ItemInput{Name: "Widget", Quantity: 2})

		require.NoError(t, err)
		assert.Equal(t, 2, it.Quantity)
		require.Len(t, n.calls, 1)
		assert.Equal(t, 10, n.calls[0][0].Quantity)
		assert.Equal(t, 2, n.calls[0][1].Quantity)
		repo.AssertExpectations(t)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := newTestInventory(new(repoMocks.MockItemRepository), nil, nil).Update(ctx, "o1", "", ItemInput{Name: "x"})
		assert.ErrorIs(t, err, ErrIDRequired)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(repoMocks.MockItemRepository)
		repo.On("FindByID", ctx, "o1", "i9").Return(nil, repository.ErrNotFound)

		_, err := newTestInventory(repo, nil, nil).Update(ctx, "o1", "i9", ItemInput{Name: "x"})

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deleted between read and write", func(t *testing.T) {
		repo := new(repoMocks.MockItemRepository)
		repo.On("FindByID", ctx, "o1", "i1").Return(before, nil)
		repo.On("Update", ctx, mock.Anything).Return(nil, repository.ErrNotFound)

		_, err := newTestInventory(repo, nil, nil).Update(ctx, "o1", "i1", ItemInput{Name: "x"})

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestInventoryService_Delete(t *testing.T) {
	ctx := context.Background()

	repo := new(repoMocks.MockItemRepository)
	repo.On("Delete", ctx, "o1", "i1").Return(nil)
	repo.On("Delete", ctx, "o1", "i2").Return(repository.ErrNotFound)
	svc := newTestInventory(repo, nil, nil)

	assert.NoError(t, svc.Delete(ctx, "o1", "i1"))
	assert.ErrorIs(t, svc.Delete(ctx, "o1", "i2"), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "o1", ""), ErrIDRequired)
}

func sampleItems() []model.Item {
	return []model.Item{
		{ID: "1", Name: "Anvil", Category: "Tools", Quantity: 0},
		{ID: "2", Name: "bolt", Category: "Hardware", Quantity: 100},
		{ID: "3", Name: "Hammer", Category: "tools", Quantity: 4},
		{ID: "4", Name: "Tape", Quantity: 50, LowStockThreshold: 60},
	}
}

func TestInventoryService_Snapshot(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		filter  Filter
		wantIDs []string
	}{
		{name: "no filter", filter: Filter{}, wantIDs: []string{"1", "2", "3", "4"}},
		{name: "query is case-insensitive substring", filter: Filter{Query: "AM"}, wantIDs: []string{"3"}},
		{name: "category ignores case", filter: Filter{Category: "TOOLS"}, wantIDs: []string{"1", "3"}},
		{name: "only low stock", filter: Filter{OnlyLowStock: true}, wantIDs: []string{"1", "3", "4"}},
		{name: "combined", filter: Filter{Category: "tools", OnlyLowStock: true, Query: "a"}, wantIDs: []string{"1", "3"}},
		{name: "no match", filter: Filter{Query: "zzz"}, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockItemRepository)
			repo.On("ListByOwner", ctx, "o1").Return(sampleItems(), nil)

			snap, err := newTestInventory(repo, nil, nil).Snapshot(ctx, "o1", tt.filter)

			require.NoError(t, err)
			ids := []string{}
			for _, it := range snap.Items {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, 4, snap.TotalCount)
			assert.Equal(t, 3, snap.LowStockCount)
			assert.Equal(t, []string{"Hardware", "Tools", "tools"}, snap.Categories)
		})
	}
}

func TestInventoryService_SnapshotError(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockItemRepository)
	repo.On("ListByOwner", ctx, "o1").Return(nil, errors.New("db fail"))

	_, err := newTestInventory(repo, nil, nil).Snapshot(ctx, "o1", Filter{})

	assert.EqualError(t, err, "list items: db fail")
}

func TestInventoryService_Categories(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockItemRepository)
	repo.On("ListByOwner", ctx, "o1").Return([]model.Item{{Category: "b"}, {Category: ""}, {Category: "a"}, {Category: "b"}}, nil)

	cats, err := newTestInventory(repo, nil, nil).Categories(ctx, "o1")

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cats)
}

func TestInventoryService_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads csv and presigns", func(t *testing.T) {
		repo := new(repoMocks.MockItemRepository)
		store := new(storeMocks.MockStorage)
		repo.On("ListByOwner", ctx, "o1").Return([]model.Item{
			{ID: "1", Name: "Widget, large", Quantity: 2, Price: decimal.RequireFromString("3.5"), UpdatedAt: fixedNow},
		}, nil)

		var uploaded string
		store.On("Upload", ctx, mock.MatchedBy(func(o storage.Object) bool {
			return o.Key == "exports/o1/20260301T120000Z.csv" && o.ContentType == "text/csv" && o.Size > 0
		}), mock.Anything).Return(func(_ context.Context, o storage.Object, r io.Reader) storage.Stored {
			b, _ := io.ReadAll(r)
			uploaded = string(b)
			return storage.Stored{Key: o.Key, Size: int64(len(b))}
		}, nil)
		store.On("PresignDownload", ctx, "exports/o1/20260301T120000Z.csv", "inventory-20260301.csv", exportURLExpiry).
			Return("https://minio/x", nil)

		res, err := newTestInventory(repo, store, nil).Export(ctx, "o1")

		require.NoError(t, err)
		assert.Equal(t, "https://minio/x", res.URL)
		assert.Equal(t, fixedNow.Add(15*time.Minute), res.ExpiresAt)
		lines := strings.Split(strings.TrimSpace(uploaded), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "id,name,description,category,quantity,price,low_stock_threshold,low_stock,updated_at", lines[0])
		assert.Equal(t, `1,"Widget, large",,,2,3.50,5,true,2026-03-01T12:00:00Z`, lines[1])
		store.AssertExpectations(t)
	})

	t.Run("no storage configured", func(t *testing.T) {
		_, err := newTestInventory(new(repoMocks.MockItemRepository), nil, nil).Export(ctx, "o1")
		assert.ErrorIs(t, err, ErrExportUnavailable)
	})

	t.Run("upload failure", func(t *testing.T) {
		repo := new(repoMocks.MockItemRepository)
		store := new(storeMocks.MockStorage)
		repo.On("ListByOwner", ctx, "o1").Return([]model.Item{}, nil)
		store.On("Upload", ctx, mock.Anything, mock.Anything).Return(storage.Stored{}, errors.New("s3 down"))

		_, err := newTestInventory(repo, store, nil).Export(ctx, "o1")

		assert.EqualError(t, err, "upload export: s3 down")
	})

	t.Run("presign failure removes the upload", func(t *testing.T) {
		repo := new(repoMocks.MockItemRepository)
		store := new(storeMocks.MockStorage)
		repo.On("ListByOwner", ctx, "o1").Return([]model.Item{}, nil)
		store.On("Upload", ctx, mock.Anything, mock.Anything).Return(storage.Stored{Key: "exports/o1/x.csv"}, nil)
		store.On("PresignDownload", ctx, "exports/o1/x.csv", mock.Anything, exportURLExpiry).Return("", errors.New("clock skew"))
		store.On("Remove", ctx, "exports/o1/x.csv").Return(nil).Once()

		_, err := newTestInventory(repo, store, nil).Export(ctx, "o1")

		assert.EqualError(t, err, "presign export: clock skew")
		store.AssertExpectations(t)
	})
}
