package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartinventory/internal/model"
	"smartinventory/internal/repository"
	"smartinventory/internal/storage"
)

const exportURLExpiry = 15 * time.Minute

// ItemInput carries the writable fields of an item.
type ItemInput struct {
	Name              string          `json:"name" validate:"required,max=200"`
	Description       string          `json:"description" validate:"max=2000"`
	Category          string          `json:"category" validate:"max=100"`
	Quantity          int             `json:"quantity" validate:"gte=0,lte=2147483647"`
	Price             decimal.Decimal `json:"price"`
	LowStockThreshold int             `json:"low_stock_threshold" validate:"lte=2147483647"`
}

// Filter narrows a Snapshot. Zero values disable each criterion.
type Filter struct {
	Query        string
	Category     string
	OnlyLowStock bool
}

// Snapshot is the full inventory view returned after reloads.
// Counts cover the whole inventory, not just the filtered items.
type Snapshot struct {
	Items         []model.Item `json:"items"`
	TotalCount    int          `json:"total_count"`
	LowStockCount int          `json:"low_stock_count"`
	Categories    []string     `json:"categories"`
}

// ExportResult points at an uploaded CSV export.
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StockNotifier is told about every item write so it can raise stock alerts.
type StockNotifier interface {
	NotifyStockChange(ctx context.Context, userID string, before, after *model.Item)
}

// InventoryService defines the per-owner inventory use cases.
type InventoryService interface {
	Create(ctx context.Context, ownerID string, in ItemInput) (*model.Item, error)
	Get(ctx context.Context, ownerID, id string) (*model.Item, error)
	Update(ctx context.Context, ownerID, id string, in ItemInput) (*model.Item, error)
	Delete(ctx context.Context, ownerID, id string) error
	Snapshot(ctx context.Context, ownerID string, f Filter) (*Snapshot, error)
	Categories(ctx context.Context, ownerID string) ([]string, error)
	// Export writes the inventory as CSV to object storage and returns a presigned download URL.
	Export(ctx context.Context, ownerID string) (*ExportResult, error)
}

type inventoryService struct {
	items    repository.ItemRepository
	store    storage.Storage
	notifier StockNotifier
	log      *zap.Logger
	now      func() time.Time
}

// NewInventoryService constructs an InventoryService. store and notifier may be nil.
func NewInventoryService(items repository.ItemRepository, store storage.Storage, notifier StockNotifier, log *zap.Logger) InventoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &inventoryService{
		items:    items,
		store:    store,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func normalize(in ItemInput) (ItemInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)

	switch {
	case in.Name == "":
		return in, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case in.Quantity < 0:
		return in, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	case in.Quantity > model.MaxQuantity:
		return in, fmt.Errorf("%w: quantity must be at most %d", ErrInvalidInput, model.MaxQuantity)
	case in.LowStockThreshold > model.MaxQuantity:
		return in, fmt.Errorf("%w: low_stock_threshold must be at most %d", ErrInvalidInput, model.MaxQuantity)
	case in.Price.IsNegative():
		return in, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if in.LowStockThreshold <= 0 {
		in.LowStockThreshold = model.DefaultLowStockThreshold
	}
	in.Price = in.Price.Round(2)
	if in.Price.GreaterThan(model.MaxPrice) {
		return in, fmt.Errorf("%w: price must be at most %s", ErrInvalidInput, model.MaxPrice.StringFixed(2))
	}
	return in, nil
}

func (s *inventoryService) Create(ctx context.Context, ownerID string, in ItemInput) (*model.Item, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	now := s.now()
	item := &model.Item{
		ID:                uuid.New().String(),
		OwnerID:           ownerID,
		Name:              in.Name,
		Description:       in.Description,
		Category:          in.Category,
		Quantity:          in.Quantity,
		Price:             in.Price,
		LowStockThreshold: in.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	created, err := s.items.Create(ctx, item)
	if err != nil {
		if errors.Is(err, repository.ErrOutOfRange) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("create item: %w", err)
	}
	s.notify(ctx, ownerID, nil, created)
	return created, nil
}

func (s *inventoryService) Get(ctx context.Context, ownerID, id string) (*model.Item, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	item, err := s.items.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) Update(ctx context.Context, ownerID, id string, in ItemInput) (*model.Item, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	before, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	next := *before
	next.Name = in.Name
	next.Description = in.Description
	next.Category = in.Category
	next.Quantity = in.Quantity
	next.Price = in.Price
	next.LowStockThreshold = in.LowStockThreshold
	next.UpdatedAt = s.now()

	updated, err := s.items.Update(ctx, &next)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, repository.ErrOutOfRange) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	s.notify(ctx, ownerID, before, updated)
	return updated, nil
}

func (s *inventoryService) Delete(ctx context.Context, ownerID, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.items.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *inventoryService) Snapshot(ctx context.Context, ownerID string, f Filter) (*Snapshot, error) {
	all, err := s.items.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	snap := &Snapshot{
		Items:      make([]model.Item, 0, len(all)),
		TotalCount: len(all),
		Categories: categoriesOf(all),
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))
	category := strings.TrimSpace(f.Category)

	for _, it := range all {
		if it.IsLowStock() {
			snap.LowStockCount++
		}
		if query != "" && !strings.Contains(strings.ToLower(it.Name), query) {
			continue
		}
		if category != "" && !strings.EqualFold(it.Category, category) {
			continue
		}
		if f.OnlyLowStock && !it.IsLowStock() {
			continue
		}
		snap.Items = append(snap.Items, it)
	}
	return snap, nil
}

func (s *inventoryService) Categories(ctx context.Context, ownerID string) ([]string, error) {
	all, err := s.items.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return categoriesOf(all), nil
}

func categoriesOf(items []model.Item) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, it := range items {
		if it.Category == "" {
			continue
		}
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		out = append(out, it.Category)
	}
	sort.Strings(out)
	return out
}

var exportHeader = []string{"id", "name", "description", "category", "quantity", "price", "low_stock_threshold", "low_stock", "updated_at"}

func (s *inventoryService) Export(ctx context.Context, ownerID string) (*ExportResult, error) {
	if s.store == nil {
		return nil, ErrExportUnavailable
	}
	all, err := s.items.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(exportHeader)
	for _, it := range all {
		_ = w.Write([]string{
			it.ID,
			it.Name,
			it.Description,
			it.Category,
			strconv.Itoa(it.Quantity),
			it.Price.StringFixed(2),
			strconv.Itoa(it.EffectiveThreshold()),
			strconv.FormatBool(it.IsLowStock()),
			it.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}

	now := s.now()
	key := fmt.Sprintf("exports/%s/%s.csv", ownerID, now.Format("20060102T150405Z"))
	stored, err := s.store.Upload(ctx, storage.Object{
		Key:         key,
		ContentType: "text/csv",
		Size:        int64(buf.Len()),
		Metadata:    map[string]string{"owner-id": ownerID},
	}, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	filename := "inventory-" + now.Format("20060102") + ".csv"
	url, err := s.store.PresignDownload(ctx, stored.Key, filename, exportURLExpiry)
	if err != nil {
		// an export nobody can download is garbage
		if rmErr := s.store.Remove(ctx, stored.Key); rmErr != nil {
			s.log.Warn("export_cleanup_failed", zap.String("key", stored.Key), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("presign export: %w", err)
	}
	s.log.Info("inventory_exported", zap.String("owner_id", ownerID), zap.String("key", stored.Key),
		zap.Int("items", len(all)), zap.Int64("bytes", stored.Size))
	return &ExportResult{Key: stored.Key, URL: url, ExpiresAt: now.Add(exportURLExpiry)}, nil
}

func (s *inventoryService) notify(ctx context.Context, ownerID string, before, after *model.Item) {
	if s.notifier == nil || after == nil {
		return
	}
	s.notifier.NotifyStockChange(ctx, ownerID, before, after)
}
