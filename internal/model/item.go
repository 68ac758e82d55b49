package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold applies to items stored without a positive threshold.
const DefaultLowStockThreshold = 5

// MaxQuantity bounds quantity and threshold so every backend can store them (Postgres INTEGER).
const MaxQuantity = math.MaxInt32

// MaxPrice is the largest price that fits NUMERIC(12,2).
var MaxPrice = decimal.RequireFromString("9999999999.99")

// Item is a single inventory record owned by one user.
// It carries no persistence tags; each repository maps it to its own row or document shape.
type Item struct {
	ID                string          `json:"id"`
	OwnerID           string          `json:"owner_id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// EffectiveThreshold returns the configured threshold, or the default when unset.
func (i Item) EffectiveThreshold() int {
	if i.LowStockThreshold > 0 {
		return i.LowStockThreshold
	}
	return DefaultLowStockThreshold
}

// IsLowStock reports whether the quantity is at or below the threshold.
func (i Item) IsLowStock() bool {
	return i.Quantity <= i.EffectiveThreshold()
}

// IsOutOfStock reports whether no units are left.
func (i Item) IsOutOfStock() bool {
	return i.Quantity == 0
}
