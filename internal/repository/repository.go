// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, mongodb) and contain no business logic.
package repository

import (
	"context"
	"errors"

	"smartinventory/internal/model"
)

var (
	// ErrNotFound is returned when the requested row or document does not exist
	// (or is not visible to the requesting owner).
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	// The wrapping error names the conflicting field.
	ErrDuplicate = errors.New("duplicate record")
	// ErrOutOfRange is returned when a value does not fit the column that stores it.
	ErrOutOfRange = errors.New("value out of range")
)

// DuplicateError reports which unique field collided.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string { return "duplicate " + e.Field }

// Is lets errors.Is(err, ErrDuplicate) match any DuplicateError.
func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// ItemRepository defines per-owner persistence for inventory items.
type ItemRepository interface {
	// Create inserts a new item. The caller provides ID and timestamps.
	Create(ctx context.Context, item *model.Item) (*model.Item, error)

	// FindByID returns the owner's item or ErrNotFound.
	FindByID(ctx context.Context, ownerID, id string) (*model.Item, error)

	// ListByOwner returns every item of the owner ordered by name (case-insensitive), then id.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Item, error)

	// Update overwrites the mutable fields of an existing item; ErrNotFound if it does not exist.
	Update(ctx context.Context, item *model.Item) (*model.Item, error)

	// Delete removes the owner's item; ErrNotFound if nothing was deleted.
	Delete(ctx context.Context, ownerID, id string) error
}

// UserRepository defines persistence for accounts.
type UserRepository interface {
	// Create inserts a user; unique collisions return a *DuplicateError for "username" or "email".
	Create(ctx context.Context, user *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// AlertSettingsRepository defines persistence for per-user SMS alert settings.
type AlertSettingsRepository interface {
	// Get returns the stored settings, or ErrNotFound when the user never saved any.
	Get(ctx context.Context, userID string) (*model.AlertSettings, error)
	Upsert(ctx context.Context, s *model.AlertSettings) (*model.AlertSettings, error)
	// Delete removes stored settings; missing settings are not an error.
	Delete(ctx context.Context, userID string) error
	// ListEnabled returns settings with sending enabled and a phone number set.
	ListEnabled(ctx context.Context) ([]model.AlertSettings, error)
}
