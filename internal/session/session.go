// Package session stores login sessions keyed by their opaque bearer token.
package session

import (
	"context"
	"errors"

	"smartinventory/internal/model"
)

// ErrNotFound is returned by Get when the token is unknown.
var ErrNotFound = errors.New("session not found")

// Store persists sessions. Implementations need not purge expired sessions on Get;
// callers check Session.Expired.
type Store interface {
	Save(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, token string) (*model.Session, error)
	// Delete removes the session; unknown tokens are not an error.
	Delete(ctx context.Context, token string) error
}
