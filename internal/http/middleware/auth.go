package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"smartinventory/internal/model"
)

const (
	// UserLocalKey holds the authenticated *model.User.
	UserLocalKey = "user"
	// UserIDLocalKey holds the authenticated user's ID.
	UserIDLocalKey = "user_id"
	// TokenLocalKey holds the raw bearer token.
	TokenLocalKey = "token"
)

// Authenticator resolves bearer tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer <token>" header.
// onError renders the failure; it receives the Authenticate error (nil for a missing header).
func RequireAuth(auth Authenticator, onError func(c *fiber.Ctx, err error) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return onError(c, nil)
		}
		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return onError(c, err)
		}
		c.Locals(UserLocalKey, user)
		c.Locals(UserIDLocalKey, user.ID)
		c.Locals(TokenLocalKey, token)
		return c.Next()
	}
}

// BearerToken extracts the token from the Authorization header, or "".
func BearerToken(c *fiber.Ctx) string {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// CurrentUser returns the user stored by RequireAuth.
func CurrentUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(UserLocalKey).(*model.User)
	return u
}
