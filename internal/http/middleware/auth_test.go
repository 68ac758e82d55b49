package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"smartinventory/internal/model"
)

type stubAuth struct {
	token string
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	if token == s.token {
		return &model.User{ID: "u1", Username: "alice"}, nil
	}
	return nil, errors.New("unauthorized")
}

func TestRequireAuth(t *testing.T) {
	var gotErr error
	onError := func(c *fiber.Ctx, err error) error {
		gotErr = err
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	app := fiber.New()
	app.Use(RequireAuth(stubAuth{token: "good"}, onError))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(CurrentUser(c).Username + ":" + c.Locals(TokenLocalKey).(string))
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantErr    bool
	}{
		{name: "valid token", header: "Bearer good", wantStatus: fiber.StatusOK},
		{name: "case-insensitive scheme", header: "bearer good", wantStatus: fiber.StatusOK},
		{name: "missing header", header: "", wantStatus: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", wantStatus: fiber.StatusUnauthorized},
		{name: "bad token", header: "Bearer bad", wantStatus: fiber.StatusUnauthorized, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotErr = nil
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, _ := app.Test(req)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantErr, gotErr != nil)
		})
	}
}

func TestCurrentUser_Missing(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Nil(t, CurrentUser(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
