package handler

import (
	"github.com/gofiber/fiber/v2"

	"smartinventory/internal/http/middleware"
	"smartinventory/internal/service"
)

type registerRequest struct {
	Username string `json:"username" validate:"max=64"`
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password" validate:"max=128"`
}

type loginRequest struct {
	Username string `json:"username" validate:"max=64"`
	Password string `json:"password" validate:"max=128"`
}

// Register godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "account"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		res, err := svc.Register(c.UserContext(), req.Username, req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credentials"
// @Success 200 {object} service.AuthResult
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Router /auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		res, err := svc.Login(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Logout godoc
// @Summary End the current session
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Router /auth/logout [post]
func Logout(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, _ := c.Locals(middleware.TokenLocalKey).(string)
		if err := svc.Logout(c.UserContext(), token); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
