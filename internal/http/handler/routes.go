package handler

import (
	"github.com/gofiber/fiber/v2"

	"smartinventory/internal/http/middleware"
	"smartinventory/internal/service"
)

// Services groups the use cases the HTTP layer depends on.
type Services struct {
	Auth      service.AuthService
	Inventory service.InventoryService
	Alerts    service.AlertService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parse, validate, call a service, map errors.
func RegisterRoutes(app *fiber.App, svcs Services, checks map[string]Check) {
	app.Get("/health", HealthCheck(checks))
	app.Get("/healthz", LivenessProbe())

	auth := app.Group("/auth")
	auth.Post("/register", Register(svcs.Auth))
	auth.Post("/login", Login(svcs.Auth))

	requireAuth := middleware.RequireAuth(svcs.Auth, AuthError)
	auth.Post("/logout", requireAuth, Logout(svcs.Auth))

	items := app.Group("/items", requireAuth)
	items.Get("/", ListItems(svcs.Inventory))
	items.Post("/", CreateItem(svcs.Inventory))
	items.Post("/export", ExportItems(svcs.Inventory))
	items.Get("/:id", GetItem(svcs.Inventory))
	items.Put("/:id", UpdateItem(svcs.Inventory))
	items.Delete("/:id", DeleteItem(svcs.Inventory))

	app.Get("/categories", requireAuth, ListCategories(svcs.Inventory))

	alerts := app.Group("/alerts", requireAuth)
	alerts.Get("/settings", GetAlertSettings(svcs.Alerts))
	alerts.Put("/settings", UpdateAlertSettings(svcs.Alerts))
	alerts.Delete("/settings", ClearAlertSettings(svcs.Alerts))
	alerts.Post("/test", SendTestAlert(svcs.Alerts))
}
