package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"smartinventory/internal/http/middleware"
	"smartinventory/internal/service"
)

func ownerID(c *fiber.Ctx) string {
	if u := middleware.CurrentUser(c); u != nil {
		return u.ID
	}
	return ""
}

func filterFromQuery(c *fiber.Ctx) service.Filter {
	return service.Filter{
		Query:        c.Query("q"),
		Category:     c.Query("category"),
		OnlyLowStock: c.QueryBool("low_stock", false),
	}
}

// itemID validates the :id path parameter. ok=false means the response is already written.
func itemID(c *fiber.Ctx) (string, bool, error) {
	id := c.Params("id")
	if id == "" {
		return "", false, writeError(c, fiber.StatusBadRequest, "MISSING_ID", "id is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false, writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	return id, true, nil
}

// respondWithReload answers a write with the reloaded inventory when ?reload=true, else with fallback.
func respondWithReload(c *fiber.Ctx, svc service.InventoryService, status int, fallback any) error {
	if !c.QueryBool("reload", false) {
		if fallback == nil {
			return c.SendStatus(status)
		}
		return c.Status(status).JSON(fallback)
	}
	snap, err := svc.Snapshot(c.UserContext(), ownerID(c), filterFromQuery(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	if status == fiber.StatusNoContent {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(snap)
}

// ListItems godoc
// @Summary List the inventory
// @Description Items ordered by name, with total and low-stock counts over the whole inventory.
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param q query string false "name substring (case-insensitive)"
// @Param category query string false "category (case-insensitive)"
// @Param low_stock query bool false "only low-stock items"
// @Success 200 {object} service.Snapshot
// @Router /items [get]
func ListItems(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := svc.Snapshot(c.UserContext(), ownerID(c), filterFromQuery(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(snap)
	}
}

// CreateItem godoc
// @Summary Add an item
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reload query bool false "respond with the reloaded inventory"
// @Param body body service.ItemInput true "item"
// @Success 201 {object} model.Item
// @Failure 400 {object} errorPayload
// @Router /items [post]
func CreateItem(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ItemInput
		if ok, err := bindJSON(c, &in); !ok {
			return err
		}
		item, err := svc.Create(c.UserContext(), ownerID(c), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return respondWithReload(c, svc, fiber.StatusCreated, item)
	}
}

// GetItem godoc
// @Summary Get an item
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param id path string true "item id"
// @Success 200 {object} model.Item
// @Failure 404 {object} errorPayload
// @Router /items/{id} [get]
func GetItem(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := itemID(c)
		if !ok {
			return err
		}
		item, err := svc.Get(c.UserContext(), ownerID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(item)
	}
}

// UpdateItem godoc
// @Summary Replace an item's fields
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "item id"
// @Param reload query bool false "respond with the reloaded inventory"
// @Param body body service.ItemInput true "item"
// @Success 200 {object} model.Item
// @Failure 404 {object} errorPayload
// @Router /items/{id} [put]
func UpdateItem(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := itemID(c)
		if !ok {
			return err
		}
		var in service.ItemInput
		if ok, err := bindJSON(c, &in); !ok {
			return err
		}
		item, err := svc.Update(c.UserContext(), ownerID(c), id, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return respondWithReload(c, svc, fiber.StatusOK, item)
	}
}

// DeleteItem godoc
// @Summary Delete an item
// @Tags items
// @Security BearerAuth
// @Param id path string true "item id"
// @Param reload query bool false "respond with the reloaded inventory"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /items/{id} [delete]
func DeleteItem(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := itemID(c)
		if !ok {
			return err
		}
		if err := svc.Delete(c.UserContext(), ownerID(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return respondWithReload(c, svc, fiber.StatusNoContent, nil)
	}
}

// ListCategories godoc
// @Summary Distinct item categories
// @Tags items
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]string
// @Router /categories [get]
func ListCategories(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := svc.Categories(c.UserContext(), ownerID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"categories": cats})
	}
}

// ExportItems godoc
// @Summary Export the inventory as CSV
// @Description Uploads a CSV to object storage and returns a presigned URL valid for 15 minutes.
// @Tags items
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.ExportResult
// @Failure 503 {object} errorPayload
// @Router /items/export [post]
func ExportItems(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Export(c.UserContext(), ownerID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}
