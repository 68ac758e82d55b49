package handler

import (
	"github.com/gofiber/fiber/v2"

	"smartinventory/internal/model"
	"smartinventory/internal/service"
)

type alertSettingsResponse struct {
	*model.AlertSettings
	CanSend bool `json:"can_send"`
}

// GetAlertSettings godoc
// @Summary Current SMS alert settings
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} alertSettingsResponse
// @Router /alerts/settings [get]
func GetAlertSettings(svc service.AlertService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.GetSettings(c.UserContext(), ownerID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(alertSettingsResponse{AlertSettings: st, CanSend: svc.CanSend(st)})
	}
}

// UpdateAlertSettings godoc
// @Summary Save SMS alert settings
// @Description Omitted fields keep their current values. Enabling alerts requires a phone number.
// @Tags alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SettingsInput true "settings"
// @Success 200 {object} alertSettingsResponse
// @Failure 400 {object} errorPayload
// @Router /alerts/settings [put]
func UpdateAlertSettings(svc service.AlertService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.SettingsInput
		if ok, err := bindJSON(c, &in); !ok {
			return err
		}
		st, err := svc.UpdateSettings(c.UserContext(), ownerID(c), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(alertSettingsResponse{AlertSettings: st, CanSend: svc.CanSend(st)})
	}
}

// ClearAlertSettings godoc
// @Summary Reset SMS alert settings to defaults
// @Tags alerts
// @Security BearerAuth
// @Success 204
// @Router /alerts/settings [delete]
func ClearAlertSettings(svc service.AlertService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.ClearSettings(c.UserContext(), ownerID(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SendTestAlert godoc
// @Summary Send a test SMS
// @Description 409 SMS_UNAVAILABLE carries an smsto: composer link when the gateway cannot send.
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Success 202 {object} service.TestResult
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /alerts/test [post]
func SendTestAlert(svc service.AlertService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.SendTest(c.UserContext(), ownerID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(res)
	}
}
