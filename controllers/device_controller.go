package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/hireboard_notifications/apperrors"
	"github.com/HSouheill/hireboard_notifications/middleware"
	"github.com/HSouheill/hireboard_notifications/models"
	"github.com/HSouheill/hireboard_notifications/services"
	"github.com/HSouheill/hireboard_notifications/utils"
)

// DeviceController manages the caller's push tokens.
type DeviceController struct {
	registry *services.TokenRegistry
}

func NewDeviceController(registry *services.TokenRegistry) *DeviceController {
	return &DeviceController{registry: registry}
}

func (dc *DeviceController) bind(c echo.Context) (string, models.RegisterDeviceRequest, error) {
	var req models.RegisterDeviceRequest
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return "", req, apperrors.ErrUnauthorized
	}
	if err := c.Bind(&req); err != nil {
		return "", req, badRequest(err)
	}
	req.Token = utils.SanitizeInput(req.Token)
	if err := c.Validate(&req); err != nil {
		return "", req, apperrors.Validation("Invalid device registration").WithDetails(utils.ValidationDetails(err))
	}
	return p.ID, req, nil
}

// RegisterDevice handles POST register-device. Repeating it is harmless.
func (dc *DeviceController) RegisterDevice(c echo.Context) error {
	userID, req, err := dc.bind(c)
	if err != nil {
		return err
	}
	if err := dc.registry.Register(c.Request().Context(), userID, req.Token, req.Platform); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Device registered",
	})
}

// UnregisterDevice handles DELETE register-device.
func (dc *DeviceController) UnregisterDevice(c echo.Context) error {
	userID, req, err := dc.bind(c)
	if err != nil {
		return err
	}
	if err := dc.registry.Unregister(c.Request().Context(), userID, req.Token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Device unregistered",
	})
}
