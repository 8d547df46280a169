package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/hireboard_notifications/models"
)

type SyncController struct {
	settings models.SyncSettings
}

func NewSyncController(settings models.SyncSettings) *SyncController {
	return &SyncController{settings: settings}
}

// Settings returns the refetch cadence clients should follow.
func (sc *SyncController) Settings(c echo.Context) error {
	return c.JSON(http.StatusOK, sc.settings)
}
