package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/hireboard_notifications/apperrors"
	"github.com/HSouheill/hireboard_notifications/models"
	"github.com/HSouheill/hireboard_notifications/services"
)

// AdminController exposes administrative inbox operations.
type AdminController struct {
	inboxes map[models.Audience]services.Inbox
}

func NewAdminController(inboxes ...services.Inbox) *AdminController {
	ac := &AdminController{inboxes: make(map[models.Audience]services.Inbox, len(inboxes))}
	for _, inbox := range inboxes {
		ac.inboxes[inbox.Audience()] = inbox
	}
	return ac
}

// MarkAllUnread handles PATCH /api/admin/notifications/unread-all?ownerId&audience.
func (ac *AdminController) MarkAllUnread(c echo.Context) error {
	ownerID := c.QueryParam("ownerId")
	if ownerID == "" {
		return apperrors.Validation("ownerId is required")
	}
	audience := models.Audience(c.QueryParam("audience"))
	inbox, ok := ac.inboxes[audience]
	if !ok {
		return apperrors.Validation("audience must be applicant or recruiter")
	}

	if err := inbox.MarkAllUnread(c.Request().Context(), ownerID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "All notifications marked as unread",
	})
}
