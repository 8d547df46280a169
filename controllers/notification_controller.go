package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/hireboard_notifications/apperrors"
	"github.com/HSouheill/hireboard_notifications/middleware"
	"github.com/HSouheill/hireboard_notifications/models"
	"github.com/HSouheill/hireboard_notifications/services"
)

// Paging holds the page size settings of list endpoints.
type Paging struct {
	DefaultPageSize int
	MaxPageSize     int
}

// NotificationController serves one audience's inbox to its owner.
type NotificationController struct {
	inbox   services.Inbox
	present models.NotificationView
	paging  Paging
}

func NewNotificationController(inbox services.Inbox, paging Paging) *NotificationController {
	if paging.DefaultPageSize <= 0 {
		paging.DefaultPageSize = models.DefaultPageSize
	}
	if paging.MaxPageSize <= 0 {
		paging.MaxPageSize = models.MaxPageSize
	}
	return &NotificationController{inbox: inbox, present: models.ViewFor(inbox.Audience()), paging: paging}
}

// owner resolves the caller and checks it owns this audience's inbox.
func (nc *NotificationController) owner(c echo.Context) (string, error) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return "", apperrors.ErrUnauthorized
	}
	if audience, ok := p.Audience(); !ok || audience != nc.inbox.Audience() {
		return "", apperrors.ErrForbidden
	}
	return p.ID, nil
}

// ListNotifications handles GET ?current&pageSize&sort.
func (nc *NotificationController) ListNotifications(c echo.Context) error {
	ownerID, err := nc.owner(c)
	if err != nil {
		return err
	}

	q, err := nc.parseListQuery(c)
	if err != nil {
		return err
	}

	records, meta, err := nc.inbox.List(c.Request().Context(), ownerID, q)
	if err != nil {
		return err
	}

	result := make([]interface{}, 0, len(records))
	for _, n := range records {
		result = append(result, nc.present(n))
	}
	return c.JSON(http.StatusOK, models.Page[interface{}]{Meta: meta, Result: result})
}

func (nc *NotificationController) parseListQuery(c echo.Context) (models.ListQuery, error) {
	var q models.ListQuery
	var err error

	if raw := c.QueryParam("current"); raw != "" {
		if q.Current, err = strconv.Atoi(raw); err != nil || q.Current < 1 {
			return q, apperrors.Validation("current must be a positive integer")
		}
	}
	if raw := c.QueryParam("pageSize"); raw != "" {
		if q.PageSize, err = strconv.Atoi(raw); err != nil || q.PageSize < 1 {
			return q, apperrors.Validation("pageSize must be a positive integer")
		}
	}
	if q.Sort, err = models.ParseSort(c.QueryParam("sort")); err != nil {
		return q, apperrors.Validation(err.Error())
	}
	return q.Normalize(nc.paging.DefaultPageSize, nc.paging.MaxPageSize), nil
}

func (nc *NotificationController) UnreadCount(c echo.Context) error {
	ownerID, err := nc.owner(c)
	if err != nil {
		return err
	}
	count, err := nc.inbox.CountUnread(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.UnreadCount{Count: count})
}

// MarkAsRead handles PATCH /:id/read. Missing and foreign ids are both 404.
func (nc *NotificationController) MarkAsRead(c echo.Context) error {
	ownerID, err := nc.owner(c)
	if err != nil {
		return err
	}
	if err := nc.inbox.MarkRead(c.Request().Context(), ownerID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification marked as read",
	})
}

func (nc *NotificationController) MarkAllAsRead(c echo.Context) error {
	ownerID, err := nc.owner(c)
	if err != nil {
		return err
	}
	if err := nc.inbox.MarkAllRead(c.Request().Context(), ownerID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "All notifications marked as read",
	})
}
