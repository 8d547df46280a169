package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/hireboard_notifications/models"
)

// Notifier is the write side of one audience.
type Notifier[E any] interface {
	Notify(ctx context.Context, ownerID string, event E) (*models.Notification, error)
}

// EventController turns business events from the application service into
// notifications.
type EventController struct {
	applicants Notifier[models.ApplicationStatusChanged]
	recruiters Notifier[models.ApplicationCreated]
}

func NewEventController(applicants Notifier[models.ApplicationStatusChanged], recruiters Notifier[models.ApplicationCreated]) *EventController {
	return &EventController{applicants: applicants, recruiters: recruiters}
}

// ApplicationStatusChanged notifies the applicant.
func (ec *EventController) ApplicationStatusChanged(c echo.Context) error {
	var ev models.ApplicationStatusChanged
	if err := c.Bind(&ev); err != nil {
		return badRequest(err)
	}
	n, err := ec.applicants.Notify(c.Request().Context(), ev.ApplicantID, ev)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Notification created",
		Data:    models.ApplicantView(*n),
	})
}

// ApplicationCreated notifies the HR owner of the posting.
func (ec *EventController) ApplicationCreated(c echo.Context) error {
	var ev models.ApplicationCreated
	if err := c.Bind(&ev); err != nil {
		return badRequest(err)
	}
	n, err := ec.recruiters.Notify(c.Request().Context(), ev.HRID, ev)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Notification created",
		Data:    models.HRView(*n),
	})
}
