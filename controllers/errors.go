package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/hireboard_notifications/apperrors"
	"github.com/HSouheill/hireboard_notifications/models"
)

// HTTPErrorHandler renders AppError and echo.HTTPError values as a
// models.Response envelope.
func HTTPErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := apperrors.ErrInternal.HTTPCode
		message := apperrors.ErrInternal.Message
		var data interface{}

		var appErr *apperrors.AppError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = apperrors.HTTPStatus(appErr)
			message = appErr.Message
			data = appErr.Details
		case errors.As(err, &httpErr):
			status = httpErr.Code
			message = fmt.Sprint(httpErr.Message)
		}

		entry := log.WithFields(logrus.Fields{"method": c.Request().Method, "path": c.Path(), "status": status})
		if status >= http.StatusInternalServerError {
			entry.WithError(err).Error("request failed")
		} else {
			entry.WithError(err).Debug("request rejected")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, models.Response{Status: status, Message: message, Data: data})
		}
		if err != nil {
			log.WithError(err).Error("failed to write error response")
		}
	}
}

// badRequest wraps a bind failure as a validation error.
func badRequest(err error) error {
	return apperrors.Wrap(err, apperrors.CodeValidation, "Invalid request body", http.StatusBadRequest)
}
