package controllers

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/hireboard_notifications/apperrors"
	"github.com/HSouheill/hireboard_notifications/middleware"
	"github.com/HSouheill/hireboard_notifications/websocket"
)

type WSController struct {
	hub *websocket.Hub
}

func NewWSController(hub *websocket.Hub) *WSController {
	return &WSController{hub: hub}
}

// Connect upgrades the caller to a socket on its own audience's channel.
func (wc *WSController) Connect(c echo.Context) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return apperrors.ErrUnauthorized
	}
	audience, ok := p.Audience()
	if !ok {
		return apperrors.ErrForbidden
	}
	return websocket.HandleWebSocket(c, wc.hub, p.ID, audience)
}
