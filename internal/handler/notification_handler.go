package handler

import (
	"notesheet/internal/pkg/logger"
	internalWS "notesheet/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// NotificationHandler streams store events, the unsaved indicator and push
// notifications to browser tabs over a websocket.
type NotificationHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewNotificationHandler(hub *internalWS.Hub, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *NotificationHandler) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	r.Get("/ws", guard, h.ServeWs)
}

// ServeWs upgrades the request and hands the connection to the hub.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	clientID := uuid.NewString()
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("NotificationHandler", "Starting WebSocket session", map[string]interface{}{"client_id": clientID})
		internalWS.ServeWs(h.hub, conn, clientID)
		h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"client_id": clientID})
	})(c)
}
