package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"podbrief/internal/api/middleware"
	"podbrief/internal/app/events"
)

// EventHandler streams job status changes over a websocket.
type EventHandler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewEventHandler(hub *events.Hub, allowedOrigins []string, logger *zap.Logger) *EventHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &EventHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		logger: logger,
	}
}

// Jobs handles GET /api/v1/ws/jobs
//
// @Summary Job status events (websocket)
// @Tags jobs
// @Security BearerAuth
// @Router /ws/jobs [get]
func (h *EventHandler) Jobs(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	<-h.hub.Register(middleware.UserID(c), conn)
}
