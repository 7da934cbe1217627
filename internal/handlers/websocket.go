package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	ws "github.com/thereayou/blog-api/internal/websocket"
)

// FeedHandler upgrades clients onto the live record feed.
type FeedHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *logrus.Logger
}

// NewFeedHandler accepts any origin when origins is empty or contains "*".
func NewFeedHandler(hub *ws.Hub, origins []string, logger *logrus.Logger) *FeedHandler {
	return &FeedHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(origins) == 0 || slices.Contains(origins, "*") {
					return true
				}
				return slices.Contains(origins, origin)
			},
		},
	}
}

func (h *FeedHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Debug("feed upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
