package ws

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler provides HTTP handlers for WebSocket connections.
type Handler struct {
	hub *Hub
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// HandleUpgrade upgrades an HTTP connection to WebSocket and starts the feed.
// Path: /ws
func (h *Handler) HandleUpgrade(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ WebSocket upgrade error: %v", err)
		return
	}

	client := NewClient(h.hub, conn)
	h.hub.Register(client)
	log.Printf("📱 WS connection established: %s", client.ID())

	go client.WritePump()
	go client.ReadPump()
}

// HandleStats returns WebSocket connection statistics.
func (h *Handler) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connections": h.hub.ClientCount(),
	})
}
