package handler

import (
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/notify"

	"github.com/gin-gonic/gin"
)

// WebSocket attaches the connection to hub. Delivery is fire-and-forget;
// nothing is replayed to late subscribers.
func WebSocket(hub *notify.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	}
}
