package handlers

import (
	"net/http"
	"time"

	"lookup_bot/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const statsPushInterval = 5 * time.Second

// StatsWS streams periodic stats snapshots to an admin dashboard until
// the peer goes away.
func (h *Handler) StatsWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// drain control frames so pongs and closes are processed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statsPushInterval)
	defer ticker.Stop()

	if err := conn.WriteJSON(h.Ledger.Stats()); err != nil {
		return
	}
	for range ticker.C {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(h.Ledger.Stats()); err != nil {
			return
		}
	}
}
