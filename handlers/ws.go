package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
)

// WSHandler pushes "the ledger changed" signals to clients watching a
// group, so balances and simplified debts can be refetched live.
type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		groupID, _ := s.Get("group_id")
		slog.Debug("ws client connected", "group_id", groupID)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		groupID, _ := s.Get("group_id")
		slog.Debug("ws client disconnected", "group_id", groupID)
	})

	m.HandleError(func(s *melody.Session, err error) {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return
		}
		slog.Warn("ws error", "error", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the request and pins the session to its group.
func (h *WSHandler) HandleWS(c *gin.Context) {
	groupID := c.Param("id")

	keys := map[string]interface{}{"group_id": groupID}
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		slog.Warn("ws upgrade failed", "group_id", groupID, "error", err)
	}
}

// BroadcastLedgerChanged signals every client watching the group.
func (h *WSHandler) BroadcastLedgerChanged(groupID, event, userID string) {
	msg, err := json.Marshal(gin.H{"type": event, "group_id": groupID, "user": userID})
	if err != nil {
		return
	}

	err = h.M.BroadcastFilter(msg, func(q *melody.Session) bool {
		id, exists := q.Get("group_id")
		return exists && id == groupID
	})
	if err != nil {
		slog.Warn("ws broadcast failed", "group_id", groupID, "error", err)
	}
}
