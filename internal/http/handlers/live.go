package handlers

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yungbote/overlay-backend/internal/http/response"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
	"github.com/yungbote/overlay-backend/internal/realtime"
)

var groupPattern = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

type LiveHandler struct {
	log      *logger.Logger
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

func NewLiveHandler(log *logger.Logger, hub *realtime.Hub) *LiveHandler {
	return &LiveHandler{
		log: log.With("handler", "LiveHandler"),
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Overlay clients are browser sources on arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// GET /ws/:group
func (h *LiveHandler) Connect(c *gin.Context) {
	group := c.Param("group")
	if !groupPattern.MatchString(group) {
		response.RespondError(c, http.StatusBadRequest, "invalid_group", errors.New("group must match [a-z0-9_-]{1,64}"))
		return
	}
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Warn("websocket upgrade failed", "group", group, "error", err)
		return
	}
	conn := realtime.NewWSConn(ws, h.log)
	defer conn.Close()

	if err := h.hub.Connect(conn, group); err != nil {
		h.log.Warn("hub refused connection", "group", group, "error", err)
		return
	}
	defer h.hub.Disconnect(conn, group)

	ctx := c.Request.Context()
	if err := h.hub.SendPersonal(ctx, conn, realtime.Message{
		Type: realtime.MessageConnected,
		Data: gin.H{"group": group, "conn_id": conn.ID()},
	}); err != nil {
		return
	}
	_ = conn.Serve(ctx)
}

// GET /api/live/stats
func (h *LiveHandler) Stats(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"connections": h.hub.Counts(),
		"groups":      h.hub.Groups(),
	})
}
