package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxInbound = 64 * 1024
)

// WSConn adapts a gorilla websocket to Conn.
type WSConn struct {
	id   uuid.UUID
	ws   *websocket.Conn
	log  *logger.Logger
	wmu  sync.Mutex
	once sync.Once
	done chan struct{}
}

func NewWSConn(ws *websocket.Conn, log *logger.Logger) *WSConn {
	id := uuid.New()
	return &WSConn{
		id:   id,
		ws:   ws,
		log:  log.With("conn_id", id),
		done: make(chan struct{}),
	}
}

func (c *WSConn) ID() uuid.UUID { return c.id }

func (c *WSConn) Send(ctx context.Context, msg Message) error {
	select {
	case <-c.done:
		return errors.New("connection closed")
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.ws.SetWriteDeadline(deadline)
	return c.ws.WriteMessage(websocket.TextMessage, raw)
}

func (c *WSConn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.wmu.Lock()
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.wmu.Unlock()
		err = c.ws.Close()
	})
	return err
}

// Serve pumps pings and reads client frames until the peer goes away or ctx
// ends. Text frames {"type":"ping"} are answered with a pong message.
func (c *WSConn) Serve(ctx context.Context) error {
	c.ws.SetReadLimit(maxInbound)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go c.pingLoop(ctx)

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("websocket read failed", "error", err)
			}
			return err
		}
		var in struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(raw, &in) == nil && in.Type == "ping" {
			if err := c.Send(ctx, Message{Type: MessagePong}); err != nil {
				return err
			}
		}
	}
}

func (c *WSConn) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = c.Close()
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.wmu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.wmu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
