package realtime

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

var ErrHubClosed = errors.New("hub closed")

// Conn is one live client. Send must be safe to call from one goroutine at a
// time; the hub never sends to the same Conn concurrently within a pass.
type Conn interface {
	ID() uuid.UUID
	Send(ctx context.Context, msg Message) error
	Close() error
}

// Hub keeps live connections in named groups and fans messages out to them.
// Delivery is best effort: a failed send marks the connection dead and it is
// dropped from the group once the pass is over. There is no retry.
type Hub struct {
	mu     sync.RWMutex
	log    *logger.Logger
	groups map[string]map[uuid.UUID]Conn
	closed bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log: log.With("component", "Hub"),
		groups: map[string]map[uuid.UUID]Conn{
			GroupOverlay: {},
			GroupControl: {},
		},
	}
}

func (h *Hub) Connect(conn Conn, group string) error {
	group = strings.TrimSpace(group)
	if conn == nil || group == "" {
		return errors.New("connection and group are required")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	set, ok := h.groups[group]
	if !ok {
		set = map[uuid.UUID]Conn{}
		h.groups[group] = set
	}
	set[conn.ID()] = conn
	h.log.Info("client connected", "group", group, "conn_id", conn.ID(), "group_size", len(set))
	return nil
}

func (h *Hub) Disconnect(conn Conn, group string) {
	if conn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(conn.ID(), group)
}

func (h *Hub) removeLocked(id uuid.UUID, group string) {
	set, ok := h.groups[group]
	if !ok {
		return
	}
	if _, present := set[id]; !present {
		return
	}
	delete(set, id)
	h.log.Info("client disconnected", "group", group, "conn_id", id, "group_size", len(set))
}

// Broadcast sends msg to every connection in group except exclude and returns
// how many sends succeeded.
func (h *Hub) Broadcast(ctx context.Context, msg Message, group string, exclude Conn) int {
	h.mu.RLock()
	set := h.groups[group]
	targets := make([]Conn, 0, len(set))
	for _, c := range set {
		if exclude != nil && c.ID() == exclude.ID() {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	var (
		delivered int
		dead      []Conn
	)
	for _, c := range targets {
		if err := c.Send(ctx, msg); err != nil {
			h.log.Warn("broadcast send failed", "group", group, "conn_id", c.ID(), "type", msg.Type, "error", err)
			dead = append(dead, c)
			continue
		}
		delivered++
	}

	if len(dead) > 0 {
		h.mu.Lock()
		for _, c := range dead {
			h.removeLocked(c.ID(), group)
		}
		h.mu.Unlock()
		for _, c := range dead {
			_ = c.Close()
		}
	}
	return delivered
}

// BroadcastAll sends msg to every group, one group after another.
func (h *Hub) BroadcastAll(ctx context.Context, msg Message) int {
	total := 0
	for _, g := range h.Groups() {
		total += h.Broadcast(ctx, msg, g, nil)
	}
	return total
}

func (h *Hub) SendPersonal(ctx context.Context, conn Conn, msg Message) error {
	if err := conn.Send(ctx, msg); err != nil {
		h.log.Error("personal send failed", "conn_id", conn.ID(), "type", msg.Type, "error", err)
		return err
	}
	return nil
}

// Count returns the size of group, or of all groups when group is empty.
func (h *Hub) Count(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if group != "" {
		return len(h.groups[group])
	}
	n := 0
	for _, set := range h.groups {
		n += len(set)
	}
	return n
}

func (h *Hub) Counts() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]int, len(h.groups))
	for g, set := range h.groups {
		out[g] = len(set)
	}
	return out
}

func (h *Hub) Groups() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.groups))
	for g := range h.groups {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Close closes every connection and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var all []Conn
	for g, set := range h.groups {
		for _, c := range set {
			all = append(all, c)
		}
		h.groups[g] = map[uuid.UUID]Conn{}
	}
	h.mu.Unlock()

	for _, c := range all {
		_ = c.Close()
	}
	h.log.Info("hub closed", "connections", len(all))
}
