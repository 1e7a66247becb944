package realtime

import (
	"encoding/json"

	types "github.com/yungbote/overlay-backend/internal/domain"
)

const (
	GroupOverlay = "overlay"
	GroupControl = "control"
)

type MessageType string

const (
	MessageElementUpdate        MessageType = "element_update"
	MessageDashboardActivated   MessageType = "dashboard_activated"
	MessageDashboardDeactivated MessageType = "dashboard_deactivated"
	MessageConnected            MessageType = "connected"
	MessagePong                 MessageType = "pong"
)

type Action string

const (
	ActionUpdate Action = "update"
	ActionShow   Action = "show"
	ActionHide   Action = "hide"
	ActionDelete Action = "delete"
)

func (a Action) Valid() bool {
	switch a {
	case ActionUpdate, ActionShow, ActionHide, ActionDelete:
		return true
	}
	return false
}

// Message is the JSON frame sent to live clients.
type Message struct {
	Type        MessageType      `json:"type"`
	Action      Action           `json:"action,omitempty"`
	Element     *ElementSnapshot `json:"element,omitempty"`
	DashboardID *uint            `json:"dashboard_id,omitempty"`
	Data        any              `json:"data,omitempty"`
}

type ElementSnapshot struct {
	ID          uint              `json:"id"`
	WidgetID    uint              `json:"widget_id"`
	ElementType types.ElementType `json:"element_type"`
	Name        string            `json:"name"`
	Properties  json.RawMessage   `json:"properties"`
	Behavior    json.RawMessage   `json:"behavior"`
	Visible     bool              `json:"visible"`
	Playing     bool              `json:"playing"`
	Enabled     bool              `json:"enabled"`
	// Media maps role to the URL the client loads.
	Media map[string]string `json:"media,omitempty"`
}

// Snapshot copies the client-visible state of el.
func Snapshot(el *types.Element) *ElementSnapshot {
	if el == nil {
		return nil
	}
	s := &ElementSnapshot{
		ID:          el.ID,
		WidgetID:    el.WidgetID,
		ElementType: el.ElementType,
		Name:        el.Name,
		Properties:  rawOr(el.Properties, "{}"),
		Behavior:    rawOr(el.Behavior, "[]"),
		Visible:     el.Visible,
		Playing:     el.Playing,
		Enabled:     el.Enabled,
	}
	for _, a := range el.MediaAssets {
		if a.Media == nil {
			continue
		}
		if s.Media == nil {
			s.Media = make(map[string]string, len(el.MediaAssets))
		}
		s.Media[a.Role] = a.Media.URL()
	}
	return s
}

func rawOr(raw []byte, def string) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(def)
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

func ElementUpdate(el *types.Element, action Action) Message {
	return Message{Type: MessageElementUpdate, Action: action, Element: Snapshot(el)}
}

func DashboardEvent(kind MessageType, dashboardID uint) Message {
	id := dashboardID
	return Message{Type: kind, DashboardID: &id}
}

// Envelope routes a message to one group. It is what crosses the bus.
type Envelope struct {
	Group   string  `json:"group"`
	Message Message `json:"message"`
}
