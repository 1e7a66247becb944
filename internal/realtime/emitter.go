package realtime

import (
	"context"

	types "github.com/yungbote/overlay-backend/internal/domain"
)

// Emitter hands an envelope to whatever delivers it: the local hub, or a bus
// that fans out to every process.
type Emitter interface {
	Emit(ctx context.Context, env Envelope)
}

type HubEmitter struct{ Hub *Hub }

func (e *HubEmitter) Emit(ctx context.Context, env Envelope) {
	if e == nil || e.Hub == nil {
		return
	}
	e.Hub.Broadcast(ctx, env.Message, env.Group, nil)
}

// Notifier is what widgets and services call after persisting a change.
type Notifier interface {
	ElementChanged(ctx context.Context, el *types.Element, action Action)
	DashboardActivated(ctx context.Context, dashboardID uint)
	DashboardDeactivated(ctx context.Context, dashboardID uint)
}

type notifier struct {
	emit Emitter
}

func NewNotifier(emit Emitter) Notifier {
	return &notifier{emit: emit}
}

func (n *notifier) ElementChanged(ctx context.Context, el *types.Element, action Action) {
	if n == nil || n.emit == nil || el == nil {
		return
	}
	n.emit.Emit(ctx, Envelope{Group: GroupOverlay, Message: ElementUpdate(el, action)})
}

func (n *notifier) DashboardActivated(ctx context.Context, dashboardID uint) {
	if n == nil || n.emit == nil {
		return
	}
	n.emit.Emit(ctx, Envelope{Group: GroupOverlay, Message: DashboardEvent(MessageDashboardActivated, dashboardID)})
}

func (n *notifier) DashboardDeactivated(ctx context.Context, dashboardID uint) {
	if n == nil || n.emit == nil {
		return
	}
	n.emit.Emit(ctx, Envelope{Group: GroupOverlay, Message: DashboardEvent(MessageDashboardDeactivated, dashboardID)})
}
