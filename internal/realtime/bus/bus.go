package bus

import (
	"context"

	"github.com/yungbote/overlay-backend/internal/platform/logger"
	"github.com/yungbote/overlay-backend/internal/realtime"
)

// Bus carries envelopes between API processes so every process's hub sees
// every change.
type Bus interface {
	Publish(ctx context.Context, env realtime.Envelope) error
	StartForwarder(ctx context.Context, onMsg func(env realtime.Envelope)) error
	Close() error
}

// Emitter publishes to the bus and falls back to the local hub when the
// publish fails.
type Emitter struct {
	Bus      Bus
	Fallback realtime.Emitter
	Log      *logger.Logger
}

func (e *Emitter) Emit(ctx context.Context, env realtime.Envelope) {
	if e == nil || e.Bus == nil {
		return
	}
	if err := e.Bus.Publish(ctx, env); err != nil {
		if e.Log != nil {
			e.Log.Warn("bus publish failed, delivering locally", "group", env.Group, "type", env.Message.Type, "error", err)
		}
		if e.Fallback != nil {
			e.Fallback.Emit(ctx, env)
		}
	}
}
