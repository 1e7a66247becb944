package app

import (
	"context"

	"github.com/yungbote/overlay-backend/internal/observability"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
	"github.com/yungbote/overlay-backend/internal/realtime"
	"github.com/yungbote/overlay-backend/internal/realtime/bus"
)

// countingEmitter tallies emitted messages by type before passing them on.
type countingEmitter struct {
	next    realtime.Emitter
	metrics *observability.Metrics
}

func (e *countingEmitter) Emit(ctx context.Context, env realtime.Envelope) {
	e.metrics.IncLiveEvent(string(env.Message.Type))
	e.next.Emit(ctx, env)
}

// wireLive picks how live events leave this process. With a redis address
// every process publishes to the bus and its forwarder feeds the local hub;
// without one events go straight to the local hub.
func wireLive(log *logger.Logger, cfg Config, hub *realtime.Hub, metrics *observability.Metrics) (realtime.Notifier, bus.Bus, error) {
	local := &realtime.HubEmitter{Hub: hub}
	var emit realtime.Emitter = local
	var liveBus bus.Bus
	if cfg.RedisAddr != "" {
		b, err := bus.NewRedisBus(bus.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Channel:  cfg.RedisChannel,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		liveBus = b
		emit = &bus.Emitter{Bus: b, Fallback: local, Log: log}
		log.Info("live events routed through redis", "channel", cfg.RedisChannel)
	}
	if metrics != nil {
		emit = &countingEmitter{next: emit, metrics: metrics}
	}
	return realtime.NewNotifier(emit), liveBus, nil
}
