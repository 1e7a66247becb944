package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yungbote/overlay-backend/internal/platform/logger"
	"github.com/yungbote/overlay-backend/internal/realtime"
)

type stubBus struct {
	err       error
	published []realtime.Envelope
}

func (b *stubBus) Publish(_ context.Context, env realtime.Envelope) error {
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, env)
	return nil
}

func (b *stubBus) StartForwarder(context.Context, func(realtime.Envelope)) error { return nil }
func (b *stubBus) Close() error                                                  { return nil }

type recordingEmitter struct{ got []realtime.Envelope }

func (e *recordingEmitter) Emit(_ context.Context, env realtime.Envelope) { e.got = append(e.got, env) }

func TestEmitterPublishesToBus(t *testing.T) {
	b := &stubBus{}
	local := &recordingEmitter{}
	e := &Emitter{Bus: b, Fallback: local, Log: logger.Nop()}

	env := realtime.Envelope{Group: realtime.GroupOverlay, Message: realtime.DashboardEvent(realtime.MessageDashboardActivated, 1)}
	e.Emit(context.Background(), env)

	assert.Len(t, b.published, 1)
	assert.Empty(t, local.got)
}

func TestEmitterFallsBackWhenPublishFails(t *testing.T) {
	b := &stubBus{err: errors.New("redis down")}
	local := &recordingEmitter{}
	e := &Emitter{Bus: b, Fallback: local, Log: logger.Nop()}

	e.Emit(context.Background(), realtime.Envelope{Group: realtime.GroupOverlay, Message: realtime.Message{Type: realtime.MessagePong}})

	assert.Len(t, local.got, 1)
}

func TestNewRedisBusRequiresAddr(t *testing.T) {
	_, err := NewRedisBus(RedisConfig{}, logger.Nop())
	assert.Error(t, err)
}
