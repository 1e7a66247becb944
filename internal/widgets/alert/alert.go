package alert

import (
	"context"
	"math"

	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/platform/pointers"
	"github.com/yungbote/overlay-backend/internal/realtime"
	"github.com/yungbote/overlay-backend/internal/widgets"
)

const (
	TypeID = "AlertWidget"

	ImageElement = "alert image element"
	AudioElement = "alert audio element"

	defaultDurationMs = 2500.0
	defaultVolume     = 70.0
)

func Descriptor() widgets.Descriptor {
	return widgets.Descriptor{
		TypeID:      TypeID,
		DisplayName: "Alert",
		Description: "Animation and sound",
		Factory:     func() widgets.Widget { return &Widget{} },
		Operations:  []string{"reset_playing"},
	}
}

// Widget shows an image with an explosion entrance while a sound plays.
type Widget struct{}

func (w *Widget) DefaultParameters() map[string]any {
	return map[string]any{
		"duration_ms": defaultDurationMs,
		"volume":      defaultVolume,
	}
}

// Sequence is the image behavior: explode in, hold for waitMs, fade out.
func Sequence(waitMs float64) []any {
	return []any{
		map[string]any{"type": "appear", "animation": "explosion", "duration": 500.0},
		map[string]any{"type": "wait", "duration": waitMs},
		map[string]any{"type": "disappear", "animation": "fade-out", "duration": 500.0},
	}
}

func (w *Widget) CreateDefaultElements(ctx context.Context, inst *widgets.Instance) error {
	if _, err := inst.AddElement(ctx, widgets.ElementSpec{
		Name: ImageElement,
		Type: types.ElementImage,
		Properties: map[string]any{
			"media_roles": []any{"image"},
			"position":    map[string]any{"x": 0.5, "y": 0.5, "anchor": "center"},
			"size":        map[string]any{"width": 0.2, "height": "auto"},
			"z_index":     100,
			"opacity":     1.0,
		},
		Behavior: Sequence(inst.ParamFloat("duration_ms", defaultDurationMs)),
	}); err != nil {
		return err
	}
	_, err := inst.AddElement(ctx, widgets.ElementSpec{
		Name: AudioElement,
		Type: types.ElementAudio,
		Properties: map[string]any{
			"media_roles": []any{"sound"},
			"volume":      0.7,
			"autoplay":    false,
		},
	})
	return err
}

func (w *Widget) Features() *widgets.FeatureSet {
	return widgets.NewFeatureSet(
		widgets.Feature{
			MethodName:  "play",
			DisplayName: "Play",
			Description: "Display image and play a sound.",
			Order:       1,
			Parameters: []widgets.Param{
				{
					Name:    "volume",
					Type:    widgets.ParamSlider,
					Label:   "Sound Volume",
					Min:     pointers.Float64(1),
					Max:     pointers.Float64(100),
					Step:    pointers.Float64(1),
					Default: defaultVolume,
				},
				{
					Name:     "duration",
					Type:     widgets.ParamSlider,
					Label:    "Image Duration (ms)",
					Min:      pointers.Float64(0),
					Max:      pointers.Float64(10000),
					Step:     pointers.Float64(100),
					Optional: true,
				},
			},
			Run: play,
		},
		widgets.Feature{
			MethodName:  "stop",
			DisplayName: "Stop",
			Description: "Immediately stop sound and hide the image",
			Order:       2,
			Run:         stop,
		},
	)
}

// play restarts the sequence: both elements are stopped and hidden first so
// clients replay from the beginning.
func play(ctx context.Context, inst *widgets.Instance, p widgets.Params) (any, error) {
	if err := resetPlaying(ctx, inst); err != nil {
		return nil, err
	}

	wait := p.Float("duration", inst.ParamFloat("duration_ms", defaultDurationMs))
	if err := inst.SetBehavior(ctx, ImageElement, Sequence(wait)); err != nil {
		return nil, err
	}
	if err := inst.SetPlaying(ctx, ImageElement, true); err != nil {
		return nil, err
	}

	volume := math.Max(0, math.Min(p.Float("volume", defaultVolume), 100)) / 100
	if _, err := inst.SetElementProperties(ctx, AudioElement, map[string]any{
		"volume":   volume,
		"autoplay": true,
	}); err != nil {
		return nil, err
	}
	if err := inst.SetPlaying(ctx, AudioElement, true); err != nil {
		return nil, err
	}

	if err := inst.BroadcastElement(ctx, ImageElement, realtime.ActionShow); err != nil {
		return nil, err
	}
	if err := inst.BroadcastElement(ctx, AudioElement, realtime.ActionShow); err != nil {
		return nil, err
	}
	return map[string]any{"duration_ms": wait, "volume": volume}, nil
}

func stop(ctx context.Context, inst *widgets.Instance, _ widgets.Params) (any, error) {
	if _, err := inst.SetElementProperties(ctx, AudioElement, map[string]any{"autoplay": false}); err != nil {
		return nil, err
	}
	return nil, resetPlaying(ctx, inst)
}

func resetPlaying(ctx context.Context, inst *widgets.Instance) error {
	for _, name := range []string{ImageElement, AudioElement} {
		if err := inst.SetPlaying(ctx, name, false); err != nil {
			return err
		}
		if err := inst.BroadcastElement(ctx, name, realtime.ActionHide); err != nil {
			return err
		}
	}
	return nil
}
