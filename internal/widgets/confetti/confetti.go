package confetti

import (
	"context"
	"fmt"

	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/realtime"
	"github.com/yungbote/overlay-backend/internal/widgets"
)

const (
	TypeID = "ConfettiAlertWidget"

	ParticleElement = "confetti_particle"
	SoundElement    = "pop_sound"

	defaultColor         = "#FF5733"
	defaultParticleCount = 100
	defaultBlastMs       = 2500.0
)

// Intensity levels scale the configured particle count.
var intensityScale = map[string]float64{
	"Low":    0.5,
	"Medium": 1,
	"High":   1.5,
}

func Descriptor() widgets.Descriptor {
	return widgets.Descriptor{
		TypeID:      TypeID,
		DisplayName: "Confetti Alert",
		Description: "Celebratory particle explosion with sound",
		Factory:     func() widgets.Widget { return &Widget{} },
	}
}

type Widget struct{}

func (w *Widget) DefaultParameters() map[string]any {
	return map[string]any{
		"blast_duration_ms": defaultBlastMs,
		"particle_count":    defaultParticleCount,
		"default_color":     defaultColor,
	}
}

func (w *Widget) CreateDefaultElements(ctx context.Context, inst *widgets.Instance) error {
	if _, err := inst.AddElement(ctx, widgets.ElementSpec{
		Name:        ParticleElement,
		Type:        types.ElementCanvas,
		Description: "confetti particles",
		Properties: map[string]any{
			"media_roles":    []any{"particle"},
			"position":       map[string]any{"x": 0.5, "y": 0.5, "anchor": "center"},
			"size":           map[string]any{"width": 1, "height": 1},
			"z_index":        100,
			"opacity":        1.0,
			"color":          inst.ParamString("default_color", defaultColor),
			"particle_count": inst.ParamInt("particle_count", defaultParticleCount),
		},
		Behavior: []any{
			map[string]any{"type": "appear", "animation": "explosion", "duration": inst.ParamFloat("blast_duration_ms", defaultBlastMs)},
			map[string]any{"type": "disappear", "animation": "fade-out", "duration": 500.0},
		},
	}); err != nil {
		return err
	}
	_, err := inst.AddElement(ctx, widgets.ElementSpec{
		Name:       SoundElement,
		Type:       types.ElementAudio,
		Properties: map[string]any{"media_roles": []any{"sound"}, "volume": 0.7},
	})
	return err
}

func (w *Widget) Features() *widgets.FeatureSet {
	return widgets.NewFeatureSet(
		widgets.Feature{
			MethodName:  "trigger_blast",
			DisplayName: "Trigger Confetti Blast",
			Description: "Launch confetti particles with customizable intensity and color",
			Order:       1,
			Parameters: []widgets.Param{
				{Name: "intensity", Type: widgets.ParamDropdown, Label: "Intensity Level", Options: []string{"Low", "Medium", "High"}},
				{Name: "color", Type: widgets.ParamColor, Label: "Confetti Color", Optional: true, Placeholder: "Leave empty for default color"},
			},
			Run: triggerBlast,
		},
		widgets.Feature{
			MethodName:  "stop_confetti",
			DisplayName: "Stop Confetti",
			Description: "Immediately stop and hide all confetti",
			Order:       2,
			Run:         stopConfetti,
		},
	)
}

func triggerBlast(ctx context.Context, inst *widgets.Instance, p widgets.Params) (any, error) {
	intensity := p.String("intensity")
	scale, ok := intensityScale[intensity]
	if !ok {
		return nil, fmt.Errorf("unknown intensity %q", intensity)
	}
	color := p.String("color")
	if color == "" {
		color = inst.ParamString("default_color", defaultColor)
	}
	count := int(float64(inst.ParamInt("particle_count", defaultParticleCount)) * scale)

	particle, err := inst.SetElementProperties(ctx, ParticleElement, map[string]any{
		"color":          color,
		"particle_count": count,
	})
	if err != nil {
		return nil, err
	}
	if err := inst.SetVisible(ctx, ParticleElement, true); err != nil {
		return nil, err
	}
	inst.Broadcast(ctx, particle, realtime.ActionShow)

	// the pop only plays when a sound is bound
	if sound, err := inst.GetElement(SoundElement); err == nil && sound.MediaForRole("sound") != nil {
		if err := inst.SetVisible(ctx, SoundElement, true); err != nil {
			return nil, err
		}
		inst.Broadcast(ctx, sound, realtime.ActionShow)
	}

	return map[string]any{
		"intensity":      intensity,
		"color":          color,
		"particle_count": count,
	}, nil
}

func stopConfetti(ctx context.Context, inst *widgets.Instance, _ widgets.Params) (any, error) {
	for _, name := range []string{ParticleElement, SoundElement} {
		if err := inst.SetVisible(ctx, name, false); err != nil {
			return nil, err
		}
		if err := inst.BroadcastElement(ctx, name, realtime.ActionHide); err != nil {
			return nil, err
		}
	}
	return map[string]any{"status": "stopped"}, nil
}
