package catalog

import (
	"github.com/yungbote/overlay-backend/internal/widgets"
	"github.com/yungbote/overlay-backend/internal/widgets/alert"
	"github.com/yungbote/overlay-backend/internal/widgets/cards"
	"github.com/yungbote/overlay-backend/internal/widgets/confetti"
)

// Descriptors lists the built-in widget types in registration order.
func Descriptors() []widgets.Descriptor {
	return []widgets.Descriptor{
		alert.Descriptor(),
		confetti.Descriptor(),
		cards.Descriptor(),
	}
}

// RegisterAll registers every built-in widget type.
func RegisterAll(reg *widgets.Registry) error {
	for _, d := range Descriptors() {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}
