package widgets

import (
	"context"
	"errors"
)

var (
	ErrUnknownType         = errors.New("unknown widget type")
	ErrMissingParameter    = errors.New("missing required parameter")
	ErrUnexpectedParameter = errors.New("unexpected parameter")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrDuplicateElement    = errors.New("duplicate element name")
	ErrNoMediaBinder       = errors.New("media binding not configured")
)

// Widget is implemented by every widget variant. A fresh value is built by the
// descriptor's Factory for each instance, so implementations may keep
// per-instance state.
type Widget interface {
	DefaultParameters() map[string]any
	// CreateDefaultElements stages the elements a new widget starts with via
	// inst.AddElement. It must not persist anything itself.
	CreateDefaultElements(ctx context.Context, inst *Instance) error
	Features() *FeatureSet
}

// Descriptor is the static registration record of a widget type.
type Descriptor struct {
	TypeID      string
	DisplayName string
	Description string
	Factory     func() Widget
	// Operations names internal helpers of the type that exist but are not
	// exposed as features. Executing one is an InvalidFeatureError.
	Operations []string
}

// baseOperations exist on every instance. Executing one by name is an
// InvalidFeatureError, not an unknown feature.
var baseOperations = []string{
	"create_default_elements",
	"add_element",
	"get_element",
	"update_parameters",
	"update_element_properties",
	"broadcast_element_update",
}

func (d Descriptor) hasOperation(name string) bool {
	for _, op := range baseOperations {
		if op == name {
			return true
		}
	}
	for _, op := range d.Operations {
		if op == name {
			return true
		}
	}
	return false
}
