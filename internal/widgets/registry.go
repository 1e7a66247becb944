package widgets

import (
	"fmt"
	"strings"
	"sync"

	types "github.com/yungbote/overlay-backend/internal/domain"
)

type TypeInfo struct {
	TypeID            string         `json:"type_id"`
	DisplayName       string         `json:"display_name"`
	Description       string         `json:"description"`
	DefaultParameters map[string]any `json:"default_parameters"`
	Features          []FeatureInfo  `json:"features"`
}

type Registry struct {
	mu     sync.RWMutex
	byType map[string]Descriptor
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{byType: map[string]Descriptor{}}
}

func (r *Registry) Register(desc Descriptor) error {
	if r == nil {
		return fmt.Errorf("nil registry")
	}
	desc.TypeID = strings.TrimSpace(desc.TypeID)
	if desc.TypeID == "" {
		return &types.RegistrationError{Reason: "type id is empty"}
	}
	if desc.Factory == nil {
		return &types.RegistrationError{TypeID: desc.TypeID, Reason: "factory is nil"}
	}
	if err := checkFeatures(desc); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byType[desc.TypeID]; exists {
		return &types.RegistrationError{TypeID: desc.TypeID, Reason: "already registered"}
	}
	r.byType[desc.TypeID] = desc
	r.order = append(r.order, desc.TypeID)
	return nil
}

func checkFeatures(desc Descriptor) error {
	w := desc.Factory()
	if w == nil {
		return &types.RegistrationError{TypeID: desc.TypeID, Reason: "factory returned nil"}
	}
	seen := map[string]struct{}{}
	for _, f := range w.Features().declared() {
		if f.MethodName == "" {
			return &types.RegistrationError{TypeID: desc.TypeID, Reason: "feature with empty method name"}
		}
		if f.Run == nil {
			return &types.RegistrationError{TypeID: desc.TypeID, Reason: fmt.Sprintf("feature %s has no implementation", f.MethodName)}
		}
		if _, dup := seen[f.MethodName]; dup {
			return &types.RegistrationError{TypeID: desc.TypeID, Reason: fmt.Sprintf("feature %s declared twice", f.MethodName)}
		}
		if desc.hasOperation(f.MethodName) {
			return &types.RegistrationError{TypeID: desc.TypeID, Reason: fmt.Sprintf("%s is both a feature and a plain operation", f.MethodName)}
		}
		seen[f.MethodName] = struct{}{}
	}
	return nil
}

func (r *Registry) Resolve(typeID string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byType[typeID]
	return d, ok
}

// List returns every registered type in registration order.
func (r *Registry) List() []TypeInfo {
	r.mu.RLock()
	descs := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		descs = append(descs, r.byType[id])
	}
	r.mu.RUnlock()

	out := make([]TypeInfo, 0, len(descs))
	for _, d := range descs {
		w := d.Factory()
		defaults := w.DefaultParameters()
		if defaults == nil {
			defaults = map[string]any{}
		}
		out = append(out, TypeInfo{
			TypeID:            d.TypeID,
			DisplayName:       d.DisplayName,
			Description:       d.Description,
			DefaultParameters: defaults,
			Features:          w.Features().Info(),
		})
	}
	return out
}

// Extract returns the feature metadata of one descriptor.
func Extract(desc Descriptor) []FeatureInfo {
	if desc.Factory == nil {
		return []FeatureInfo{}
	}
	return desc.Factory().Features().Info()
}
