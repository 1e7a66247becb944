package widgets

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/overlay/validate"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
	"github.com/yungbote/overlay-backend/internal/realtime"
)

type State int

const (
	StateUnbound State = iota
	StateBound
	StateActive
)

func (s State) String() string {
	switch s {
	case StateBound:
		return "bound"
	case StateActive:
		return "active"
	}
	return "unbound"
}

// ElementSpec describes an element to add to an instance.
type ElementSpec struct {
	Name        string
	Type        types.ElementType
	Description string
	Properties  map[string]any
	Behavior    []any
	Visible     bool
	Disabled    bool
}

type pendingEvent struct {
	el     types.Element
	action realtime.Action
}

// Instance is a loaded widget: its row, parameters and elements by name.
// It is not safe for concurrent use; callers serialize work on one instance.
type Instance struct {
	rt       *Runtime
	desc     Descriptor
	impl     Widget
	row      *types.Widget
	params   map[string]any
	elements map[string]*types.Element
	staged   []*types.Element
	state    State

	// set while a create or feature transaction is open
	tx      *gorm.DB
	pending []pendingEvent
}

func newInstance(rt *Runtime, desc Descriptor, impl Widget) *Instance {
	return &Instance{
		rt:       rt,
		desc:     desc,
		impl:     impl,
		params:   map[string]any{},
		elements: map[string]*types.Element{},
	}
}

func (i *Instance) ID() uint {
	if i.row == nil {
		return 0
	}
	return i.row.ID
}

func (i *Instance) Name() string {
	if i.row == nil {
		return ""
	}
	return i.row.Name
}

func (i *Instance) TypeID() string        { return i.desc.TypeID }
func (i *Instance) State() State          { return i.state }
func (i *Instance) Descriptor() Descriptor { return i.desc }
func (i *Instance) Widget() Widget        { return i.impl }

// Parameters returns a copy of the current parameter map.
func (i *Instance) Parameters() map[string]any {
	out := make(map[string]any, len(i.params))
	for k, v := range i.params {
		out[k] = v
	}
	return out
}

func (i *Instance) Param(key string) any { return i.params[key] }

func (i *Instance) ParamFloat(key string, def float64) float64 {
	return Params(i.params).Float(key, def)
}

func (i *Instance) ParamInt(key string, def int) int {
	return Params(i.params).Int(key, def)
}

func (i *Instance) ParamString(key, def string) string {
	if s := Params(i.params).String(key); s != "" {
		return s
	}
	return def
}

func (i *Instance) dbc(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx, Tx: i.tx}
}

// Elements returns the instance's elements ordered by id.
func (i *Instance) Elements() []*types.Element {
	out := make([]*types.Element, 0, len(i.elements))
	for _, el := range i.elements {
		out = append(out, el)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (i *Instance) GetElement(name string) (*types.Element, error) {
	el, ok := i.elements[name]
	if !ok {
		return nil, types.NotFound("Element", name)
	}
	return el, nil
}

func (i *Instance) ElementByID(id uint) (*types.Element, error) {
	for _, el := range i.elements {
		if el.ID == id {
			return el, nil
		}
	}
	return nil, types.NotFound("Element", id)
}

// AddElement registers a new element under a name unique within the widget.
// While the instance is being created the element is only staged; it is
// written together with the widget row. On an active instance it is written
// immediately.
func (i *Instance) AddElement(ctx context.Context, spec ElementSpec) (*types.Element, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, &types.ValidationError{Subject: "element", Errors: []string{"element name is required"}}
	}
	if !spec.Type.Valid() {
		return nil, &types.ValidationError{Subject: "element", Errors: []string{fmt.Sprintf("unknown element type '%s'", spec.Type)}}
	}
	if _, exists := i.elements[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateElement, name)
	}
	for _, s := range i.staged {
		if s.Name == name {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateElement, name)
		}
	}

	props := spec.Properties
	if props == nil {
		props = map[string]any{}
	}
	if ok, errs := validate.ValidateProperties(spec.Type, props); !ok {
		return nil, &types.ValidationError{Subject: "properties for element '" + name + "'", Errors: errs}
	}
	behavior := spec.Behavior
	if behavior == nil {
		behavior = []any{}
	}
	if ok, errs := validate.ValidateBehavior(behavior); !ok {
		return nil, &types.ValidationError{Subject: "behavior for element '" + name + "'", Errors: errs}
	}
	propsRaw, err := json.Marshal(props)
	if err != nil {
		return nil, err
	}
	behaviorRaw, err := json.Marshal(behavior)
	if err != nil {
		return nil, err
	}

	el := &types.Element{
		WidgetID:    i.ID(),
		Name:        name,
		ElementType: spec.Type,
		Description: spec.Description,
		Enabled:     !spec.Disabled,
		Visible:     spec.Visible,
		Properties:  datatypes.JSON(propsRaw),
		Behavior:    datatypes.JSON(behaviorRaw),
	}
	if i.state != StateActive {
		i.staged = append(i.staged, el)
		return el, nil
	}
	if _, err := i.rt.elements.Create(i.dbc(ctx), []*types.Element{el}); err != nil {
		return nil, fmt.Errorf("create element %s: %w", name, err)
	}
	i.elements[name] = el
	return el, nil
}

// UpdateParameters shallow-merges patch into the parameters and persists them.
func (i *Instance) UpdateParameters(ctx context.Context, patch map[string]any) error {
	next := i.Parameters()
	for k, v := range patch {
		next[k] = v
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := i.rt.widgets.UpdateParameters(i.dbc(ctx), i.ID(), datatypes.JSON(raw)); err != nil {
		return err
	}
	i.params = next
	i.row.Parameters = datatypes.JSON(raw)
	return nil
}

// UpdateElementProperties merges patch over the element's current properties
// and validates the whole result before anything is written. On failure the
// element is unchanged and nothing is broadcast.
func (i *Instance) UpdateElementProperties(ctx context.Context, name string, patch map[string]any) (*types.Element, error) {
	el, err := i.SetElementProperties(ctx, name, patch)
	if err != nil {
		return nil, err
	}
	i.Broadcast(ctx, el, realtime.ActionUpdate)
	return el, nil
}

// SetElementProperties is UpdateElementProperties without the broadcast, for
// features that announce the change with their own action.
func (i *Instance) SetElementProperties(ctx context.Context, name string, patch map[string]any) (*types.Element, error) {
	el, err := i.GetElement(name)
	if err != nil {
		return nil, err
	}
	merged, err := decodeObject(el.Properties)
	if err != nil {
		return nil, fmt.Errorf("element %s has unreadable properties: %w", name, err)
	}
	for k, v := range patch {
		merged[k] = v
	}
	if ok, errs := validate.ValidateProperties(el.ElementType, merged); !ok {
		return nil, &types.ValidationError{Subject: "properties for element '" + name + "'", Errors: errs}
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	if err := i.rt.elements.UpdateFields(i.dbc(ctx), el.ID, map[string]interface{}{"properties": datatypes.JSON(raw)}); err != nil {
		return nil, err
	}
	el.Properties = datatypes.JSON(raw)
	return el, nil
}

// ElementProperties returns a decoded copy of the element's properties.
func (i *Instance) ElementProperties(name string) (map[string]any, error) {
	el, err := i.GetElement(name)
	if err != nil {
		return nil, err
	}
	return decodeObject(el.Properties)
}

// SetBehavior replaces the element's behavior after a structural check.
func (i *Instance) SetBehavior(ctx context.Context, name string, behavior []any) error {
	el, err := i.GetElement(name)
	if err != nil {
		return err
	}
	if behavior == nil {
		behavior = []any{}
	}
	if ok, errs := validate.ValidateBehavior(behavior); !ok {
		return &types.ValidationError{Subject: "behavior for element '" + name + "'", Errors: errs}
	}
	raw, err := json.Marshal(behavior)
	if err != nil {
		return err
	}
	if err := i.rt.elements.UpdateFields(i.dbc(ctx), el.ID, map[string]interface{}{"behavior": datatypes.JSON(raw)}); err != nil {
		return err
	}
	el.Behavior = datatypes.JSON(raw)
	return nil
}

func (i *Instance) SetPlaying(ctx context.Context, name string, playing bool) error {
	el, err := i.GetElement(name)
	if err != nil {
		return err
	}
	if err := i.rt.elements.UpdateFields(i.dbc(ctx), el.ID, map[string]interface{}{"playing": playing}); err != nil {
		return err
	}
	el.Playing = playing
	return nil
}

func (i *Instance) SetVisible(ctx context.Context, name string, visible bool) error {
	el, err := i.GetElement(name)
	if err != nil {
		return err
	}
	if err := i.rt.elements.UpdateFields(i.dbc(ctx), el.ID, map[string]interface{}{"visible": visible}); err != nil {
		return err
	}
	el.Visible = visible
	return nil
}

func (i *Instance) SetEnabled(ctx context.Context, name string, enabled bool) error {
	el, err := i.GetElement(name)
	if err != nil {
		return err
	}
	if err := i.rt.elements.UpdateFields(i.dbc(ctx), el.ID, map[string]interface{}{"enabled": enabled}); err != nil {
		return err
	}
	el.Enabled = enabled
	return nil
}

// SetElementMedia binds media to the element under role, replacing any
// previous binding for that role, and broadcasts the updated element.
func (i *Instance) SetElementMedia(ctx context.Context, name string, mediaID uint, role string) (*types.Element, error) {
	el, err := i.GetElement(name)
	if err != nil {
		return nil, err
	}
	if i.rt.media == nil {
		return nil, ErrNoMediaBinder
	}
	updated, err := i.rt.media.AssignMedia(i.dbc(ctx), el.ID, mediaID, role, true)
	if err != nil {
		return nil, err
	}
	i.elements[name] = updated
	i.Broadcast(ctx, updated, realtime.ActionUpdate)
	return updated, nil
}

func (i *Instance) RemoveElementMedia(ctx context.Context, name, role string) (bool, error) {
	el, err := i.GetElement(name)
	if err != nil {
		return false, err
	}
	if i.rt.media == nil {
		return false, ErrNoMediaBinder
	}
	removed, err := i.rt.media.RemoveMedia(i.dbc(ctx), el.ID, role)
	if err != nil || !removed {
		return removed, err
	}
	if err := i.refreshElement(ctx, name); err != nil {
		return true, err
	}
	i.Broadcast(ctx, i.elements[name], realtime.ActionUpdate)
	return true, nil
}

// ElementPatch is a partial element update. Nil fields are left alone.
type ElementPatch struct {
	Properties map[string]any `json:"properties,omitempty"`
	Behavior   []any          `json:"behavior,omitempty"`
	Visible    *bool          `json:"visible,omitempty"`
	Enabled    *bool          `json:"enabled,omitempty"`
	Playing    *bool          `json:"playing,omitempty"`
}

func (p ElementPatch) Empty() bool {
	return p.Properties == nil && p.Behavior == nil && p.Visible == nil && p.Enabled == nil && p.Playing == nil
}

// PatchElement applies p to the element atomically and broadcasts a single
// update once it is committed.
func (i *Instance) PatchElement(ctx context.Context, name string, p ElementPatch) (*types.Element, error) {
	if _, err := i.GetElement(name); err != nil {
		return nil, err
	}
	err := i.transact(ctx, func() error {
		if p.Properties != nil {
			if _, err := i.SetElementProperties(ctx, name, p.Properties); err != nil {
				return err
			}
		}
		if p.Behavior != nil {
			if err := i.SetBehavior(ctx, name, p.Behavior); err != nil {
				return err
			}
		}
		if p.Visible != nil {
			if err := i.SetVisible(ctx, name, *p.Visible); err != nil {
				return err
			}
		}
		if p.Enabled != nil {
			if err := i.SetEnabled(ctx, name, *p.Enabled); err != nil {
				return err
			}
		}
		if p.Playing != nil {
			if err := i.SetPlaying(ctx, name, *p.Playing); err != nil {
				return err
			}
		}
		return i.BroadcastElement(ctx, name, realtime.ActionUpdate)
	})
	if err != nil {
		return nil, err
	}
	return i.GetElement(name)
}

// Broadcast tells live clients about el. Inside a feature call the message is
// held until the call's transaction commits.
func (i *Instance) Broadcast(ctx context.Context, el *types.Element, action realtime.Action) {
	if el == nil {
		return
	}
	if i.tx != nil {
		i.pending = append(i.pending, pendingEvent{el: *el, action: action})
		return
	}
	if i.rt.notify != nil {
		i.rt.notify.ElementChanged(ctx, el, action)
	}
}

// BroadcastElement looks up name and broadcasts it.
func (i *Instance) BroadcastElement(ctx context.Context, name string, action realtime.Action) error {
	el, err := i.GetElement(name)
	if err != nil {
		return err
	}
	i.Broadcast(ctx, el, action)
	return nil
}

func (i *Instance) flush(ctx context.Context) {
	events := i.pending
	i.pending = nil
	if i.rt.notify == nil {
		return
	}
	for k := range events {
		i.rt.notify.ElementChanged(ctx, &events[k].el, events[k].action)
	}
}

func (i *Instance) refreshElement(ctx context.Context, name string) error {
	el, err := i.GetElement(name)
	if err != nil {
		return err
	}
	fresh, err := i.rt.elements.GetByID(i.dbc(ctx), el.ID)
	if err != nil {
		return err
	}
	if fresh == nil {
		delete(i.elements, name)
		return types.NotFound("Element", name)
	}
	i.elements[name] = fresh
	return nil
}

// reload rebuilds parameters and elements from storage.
func (i *Instance) reload(ctx context.Context) error {
	row, err := i.rt.widgets.GetByID(dbctx.Context{Ctx: ctx}, i.ID())
	if err != nil {
		return err
	}
	if row == nil {
		return types.NotFound("Widget", i.ID())
	}
	return i.bind(row)
}

func (i *Instance) bind(row *types.Widget) error {
	params, err := decodeObject(row.Parameters)
	if err != nil {
		return fmt.Errorf("widget %d has unreadable parameters: %w", row.ID, err)
	}
	i.row = row
	i.params = params
	i.elements = make(map[string]*types.Element, len(row.Elements))
	for k := range row.Elements {
		el := row.Elements[k]
		i.elements[el.Name] = &el
	}
	return nil
}

func decodeObject(raw []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
