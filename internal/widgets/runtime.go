package widgets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/overlay-backend/internal/data/repos"
	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
	"github.com/yungbote/overlay-backend/internal/realtime"
)

// MediaBinder manages role bindings between elements and media.
type MediaBinder interface {
	AssignMedia(dbc dbctx.Context, elementID, mediaID uint, role string, replaceExisting bool) (*types.Element, error)
	RemoveMedia(dbc dbctx.Context, elementID uint, role string) (bool, error)
}

// Runtime creates, loads and deletes widget instances.
type Runtime struct {
	db       *gorm.DB
	log      *logger.Logger
	registry *Registry
	widgets  repos.WidgetRepo
	elements repos.ElementRepo
	media    MediaBinder
	notify   realtime.Notifier
	tracer   trace.Tracer
}

func NewRuntime(
	db *gorm.DB,
	baseLog *logger.Logger,
	registry *Registry,
	widgetRepo repos.WidgetRepo,
	elementRepo repos.ElementRepo,
	media MediaBinder,
	notify realtime.Notifier,
) *Runtime {
	return &Runtime{
		db:       db,
		log:      baseLog.With("service", "WidgetRuntime"),
		registry: registry,
		widgets:  widgetRepo,
		elements: elementRepo,
		media:    media,
		notify:   notify,
		tracer:   otel.Tracer("overlay-backend/widgets"),
	}
}

func (rt *Runtime) Registry() *Registry { return rt.registry }

// Create builds a new widget of typeID. Parameter overrides win over the
// type's defaults. The widget row, its dashboard links and every element
// staged by CreateDefaultElements are committed together or not at all.
func (rt *Runtime) Create(ctx context.Context, typeID, name string, overrides map[string]any, dashboardIDs []uint) (*Instance, error) {
	desc, ok := rt.registry.Resolve(typeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeID)
	}
	impl := desc.Factory()
	params := map[string]any{}
	for k, v := range impl.DefaultParameters() {
		params[k] = v
	}
	for k, v := range overrides {
		params[k] = v
	}
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode parameters: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = desc.DisplayName
	}

	inst := newInstance(rt, desc, impl)
	err = rt.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := rt.widgets.Create(dbc, &types.Widget{
			WidgetClass: desc.TypeID,
			Name:        name,
			Parameters:  datatypes.JSON(rawParams),
		})
		if err != nil {
			return fmt.Errorf("create widget: %w", err)
		}
		if err := rt.widgets.AttachDashboards(dbc, row.ID, dashboardIDs); err != nil {
			return err
		}
		inst.tx = tx
		inst.row = row
		inst.params = params

		if err := impl.CreateDefaultElements(ctx, inst); err != nil {
			return fmt.Errorf("create default elements: %w", err)
		}
		inst.state = StateBound

		for _, el := range inst.staged {
			el.WidgetID = row.ID
		}
		if _, err := rt.elements.Create(dbc, inst.staged); err != nil {
			return fmt.Errorf("create elements: %w", err)
		}
		return nil
	})
	inst.tx = nil
	inst.pending = nil
	if err != nil {
		rt.log.Warn("widget create rolled back", "type", typeID, "error", err)
		return nil, err
	}

	for _, el := range inst.staged {
		inst.elements[el.Name] = el
	}
	inst.staged = nil
	inst.row.Elements = nil
	inst.state = StateActive
	rt.log.Info("widget created", "widget_id", inst.ID(), "type", typeID, "elements", len(inst.elements))
	return inst, nil
}

// Load rehydrates an existing widget. The creation hook is not run.
func (rt *Runtime) Load(ctx context.Context, id uint) (*Instance, error) {
	row, err := rt.widgets.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, types.NotFound("Widget", id)
	}
	desc, ok := rt.registry.Resolve(row.WidgetClass)
	if !ok {
		return nil, fmt.Errorf("%w: widget %d has type %s", ErrUnknownType, id, row.WidgetClass)
	}
	inst := newInstance(rt, desc, desc.Factory())
	if err := inst.bind(row); err != nil {
		return nil, err
	}
	inst.state = StateActive
	return inst, nil
}

// Delete removes the widget with its elements and their media bindings, then
// tells live clients each element is gone. Media rows are kept.
func (rt *Runtime) Delete(ctx context.Context, id uint) error {
	dbc := dbctx.Context{Ctx: ctx}
	row, err := rt.widgets.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if row == nil {
		return types.NotFound("Widget", id)
	}
	if err := rt.widgets.Delete(dbc, id); err != nil {
		return err
	}
	if rt.notify != nil {
		for k := range row.Elements {
			rt.notify.ElementChanged(ctx, &row.Elements[k], realtime.ActionDelete)
		}
	}
	rt.log.Info("widget deleted", "widget_id", id, "elements", len(row.Elements))
	return nil
}

// Execute runs the feature called name. Its writes share one transaction;
// broadcasts queued by the feature go out only after commit. Any error or
// panic inside the feature comes back as *ExecutionError.
func (i *Instance) Execute(ctx context.Context, name string, params map[string]any) (result any, err error) {
	if i.state != StateActive {
		return nil, fmt.Errorf("widget %d is %s, not active", i.ID(), i.state)
	}
	feature, ok := i.impl.Features().Lookup(name)
	if !ok {
		if i.desc.hasOperation(name) {
			return nil, &types.InvalidFeatureError{WidgetClass: i.desc.TypeID, Feature: name}
		}
		return nil, &types.UnknownFeatureError{WidgetClass: i.desc.TypeID, Feature: name}
	}

	ctx, span := i.rt.tracer.Start(ctx, "widget.execute", trace.WithAttributes(
		attribute.String("widget.type", i.desc.TypeID),
		attribute.Int64("widget.id", int64(i.ID())),
		attribute.String("widget.feature", name),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	args, err := feature.expand(params)
	if err != nil {
		return nil, &types.ExecutionError{Feature: name, Cause: err}
	}

	err = i.transact(ctx, func() error {
		out, runErr := runFeature(ctx, feature, i, args)
		result = out
		return runErr
	})
	if err != nil {
		var execErr *types.ExecutionError
		if !errors.As(err, &execErr) {
			err = &types.ExecutionError{Feature: name, Cause: err}
		}
		i.rt.log.Warn("feature failed", "widget_id", i.ID(), "feature", name, "error", err)
		return nil, err
	}
	i.rt.log.Debug("feature executed", "widget_id", i.ID(), "feature", name)
	return result, nil
}

// transact runs fn with every instance write bound to one transaction.
// Broadcasts queued by fn are sent after commit. On failure they are dropped
// and the instance is reloaded so memory matches storage again.
func (i *Instance) transact(ctx context.Context, fn func() error) error {
	err := i.rt.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		i.tx = tx
		return fn()
	})
	i.tx = nil
	if err != nil {
		i.pending = nil
		if reloadErr := i.reload(ctx); reloadErr != nil {
			i.rt.log.Warn("reload after rollback", "widget_id", i.ID(), "error", reloadErr)
		}
		return err
	}
	i.flush(ctx)
	return nil
}

func runFeature(ctx context.Context, f Feature, inst *Instance, args Params) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &types.ExecutionError{Feature: f.MethodName, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	out, err = f.Run(ctx, inst, args)
	if err != nil {
		return nil, &types.ExecutionError{Feature: f.MethodName, Cause: err}
	}
	return out, nil
}
