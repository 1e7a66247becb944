package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/overlay-backend/internal/data/repos"
	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/observability"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
	"github.com/yungbote/overlay-backend/internal/widgets"
)

type CreateWidgetInput struct {
	Type         string         `json:"type"`
	Name         string         `json:"name"`
	Parameters   map[string]any `json:"parameters"`
	DashboardIDs []uint         `json:"dashboard_ids"`
}

type UpdateWidgetInput struct {
	Name       *string        `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// WidgetService is the request-facing side of the widget runtime. Calls on
// the same widget are serialized.
type WidgetService interface {
	ListTypes() []widgets.TypeInfo
	List(ctx context.Context, dashboardID *uint) ([]widgets.InstanceView, error)
	Create(ctx context.Context, in CreateWidgetInput) (widgets.InstanceView, error)
	Get(ctx context.Context, id uint) (widgets.InstanceView, error)
	Update(ctx context.Context, id uint, in UpdateWidgetInput) (widgets.InstanceView, error)
	Delete(ctx context.Context, id uint) error

	Features(ctx context.Context, id uint) ([]widgets.FeatureInfo, error)
	Execute(ctx context.Context, id uint, feature string, params map[string]any) (any, error)

	ListElements(ctx context.Context, id uint) ([]*widgets.ElementView, error)
	UpdateElement(ctx context.Context, widgetID, elementID uint, patch widgets.ElementPatch) (*widgets.ElementView, error)
}

type widgetService struct {
	db         *gorm.DB
	log        *logger.Logger
	runtime    *widgets.Runtime
	widgetRepo repos.WidgetRepo
	metrics    *observability.Metrics

	mu    sync.Mutex
	locks map[uint]*widgetLock
}

// widgetLock is dropped from the map once its last holder or waiter leaves.
type widgetLock struct {
	mu   sync.Mutex
	refs int
}

// NewWidgetService wires the runtime behind the API. metrics may be nil.
func NewWidgetService(db *gorm.DB, log *logger.Logger, runtime *widgets.Runtime, widgetRepo repos.WidgetRepo, metrics *observability.Metrics) WidgetService {
	return &widgetService{
		db:         db,
		log:        log.With("service", "WidgetService"),
		runtime:    runtime,
		widgetRepo: widgetRepo,
		metrics:    metrics,
		locks:      map[uint]*widgetLock{},
	}
}

func (s *widgetService) lock(id uint) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &widgetLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

func (s *widgetService) ListTypes() []widgets.TypeInfo {
	return s.runtime.Registry().List()
}

func (s *widgetService) List(ctx context.Context, dashboardID *uint) ([]widgets.InstanceView, error) {
	dbc := dbctx.New(ctx)
	var (
		rows []*types.Widget
		err  error
	)
	if dashboardID != nil {
		rows, err = s.widgetRepo.ListByDashboard(dbc, *dashboardID)
	} else {
		rows, err = s.widgetRepo.List(dbc)
	}
	if err != nil {
		return nil, err
	}
	out := make([]widgets.InstanceView, 0, len(rows))
	for _, row := range rows {
		inst, err := s.runtime.Load(ctx, row.ID)
		if err != nil {
			// a widget whose type is no longer registered is skipped, not fatal
			s.log.Warn("skipping widget", "widget_id", row.ID, "type", row.WidgetClass, "error", err)
			continue
		}
		out = append(out, inst.View())
	}
	return out, nil
}

func (s *widgetService) Create(ctx context.Context, in CreateWidgetInput) (widgets.InstanceView, error) {
	inst, err := s.runtime.Create(ctx, strings.TrimSpace(in.Type), in.Name, in.Parameters, in.DashboardIDs)
	if err != nil {
		return widgets.InstanceView{}, err
	}
	return inst.View(), nil
}

func (s *widgetService) Get(ctx context.Context, id uint) (widgets.InstanceView, error) {
	inst, err := s.runtime.Load(ctx, id)
	if err != nil {
		return widgets.InstanceView{}, err
	}
	return inst.View(), nil
}

func (s *widgetService) Update(ctx context.Context, id uint, in UpdateWidgetInput) (widgets.InstanceView, error) {
	defer s.lock(id)()
	inst, err := s.runtime.Load(ctx, id)
	if err != nil {
		return widgets.InstanceView{}, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return widgets.InstanceView{}, ErrInvalidName
		}
		if err := s.widgetRepo.UpdateFields(dbctx.New(ctx), id, map[string]interface{}{"name": name}); err != nil {
			return widgets.InstanceView{}, err
		}
	}
	if len(in.Parameters) > 0 {
		if err := inst.UpdateParameters(ctx, in.Parameters); err != nil {
			return widgets.InstanceView{}, err
		}
	}
	return s.Get(ctx, id)
}

func (s *widgetService) Delete(ctx context.Context, id uint) error {
	defer s.lock(id)()
	return s.runtime.Delete(ctx, id)
}

func (s *widgetService) Features(ctx context.Context, id uint) ([]widgets.FeatureInfo, error) {
	inst, err := s.runtime.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return widgets.Extract(inst.Descriptor()), nil
}

func (s *widgetService) Execute(ctx context.Context, id uint, feature string, params map[string]any) (any, error) {
	defer s.lock(id)()
	inst, err := s.runtime.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}
	feature = strings.TrimSpace(feature)
	start := time.Now()
	out, err := inst.Execute(ctx, feature, params)
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveFeature(inst.TypeID(), feature, status, time.Since(start))
	return out, err
}

func (s *widgetService) ListElements(ctx context.Context, id uint) ([]*widgets.ElementView, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return v.Elements, nil
}

func (s *widgetService) UpdateElement(ctx context.Context, widgetID, elementID uint, patch widgets.ElementPatch) (*widgets.ElementView, error) {
	if patch.Empty() {
		return nil, &types.ValidationError{Subject: "element update", Errors: []string{"nothing to update"}}
	}
	defer s.lock(widgetID)()
	inst, err := s.runtime.Load(ctx, widgetID)
	if err != nil {
		return nil, err
	}
	el, err := inst.ElementByID(elementID)
	if err != nil {
		return nil, err
	}
	updated, err := inst.PatchElement(ctx, el.Name, patch)
	if err != nil {
		return nil, err
	}
	return widgets.Snapshot(updated), nil
}
