package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/overlay-backend/internal/data/db"
	"github.com/yungbote/overlay-backend/internal/data/repos"
	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
	"github.com/yungbote/overlay-backend/internal/realtime"
)

// DashboardService manages dashboards. At most one dashboard is active; live
// clients hear about every activation change.
type DashboardService interface {
	Create(dbc dbctx.Context, name, description string) (*types.Dashboard, error)
	Get(dbc dbctx.Context, id uint) (*types.Dashboard, error)
	GetActive(dbc dbctx.Context) (*types.Dashboard, error)
	List(dbc dbctx.Context) ([]*types.Dashboard, error)
	Update(dbc dbctx.Context, id uint, name, description *string) (*types.Dashboard, error)
	Delete(dbc dbctx.Context, id uint) error

	Activate(dbc dbctx.Context, id uint) (*types.Dashboard, error)
	Deactivate(dbc dbctx.Context, id uint) (*types.Dashboard, error)

	AddWidget(dbc dbctx.Context, dashboardID, widgetID uint) error
	RemoveWidget(dbc dbctx.Context, dashboardID, widgetID uint) error
}

type dashboardService struct {
	db            *gorm.DB
	log           *logger.Logger
	dashboardRepo repos.DashboardRepo
	widgetRepo    repos.WidgetRepo
	notify        realtime.Notifier
}

func NewDashboardService(db *gorm.DB, log *logger.Logger, dashboardRepo repos.DashboardRepo, widgetRepo repos.WidgetRepo, notify realtime.Notifier) DashboardService {
	return &dashboardService{
		db:            db,
		log:           log.With("service", "DashboardService"),
		dashboardRepo: dashboardRepo,
		widgetRepo:    widgetRepo,
		notify:        notify,
	}
}

func (s *dashboardService) Create(dbc dbctx.Context, name, description string) (*types.Dashboard, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	out, err := s.dashboardRepo.Create(dbc, &types.Dashboard{Name: name, Description: description})
	if db.IsUniqueViolation(err) {
		return nil, fmt.Errorf("%w: dashboard %s", ErrConflict, name)
	}
	return out, err
}

func (s *dashboardService) Get(dbc dbctx.Context, id uint) (*types.Dashboard, error) {
	d, err := s.dashboardRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, types.NotFound("Dashboard", id)
	}
	return d, nil
}

func (s *dashboardService) GetActive(dbc dbctx.Context) (*types.Dashboard, error) {
	d, err := s.dashboardRepo.GetActive(dbc)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, types.NotFound("Dashboard", "active")
	}
	return d, nil
}

func (s *dashboardService) List(dbc dbctx.Context) ([]*types.Dashboard, error) {
	return s.dashboardRepo.List(dbc)
}

func (s *dashboardService) Update(dbc dbctx.Context, id uint, name, description *string) (*types.Dashboard, error) {
	if _, err := s.Get(dbc, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, ErrInvalidName
		}
		updates["name"] = n
	}
	if description != nil {
		updates["description"] = *description
	}
	if err := s.dashboardRepo.UpdateFields(dbc, id, updates); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: dashboard %s", ErrConflict, *name)
		}
		return nil, err
	}
	return s.Get(dbc, id)
}

func (s *dashboardService) Delete(dbc dbctx.Context, id uint) error {
	d, err := s.Get(dbc, id)
	if err != nil {
		return err
	}
	if err := s.dashboardRepo.Delete(dbc, id); err != nil {
		return err
	}
	if d.IsActive && s.notify != nil {
		s.notify.DashboardDeactivated(dbc.Ctx, id)
	}
	return nil
}

// Activate makes id the only active dashboard. Clients get a deactivation
// event for each dashboard switched off, then the activation event.
func (s *dashboardService) Activate(dbc dbctx.Context, id uint) (*types.Dashboard, error) {
	if _, err := s.Get(dbc, id); err != nil {
		return nil, err
	}
	previous, err := s.dashboardRepo.Activate(dbc, id)
	if err != nil {
		return nil, err
	}
	if s.notify != nil {
		for _, prev := range previous {
			s.notify.DashboardDeactivated(dbc.Ctx, prev)
		}
		s.notify.DashboardActivated(dbc.Ctx, id)
	}
	s.log.Info("dashboard activated", "dashboard_id", id, "deactivated", previous)
	return s.Get(dbc, id)
}

func (s *dashboardService) Deactivate(dbc dbctx.Context, id uint) (*types.Dashboard, error) {
	if _, err := s.Get(dbc, id); err != nil {
		return nil, err
	}
	changed, err := s.dashboardRepo.Deactivate(dbc, id)
	if err != nil {
		return nil, err
	}
	if changed && s.notify != nil {
		s.notify.DashboardDeactivated(dbc.Ctx, id)
	}
	return s.Get(dbc, id)
}

func (s *dashboardService) AddWidget(dbc dbctx.Context, dashboardID, widgetID uint) error {
	if _, err := s.Get(dbc, dashboardID); err != nil {
		return err
	}
	w, err := s.widgetRepo.GetByID(dbc, widgetID)
	if err != nil {
		return err
	}
	if w == nil {
		return types.NotFound("Widget", widgetID)
	}
	return s.dashboardRepo.AddWidget(dbc, dashboardID, widgetID)
}

func (s *dashboardService) RemoveWidget(dbc dbctx.Context, dashboardID, widgetID uint) error {
	if _, err := s.Get(dbc, dashboardID); err != nil {
		return err
	}
	return s.dashboardRepo.RemoveWidget(dbc, dashboardID, widgetID)
}
