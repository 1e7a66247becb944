package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/overlay-backend/internal/observability"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
	"github.com/yungbote/overlay-backend/internal/realtime"
	"github.com/yungbote/overlay-backend/internal/services"
	"github.com/yungbote/overlay-backend/internal/widgets"
	"github.com/yungbote/overlay-backend/internal/widgets/catalog"
)

type Services struct {
	Registry  *widgets.Registry
	Runtime   *widgets.Runtime
	Element   services.ElementService
	Media     services.MediaService
	Dashboard services.DashboardService
	Widget    services.WidgetService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, notify realtime.Notifier, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	registry := widgets.NewRegistry()
	if err := catalog.RegisterAll(registry); err != nil {
		return Services{}, fmt.Errorf("register widget types: %w", err)
	}
	log.Info("widget types registered", "count", len(registry.List()))

	element := services.NewElementService(db, log, repos.Element, repos.Media, repos.ElementAsset)
	runtime := widgets.NewRuntime(db, log, registry, repos.Widget, repos.Element, element, notify)

	return Services{
		Registry:  registry,
		Runtime:   runtime,
		Element:   element,
		Media:     services.NewMediaService(db, log, repos.Media, repos.ElementAsset, cfg.MediaDir),
		Dashboard: services.NewDashboardService(db, log, repos.Dashboard, repos.Widget, notify),
		Widget:    services.NewWidgetService(db, log, runtime, repos.Widget, metrics),
	}, nil
}
