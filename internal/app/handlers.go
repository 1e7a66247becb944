package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/overlay-backend/internal/http/handlers"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
	"github.com/yungbote/overlay-backend/internal/realtime"
)

type Handlers struct {
	Health    *handlers.HealthHandler
	Widget    *handlers.WidgetHandler
	Element   *handlers.ElementHandler
	Media     *handlers.MediaHandler
	Dashboard *handlers.DashboardHandler
	Live      *handlers.LiveHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, cfg Config, services Services, hub *realtime.Hub, notify realtime.Notifier) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    handlers.NewHealthHandler(db),
		Widget:    handlers.NewWidgetHandler(services.Widget),
		Element:   handlers.NewElementHandler(services.Element, notify),
		Media:     handlers.NewMediaHandler(services.Media, cfg.OverlayWidthPx),
		Dashboard: handlers.NewDashboardHandler(services.Dashboard),
		Live:      handlers.NewLiveHandler(log, hub),
	}
}
