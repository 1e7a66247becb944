package app

import (
	httpserver "github.com/yungbote/overlay-backend/internal/http"
	httpMW "github.com/yungbote/overlay-backend/internal/http/middleware"
	"github.com/yungbote/overlay-backend/internal/observability"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *httpserver.Server {
	auth := httpMW.NewAuthMiddleware(log, cfg.ControlJWTSecret)
	if !auth.Enabled() {
		log.Warn("CONTROL_JWT_SECRET not set; control API is unauthenticated")
	}
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:            log,
		CORSOrigins:    cfg.CORSOrigins,
		MediaDir:       cfg.MediaDir,
		AuthMiddleware: auth,
		Metrics:        metrics,

		HealthHandler:    handlers.Health,
		WidgetHandler:    handlers.Widget,
		ElementHandler:   handlers.Element,
		MediaHandler:     handlers.Media,
		DashboardHandler: handlers.Dashboard,
		LiveHandler:      handlers.Live,
	})
}
