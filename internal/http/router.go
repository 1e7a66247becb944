package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/overlay-backend/internal/http/handlers"
	httpMW "github.com/yungbote/overlay-backend/internal/http/middleware"
	"github.com/yungbote/overlay-backend/internal/observability"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	MediaDir       string
	AuthMiddleware *httpMW.AuthMiddleware
	Metrics        *observability.Metrics

	HealthHandler    *httpH.HealthHandler
	WidgetHandler    *httpH.WidgetHandler
	ElementHandler   *httpH.ElementHandler
	MediaHandler     *httpH.MediaHandler
	DashboardHandler *httpH.DashboardHandler
	LiveHandler      *httpH.LiveHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "overlay-backend"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}
	if cfg.MediaDir != "" {
		r.Static("/uploads", cfg.MediaDir)
	}

	// Live (overlay browser sources connect without operator credentials)
	if cfg.LiveHandler != nil {
		r.GET("/ws/:group", cfg.LiveHandler.Connect)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireOperator())
	}

	// Widgets
	if cfg.WidgetHandler != nil {
		api.GET("/widgets/types", cfg.WidgetHandler.ListTypes)
		api.GET("/widgets", cfg.WidgetHandler.ListWidgets)
		api.POST("/widgets", cfg.WidgetHandler.CreateWidget)
		api.GET("/widgets/:id", cfg.WidgetHandler.GetWidget)
		api.PATCH("/widgets/:id", cfg.WidgetHandler.UpdateWidget)
		api.DELETE("/widgets/:id", cfg.WidgetHandler.DeleteWidget)
		api.GET("/widgets/:id/features", cfg.WidgetHandler.ListFeatures)
		api.POST("/widgets/:id/execute", cfg.WidgetHandler.Execute)
		api.GET("/widgets/:id/elements", cfg.WidgetHandler.ListElements)
		api.PATCH("/widgets/:id/elements/:element_id", cfg.WidgetHandler.UpdateElement)
	}

	// Elements
	if cfg.ElementHandler != nil {
		api.GET("/elements/:id/media", cfg.ElementHandler.ListMedia)
		api.POST("/elements/:id/media", cfg.ElementHandler.AssignMedia)
		api.DELETE("/elements/:id/media", cfg.ElementHandler.RemoveMedia)
	}

	// Media
	if cfg.MediaHandler != nil {
		api.GET("/media", cfg.MediaHandler.ListMedia)
		api.POST("/media", cfg.MediaHandler.RegisterMedia)
		api.GET("/media/:id", cfg.MediaHandler.GetMedia)
		api.DELETE("/media/:id", cfg.MediaHandler.DeleteMedia)
	}

	// Dashboards
	if cfg.DashboardHandler != nil {
		api.GET("/dashboards", cfg.DashboardHandler.ListDashboards)
		api.POST("/dashboards", cfg.DashboardHandler.CreateDashboard)
		api.GET("/dashboards/active", cfg.DashboardHandler.GetActive)
		api.GET("/dashboards/:id", cfg.DashboardHandler.GetDashboard)
		api.PATCH("/dashboards/:id", cfg.DashboardHandler.UpdateDashboard)
		api.DELETE("/dashboards/:id", cfg.DashboardHandler.DeleteDashboard)
		api.POST("/dashboards/:id/activate", cfg.DashboardHandler.Activate)
		api.POST("/dashboards/:id/deactivate", cfg.DashboardHandler.Deactivate)
		api.POST("/dashboards/:id/widgets/:widget_id", cfg.DashboardHandler.AddWidget)
		api.DELETE("/dashboards/:id/widgets/:widget_id", cfg.DashboardHandler.RemoveWidget)
	}

	if cfg.LiveHandler != nil {
		api.GET("/live/stats", cfg.LiveHandler.Stats)
	}

	return r
}
