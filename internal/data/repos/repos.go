package repos

import "github.com/yungbote/overlay-backend/internal/data/repos/overlay"

type WidgetRepo = overlay.WidgetRepo
type ElementRepo = overlay.ElementRepo
type MediaRepo = overlay.MediaRepo
type ElementAssetRepo = overlay.ElementAssetRepo
type DashboardRepo = overlay.DashboardRepo

var (
	NewWidgetRepo       = overlay.NewWidgetRepo
	NewElementRepo      = overlay.NewElementRepo
	NewMediaRepo        = overlay.NewMediaRepo
	NewElementAssetRepo = overlay.NewElementAssetRepo
	NewDashboardRepo    = overlay.NewDashboardRepo
)
