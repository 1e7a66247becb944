package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/overlay-backend/internal/data/repos"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

type Repos struct {
	Widget       repos.WidgetRepo
	Element      repos.ElementRepo
	Media        repos.MediaRepo
	ElementAsset repos.ElementAssetRepo
	Dashboard    repos.DashboardRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Widget:       repos.NewWidgetRepo(db, log),
		Element:      repos.NewElementRepo(db, log),
		Media:        repos.NewMediaRepo(db, log),
		ElementAsset: repos.NewElementAssetRepo(db, log),
		Dashboard:    repos.NewDashboardRepo(db, log),
	}
}
