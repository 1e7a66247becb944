package overlay

import (
	"gorm.io/gorm"

	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

type DashboardRepo interface {
	Create(dbc dbctx.Context, row *types.Dashboard) (*types.Dashboard, error)

	GetByID(dbc dbctx.Context, id uint) (*types.Dashboard, error)
	GetActive(dbc dbctx.Context) (*types.Dashboard, error)
	List(dbc dbctx.Context) ([]*types.Dashboard, error)

	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	// Activate marks id active and every other dashboard inactive. It returns
	// the ids that were active before the call and are not id.
	Activate(dbc dbctx.Context, id uint) ([]uint, error)
	Deactivate(dbc dbctx.Context, id uint) (bool, error)

	AddWidget(dbc dbctx.Context, dashboardID, widgetID uint) error
	RemoveWidget(dbc dbctx.Context, dashboardID, widgetID uint) error

	Delete(dbc dbctx.Context, id uint) error
}

type dashboardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDashboardRepo(db *gorm.DB, baseLog *logger.Logger) DashboardRepo {
	return &dashboardRepo{db: db, log: baseLog.With("repo", "DashboardRepo")}
}

func (r *dashboardRepo) Create(dbc dbctx.Context, row *types.Dashboard) (*types.Dashboard, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Omit("Widgets").Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *dashboardRepo) GetByID(dbc dbctx.Context, id uint) (*types.Dashboard, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil, nil
	}
	var out []*types.Dashboard
	if err := t.WithContext(dbc.Ctx).
		Preload("Widgets", func(db *gorm.DB) *gorm.DB { return db.Order("widget.id ASC") }).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *dashboardRepo) GetActive(dbc dbctx.Context) (*types.Dashboard, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Dashboard
	if err := t.WithContext(dbc.Ctx).Where("is_active = ?", true).Order("id ASC").Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *dashboardRepo) List(dbc dbctx.Context) ([]*types.Dashboard, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Dashboard
	if err := t.WithContext(dbc.Ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *dashboardRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Model(&types.Dashboard{}).Where("id = ?", id).Updates(updates).Error
}

func (r *dashboardRepo) Activate(dbc dbctx.Context, id uint) ([]uint, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var previous []uint
	err := t.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&types.Dashboard{}).
			Where("is_active = ? AND id <> ?", true, id).
			Pluck("id", &previous).Error; err != nil {
			return err
		}
		if len(previous) > 0 {
			if err := tx.Model(&types.Dashboard{}).Where("id IN ?", previous).Update("is_active", false).Error; err != nil {
				return err
			}
		}
		return tx.Model(&types.Dashboard{}).Where("id = ?", id).Update("is_active", true).Error
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

func (r *dashboardRepo) Deactivate(dbc dbctx.Context, id uint) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).Model(&types.Dashboard{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	return res.RowsAffected > 0, res.Error
}

func (r *dashboardRepo) AddWidget(dbc dbctx.Context, dashboardID, widgetID uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Exec(
		"INSERT INTO dashboard_widget (dashboard_id, widget_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		dashboardID, widgetID,
	).Error
}

func (r *dashboardRepo) RemoveWidget(dbc dbctx.Context, dashboardID, widgetID uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	d := &types.Dashboard{ID: dashboardID}
	return t.WithContext(dbc.Ctx).Model(d).Association("Widgets").Delete(&types.Widget{ID: widgetID})
}

func (r *dashboardRepo) Delete(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM dashboard_widget WHERE dashboard_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&types.Dashboard{}, id).Error
	})
}
