package overlay

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

type WidgetRepo interface {
	Create(dbc dbctx.Context, row *types.Widget) (*types.Widget, error)

	GetByID(dbc dbctx.Context, id uint) (*types.Widget, error)
	List(dbc dbctx.Context) ([]*types.Widget, error)
	ListByDashboard(dbc dbctx.Context, dashboardID uint) ([]*types.Widget, error)

	UpdateParameters(dbc dbctx.Context, id uint, params datatypes.JSON) error
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	AttachDashboards(dbc dbctx.Context, widgetID uint, dashboardIDs []uint) error

	// Delete removes the widget with its elements and their media bindings.
	Delete(dbc dbctx.Context, id uint) error
}

type widgetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWidgetRepo(db *gorm.DB, baseLog *logger.Logger) WidgetRepo {
	return &widgetRepo{db: db, log: baseLog.With("repo", "WidgetRepo")}
}

func (r *widgetRepo) Create(dbc dbctx.Context, row *types.Widget) (*types.Widget, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.Parameters == nil {
		row.Parameters = datatypes.JSON([]byte("{}"))
	}
	if err := t.WithContext(dbc.Ctx).Omit("Elements", "Dashboards").Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *widgetRepo) GetByID(dbc dbctx.Context, id uint) (*types.Widget, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil, nil
	}
	var out []*types.Widget
	if err := t.WithContext(dbc.Ctx).
		Preload("Elements", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Elements.MediaAssets").
		Preload("Elements.MediaAssets.Media").
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

func (r *widgetRepo) List(dbc dbctx.Context) ([]*types.Widget, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Widget
	if err := t.WithContext(dbc.Ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *widgetRepo) ListByDashboard(dbc dbctx.Context, dashboardID uint) ([]*types.Widget, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Widget
	if dashboardID == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Joins("JOIN dashboard_widget dw ON dw.widget_id = widget.id").
		Where("dw.dashboard_id = ?", dashboardID).
		Order("widget.id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *widgetRepo) UpdateParameters(dbc dbctx.Context, id uint, params datatypes.JSON) error {
	return r.UpdateFields(dbc, id, map[string]interface{}{"widget_parameters": params})
}

func (r *widgetRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Model(&types.Widget{}).Where("id = ?", id).Updates(updates).Error
}

func (r *widgetRepo) AttachDashboards(dbc dbctx.Context, widgetID uint, dashboardIDs []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if widgetID == 0 || len(dashboardIDs) == 0 {
		return nil
	}
	var dashboards []types.Dashboard
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", dashboardIDs).Find(&dashboards).Error; err != nil {
		return err
	}
	if len(dashboards) != len(uniqueIDs(dashboardIDs)) {
		return types.NotFound("Dashboard", missingID(dashboardIDs, dashboards))
	}
	w := &types.Widget{ID: widgetID}
	return t.WithContext(dbc.Ctx).Model(w).Association("Dashboards").Append(dashboards)
}

func (r *widgetRepo) Delete(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		elementIDs := tx.Model(&types.Element{}).Select("id").Where("widget_id = ?", id)
		if err := tx.Where("element_id IN (?)", elementIDs).Delete(&types.ElementAsset{}).Error; err != nil {
			return err
		}
		if err := tx.Where("widget_id = ?", id).Delete(&types.Element{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM dashboard_widget WHERE widget_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&types.Widget{}, id).Error
	})
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	out := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func missingID(want []uint, got []types.Dashboard) uint {
	have := make(map[uint]struct{}, len(got))
	for _, d := range got {
		have[d.ID] = struct{}{}
	}
	for _, id := range want {
		if _, ok := have[id]; !ok {
			return id
		}
	}
	return 0
}
