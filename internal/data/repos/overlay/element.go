package overlay

import (
	"gorm.io/gorm"

	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

// ElementRepo always eager-loads MediaAssets.Media so callers never hit a
// lazy relation after the query returns.
type ElementRepo interface {
	Create(dbc dbctx.Context, rows []*types.Element) ([]*types.Element, error)

	GetByID(dbc dbctx.Context, id uint) (*types.Element, error)
	GetByWidgetAndName(dbc dbctx.Context, widgetID uint, name string) (*types.Element, error)
	ListByWidget(dbc dbctx.Context, widgetID uint) ([]*types.Element, error)

	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	DeleteByWidget(dbc dbctx.Context, widgetID uint) error
}

type elementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewElementRepo(db *gorm.DB, baseLog *logger.Logger) ElementRepo {
	return &elementRepo{db: db, log: baseLog.With("repo", "ElementRepo")}
}

func withMedia(db *gorm.DB) *gorm.DB {
	return db.Preload("MediaAssets", func(q *gorm.DB) *gorm.DB { return q.Order("role ASC") }).
		Preload("MediaAssets.Media")
}

func (r *elementRepo) Create(dbc dbctx.Context, rows []*types.Element) ([]*types.Element, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Element{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Omit("MediaAssets").Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *elementRepo) GetByID(dbc dbctx.Context, id uint) (*types.Element, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil, nil
	}
	var out []*types.Element
	if err := withMedia(t.WithContext(dbc.Ctx)).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *elementRepo) GetByWidgetAndName(dbc dbctx.Context, widgetID uint, name string) (*types.Element, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if widgetID == 0 || name == "" {
		return nil, nil
	}
	var out []*types.Element
	if err := withMedia(t.WithContext(dbc.Ctx)).
		Where("widget_id = ? AND name = ?", widgetID, name).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *elementRepo) ListByWidget(dbc dbctx.Context, widgetID uint) ([]*types.Element, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Element
	if widgetID == 0 {
		return out, nil
	}
	if err := withMedia(t.WithContext(dbc.Ctx)).
		Where("widget_id = ?", widgetID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *elementRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Model(&types.Element{}).Where("id = ?", id).Updates(updates).Error
}

func (r *elementRepo) DeleteByWidget(dbc dbctx.Context, widgetID uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if widgetID == 0 {
		return nil
	}
	ids := t.WithContext(dbc.Ctx).Model(&types.Element{}).Select("id").Where("widget_id = ?", widgetID)
	if err := t.WithContext(dbc.Ctx).Where("element_id IN (?)", ids).Delete(&types.ElementAsset{}).Error; err != nil {
		return err
	}
	return t.WithContext(dbc.Ctx).Where("widget_id = ?", widgetID).Delete(&types.Element{}).Error
}
