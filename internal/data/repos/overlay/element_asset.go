package overlay

import (
	"gorm.io/gorm"

	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

type ElementAssetRepo interface {
	Create(dbc dbctx.Context, row *types.ElementAsset) (*types.ElementAsset, error)

	GetByElement(dbc dbctx.Context, elementID uint) ([]*types.ElementAsset, error)
	GetByElementAndRole(dbc dbctx.Context, elementID uint, role string) (*types.ElementAsset, error)
	CountByMedia(dbc dbctx.Context, mediaID uint) (int64, error)

	DeleteByElementAndRole(dbc dbctx.Context, elementID uint, role string) (int64, error)
	DeleteByElement(dbc dbctx.Context, elementID uint) error
}

type elementAssetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewElementAssetRepo(db *gorm.DB, baseLog *logger.Logger) ElementAssetRepo {
	return &elementAssetRepo{db: db, log: baseLog.With("repo", "ElementAssetRepo")}
}

func (r *elementAssetRepo) Create(dbc dbctx.Context, row *types.ElementAsset) (*types.ElementAsset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.Role == "" {
		row.Role = types.DefaultRole
	}
	if err := t.WithContext(dbc.Ctx).Omit("Media").Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *elementAssetRepo) GetByElement(dbc dbctx.Context, elementID uint) ([]*types.ElementAsset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ElementAsset
	if elementID == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Preload("Media").
		Where("element_id = ?", elementID).
		Order("role ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *elementAssetRepo) GetByElementAndRole(dbc dbctx.Context, elementID uint, role string) (*types.ElementAsset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if elementID == 0 {
		return nil, nil
	}
	var out []*types.ElementAsset
	if err := t.WithContext(dbc.Ctx).
		Preload("Media").
		Where("element_id = ? AND role = ?", elementID, role).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *elementAssetRepo) CountByMedia(dbc dbctx.Context, mediaID uint) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).Model(&types.ElementAsset{}).Where("media_id = ?", mediaID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *elementAssetRepo) DeleteByElementAndRole(dbc dbctx.Context, elementID uint, role string) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).Where("element_id = ? AND role = ?", elementID, role).Delete(&types.ElementAsset{})
	return res.RowsAffected, res.Error
}

func (r *elementAssetRepo) DeleteByElement(dbc dbctx.Context, elementID uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("element_id = ?", elementID).Delete(&types.ElementAsset{}).Error
}
