package overlay

import (
	"gorm.io/gorm"

	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

type MediaRepo interface {
	Create(dbc dbctx.Context, row *types.Media) (*types.Media, error)

	GetByID(dbc dbctx.Context, id uint) (*types.Media, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Media, error)
	GetByFilename(dbc dbctx.Context, filename string) (*types.Media, error)
	List(dbc dbctx.Context, kind string) ([]*types.Media, error)
	ListMissingDimensions(dbc dbctx.Context, limit int) ([]*types.Media, error)

	UpdateDimensions(dbc dbctx.Context, id uint, width, height int) error
	Delete(dbc dbctx.Context, id uint) error
}

type mediaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMediaRepo(db *gorm.DB, baseLog *logger.Logger) MediaRepo {
	return &mediaRepo{db: db, log: baseLog.With("repo", "MediaRepo")}
}

func (r *mediaRepo) Create(dbc dbctx.Context, row *types.Media) (*types.Media, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *mediaRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Media, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Media
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mediaRepo) GetByID(dbc dbctx.Context, id uint) (*types.Media, error) {
	if id == 0 {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uint{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *mediaRepo) GetByFilename(dbc dbctx.Context, filename string) (*types.Media, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if filename == "" {
		return nil, nil
	}
	var out []*types.Media
	if err := t.WithContext(dbc.Ctx).Where("filename = ?", filename).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// List filters by MIME family ("image", "audio", ...) when kind is set.
func (r *mediaRepo) List(dbc dbctx.Context, kind string) ([]*types.Media, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Order("id ASC")
	if kind != "" {
		q = q.Where("mime_type LIKE ?", kind+"/%")
	}
	var out []*types.Media
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mediaRepo) Delete(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Delete(&types.Media{}, id).Error
}

// ListMissingDimensions returns image rows without a probed width or height.
func (r *mediaRepo) ListMissingDimensions(dbc dbctx.Context, limit int) ([]*types.Media, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).
		Where("mime_type LIKE ?", "image/%").
		Where("width IS NULL OR height IS NULL").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.Media
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mediaRepo) UpdateDimensions(dbc dbctx.Context, id uint, width, height int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Media{}).
		Where("id = ?", id).
		Updates(map[string]any{"width": width, "height": height}).Error
}
