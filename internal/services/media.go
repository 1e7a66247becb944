package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/overlay-backend/internal/data/db"
	"github.com/yungbote/overlay-backend/internal/data/repos"
	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/overlay/layout"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

// RegisterMediaInput describes a file that is already stored under the media
// directory. Width and height are probed from the file when not given.
type RegisterMediaInput struct {
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	MimeType         string `json:"mime_type"`
	SizeBytes        int64  `json:"file_size"`
	Width            *int   `json:"width,omitempty"`
	Height           *int   `json:"height,omitempty"`
}

type MediaService interface {
	Register(dbc dbctx.Context, in RegisterMediaInput) (*types.Media, error)
	Get(dbc dbctx.Context, id uint) (*types.Media, error)
	List(dbc dbctx.Context, kind string) ([]*types.Media, error)
	// Delete refuses media that any element still binds.
	Delete(dbc dbctx.Context, id uint) error
	// BackfillDimensions probes image rows registered without width/height.
	BackfillDimensions(dbc dbctx.Context, limit int, dryRun bool) (BackfillReport, error)
}

type BackfillReport struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

type mediaService struct {
	db        *gorm.DB
	log       *logger.Logger
	mediaRepo repos.MediaRepo
	assetRepo repos.ElementAssetRepo
	mediaDir  string
}

func NewMediaService(db *gorm.DB, log *logger.Logger, mediaRepo repos.MediaRepo, assetRepo repos.ElementAssetRepo, mediaDir string) MediaService {
	return &mediaService{
		db:        db,
		log:       log.With("service", "MediaService"),
		mediaRepo: mediaRepo,
		assetRepo: assetRepo,
		mediaDir:  mediaDir,
	}
}

func (s *mediaService) Register(dbc dbctx.Context, in RegisterMediaInput) (*types.Media, error) {
	name := strings.TrimSpace(in.Filename)
	if name == "" || name != filepath.Base(name) {
		return nil, &types.ValidationError{Subject: "media", Errors: []string{"filename must be a bare file name"}}
	}
	mime := strings.ToLower(strings.TrimSpace(in.MimeType))
	var errs []string
	switch kind, _, _ := strings.Cut(mime, "/"); kind {
	case "image", "video", "audio":
	default:
		errs = append(errs, fmt.Sprintf("unsupported mime type '%s'", in.MimeType))
	}
	if in.SizeBytes < 0 {
		errs = append(errs, "file_size must be non-negative")
	}
	if len(errs) > 0 {
		return nil, &types.ValidationError{Subject: "media", Errors: errs}
	}

	row := &types.Media{
		Filename:         name,
		OriginalFilename: in.OriginalFilename,
		MimeType:         mime,
		SizeBytes:        in.SizeBytes,
		Width:            in.Width,
		Height:           in.Height,
	}
	if row.Kind() == "image" && (row.Width == nil || row.Height == nil) && s.mediaDir != "" {
		w, h, err := layout.ProbeFile(filepath.Join(s.mediaDir, name))
		if err != nil {
			s.log.Debug("media dimensions not probed", "filename", name, "error", err)
		} else {
			row.Width, row.Height = &w, &h
		}
	}

	out, err := s.mediaRepo.Create(dbc, row)
	if db.IsUniqueViolation(err) {
		return nil, fmt.Errorf("%w: media %s", ErrConflict, name)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("media registered", "media_id", out.ID, "filename", name, "mime_type", mime)
	return out, nil
}

func (s *mediaService) Get(dbc dbctx.Context, id uint) (*types.Media, error) {
	m, err := s.mediaRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, types.NotFound("Media", id)
	}
	return m, nil
}

func (s *mediaService) List(dbc dbctx.Context, kind string) ([]*types.Media, error) {
	return s.mediaRepo.List(dbc, strings.ToLower(strings.TrimSpace(kind)))
}

func (s *mediaService) Delete(dbc dbctx.Context, id uint) error {
	if _, err := s.Get(dbc, id); err != nil {
		return err
	}
	n, err := s.assetRepo.CountByMedia(dbc, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: media %d has %d bindings", ErrMediaInUse, id, n)
	}
	if err := s.mediaRepo.Delete(dbc, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: media %d", ErrMediaInUse, id)
		}
		return err
	}
	return nil
}

func (s *mediaService) BackfillDimensions(dbc dbctx.Context, limit int, dryRun bool) (BackfillReport, error) {
	var rep BackfillReport
	if s.mediaDir == "" {
		return rep, fmt.Errorf("media directory not configured")
	}
	rows, err := s.mediaRepo.ListMissingDimensions(dbc, limit)
	if err != nil {
		return rep, err
	}
	for _, m := range rows {
		rep.Scanned++
		w, h, err := layout.ProbeFile(filepath.Join(s.mediaDir, m.Filename))
		if err != nil {
			rep.Failed++
			s.log.Warn("probe failed", "media_id", m.ID, "filename", m.Filename, "error", err)
			continue
		}
		if dryRun {
			s.log.Info("would update dimensions", "media_id", m.ID, "width", w, "height", h)
			rep.Updated++
			continue
		}
		if err := s.mediaRepo.UpdateDimensions(dbc, m.ID, w, h); err != nil {
			return rep, err
		}
		rep.Updated++
	}
	return rep, nil
}
