package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/overlay-backend/internal/data/db"
	"github.com/yungbote/overlay-backend/internal/data/repos"
	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

// Assignment is one entry of a batch media assignment.
type Assignment struct {
	MediaID uint   `json:"media_id"`
	Role    string `json:"role"`
}

// ElementService owns role bindings between elements and media. Writes go
// through dbc.Tx when set, so the caller decides when they commit.
type ElementService interface {
	Get(dbc dbctx.Context, elementID uint) (*types.Element, error)
	AssignMedia(dbc dbctx.Context, elementID, mediaID uint, role string, replaceExisting bool) (*types.Element, error)
	AssignMediaBatch(dbc dbctx.Context, elementID uint, items []Assignment) (*types.Element, error)
	RemoveMedia(dbc dbctx.Context, elementID uint, role string) (bool, error)
	ListBindings(dbc dbctx.Context, elementID uint) ([]*types.ElementAsset, error)
}

type elementService struct {
	db          *gorm.DB
	log         *logger.Logger
	elementRepo repos.ElementRepo
	mediaRepo   repos.MediaRepo
	assetRepo   repos.ElementAssetRepo
}

func NewElementService(db *gorm.DB, log *logger.Logger, elementRepo repos.ElementRepo, mediaRepo repos.MediaRepo, assetRepo repos.ElementAssetRepo) ElementService {
	return &elementService{
		db:          db,
		log:         log.With("service", "ElementService"),
		elementRepo: elementRepo,
		mediaRepo:   mediaRepo,
		assetRepo:   assetRepo,
	}
}

func normalizeRole(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return types.DefaultRole
	}
	return role
}

// allowedRoles reads properties.media_roles. An empty list allows any role.
func allowedRoles(el *types.Element) []string {
	var props struct {
		MediaRoles []string `json:"media_roles"`
	}
	if len(el.Properties) == 0 {
		return nil
	}
	if err := json.Unmarshal(el.Properties, &props); err != nil {
		return nil
	}
	return props.MediaRoles
}

func checkRole(el *types.Element, role string) error {
	allowed := allowedRoles(el)
	if len(allowed) == 0 {
		return nil
	}
	for _, r := range allowed {
		if r == role {
			return nil
		}
	}
	return &types.ValidationError{
		Subject: "media role",
		Errors: []string{fmt.Sprintf(
			"Invalid role '%s' for element '%s'. Allowed roles: %s",
			role, el.Name, strings.Join(allowed, ", "),
		)},
	}
}

func (s *elementService) loadElement(dbc dbctx.Context, elementID uint) (*types.Element, error) {
	el, err := s.elementRepo.GetByID(dbc, elementID)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, types.NotFound("Element", elementID)
	}
	return el, nil
}

func (s *elementService) Get(dbc dbctx.Context, elementID uint) (*types.Element, error) {
	return s.loadElement(dbc, elementID)
}

func (s *elementService) loadMedia(dbc dbctx.Context, mediaID uint) (*types.Media, error) {
	m, err := s.mediaRepo.GetByID(dbc, mediaID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, types.NotFound("Media", mediaID)
	}
	return m, nil
}

func (s *elementService) AssignMedia(dbc dbctx.Context, elementID, mediaID uint, role string, replaceExisting bool) (*types.Element, error) {
	role = normalizeRole(role)
	el, err := s.loadElement(dbc, elementID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadMedia(dbc, mediaID); err != nil {
		return nil, err
	}
	if err := checkRole(el, role); err != nil {
		return nil, err
	}
	err = s.inTx(dbc, func(inner dbctx.Context) error {
		return s.bind(inner, el.ID, mediaID, role, replaceExisting)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("media assigned", "element_id", elementID, "media_id", mediaID, "role", role)
	return s.loadElement(dbc, elementID)
}

// inTx runs fn in a transaction, or a savepoint when dbc.Tx is already open.
func (s *elementService) inTx(dbc dbctx.Context, fn func(inner dbctx.Context) error) error {
	t := dbc.Tx
	if t == nil {
		t = s.db
	}
	return t.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbc.WithTx(tx))
	})
}

func (s *elementService) bind(dbc dbctx.Context, elementID, mediaID uint, role string, replace bool) error {
	if replace {
		if _, err := s.assetRepo.DeleteByElementAndRole(dbc, elementID, role); err != nil {
			return err
		}
	} else {
		existing, err := s.assetRepo.GetByElementAndRole(dbc, elementID, role)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: element %d role %s", ErrRoleTaken, elementID, role)
		}
	}
	_, err := s.assetRepo.Create(dbc, &types.ElementAsset{ElementID: elementID, MediaID: mediaID, Role: role})
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: element %d role %s", ErrRoleTaken, elementID, role)
	}
	return err
}

// AssignMediaBatch checks every role before touching anything, then binds
// each item in order, replacing earlier bindings of the same role. The batch
// runs in one transaction (a savepoint when dbc.Tx is already open) so a
// missing media item rolls back the items before it.
func (s *elementService) AssignMediaBatch(dbc dbctx.Context, elementID uint, items []Assignment) (*types.Element, error) {
	el, err := s.loadElement(dbc, elementID)
	if err != nil {
		return nil, err
	}
	normalized := make([]Assignment, len(items))
	for k, it := range items {
		it.Role = normalizeRole(it.Role)
		if err := checkRole(el, it.Role); err != nil {
			return nil, err
		}
		normalized[k] = it
	}

	err = s.inTx(dbc, func(inner dbctx.Context) error {
		for _, it := range normalized {
			if _, err := s.loadMedia(inner, it.MediaID); err != nil {
				return err
			}
			if err := s.bind(inner, elementID, it.MediaID, it.Role, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadElement(dbc, elementID)
}

func (s *elementService) RemoveMedia(dbc dbctx.Context, elementID uint, role string) (bool, error) {
	role = normalizeRole(role)
	if _, err := s.loadElement(dbc, elementID); err != nil {
		return false, err
	}
	n, err := s.assetRepo.DeleteByElementAndRole(dbc, elementID, role)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *elementService) ListBindings(dbc dbctx.Context, elementID uint) ([]*types.ElementAsset, error) {
	if _, err := s.loadElement(dbc, elementID); err != nil {
		return nil, err
	}
	return s.assetRepo.GetByElement(dbc, elementID)
}
