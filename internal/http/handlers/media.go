package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/http/response"
	"github.com/yungbote/overlay-backend/internal/overlay/layout"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
	"github.com/yungbote/overlay-backend/internal/services"
)

type MediaHandler struct {
	media        services.MediaService
	overlayWidth int
}

func NewMediaHandler(media services.MediaService, overlayWidth int) *MediaHandler {
	return &MediaHandler{media: media, overlayWidth: overlayWidth}
}

type mediaView struct {
	*types.Media
	Kind          string  `json:"kind"`
	URL           string  `json:"url"`
	WidthFraction float64 `json:"width_fraction,omitempty"`
	AspectRatio   float64 `json:"aspect_ratio,omitempty"`
}

func (h *MediaHandler) view(m *types.Media) mediaView {
	v := mediaView{Media: m, Kind: m.Kind(), URL: m.URL()}
	if m.Width != nil && m.Height != nil {
		v.WidthFraction = layout.WidthFraction(*m.Width, h.overlayWidth)
		v.AspectRatio = layout.AspectRatio(*m.Width, *m.Height)
	}
	return v
}

// GET /api/media?kind=
func (h *MediaHandler) ListMedia(c *gin.Context) {
	items, err := h.media.List(dbctx.New(c.Request.Context()), c.Query("kind"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out := make([]mediaView, 0, len(items))
	for _, m := range items {
		out = append(out, h.view(m))
	}
	response.RespondOK(c, gin.H{"media": out})
}

// POST /api/media
func (h *MediaHandler) RegisterMedia(c *gin.Context) {
	var req services.RegisterMediaInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	m, err := h.media.Register(dbctx.New(c.Request.Context()), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"media": h.view(m)})
}

// GET /api/media/:id
func (h *MediaHandler) GetMedia(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_media_id", err)
		return
	}
	m, err := h.media.Get(dbctx.New(c.Request.Context()), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"media": h.view(m)})
}

// DELETE /api/media/:id
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_media_id", err)
		return
	}
	if err := h.media.Delete(dbctx.New(c.Request.Context()), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
