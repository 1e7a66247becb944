package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/overlay-backend/internal/http/response"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
	"github.com/yungbote/overlay-backend/internal/realtime"
	"github.com/yungbote/overlay-backend/internal/services"
)

type ElementHandler struct {
	elements services.ElementService
	notify   realtime.Notifier
}

func NewElementHandler(elements services.ElementService, notify realtime.Notifier) *ElementHandler {
	return &ElementHandler{elements: elements, notify: notify}
}

// GET /api/elements/:id/media
func (h *ElementHandler) ListMedia(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_element_id", err)
		return
	}
	bindings, err := h.elements.ListBindings(dbctx.New(c.Request.Context()), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"bindings": bindings})
}

type assignMediaRequest struct {
	MediaID uint                  `json:"media_id"`
	Role    string                `json:"role"`
	Replace *bool                 `json:"replace"`
	Items   []services.Assignment `json:"items"`
}

// POST /api/elements/:id/media
//
// Either a single {media_id, role, replace} or a batch {items: [...]}.
// A single assign replaces the role's current media unless replace is false.
// Batch items always replace.
func (h *ElementHandler) AssignMedia(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_element_id", err)
		return
	}
	var req assignMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dbc := dbctx.New(c.Request.Context())
	switch {
	case len(req.Items) > 0:
		el, err := h.elements.AssignMediaBatch(dbc, id, req.Items)
		if err != nil {
			response.RespondErr(c, err)
			return
		}
		h.notify.ElementChanged(c.Request.Context(), el, realtime.ActionUpdate)
		response.RespondOK(c, gin.H{"element": realtime.Snapshot(el)})
	case req.MediaID != 0:
		replace := req.Replace == nil || *req.Replace
		el, err := h.elements.AssignMedia(dbc, id, req.MediaID, req.Role, replace)
		if err != nil {
			response.RespondErr(c, err)
			return
		}
		h.notify.ElementChanged(c.Request.Context(), el, realtime.ActionUpdate)
		response.RespondOK(c, gin.H{"element": realtime.Snapshot(el)})
	default:
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errMissingMedia)
	}
}

// DELETE /api/elements/:id/media?role=
func (h *ElementHandler) RemoveMedia(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_element_id", err)
		return
	}
	dbc := dbctx.New(c.Request.Context())
	removed, err := h.elements.RemoveMedia(dbc, id, c.Query("role"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if removed {
		if el, err := h.elements.Get(dbc, id); err == nil {
			h.notify.ElementChanged(c.Request.Context(), el, realtime.ActionUpdate)
		}
	}
	response.RespondOK(c, gin.H{"removed": removed})
}
