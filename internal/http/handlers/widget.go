package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/overlay-backend/internal/http/response"
	"github.com/yungbote/overlay-backend/internal/services"
	"github.com/yungbote/overlay-backend/internal/widgets"
)

type WidgetHandler struct {
	widgets services.WidgetService
}

func NewWidgetHandler(widgets services.WidgetService) *WidgetHandler {
	return &WidgetHandler{widgets: widgets}
}

// GET /api/widgets/types
func (h *WidgetHandler) ListTypes(c *gin.Context) {
	response.RespondOK(c, gin.H{"types": h.widgets.ListTypes()})
}

// GET /api/widgets?dashboard_id=
func (h *WidgetHandler) ListWidgets(c *gin.Context) {
	dashboardID, err := parseOptionalID(c, "dashboard_id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dashboard_id", err)
		return
	}
	views, err := h.widgets.List(c.Request.Context(), dashboardID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"widgets": views})
}

// POST /api/widgets
func (h *WidgetHandler) CreateWidget(c *gin.Context) {
	var req services.CreateWidgetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.widgets.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"widget": view})
}

// GET /api/widgets/:id
func (h *WidgetHandler) GetWidget(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_widget_id", err)
		return
	}
	view, err := h.widgets.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"widget": view})
}

// PATCH /api/widgets/:id
func (h *WidgetHandler) UpdateWidget(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_widget_id", err)
		return
	}
	var req services.UpdateWidgetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.widgets.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"widget": view})
}

// DELETE /api/widgets/:id
func (h *WidgetHandler) DeleteWidget(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_widget_id", err)
		return
	}
	if err := h.widgets.Delete(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// GET /api/widgets/:id/features
func (h *WidgetHandler) ListFeatures(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_widget_id", err)
		return
	}
	features, err := h.widgets.Features(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"features": features})
}

type executeRequest struct {
	Feature string         `json:"feature" binding:"required"`
	Params  map[string]any `json:"params"`
}

// POST /api/widgets/:id/execute
func (h *WidgetHandler) Execute(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_widget_id", err)
		return
	}
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.widgets.Execute(c.Request.Context(), id, req.Feature, req.Params)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"feature": req.Feature, "result": out})
}

// GET /api/widgets/:id/elements
func (h *WidgetHandler) ListElements(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_widget_id", err)
		return
	}
	elements, err := h.widgets.ListElements(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"elements": elements})
}

// PATCH /api/widgets/:id/elements/:element_id
func (h *WidgetHandler) UpdateElement(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_widget_id", err)
		return
	}
	elementID, err := parseID(c, "element_id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_element_id", err)
		return
	}
	var patch widgets.ElementPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	el, err := h.widgets.UpdateElement(c.Request.Context(), id, elementID, patch)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"element": el})
}
