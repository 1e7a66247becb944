package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/overlay-backend/internal/http/response"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
	"github.com/yungbote/overlay-backend/internal/services"
)

type DashboardHandler struct {
	dashboards services.DashboardService
}

func NewDashboardHandler(dashboards services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

type dashboardRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// GET /api/dashboards
func (h *DashboardHandler) ListDashboards(c *gin.Context) {
	list, err := h.dashboards.List(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"dashboards": list})
}

// POST /api/dashboards
func (h *DashboardHandler) CreateDashboard(c *gin.Context) {
	var req dashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var name, desc string
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		desc = *req.Description
	}
	d, err := h.dashboards.Create(dbctx.New(c.Request.Context()), name, desc)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"dashboard": d})
}

// GET /api/dashboards/active
func (h *DashboardHandler) GetActive(c *gin.Context) {
	d, err := h.dashboards.GetActive(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"dashboard": d})
}

// GET /api/dashboards/:id
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dashboard_id", err)
		return
	}
	d, err := h.dashboards.Get(dbctx.New(c.Request.Context()), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"dashboard": d})
}

// PATCH /api/dashboards/:id
func (h *DashboardHandler) UpdateDashboard(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dashboard_id", err)
		return
	}
	var req dashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	d, err := h.dashboards.Update(dbctx.New(c.Request.Context()), id, req.Name, req.Description)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"dashboard": d})
}

// DELETE /api/dashboards/:id
func (h *DashboardHandler) DeleteDashboard(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dashboard_id", err)
		return
	}
	if err := h.dashboards.Delete(dbctx.New(c.Request.Context()), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// POST /api/dashboards/:id/activate
func (h *DashboardHandler) Activate(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dashboard_id", err)
		return
	}
	d, err := h.dashboards.Activate(dbctx.New(c.Request.Context()), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"dashboard": d})
}

// POST /api/dashboards/:id/deactivate
func (h *DashboardHandler) Deactivate(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dashboard_id", err)
		return
	}
	d, err := h.dashboards.Deactivate(dbctx.New(c.Request.Context()), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"dashboard": d})
}

// POST /api/dashboards/:id/widgets/:widget_id
func (h *DashboardHandler) AddWidget(c *gin.Context) {
	id, widgetID, ok := h.pair(c)
	if !ok {
		return
	}
	if err := h.dashboards.AddWidget(dbctx.New(c.Request.Context()), id, widgetID); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"added": true})
}

// DELETE /api/dashboards/:id/widgets/:widget_id
func (h *DashboardHandler) RemoveWidget(c *gin.Context) {
	id, widgetID, ok := h.pair(c)
	if !ok {
		return
	}
	if err := h.dashboards.RemoveWidget(dbctx.New(c.Request.Context()), id, widgetID); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"removed": true})
}

func (h *DashboardHandler) pair(c *gin.Context) (uint, uint, bool) {
	id, err := parseID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dashboard_id", err)
		return 0, 0, false
	}
	widgetID, err := parseID(c, "widget_id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_widget_id", err)
		return 0, 0, false
	}
	return id, widgetID, true
}
