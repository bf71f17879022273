package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// AdminHandler serves admin-only reports
type AdminHandler struct {
	dashboard *services.DashboardService
}

func NewAdminHandler(dashboard *services.DashboardService) *AdminHandler {
	return &AdminHandler{dashboard: dashboard}
}

// Dashboard returns statistics over every user and task
func (h *AdminHandler) Dashboard(c *gin.Context) {
	snapshot, err := h.dashboard.ComputeDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDashboardResponse(snapshot))
}
