package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carteira/internal/services"
)

// DashboardHandler serves summary figures.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// DashboardQuery selects how many months the chart covers.
type DashboardQuery struct {
	Months int `form:"months" binding:"omitempty,min=1,max=24"`
}

// GetSummary returns net, month and per-month totals over PAID transactions
// @Summary     Dashboard summary
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       months query int false "Months in the chart (default 6, max 24)"
// @Success     200 {object} services.DashboardSummary
// @Router      /dashboard [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q DashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	summary, err := h.dashboardService.GetSummary(c.Request.Context(), userID, q.Months)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
