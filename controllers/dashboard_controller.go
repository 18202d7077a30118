package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

type DashboardController struct {
	DashboardSvc *services.DashboardService
}

func NewDashboardController(svc *services.DashboardService) *DashboardController {
	return &DashboardController{DashboardSvc: svc}
}

func (ctrl *DashboardController) GetSummary(c *gin.Context) {
	sum, err := ctrl.DashboardSvc.Summary()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, sum)
}

// GetMonthly (GET /api/dashboard/monthly?year=2025)
func (ctrl *DashboardController) GetMonthly(c *gin.Context) {
	points, err := ctrl.DashboardSvc.Monthly(queryInt(c, "year", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, points)
}

// GetBreakEven (GET /api/dashboard/break-even?months=3)
func (ctrl *DashboardController) GetBreakEven(c *gin.Context) {
	bep, err := ctrl.DashboardSvc.BreakEven(queryInt(c, "months", 3))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bep)
}
