package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oreoffice-backend/middleware"
	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

type SettlementController struct {
	SettlementSvc *services.SettlementService
}

func NewSettlementController(svc *services.SettlementService) *SettlementController {
	return &SettlementController{SettlementSvc: svc}
}

// GetSettlements (GET /api/settlements?year=2025)
func (ctrl *SettlementController) GetSettlements(c *gin.Context) {
	list, err := ctrl.SettlementSvc.List(queryInt(c, "year", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GetSettlement (GET /api/settlements/:yearMonth)
func (ctrl *SettlementController) GetSettlement(c *gin.Context) {
	st, err := ctrl.SettlementSvc.GetByYearMonth(c.Param("yearMonth"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, st)
}

// Generate (POST /api/settlements/generate)
func (ctrl *SettlementController) Generate(c *gin.Context) {
	var req generateRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := ctrl.SettlementSvc.Generate(req.YearMonth)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, st)
}

func (ctrl *SettlementController) Confirm(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	st, err := ctrl.SettlementSvc.Confirm(id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, st)
}

func (ctrl *SettlementController) Unconfirm(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	st, err := ctrl.SettlementSvc.Unconfirm(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, st)
}
