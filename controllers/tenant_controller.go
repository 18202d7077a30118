package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oreoffice-backend/models"
	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

type TenantController struct {
	TenantSvc *services.TenantService
}

func NewTenantController(svc *services.TenantService) *TenantController {
	return &TenantController{TenantSvc: svc}
}

type createTenantRequest struct {
	CompanyName        string            `json:"company_name" binding:"required"`
	RepresentativeName string            `json:"representative_name"`
	BusinessNumber     string            `json:"business_number"`
	Phone              string            `json:"phone"`
	Email              string            `json:"email" binding:"omitempty,email"`
	Address            string            `json:"address"`
	TenantType         models.TenantType `json:"tenant_type" binding:"omitempty,tenanttype"`
	Memo               string            `json:"memo"`
}

// GetTenants (GET /api/tenants?q=&tenant_type=)
func (ctrl *TenantController) GetTenants(c *gin.Context) {
	tenants, err := ctrl.TenantSvc.List(c.Query("q"), models.TenantType(c.Query("tenant_type")))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, tenants)
}

func (ctrl *TenantController) GetTenant(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	t, err := ctrl.TenantSvc.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, t)
}

func (ctrl *TenantController) CreateTenant(c *gin.Context) {
	var req createTenantRequest
	if !bindJSON(c, &req) {
		return
	}
	t := models.Tenant{
		CompanyName:        req.CompanyName,
		RepresentativeName: req.RepresentativeName,
		BusinessNumber:     req.BusinessNumber,
		Phone:              req.Phone,
		Email:              req.Email,
		Address:            req.Address,
		TenantType:         req.TenantType,
		Memo:               req.Memo,
	}
	if err := ctrl.TenantSvc.Create(&t); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, t)
}

func (ctrl *TenantController) UpdateTenant(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in services.TenantInput
	if !bindJSON(c, &in) {
		return
	}
	t, err := ctrl.TenantSvc.Update(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, t)
}

func (ctrl *TenantController) DeleteTenant(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := ctrl.TenantSvc.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}
