package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"oreoffice-backend/middleware"
	"oreoffice-backend/models"
	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

type SigningController struct {
	SigningSvc  *services.SigningService
	TemplateSvc *services.TemplateService
}

func NewSigningController(signing *services.SigningService, templates *services.TemplateService) *SigningController {
	return &SigningController{SigningSvc: signing, TemplateSvc: templates}
}

type createSessionRequest struct {
	ContractID uint   `json:"contract_id" binding:"required"`
	TemplateID *uint  `json:"template_id"`
	SendEmail  bool   `json:"send_email"`
	Email      string `json:"email" binding:"omitempty,email"`
}

type signatureRequest struct {
	SignerName string `json:"signer_name"`
	Signature  string `json:"signature" binding:"required"`
}

type sendRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
}

// sessionResponse adds the signing link to a session.
type sessionResponse struct {
	*models.ContractSigningSession
	SigningLink string `json:"signing_link"`
}

func (ctrl *SigningController) withLink(cs *models.ContractSigningSession) sessionResponse {
	return sessionResponse{ContractSigningSession: cs, SigningLink: ctrl.SigningSvc.Link(cs.Token)}
}

// ----- templates -----

func (ctrl *SigningController) GetTemplates(c *gin.Context) {
	list, err := ctrl.TemplateSvc.List()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (ctrl *SigningController) CreateTemplate(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		Content   string `json:"content" binding:"required"`
		IsDefault bool   `json:"is_default"`
	}
	if !bindJSON(c, &req) {
		return
	}
	t := models.ContractTemplate{Name: req.Name, Content: req.Content, IsDefault: req.IsDefault}
	if err := ctrl.TemplateSvc.Create(&t); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, t)
}

func (ctrl *SigningController) UpdateTemplate(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in services.TemplateInput
	if !bindJSON(c, &in) {
		return
	}
	t, err := ctrl.TemplateSvc.Update(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, t)
}

func (ctrl *SigningController) DeleteTemplate(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := ctrl.TemplateSvc.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

// ----- sessions (admin) -----

func (ctrl *SigningController) GetSessions(c *gin.Context) {
	list, err := ctrl.SigningSvc.List(services.SigningFilter{
		Status:     models.SigningStatus(c.Query("status")),
		ContractID: queryUint(c, "contract_id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]sessionResponse, 0, len(list))
	for i := range list {
		out = append(out, ctrl.withLink(&list[i]))
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}

func (ctrl *SigningController) GetSession(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	cs, err := ctrl.SigningSvc.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.withLink(cs))
}

func (ctrl *SigningController) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	cs, err := ctrl.SigningSvc.CreateSession(services.CreateSessionInput{
		ContractID: req.ContractID,
		TemplateID: req.TemplateID,
		SendEmail:  req.SendEmail,
		Email:      req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, ctrl.withLink(cs))
}

// Review (POST /api/contract-signing/sessions/:id/review)
func (ctrl *SigningController) Review(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	cs, err := ctrl.SigningSvc.BeginAdminReview(id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.withLink(cs))
}

// AdminSign (POST /api/contract-signing/sessions/:id/admin-sign)
func (ctrl *SigningController) AdminSign(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req signatureRequest
	if !bindJSON(c, &req) {
		return
	}
	cs, err := ctrl.SigningSvc.AdminSign(id, middleware.UserID(c), req.Signature)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.withLink(cs))
}

func (ctrl *SigningController) Send(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req sendRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	cs, err := ctrl.SigningSvc.Send(id, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.withLink(cs))
}

func (ctrl *SigningController) Cancel(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	cs, err := ctrl.SigningSvc.Cancel(id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.withLink(cs))
}

// Document (GET /api/contract-signing/sessions/:id/document)
func (ctrl *SigningController) Document(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	doc, name, err := ctrl.SigningSvc.Document(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
}

// ----- public (tenant) -----

// PublicView (GET /api/contract-signing/public/:token)
func (ctrl *SigningController) PublicView(c *gin.Context) {
	view, err := ctrl.SigningSvc.View(c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, view)
}

// PublicSign (POST /api/contract-signing/public/:token/sign)
func (ctrl *SigningController) PublicSign(c *gin.Context) {
	var req signatureRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := ctrl.SigningSvc.TenantSign(c.Param("token"), req.SignerName, req.Signature, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, view)
}
