package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oreoffice-backend/middleware"
	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

type AuthController struct {
	AuthSvc *services.AuthService
}

func NewAuthController(svc *services.AuthService) *AuthController {
	return &AuthController{AuthSvc: svc}
}

type loginPayload struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login (POST /api/auth/login)
func (ctrl *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload) {
		return
	}
	result, err := ctrl.AuthSvc.Login(payload.Email, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}

// Me (GET /api/auth/me)
func (ctrl *AuthController) Me(c *gin.Context) {
	u, err := ctrl.AuthSvc.Me(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, u)
}
