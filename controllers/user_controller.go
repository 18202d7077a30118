package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oreoffice-backend/models"
	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

type UserController struct {
	UserSvc *services.UserService
}

func NewUserController(svc *services.UserService) *UserController {
	return &UserController{UserSvc: svc}
}

type createUserRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Name     string          `json:"name"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     models.UserRole `json:"role" binding:"omitempty,userrole"`
}

func (ctrl *UserController) GetUsers(c *gin.Context) {
	users, err := ctrl.UserSvc.List()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, users)
}

func (ctrl *UserController) GetUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	u, err := ctrl.UserSvc.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, u)
}

func (ctrl *UserController) CreateUser(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := ctrl.UserSvc.Create(services.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, u)
}

func (ctrl *UserController) UpdateUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in services.UserInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := ctrl.UserSvc.Update(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, u)
}

func (ctrl *UserController) DeleteUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := ctrl.UserSvc.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}
