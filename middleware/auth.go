package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"oreoffice-backend/models"
	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

const (
	ContextUserID = "userID"
	ContextRole   = "userRole"
)

// AuthRequired accepts a bearer JWT and stores the user id and role in the context.
func AuthRequired(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || raw == header {
			utils.JSONError(c, http.StatusUnauthorized, "error.unauthorized", "로그인이 필요합니다.")
			return
		}
		claims, err := auth.Parse(raw)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, services.ErrInvalidToken.Code, services.ErrInvalidToken.Message)
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// WriteRequiresAdmin lets viewers read but only admins change anything.
func WriteRequiresAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		requireAdmin(c)
	}
}

// AdminOnly rejects every non-admin request.
func AdminOnly() gin.HandlerFunc {
	return requireAdmin
}

func requireAdmin(c *gin.Context) {
	if role, _ := c.Get(ContextRole); role != models.RoleAdmin {
		utils.JSONError(c, http.StatusForbidden, "error.forbidden", "관리자 권한이 필요합니다.")
		return
	}
	c.Next()
}

// UserID returns the authenticated user's id, or 0.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
