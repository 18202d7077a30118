package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

// respondError maps a service error to its HTTP status and envelope.
func respondError(c *gin.Context, err error) {
	var de *services.Error
	if !errors.As(err, &de) {
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "서버 오류가 발생했습니다.")
		return
	}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrPeriodLocked):
		status = http.StatusLocked
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	utils.JSONError(c, status, de.Code, de.Message)
}

func badRequest(c *gin.Context, message string) {
	utils.JSONError(c, http.StatusBadRequest, "error.validation", message)
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "요청 형식이 올바르지 않습니다: "+err.Error())
		return false
	}
	return true
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "잘못된 ID입니다.")
		return 0, false
	}
	return uint(id), true
}

func queryUint(c *gin.Context, key string) uint {
	n, err := strconv.ParseUint(strings.TrimSpace(c.Query(key)), 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return def
	}
	return n
}

// optionalDate parses raw when non-empty, writing a 400 on failure.
func optionalDate(c *gin.Context, raw, field string) (*time.Time, bool) {
	t, err := utils.ParseOptionalDate(raw)
	if err != nil {
		badRequest(c, field+" 날짜 형식이 올바르지 않습니다. (YYYY-MM-DD)")
		return nil, false
	}
	return t, true
}

func requiredDate(c *gin.Context, raw, field string) (time.Time, bool) {
	t, ok := optionalDate(c, raw, field)
	if !ok {
		return time.Time{}, false
	}
	if t == nil {
		badRequest(c, field+"은(는) 필수입니다.")
		return time.Time{}, false
	}
	return *t, true
}
