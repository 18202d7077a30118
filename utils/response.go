package utils

import "github.com/gin-gonic/gin"

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

// JSONError writes the error envelope the dashboard toasts from.
func JSONError(c *gin.Context, code int, errCode, message string) {
	c.AbortWithStatusJSON(code, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errCode,
			"message": message,
		},
	})
}
