package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/use-agent/gamexport/models"
)

// abort stops the chain with a structured ExportResponse error.
func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ExportResponse{
		Success: false,
		Error:   &models.ErrorDetail{Code: code, Message: message},
	})
}
