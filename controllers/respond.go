package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/apperrors"
	"backend/logger"
)

// respondError maps a service error onto the HTTP taxonomy. Raw errors are
// logged server-side with full detail; the client only sees the mapped
// message, never a stack trace or driver error text.
func respondError(c *gin.Context, err error) {
	status, message := apperrors.StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": message})
}
