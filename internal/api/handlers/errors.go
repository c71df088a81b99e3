package handlers

import (
	"errors"
	"net/http"

	"github.com/Marga-Ghale/projecthub-backend/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgUserExists         = "An account with this email already exists."
	msgInvalidBody        = "Invalid request body"
)

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var verrs service.ValidationErrors
	var opErr *service.OpError

	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": verrs[0], "errors": []string(verrs)})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": msgUserExists})
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Invalid subscription status change"})
	case errors.As(err, &opErr):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": opErr.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return false
	}
	return true
}
