package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/projecthub-backend/internal/api/middleware"
	"github.com/Marga-Ghale/projecthub-backend/internal/models"
	"github.com/Marga-Ghale/projecthub-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// User Handler (admin)
// ============================================

type UserHandler struct {
	userService service.UserService
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(users, toUserResponse))
}

func (h *UserHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.SetStatus(c.Request.Context(), middleware.GetSession(c), c.Param("id"), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User status updated"})
}
