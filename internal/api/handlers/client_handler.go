package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/projecthub-backend/internal/api/middleware"
	"github.com/Marga-Ghale/projecthub-backend/internal/models"
	"github.com/Marga-Ghale/projecthub-backend/internal/service"
	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService service.ClientService
}

func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.clientService.Fetch(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(clients, toClientResponse))
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req models.CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), middleware.GetSession(c), service.ClientInput{
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		CompanyID: req.CompanyID,
		UserID:    req.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toClientResponse(client))
}

func (h *ClientHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.clientService.UpdateStatus(c.Request.Context(), middleware.GetSession(c), c.Param("id"), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client status updated"})
}

func (h *ClientHandler) Delete(c *gin.Context) {
	if err := h.clientService.Delete(c.Request.Context(), middleware.GetSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted"})
}
