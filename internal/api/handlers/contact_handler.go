package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/Marga-Ghale/projecthub-backend/internal/email"
	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/Marga-Ghale/projecthub-backend/internal/models"
	"github.com/gin-gonic/gin"
)

var contactEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactHandler answers the public contact form. Messages are not stored.
type ContactHandler struct {
	mailer ContactMailer
	info   models.ContactInfo
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" || req.Email == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields."})
		return
	}
	if !contactEmailPattern.MatchString(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email."})
		return
	}

	if h.mailer != nil {
		data := email.ContactMessageData{Name: req.Name, Email: req.Email, Message: req.Message}
		if err := h.mailer.SendContactMessage(h.info.Email, data); err != nil {
			logger.L().Warnw("[Contact] forwarding failed", "from", req.Email, "error", err)
		}
	}

	c.JSON(http.StatusOK, models.ContactResponse{
		Success:     true,
		Message:     fmt.Sprintf("Message from %s (%s): %s", req.Name, req.Email, req.Message),
		ContactInfo: h.info,
	})
}
