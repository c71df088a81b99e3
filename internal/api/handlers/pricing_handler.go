package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/projecthub-backend/internal/api/middleware"
	"github.com/Marga-Ghale/projecthub-backend/internal/models"
	"github.com/Marga-Ghale/projecthub-backend/internal/service"
	"github.com/gin-gonic/gin"
)

type PricingHandler struct {
	pricingService service.PricingService
}

func (h *PricingHandler) List(c *gin.Context) {
	requests, err := h.pricingService.Fetch(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(requests, toPricingResponse))
}

func (h *PricingHandler) Submit(c *gin.Context) {
	var req models.CreatePricingRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.pricingService.Submit(c.Request.Context(), middleware.GetSession(c), service.PricingInput{
		PlanName:    req.PlanName,
		PlanPrice:   req.PlanPrice,
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPricingResponse(request))
}

// Decide approves or rejects a pending request. Admin only.
func (h *PricingHandler) Decide(c *gin.Context) {
	var req models.PricingDecisionRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.pricingService.Decide(c.Request.Context(), middleware.GetSession(c), c.Param("id"), req.Approve, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPricingResponse(request))
}
