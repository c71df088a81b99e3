package handlers

import (
	"net/http"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/api/middleware"
	"github.com/Marga-Ghale/projecthub-backend/internal/models"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Company Handler
// ============================================

type CompanyHandler struct {
	companyService service.CompanyService
}

func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.companyService.Fetch(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(companies, toCompanyResponse))
}

// ListActive is public: the registration form lists companies a client can join.
func (h *CompanyHandler) ListActive(c *gin.Context) {
	companies, err := h.companyService.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(companies, func(co *repository.Company) models.ActiveCompanyResponse {
		return models.ActiveCompanyResponse{ID: co.ID, Name: co.Name}
	}))
}

func (h *CompanyHandler) Create(c *gin.Context) {
	var req models.CreateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.companyService.Create(c.Request.Context(), middleware.GetSession(c), service.CompanyInput{
		Name:               req.Name,
		Email:              req.Email,
		Plan:               req.Plan,
		SubscriptionStatus: req.SubscriptionStatus,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCompanyResponse(company))
}

func (h *CompanyHandler) Update(c *gin.Context) {
	var req models.UpdateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.companyService.Update(c.Request.Context(), middleware.GetSession(c), c.Param("id"), service.CompanyPatch{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCompanyResponse(company))
}

func (h *CompanyHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.companyService.SetStatus(c.Request.Context(), middleware.GetSession(c), c.Param("id"), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Company status updated"})
}

func (h *CompanyHandler) UpdateSubscription(c *gin.Context) {
	var req models.UpdateSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.companyService.UpdateSubscription(c.Request.Context(), middleware.GetSession(c), c.Param("id"), req.Plan, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCompanyResponse(company))
}

func (h *CompanyHandler) Renew(c *gin.Context) {
	var req models.RenewSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.companyService.Renew(c.Request.Context(), middleware.GetSession(c), c.Param("id"), req.Plan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCompanyResponse(company))
}

func (h *CompanyHandler) Sweep(c *gin.Context) {
	expired, err := h.companyService.SweepExpired(c.Request.Context(), middleware.GetSession(c), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SweepResponse{Expired: expired})
}

func (h *CompanyHandler) TrialDaysLeft(c *gin.Context) {
	days, err := h.companyService.TrialDaysLeft(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.TrialDaysResponse{DaysLeft: days})
}
