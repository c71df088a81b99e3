package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/projecthub-backend/internal/api/middleware"
	"github.com/Marga-Ghale/projecthub-backend/internal/models"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/service"
	"github.com/gin-gonic/gin"
)

type TeamMemberHandler struct {
	memberService service.TeamMemberService
}

func (h *TeamMemberHandler) List(c *gin.Context) {
	members, err := h.memberService.Fetch(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(members, toTeamMemberResponse))
}

func (h *TeamMemberHandler) Create(c *gin.Context) {
	var req models.CreateTeamMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.memberService.Create(c.Request.Context(), middleware.GetSession(c), service.TeamMemberInput{
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		Department:  req.Department,
		Phone:       req.Phone,
		HireDate:    req.HireDate,
		Salary:      req.Salary,
		Permissions: req.Permissions,
		CompanyID:   req.CompanyID,
		UserID:      req.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTeamMemberResponse(member))
}

func (h *TeamMemberHandler) Update(c *gin.Context) {
	var req models.UpdateTeamMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.memberService.Update(c.Request.Context(), middleware.GetSession(c), c.Param("id"), repository.TeamMemberPatch{
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		Status:      req.Status,
		Department:  req.Department,
		Phone:       req.Phone,
		Salary:      req.Salary,
		Permissions: req.Permissions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTeamMemberResponse(member))
}

func (h *TeamMemberHandler) Deactivate(c *gin.Context) {
	if err := h.memberService.Deactivate(c.Request.Context(), middleware.GetSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Team member deactivated"})
}

func (h *TeamMemberHandler) Delete(c *gin.Context) {
	if err := h.memberService.Delete(c.Request.Context(), middleware.GetSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Team member deleted"})
}
