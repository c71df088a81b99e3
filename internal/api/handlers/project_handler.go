package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/projecthub-backend/internal/api/middleware"
	"github.com/Marga-Ghale/projecthub-backend/internal/models"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Project Handler
// ============================================

type ProjectHandler struct {
	projectService service.ProjectService
	historyService service.HistoryService
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.Fetch(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(projects, toProjectResponse))
}

func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projectService.Get(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req models.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), middleware.GetSession(c), service.ProjectInput{
		Name:          req.Name,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		Progress:      req.Progress,
		DueDate:       req.DueDate,
		CompanyID:     req.CompanyID,
		ClientID:      req.ClientID,
		ClientName:    req.ClientName,
		Budget:        req.Budget,
		Spent:         req.Spent,
		Phase:         req.Phase,
		NextMilestone: req.NextMilestone,
		AssignedTo:    req.AssignedTo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProjectResponse(project))
}

func (h *ProjectHandler) Update(c *gin.Context) {
	var req models.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), middleware.GetSession(c), c.Param("id"), repository.ProjectPatch{
		Name:          req.Name,
		Description:   req.Description,
		Status:        req.Status,
		Progress:      req.Progress,
		Priority:      req.Priority,
		DueDate:       req.DueDate,
		ClientID:      req.ClientID,
		ClientName:    req.ClientName,
		Budget:        req.Budget,
		Spent:         req.Spent,
		Phase:         req.Phase,
		NextMilestone: req.NextMilestone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projectService.Delete(c.Request.Context(), middleware.GetSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

func (h *ProjectHandler) AssignTeam(c *gin.Context) {
	var req models.AssignTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.projectService.AssignToTeam(c.Request.Context(), middleware.GetSession(c), c.Param("id"), req.MemberIDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Team assigned"})
}

// History serves both /projects/:id/history and /history; the latter has no id.
func (h *ProjectHandler) History(c *gin.Context) {
	var projectID *string
	if id := c.Param("id"); id != "" {
		projectID = &id
	}

	entries, err := h.historyService.Fetch(c.Request.Context(), middleware.GetSession(c), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(entries, toHistoryResponse))
}
