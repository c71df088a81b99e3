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
// Issue Handler
// ============================================

type IssueHandler struct {
	issueService service.IssueService
}

func (h *IssueHandler) List(c *gin.Context) {
	issues, err := h.issueService.Fetch(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(issues, toIssueResponse))
}

func (h *IssueHandler) Create(c *gin.Context) {
	var req models.CreateIssueRequest
	if !bindJSON(c, &req) {
		return
	}

	issue, err := h.issueService.Create(c.Request.Context(), middleware.GetSession(c), service.IssueInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
		Labels:      req.Labels,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toIssueResponse(issue))
}

func (h *IssueHandler) Update(c *gin.Context) {
	var req models.UpdateIssueRequest
	if !bindJSON(c, &req) {
		return
	}

	issue, err := h.issueService.Update(c.Request.Context(), middleware.GetSession(c), c.Param("id"), repository.IssuePatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		Labels:      req.Labels,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toIssueResponse(issue))
}

func (h *IssueHandler) Delete(c *gin.Context) {
	if err := h.issueService.Delete(c.Request.Context(), middleware.GetSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted"})
}

func (h *IssueHandler) ListComments(c *gin.Context) {
	comments, err := h.issueService.ListComments(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(comments, toCommentResponse))
}

func (h *IssueHandler) AddComment(c *gin.Context) {
	var req models.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.issueService.AddComment(c.Request.Context(), middleware.GetSession(c), c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCommentResponse(comment))
}
