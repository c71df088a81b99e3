package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================
// Project DTOs
// ============================================

type ProjectResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	Progress      int             `json:"progress"`
	Priority      string          `json:"priority"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	CompanyID     string          `json:"companyId"`
	ClientID      *string         `json:"clientId,omitempty"`
	ClientName    string          `json:"clientName"`
	Budget        decimal.Decimal `json:"budget"`
	Spent         decimal.Decimal `json:"spent"`
	Phase         string          `json:"phase"`
	NextMilestone string          `json:"nextMilestone"`
	AssignedTo    []string        `json:"assignedTo"`
	CreatedBy     *string         `json:"createdBy,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type CreateProjectRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	Priority      string          `json:"priority"`
	Progress      int             `json:"progress"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	CompanyID     string          `json:"companyId"`
	ClientID      *string         `json:"clientId,omitempty"`
	ClientName    string          `json:"clientName"`
	Budget        decimal.Decimal `json:"budget"`
	Spent         decimal.Decimal `json:"spent"`
	Phase         string          `json:"phase"`
	NextMilestone string          `json:"nextMilestone"`
	AssignedTo    []string        `json:"assignedTo,omitempty"`
}

type UpdateProjectRequest struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Status        *string          `json:"status,omitempty"`
	Progress      *int             `json:"progress,omitempty"`
	Priority      *string          `json:"priority,omitempty"`
	DueDate       *time.Time       `json:"dueDate,omitempty"`
	ClientID      *string          `json:"clientId,omitempty"`
	ClientName    *string          `json:"clientName,omitempty"`
	Budget        *decimal.Decimal `json:"budget,omitempty"`
	Spent         *decimal.Decimal `json:"spent,omitempty"`
	Phase         *string          `json:"phase,omitempty"`
	NextMilestone *string          `json:"nextMilestone,omitempty"`
}

type AssignTeamRequest struct {
	MemberIDs []string `json:"memberIds" binding:"required"`
}

type ProjectHistoryResponse struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	ChangedBy    *string   `json:"changedBy,omitempty"`
	Action       string    `json:"action"`
	FieldChanged *string   `json:"fieldChanged,omitempty"`
	OldValue     *string   `json:"oldValue,omitempty"`
	NewValue     *string   `json:"newValue,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ============================================
// Team Member DTOs
// ============================================

type TeamMemberResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Role        string          `json:"role"`
	Status      string          `json:"status"`
	Department  string          `json:"department"`
	Phone       string          `json:"phone"`
	Avatar      string          `json:"avatar"`
	HireDate    time.Time       `json:"hireDate"`
	Salary      decimal.Decimal `json:"salary"`
	Permissions []string        `json:"permissions"`
	Projects    []string        `json:"projects"`
	CompanyID   string          `json:"companyId"`
	UserID      *string         `json:"userId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type CreateTeamMemberRequest struct {
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Role        string          `json:"role"`
	Department  string          `json:"department"`
	Phone       string          `json:"phone"`
	HireDate    *time.Time      `json:"hireDate,omitempty"`
	Salary      decimal.Decimal `json:"salary"`
	Permissions []string        `json:"permissions"`
	CompanyID   string          `json:"companyId"`
	UserID      *string         `json:"userId,omitempty"`
}

type UpdateTeamMemberRequest struct {
	Name        *string          `json:"name,omitempty"`
	Email       *string          `json:"email,omitempty"`
	Role        *string          `json:"role,omitempty"`
	Status      *string          `json:"status,omitempty"`
	Department  *string          `json:"department,omitempty"`
	Phone       *string          `json:"phone,omitempty"`
	Salary      *decimal.Decimal `json:"salary,omitempty"`
	Permissions []string         `json:"permissions,omitempty"`
}

// ============================================
// Issue DTOs
// ============================================

type IssueResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	ProjectID   string    `json:"projectId"`
	AssignedTo  *string   `json:"assignedTo,omitempty"`
	CreatedBy   *string   `json:"createdBy,omitempty"`
	Labels      []string  `json:"labels"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateIssueRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	ProjectID   string   `json:"projectId"`
	AssignedTo  *string  `json:"assignedTo,omitempty"`
	Labels      []string `json:"labels"`
}

type UpdateIssueRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Priority    *string  `json:"priority,omitempty"`
	AssignedTo  *string  `json:"assignedTo,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issueId"`
	UserID    *string   `json:"userId,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}
