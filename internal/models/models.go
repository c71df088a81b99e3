package models

import "time"

// ============================================
// Auth DTOs
// ============================================

// RegisterRequest carries no binding tags: every field is checked by the
// registration validator so all failures are reported together.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FullName        string `json:"fullName"`
	Role            string `json:"role"`
	CompanyName     string `json:"companyName"`
	CompanyID       string `json:"companyId"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ============================================
// User DTOs
// ============================================

type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	Role        string    `json:"role"`
	CompanyID   *string   `json:"companyId,omitempty"`
	CompanyName *string   `json:"companyName,omitempty"`
	Status      string    `json:"status"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ============================================
// Company DTOs
// ============================================

type CompanyResponse struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Status              string     `json:"status"`
	SubscriptionPlan    string     `json:"subscriptionPlan"`
	SubscriptionStatus  string     `json:"subscriptionStatus"`
	SubscriptionEndDate *time.Time `json:"subscriptionEndDate,omitempty"`
	TrialStartDate      *time.Time `json:"trialStartDate,omitempty"`
	TrialEndDate        *time.Time `json:"trialEndDate,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// ActiveCompanyResponse is the public shape used by the sign-up picker.
type ActiveCompanyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateCompanyRequest struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Plan               string `json:"subscriptionPlan"`
	SubscriptionStatus string `json:"subscriptionStatus"`
}

type UpdateCompanyRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type UpdateSubscriptionRequest struct {
	Plan   string `json:"subscriptionPlan" binding:"required"`
	Status string `json:"subscriptionStatus" binding:"required"`
}

type RenewSubscriptionRequest struct {
	Plan string `json:"subscriptionPlan" binding:"required"`
}

type SweepResponse struct {
	Expired int `json:"expired"`
}

type TrialDaysResponse struct {
	DaysLeft int `json:"daysLeft"`
}

// ============================================
// Client DTOs
// ============================================

type ClientResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	Status    string    `json:"status"`
	CompanyID *string   `json:"companyId,omitempty"`
	UserID    *string   `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateClientRequest struct {
	FullName  string  `json:"fullName"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	CompanyID string  `json:"companyId"`
	UserID    *string `json:"userId,omitempty"`
}

// ============================================
// Notification DTOs
// ============================================

type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	ActionURL *string   `json:"actionUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type NotificationCountResponse struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}

// ============================================
// Pricing DTOs
// ============================================

type PricingRequestResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	PlanName    string     `json:"planName"`
	PlanPrice   string     `json:"planPrice"`
	CompanyName *string    `json:"companyName,omitempty"`
	Email       string     `json:"email"`
	Phone       *string    `json:"phone,omitempty"`
	Status      string     `json:"status"`
	Notes       *string    `json:"notes,omitempty"`
	RequestedAt time.Time  `json:"requestedAt"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy  *string    `json:"approvedBy,omitempty"`
}

type CreatePricingRequest struct {
	PlanName    string  `json:"planName"`
	PlanPrice   string  `json:"planPrice"`
	CompanyName *string `json:"companyName,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

type PricingDecisionRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

// ============================================
// Contact DTOs
// ============================================

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ContactInfo struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type ContactResponse struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	ContactInfo ContactInfo `json:"contactInfo"`
}
