package types

import "time"

// Account roles
const (
	RoleAdmin   = "admin"
	RoleCompany = "company"
	RoleClient  = "client"
)

// Profile status values
const (
	ProfileActive   = "active"
	ProfileInactive = "inactive"
	ProfilePending  = "pending"
)

// Company status values
const (
	CompanyActive   = "active"
	CompanyInactive = "inactive"
)

// Subscription plans
const (
	PlanTrial      = "trial"
	PlanBasic      = "basic"
	PlanPremium    = "premium"
	PlanEnterprise = "enterprise"
)

// Subscription status values
const (
	SubscriptionTrial   = "trial"
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

// Project status values
const (
	ProjectPlanning   = "Planning"
	ProjectInProgress = "In Progress"
	ProjectTesting    = "Testing"
	ProjectCompleted  = "Completed"
	ProjectOnHold     = "On Hold"
)

// Priority values shared by projects and issues
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// Issue status values
const (
	IssueOpen       = "Open"
	IssueInProgress = "In Progress"
	IssueResolved   = "Resolved"
	IssueClosed     = "Closed"
)

// Team member status values
const (
	MemberActive   = "Active"
	MemberInactive = "Inactive"
)

// Client status values
const (
	ClientActive   = "active"
	ClientInactive = "inactive"
)

// Notification types
const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

// Pricing request status values
const (
	PricingPending  = "pending"
	PricingApproved = "approved"
	PricingRejected = "rejected"
)

// Permissions
const (
	PermRead       = "read"
	PermWrite      = "write"
	PermDelete     = "delete"
	PermManage     = "manage"
	PermManageTeam = "manage-team"
)

const (
	TrialPeriod = 30 * 24 * time.Hour
	PaidPeriod  = 365 * 24 * time.Hour
)

var ValidRoles = []string{RoleAdmin, RoleCompany, RoleClient}

var ValidProfileStatuses = []string{ProfileActive, ProfileInactive, ProfilePending}

var ValidPlans = []string{PlanTrial, PlanBasic, PlanPremium, PlanEnterprise}

var ValidProjectStatuses = []string{
	ProjectPlanning, ProjectInProgress, ProjectTesting,
	ProjectCompleted, ProjectOnHold,
}

var ValidPriorities = []string{
	PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical,
}

var ValidIssueStatuses = []string{
	IssueOpen, IssueInProgress, IssueResolved, IssueClosed,
}

var ValidNotificationTypes = []string{
	NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError,
}

// PermissionsForRole returns the permission set granted to a role.
// Unknown roles get read-only access.
func PermissionsForRole(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{PermRead, PermWrite, PermDelete, PermManage}
	case RoleCompany:
		return []string{PermRead, PermWrite, PermManageTeam}
	default:
		return []string{PermRead}
	}
}

// SubscriptionPeriod is how long a plan runs from activation or renewal.
func SubscriptionPeriod(plan string) time.Duration {
	if plan == PlanTrial {
		return TrialPeriod
	}
	return PaidPeriod
}

// subscriptionTransitions lists the allowed subscription_status moves.
var subscriptionTransitions = map[string][]string{
	SubscriptionTrial:   {SubscriptionActive, SubscriptionExpired},
	SubscriptionActive:  {SubscriptionActive, SubscriptionExpired},
	SubscriptionExpired: {SubscriptionActive},
}

// CanTransitionSubscription reports whether a company may move from one
// subscription status to another.
func CanTransitionSubscription(from, to string) bool {
	for _, next := range subscriptionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Helper functions for validation
func IsValidRole(role string) bool {
	return contains(ValidRoles, role)
}

func IsValidProfileStatus(status string) bool {
	return contains(ValidProfileStatuses, status)
}

func IsValidPlan(plan string) bool {
	return contains(ValidPlans, plan)
}

func IsValidProjectStatus(status string) bool {
	return contains(ValidProjectStatuses, status)
}

func IsValidPriority(priority string) bool {
	return contains(ValidPriorities, priority)
}

func IsValidIssueStatus(status string) bool {
	return contains(ValidIssueStatuses, status)
}

func IsValidNotificationType(t string) bool {
	return contains(ValidNotificationTypes, t)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
