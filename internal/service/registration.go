package service

import (
	"strings"

	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Registration messages, in the order the checks run.
const (
	MsgRequiredFields   = "Please fill in all required fields"
	MsgInvalidEmail     = "Please enter a valid email address"
	MsgPasswordLength   = "Password must be at least 6 characters long"
	MsgPasswordMismatch = "Passwords do not match"
	MsgInvalidRole      = "Please select a valid account type"
	MsgCompanyName      = "Company name is required for company accounts"
	MsgCompanySelection = "Please select a company"
)

type RegisterInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FullName        string `json:"fullName"`
	Role            string `json:"role"`
	CompanyName     string `json:"companyName"`
	CompanyID       string `json:"companyId"`
}

func (in *RegisterInput) normalize() {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.CompanyID = strings.TrimSpace(in.CompanyID)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
}

// ValidateRegistration runs every registration check locally and returns
// all failures in order. It never touches the store.
func ValidateRegistration(in RegisterInput) error {
	in.normalize()
	var errs ValidationErrors

	for _, field := range []string{in.Email, in.Password, in.ConfirmPassword, in.FullName, in.Role} {
		if validate.Var(field, "required") != nil {
			errs = append(errs, MsgRequiredFields)
			break
		}
	}
	if in.Email != "" && validate.Var(in.Email, "contains=@,min=5") != nil {
		errs = append(errs, MsgInvalidEmail)
	}
	if validate.Var(in.Password, "min=6") != nil {
		errs = append(errs, MsgPasswordLength)
	}
	if validate.VarWithValue(in.ConfirmPassword, in.Password, "eqfield") != nil {
		errs = append(errs, MsgPasswordMismatch)
	}

	switch in.Role {
	case types.RoleCompany:
		if in.CompanyName == "" {
			errs = append(errs, MsgCompanyName)
		}
	case types.RoleClient:
		if in.CompanyID == "" {
			errs = append(errs, MsgCompanySelection)
		}
	case "":
	default:
		errs = append(errs, MsgInvalidRole)
	}

	return errs.orNil()
}
