package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/config"
	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ============================================
// Auth Service
// ============================================

// ExternalIdentity is a user authenticated by a third-party provider.
type ExternalIdentity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*repository.Profile, string, string, error)
	Login(ctx context.Context, email, password string) (*repository.Profile, string, string, error)
	SignInExternal(ctx context.Context, id ExternalIdentity) (*repository.Profile, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, userID, refreshToken string) error
	ValidateToken(token string) (*jwt.Token, error)
	GetUserIDFromToken(token string) (string, error)
	// CurrentUser loads the active profile for userID. Missing, unreadable
	// and non-active profiles all fail with ErrUnauthorized.
	CurrentUser(ctx context.Context, userID string) (*repository.Profile, error)
}

const profileCacheTTL = 5 * time.Minute

func profileCacheKey(id string) string { return "profile:" + id }

type authService struct {
	cfg         *config.Config
	accountRepo repository.AccountRepository
	profileRepo repository.ProfileRepository
	companyRepo repository.CompanyRepository
	clientRepo  repository.ClientRepository
	cache       ProfileCache
	now         func() time.Time
}

func NewAuthService(
	cfg *config.Config,
	accountRepo repository.AccountRepository,
	profileRepo repository.ProfileRepository,
	companyRepo repository.CompanyRepository,
	clientRepo repository.ClientRepository,
	cache ProfileCache,
) AuthService {
	return &authService{
		cfg:         cfg,
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		companyRepo: companyRepo,
		clientRepo:  clientRepo,
		cache:       cache,
		now:         time.Now,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*repository.Profile, string, string, error) {
	if err := ValidateRegistration(in); err != nil {
		return nil, "", "", err
	}
	in.normalize()

	existing, err := s.profileRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", "", fail("register", "account", err)
	}
	if existing != nil {
		return nil, "", "", ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(hashedPassword)

	profile := &repository.Profile{
		Email:    in.Email,
		FullName: in.FullName,
		Role:     in.Role,
		Status:   types.ProfileActive,
	}
	if in.Role == types.RoleClient {
		profile.CompanyID = strPtr(in.CompanyID)
	}
	if in.Role == types.RoleCompany {
		profile.CompanyName = strPtr(in.CompanyName)
	}

	if err := s.accountRepo.CreateWithProfile(ctx, profile, &repository.Account{Email: in.Email, PasswordHash: &hash}); err != nil {
		return nil, "", "", fail("register", "account", err)
	}
	logger.L().Infow("[Auth] account registered", "user", profile.ID, "role", profile.Role)

	// The account stays even when the follow-up steps fail.
	switch in.Role {
	case types.RoleCompany:
		if err := s.createCompany(ctx, profile, in.CompanyName); err != nil {
			return profile, "", "", err
		}
	case types.RoleClient:
		s.linkClient(ctx, profile)
	}

	accessToken, refreshToken, err := s.generateTokens(ctx, profile.ID)
	if err != nil {
		return profile, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}
	return profile, accessToken, refreshToken, nil
}

// createCompany opens a trial company for a new company account and links it
// to the profile.
func (s *authService) createCompany(ctx context.Context, profile *repository.Profile, name string) error {
	now := s.now()
	end := now.Add(types.TrialPeriod)
	company := &repository.Company{
		Name:                name,
		Email:               profile.Email,
		Status:              types.CompanyActive,
		SubscriptionPlan:    types.PlanTrial,
		SubscriptionStatus:  types.SubscriptionTrial,
		SubscriptionEndDate: &end,
		TrialStartDate:      &now,
		TrialEndDate:        &end,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return fail("create", "company", err)
	}
	if err := s.profileRepo.UpdateCompany(ctx, profile.ID, company.ID, company.Name); err != nil {
		return fail("link", "company", err)
	}
	profile.CompanyID = &company.ID
	profile.CompanyName = &company.Name
	return nil
}

// linkClient adds the new client to the chosen company's client list.
// Failures are logged only.
func (s *authService) linkClient(ctx context.Context, profile *repository.Profile) {
	if profile.CompanyID == nil {
		return
	}
	client := &repository.Client{
		FullName:  profile.FullName,
		Email:     profile.Email,
		CompanyID: profile.CompanyID,
		UserID:    &profile.ID,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		logger.L().Warnw("[Auth] could not link client to company", "user", profile.ID, "company", *profile.CompanyID, "error", err)
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*repository.Profile, string, string, error) {
	account, err := s.accountRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil || account == nil || account.PasswordHash == nil {
		return nil, "", "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	profile, err := s.CurrentUser(ctx, account.ID)
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := s.generateTokens(ctx, profile.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}
	return profile, accessToken, refreshToken, nil
}

// SignInExternal signs in a provider identity, creating an active client
// profile on first sign-in.
func (s *authService) SignInExternal(ctx context.Context, id ExternalIdentity) (*repository.Profile, string, string, error) {
	if id.Subject == "" || id.Email == "" {
		return nil, "", "", ErrInvalidCredentials
	}

	account, err := s.accountRepo.FindBySubject(ctx, id.Provider, id.Subject)
	if err != nil {
		return nil, "", "", fail("sign in", "account", err)
	}

	var profile *repository.Profile
	if account != nil {
		profile, err = s.CurrentUser(ctx, account.ID)
		if err != nil {
			return nil, "", "", err
		}
	} else {
		existing, err := s.profileRepo.FindByEmail(ctx, id.Email)
		if err != nil {
			return nil, "", "", fail("sign in", "account", err)
		}
		if existing != nil {
			return nil, "", "", ErrUserExists
		}

		name := strings.TrimSpace(id.Name)
		if name == "" {
			name = repository.EmailLocalPart(id.Email)
		}
		profile = &repository.Profile{
			Email:    id.Email,
			FullName: name,
			Role:     types.RoleClient,
			Status:   types.ProfileActive,
		}
		subject := id.Subject
		if err := s.accountRepo.CreateWithProfile(ctx, profile, &repository.Account{
			Email:    id.Email,
			Provider: id.Provider,
			Subject:  &subject,
		}); err != nil {
			return nil, "", "", fail("create", "profile", err)
		}
		logger.L().Infow("[Auth] profile created on first external sign-in", "user", profile.ID, "provider", id.Provider)
	}

	accessToken, refreshToken, err := s.generateTokens(ctx, profile.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}
	return profile, accessToken, refreshToken, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	rt, err := s.accountRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil || rt == nil {
		return "", "", ErrInvalidToken
	}

	s.accountRepo.DeleteRefreshToken(ctx, refreshToken)
	if s.now().After(rt.ExpiresAt) {
		return "", "", ErrInvalidToken
	}

	if _, err := s.CurrentUser(ctx, rt.UserID); err != nil {
		return "", "", err
	}

	accessToken, newRefreshToken, err := s.generateTokens(ctx, rt.UserID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}
	return accessToken, newRefreshToken, nil
}

// Logout revokes refreshToken, or every token of userID when it is empty.
func (s *authService) Logout(ctx context.Context, userID, refreshToken string) error {
	if s.cache != nil && userID != "" {
		s.cache.DeleteCache(ctx, profileCacheKey(userID))
	}
	if refreshToken == "" {
		return s.accountRepo.DeleteUserRefreshTokens(ctx, userID)
	}
	return s.accountRepo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (s *authService) GetUserIDFromToken(tokenString string) (string, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID string) (*repository.Profile, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	var profile *repository.Profile
	if s.cache != nil {
		var cached repository.Profile
		if err := s.cache.GetCache(ctx, profileCacheKey(userID), &cached); err == nil {
			profile = &cached
		}
	}

	if profile == nil {
		p, err := s.profileRepo.FindByID(ctx, userID)
		if err != nil {
			logger.L().Errorw("[Auth] profile fetch failed", "user", userID, "error", err)
			return nil, ErrUnauthorized
		}
		if p == nil {
			return nil, ErrUnauthorized
		}
		profile = p
		if s.cache != nil {
			if err := s.cache.SetCache(ctx, profileCacheKey(userID), profile, profileCacheTTL); err != nil {
				logger.L().Debugw("[Auth] profile cache write failed", "user", userID, "error", err)
			}
		}
	}

	if !profile.IsActive() {
		return nil, ErrUnauthorized
	}
	return profile, nil
}

func (s *authService) generateTokens(ctx context.Context, userID string) (string, string, error) {
	now := s.now()
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(time.Hour * time.Duration(s.cfg.JWTExpiry)).Unix(),
		"iat": now.Unix(),
	})

	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	rt := &repository.RefreshToken{
		Token:     uuid.New().String(),
		UserID:    userID,
		ExpiresAt: now.Add(time.Hour * 24 * time.Duration(s.cfg.RefreshExpiry)),
	}
	if err := s.accountRepo.SaveRefreshToken(ctx, rt); err != nil {
		return "", "", err
	}

	return accessTokenString, rt.Token, nil
}
