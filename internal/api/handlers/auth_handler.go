package handlers

import (
	"net/http"
	"net/url"

	"github.com/Marga-Ghale/projecthub-backend/internal/api/middleware"
	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/Marga-Ghale/projecthub-backend/internal/models"
	"github.com/Marga-Ghale/projecthub-backend/internal/service"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const oidcStateCookie = "oidc_state"

// ============================================
// Auth Handler
// ============================================

type AuthHandler struct {
	authService  service.AuthService
	sessions     *session.Registry
	identity     IdentityProvider
	frontendURL  string
	secureCookie bool
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, accessToken, refreshToken, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FullName:        req.FullName,
		Role:            req.Role,
		CompanyName:     req.CompanyName,
		CompanyID:       req.CompanyID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{
		User:         toUserResponse(profile),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.MsgRequiredFields})
		return
	}

	profile, accessToken, refreshToken, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		User:         toUserResponse(profile),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	accessToken, refreshToken, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.Logout(c.Request.Context(), userID, req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	h.sessions.Drop(userID)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the signed-in profile. The auth middleware has already loaded it.
func (h *AuthHandler) Me(c *gin.Context) {
	viewer := middleware.GetSession(c).Viewer()
	if viewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(viewer))
}

// ============================================
// External sign-in (OIDC)
// ============================================

func (h *AuthHandler) OIDCLogin(c *gin.Context) {
	if h.identity == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "External sign-in is not enabled"})
		return
	}

	state := uuid.New().String()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oidcStateCookie, state, 600, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusFound, h.identity.AuthURL(state))
}

func (h *AuthHandler) OIDCCallback(c *gin.Context) {
	if h.identity == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "External sign-in is not enabled"})
		return
	}

	state, err := c.Cookie(oidcStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sign-in state"})
		return
	}
	c.SetCookie(oidcStateCookie, "", -1, "/", "", h.secureCookie, true)

	id, err := h.identity.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		logger.L().Warnw("[OIDC] code exchange failed", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "External sign-in failed"})
		return
	}

	_, accessToken, refreshToken, err := h.authService.SignInExternal(c.Request.Context(), service.ExternalIdentity{
		Provider: id.Issuer,
		Subject:  id.Subject,
		Email:    id.Email,
		Name:     id.Name,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	fragment := url.Values{}
	fragment.Set("accessToken", accessToken)
	fragment.Set("refreshToken", refreshToken)
	c.Redirect(http.StatusFound, h.frontendURL+"/auth/callback#"+fragment.Encode())
}
