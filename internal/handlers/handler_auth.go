package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mstephano/authgate/internal/apperrors"
	portssvc "github.com/mstephano/authgate/internal/core/ports/services"
	"github.com/mstephano/authgate/internal/dto"
	"github.com/mstephano/authgate/internal/middleware"
	"github.com/mstephano/authgate/internal/platform/config"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const (
	accessTokenCookie  = "token"
	refreshTokenCookie = "refreshToken"
)

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	authService portssvc.AuthSvcFacade
	cfg         *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as portssvc.AuthSvcFacade, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: as,
		cfg:         cfg,
	}
}

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// registerAuthRoutes sets up the public authentication routes.
func registerAuthRoutes(rg *gin.Engine, cfg *config.Config, authService portssvc.AuthSvcFacade) {
	h := NewAuthHandler(authService, cfg)

	// 10 requests per minute per IP across the auth surface
	rate, _ := limiter.NewRateFromFormatted("10-M")
	store := memory.NewStore()
	ipLimiter := limiter.New(store, rate)

	auth := rg.Group("/auth", middleware.RateLimit(ipLimiter))
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh-token", h.RefreshToken)
		auth.POST("/logout", h.Logout)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password/:token", h.ResetPassword)
	}
}

// Register godoc
// @Summary Register new user
// @Description Creates a new user account with a hashed password.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "User Registration Info"
// @Success 201 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Username or email already taken"
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
		return
	}

	_, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		switch {
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Username or email already in use"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to register user", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "There was a problem registering the user"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.MessageResponse{Message: "User registered successfully"})
}

// Login godoc
// @Summary User login
// @Description Authenticates by username or email and returns an access/refresh token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
		return
	}
	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Identifier or username is required"})
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
		case errors.Is(err, apperrors.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid password"})
		default:
			logger.Error("Failed to log in user", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "There was a problem logging in the user"})
		}
		return
	}

	h.setAuthCookie(c, accessTokenCookie, pair.Token, int(h.cfg.JWTExpiryDuration.Seconds()))
	h.setAuthCookie(c, refreshTokenCookie, pair.RefreshToken, int(h.cfg.RefreshTokenExpiryDuration.Seconds()))

	c.JSON(http.StatusOK, dto.LoginResponse{Token: pair.Token, RefreshToken: pair.RefreshToken})
}

// RefreshToken godoc
// @Summary Refresh access token
// @Description Mints a new access token for a valid refresh token (cookie or body). The refresh token is not rotated.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshToken := h.extractRefreshToken(c)
	if refreshToken == "" {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "No refresh token provided"})
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		switch {
		case errors.Is(err, apperrors.ErrUnauthorized),
			errors.Is(err, apperrors.ErrTokenExpired),
			errors.Is(err, apperrors.ErrTokenInvalid):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Failed to authenticate refresh token"})
		default:
			logger.Error("Failed to refresh token", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "There was a problem refreshing the token"})
		}
		return
	}

	h.setAuthCookie(c, accessTokenCookie, pair.Token, int(h.cfg.JWTExpiryDuration.Seconds()))

	c.JSON(http.StatusOK, dto.RefreshTokenResponse{Token: pair.Token})
}

// Logout godoc
// @Summary User logout
// @Description Revokes every refresh token for the user and clears auth cookies. Idempotent: a missing or stale token still yields 200.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken := h.extractRefreshToken(c)

	if err := h.authService.Logout(c.Request.Context(), refreshToken); err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to log out user", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "There was a problem logging out the user"})
		return
	}

	h.clearAuthCookie(c, accessTokenCookie)
	h.clearAuthCookie(c, refreshTokenCookie)

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

// ForgotPassword godoc
// @Summary Request password reset
// @Description Creates a reset challenge and mails a one-time reset URL to the account's email.
// @Tags auth
// @Accept json
// @Produce json
// @Param forgot body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Only when account existence exposure is enabled"
// @Failure 500 {object} ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
		return
	}

	err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		if errors.Is(err, apperrors.ErrNotFound) {
			if h.cfg.ExposeAccountExistence {
				c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
				return
			}
			// Do not leak account existence; log the miss server-side only.
			logger.Info("Password reset requested for unknown email")
			c.JSON(http.StatusOK, dto.MessageResponse{Message: "If that email is registered, a reset link has been sent"})
			return
		}
		logger.Error("Failed to process forgot password request", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "There was a problem processing the request"})
		return
	}

	message := "If that email is registered, a reset link has been sent"
	if h.cfg.ExposeAccountExistence {
		message = "Password reset email sent"
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: message})
}

// ResetPassword godoc
// @Summary Reset password
// @Description Consumes a single-use reset token and replaces the account password.
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param reset body dto.ResetPasswordRequest true "New password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/reset-password/{token} [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	token := c.Param("token")

	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
		return
	}

	err := h.authService.ResetPassword(c.Request.Context(), token, req.Password)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		switch {
		case errors.Is(err, apperrors.ErrResetTokenInvalid):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Password reset token is invalid or has expired"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to reset password", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "There was a problem resetting the password"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password has been reset successfully"})
}

// extractRefreshToken prefers the JSON body, falling back to the cookie.
func (h *AuthHandler) extractRefreshToken(c *gin.Context) string {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := c.Cookie(refreshTokenCookie); err == nil {
		return cookie
	}
	return ""
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetCookie(name, value, maxAge, "/", "", h.cfg.IsProduction, true)
}

func (h *AuthHandler) clearAuthCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1, "/", "", h.cfg.IsProduction, true)
}

// validationMessage turns binding failures into readable 400 bodies without
// echoing internals.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
			case "email":
				msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
			case "min":
				msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param()))
			case "max":
				msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param()))
			default:
				msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
			}
		}
		return strings.Join(msgs, "; ")
	}
	return "Invalid request body"
}
