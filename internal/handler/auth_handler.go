package handler

import (
	"github.com/Goh0809/Eventora-Backend/internal/dto"
	"github.com/Goh0809/Eventora-Backend/internal/service"
	"github.com/Goh0809/Eventora-Backend/pkg/middleware"
	"github.com/Goh0809/Eventora-Backend/pkg/response"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	if result.Pending != nil {
		response.Created(c, result.Pending)
		return
	}
	response.Created(c, result.Token)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// OAuthURL handles GET /auth/oauth/:provider/url
func (h *AuthHandler) OAuthURL(c *gin.Context) {
	redirectURL := c.Query("redirect_url")
	if redirectURL == "" {
		response.BadRequest(c, "redirect_url is required")
		return
	}

	result, err := h.authService.OAuthURL(c.Request.Context(), c.Param("provider"), redirectURL)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// ExchangeCode handles POST /auth/oauth/:provider/callback and POST /auth/verify-reset-code
func (h *AuthHandler) ExchangeCode(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.exchange_code")
	defer span.End()
	span.SetAttributes(attribute.String("provider", c.Param("provider")))

	var req dto.CodeExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if req.Code = c.Query("code"); req.Code == "" {
			bindError(c, err)
			return
		}
		req.CodeVerifier = c.Query("code_verifier")
	}

	result, err := h.authService.ExchangeCode(ctx, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.authService.Logout(c.Request.Context(), c.GetString(middleware.ContextKeyAccessToken), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBind(&req); err != nil || req.RefreshToken == "" {
		req.RefreshToken = c.Query("refresh_token")
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// ForgotPassword handles POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	response.Success(c, h.authService.ForgotPassword(c.Request.Context(), &req))
}

// ResetPassword handles PUT /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authService.ResetPassword(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
