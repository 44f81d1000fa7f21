package service

import (
	"context"
	"strings"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/dto"
	"github.com/Goh0809/Eventora-Backend/internal/identity"
	"github.com/Goh0809/Eventora-Backend/internal/repository"
	"github.com/Goh0809/Eventora-Backend/pkg/clock"
	"github.com/Goh0809/Eventora-Backend/pkg/logger"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const forgotPasswordMessage = "If An Account with That Email Exists, A Password Reset Link Has Been Sent."

// IdentityProvider is the hosted identity service the API delegates credentials to
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, fullName string) (*identity.AuthResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*identity.AuthResult, error)
	RefreshSession(ctx context.Context, refreshToken string) (*identity.AuthResult, error)
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*identity.AuthResult, error)
	AuthorizeURL(provider, redirectTo string, extra map[string]string) string
	SignOut(ctx context.Context, accessToken string) error
	RecoverPassword(ctx context.Context, email, redirectTo string) error
	AdminUpdatePassword(ctx context.Context, userID, password string) error
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	OAuthURL(ctx context.Context, provider, redirectURL string) (*dto.OAuthURLResponse, error)
	// ExchangeCode turns an OAuth callback or password recovery code into a session
	ExchangeCode(ctx context.Context, req *dto.CodeExchangeRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, accessToken string, req *dto.LogoutRequest) (*dto.MessageResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// ForgotPassword always answers with the same message so accounts cannot be enumerated
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) *dto.MessageResponse
	ResetPassword(ctx context.Context, userID string, req *dto.ResetPasswordRequest) (*dto.MessageResponse, error)
}

type authService struct {
	idp      IdentityProvider
	profiles repository.ProfileRepository
	clock    clock.Clock
	log      *logger.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(idp IdentityProvider, profiles repository.ProfileRepository, clk clock.Clock, log *logger.Logger) AuthService {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if log == nil {
		log = logger.Get()
	}
	return &authService{idp: idp, profiles: profiles, clock: clk, log: log.Named("auth")}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()

	result, err := s.idp.SignUp(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		telemetry.FailSpan(span, err, "sign up failed")
		return nil, err
	}
	if result.User == nil {
		span.SetStatus(codes.Error, "no user")
		return nil, domain.Validation("Failed to create user")
	}

	span.SetAttributes(attribute.String("user_id", result.User.ID), attribute.Bool("pending", result.Session == nil))
	span.SetStatus(codes.Ok, "")

	if result.Session == nil {
		return &dto.RegisterResponse{Pending: &dto.RegisterPendingResponse{
			Message:              "Registration Successful. Please check your email.",
			UserID:               result.User.ID,
			Email:                result.User.Email,
			RequiresConfirmation: true,
		}}, nil
	}

	token := tokenResponse(result.Session, "Bearer", dto.UserInfo{
		ID:       result.User.ID,
		Email:    result.User.Email,
		FullName: optional(req.FullName),
	})
	return &dto.RegisterResponse{Token: token}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	result, err := s.idp.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		telemetry.FailSpan(span, err, "sign in failed")
		return nil, err
	}
	if result.User == nil || result.Session == nil {
		span.SetStatus(codes.Error, "no session")
		return nil, domain.Unauthorized("Login Failed. No Session Created.")
	}
	if result.User.EmailConfirmedAt == nil {
		span.SetStatus(codes.Error, "email not confirmed")
		return nil, domain.ErrEmailNotConfirmed
	}

	userID := result.User.ID
	span.SetAttributes(attribute.String("user_id", userID))
	log := s.log.WithContext(ctx).With(zap.String("user_id", userID))

	if err := s.profiles.Touch(ctx, userID, s.clock.Now()); err != nil {
		log.Warn("Failed to update profile updated_at", zap.Error(err))
	}

	info := dto.UserInfo{ID: userID, Email: result.User.Email}
	if profile, err := s.profiles.GetByID(ctx, userID); err != nil {
		log.Warn("Profile fetch failed", zap.Error(err))
	} else {
		info.FullName = optional(profile.FullName)
		info.Bio = optional(profile.Bio)
		info.AvatarURL = optional(profile.AvatarURL)
	}

	span.SetStatus(codes.Ok, "")
	return tokenResponse(result.Session, "bearer", info), nil
}

func (s *authService) OAuthURL(ctx context.Context, provider, redirectURL string) (*dto.OAuthURLResponse, error) {
	_, span := telemetry.StartSpan(ctx, "service.auth.oauth_url")
	defer span.End()

	provider = strings.ToLower(provider)
	span.SetAttributes(attribute.String("provider", provider))

	var extra map[string]string
	switch provider {
	case "google":
		extra = map[string]string{"access_type": "offline", "prompt": "consent"}
	case "github":
	default:
		span.SetStatus(codes.Error, "unsupported provider")
		return nil, domain.ErrUnsupportedProvider
	}

	span.SetStatus(codes.Ok, "")
	return &dto.OAuthURLResponse{
		URL:      s.idp.AuthorizeURL(provider, redirectURL, extra),
		Provider: provider,
	}, nil
}

func (s *authService) ExchangeCode(ctx context.Context, req *dto.CodeExchangeRequest) (*dto.TokenResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.exchange_code")
	defer span.End()

	result, err := s.idp.ExchangeCode(ctx, req.Code, req.CodeVerifier)
	if err != nil {
		telemetry.FailSpan(span, err, "exchange failed")
		return nil, err
	}
	if result.User == nil || result.Session == nil {
		span.SetStatus(codes.Error, "no session")
		return nil, domain.ErrInvalidAuthCode
	}

	span.SetAttributes(attribute.String("user_id", result.User.ID))
	span.SetStatus(codes.Ok, "")
	return tokenResponse(result.Session, "bearer", dto.UserInfo{
		ID:        result.User.ID,
		Email:     result.User.Email,
		FullName:  ptr(result.User.MetadataString("full_name")),
		AvatarURL: ptr(result.User.MetadataString("avatar_url")),
	}), nil
}

func (s *authService) Logout(ctx context.Context, accessToken string, req *dto.LogoutRequest) (*dto.MessageResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.logout")
	defer span.End()

	if err := s.idp.SignOut(ctx, accessToken); err != nil {
		telemetry.FailSpan(span, err, "sign out failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.MessageResponse{Message: "Logged Out Successfully"}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.refresh")
	defer span.End()

	if refreshToken == "" {
		span.SetStatus(codes.Error, "missing refresh token")
		return nil, domain.ErrRefreshFailed
	}

	result, err := s.idp.RefreshSession(ctx, refreshToken)
	if err != nil {
		telemetry.FailSpan(span, err, "refresh failed")
		return nil, err
	}
	if result.Session == nil {
		span.SetStatus(codes.Error, "no session")
		return nil, domain.ErrRefreshFailed
	}

	info := dto.UserInfo{}
	if result.User != nil {
		info.ID, info.Email = result.User.ID, result.User.Email
	}

	span.SetStatus(codes.Ok, "")
	return tokenResponse(result.Session, "bearer", info), nil
}

func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) *dto.MessageResponse {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.forgot_password")
	defer span.End()

	if err := s.idp.RecoverPassword(ctx, req.Email, req.RedirectURL); err != nil {
		s.log.WithContext(ctx).Warn("Password reset request failed", zap.Error(err))
		span.RecordError(err)
	}

	success := true
	return &dto.MessageResponse{Message: forgotPasswordMessage, Success: &success}
}

func (s *authService) ResetPassword(ctx context.Context, userID string, req *dto.ResetPasswordRequest) (*dto.MessageResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.reset_password")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	if req.Password != req.ConfirmPassword {
		span.SetStatus(codes.Error, "password mismatch")
		return nil, domain.ErrPasswordMismatch
	}

	if err := s.idp.AdminUpdatePassword(ctx, userID, req.Password); err != nil {
		telemetry.FailSpan(span, err, "update failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.MessageResponse{Message: "User Password Updated Successfully"}, nil
}

func tokenResponse(session *identity.Session, tokenType string, user dto.UserInfo) *dto.TokenResponse {
	return &dto.TokenResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    tokenType,
		ExpiresIn:    session.ExpiresIn,
		User:         user,
	}
}

// optional returns nil for an empty string
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptr(s string) *string { return &s }
