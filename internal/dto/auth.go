package dto

// RegisterRequest represents a sign-up request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name,omitempty"`
}

// LoginRequest represents a password login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserInfo is the user block embedded in token responses
type UserInfo struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FullName  *string `json:"full_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// TokenResponse represents an issued session
type TokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	User         UserInfo `json:"user"`
}

// RegisterPendingResponse is returned when email confirmation is required
type RegisterPendingResponse struct {
	Message              string `json:"message"`
	UserID               string `json:"user_id"`
	Email                string `json:"email"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
}

// RegisterResponse holds exactly one of Token or Pending
type RegisterResponse struct {
	Token   *TokenResponse
	Pending *RegisterPendingResponse
}

// OAuthURLResponse represents a provider consent URL
type OAuthURLResponse struct {
	URL      string `json:"url"`
	Provider string `json:"provider"`
}

// CodeExchangeRequest carries an OAuth or password recovery code
type CodeExchangeRequest struct {
	Code         string `json:"code" binding:"required"`
	CodeVerifier string `json:"code_verifier,omitempty"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

// LogoutRequest optionally carries the refresh token of the ending session
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ForgotPasswordRequest requests a reset email
type ForgotPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	RedirectURL string `json:"redirect_url" binding:"required"`
}

// ResetPasswordRequest sets a new password
type ResetPasswordRequest struct {
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
	Success *bool  `json:"success,omitempty"`
}
