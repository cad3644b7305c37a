package dto

import (
	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/i18n"
)

// CreateSessionRequest opens an anonymous session
type CreateSessionRequest struct {
	Language string `json:"language" binding:"omitempty,oneof=en ar"`
}

// SignInRequest represents login credentials
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignUpRequest represents a self-registration
type SignUpRequest struct {
	Name     string          `json:"name" binding:"required,notblank,min=2,max=100"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     models.RoleType `json:"role" binding:"omitempty,oneof=STUDENT MEMBER ADMIN"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn"`
}

// SessionResponse describes the caller's session
type SessionResponse struct {
	SessionID  string         `json:"sessionId"`
	Language   i18n.Language  `json:"language"`
	Direction  i18n.Direction `json:"direction"`
	ActiveView string         `json:"activeView"`
	User       *UserResponse  `json:"user,omitempty"`
}

// AuthResponse is returned by every call that issues a token
type AuthResponse struct {
	Token   TokenResponse   `json:"token"`
	Session SessionResponse `json:"session"`
}

// SignInResponse carries the sign-in outcome; Auth is set on success only
type SignInResponse struct {
	Result string        `json:"result" example:"success"`
	Auth   *AuthResponse `json:"auth,omitempty"`
}

// ResetTokenResponse is returned by forgot-password. The token is only
// included when the server runs without outgoing mail.
type ResetTokenResponse struct {
	Token string `json:"token,omitempty"`
}

// SetLanguageRequest switches the session language
type SetLanguageRequest struct {
	Language string `json:"language" binding:"required,oneof=en ar"`
}

// SetViewRequest records the view a UI session is on
type SetViewRequest struct {
	View string `json:"view" binding:"required,activeview"`
}
