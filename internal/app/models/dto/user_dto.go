package dto

import (
	"time"

	"github.com/yigit/majlis/internal/app/models"
)

// UserResponse is the public part of a user
type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      models.RoleType `json:"role"`
	Bio       string          `json:"bio"`
	AvatarURL *string         `json:"avatarUrl,omitempty"`
	CVURL     *string         `json:"cvUrl,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewUserResponse drops the credential and lockout fields
func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		CVURL:     u.CVURL,
		CreatedAt: u.CreatedAt,
	}
}

// NewUserResponses maps a user list
func NewUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// UpdateProfileRequest is a partial profile update; nil fields are left alone
type UpdateProfileRequest struct {
	Name *string `json:"name" binding:"omitempty,min=2,max=100"`
	Bio  *string `json:"bio" binding:"omitempty,max=1000"`
}
