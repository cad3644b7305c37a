package models

import (
	"time"
)

// User is a registered account
type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          RoleType   `json:"role"`
	Bio           string     `json:"bio"`
	AvatarURL     *string    `json:"avatarUrl,omitempty"`
	CVURL         *string    `json:"cvUrl,omitempty"`
	LoginAttempts int        `json:"loginAttempts"`
	LockoutUntil  *time.Time `json:"lockoutUntil,omitempty"`
	PasswordHash  string     `json:"-"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Clone returns a deep copy of u
func (u User) Clone() User {
	c := u
	c.AvatarURL = cloneString(u.AvatarURL)
	c.CVURL = cloneString(u.CVURL)
	if u.LockoutUntil != nil {
		t := *u.LockoutUntil
		c.LockoutUntil = &t
	}
	return c
}

// IsLocked reports whether sign-in is blocked at now
func (u User) IsLocked(now time.Time) bool {
	return u.LockoutUntil != nil && u.LockoutUntil.After(now)
}

// Snapshot captures the public identity of u for embedding in posts and feedback
func (u User) Snapshot() Author {
	return Author{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Bio:       u.Bio,
		AvatarURL: cloneString(u.AvatarURL),
	}
}

// Author is a point-in-time copy of a user, never re-resolved. The email
// stays server side.
type Author struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"-"`
	Role      RoleType `json:"role"`
	Bio       string   `json:"bio"`
	AvatarURL *string  `json:"avatarUrl,omitempty"`
}

// Clone returns a deep copy of a
func (a Author) Clone() Author {
	c := a
	c.AvatarURL = cloneString(a.AvatarURL)
	return c
}

// ProfileUpdate is a partial profile change; nil fields are left untouched
type ProfileUpdate struct {
	Name      *string
	Bio       *string
	AvatarURL *string
	CVURL     *string
}
