package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleMember  RoleType = "MEMBER"
	RoleAdmin   RoleType = "ADMIN"
)

// Valid reports whether r is a known role
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleMember, RoleAdmin:
		return true
	}
	return false
}

// IsPrivileged is true for roles allowed to moderate feedback
func (r RoleType) IsPrivileged() bool {
	return r == RoleMember || r == RoleAdmin
}

// PostType classifies feed items
type PostType string

const (
	PostTypePost         PostType = "POST"
	PostTypeActivity     PostType = "ACTIVITY"
	PostTypeAnnouncement PostType = "ANNOUNCEMENT"
)

// Valid reports whether t is a known post type
func (t PostType) Valid() bool {
	switch t {
	case PostTypePost, PostTypeActivity, PostTypeAnnouncement:
		return true
	}
	return false
}

// MediaKind is the kind of media attached to a post
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// FeedbackStatus is the moderation state of a feedback item
type FeedbackStatus string

const (
	FeedbackPending FeedbackStatus = "PENDING"
	FeedbackOpened  FeedbackStatus = "OPENED"
)

// ToastSeverity is the kind of a transient notification
type ToastSeverity string

const (
	ToastSuccess ToastSeverity = "success"
	ToastError   ToastSeverity = "error"
)

// Difficulty of generated questions
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is a known difficulty
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// View names tracked per session
const (
	ViewHome          = "home"
	ViewSignIn        = "signIn"
	ViewSignUp        = "signUp"
	ViewResetPassword = "resetPassword"
	ViewProfile       = "profile"
	ViewFeedback      = "feedback"
	ViewAdmin         = "admin"
	ViewStudents      = "students"
	ViewMCQ           = "mcq"
	ViewChat          = "chat"
)

// KnownView reports whether name is one of the tracked views
func KnownView(name string) bool {
	switch name {
	case ViewHome, ViewSignIn, ViewSignUp, ViewResetPassword, ViewProfile,
		ViewFeedback, ViewAdmin, ViewStudents, ViewMCQ, ViewChat:
		return true
	}
	return false
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
