// Package auth holds the role based visibility rules shared by the store and the API.
package auth

import (
	"github.com/yigit/majlis/internal/app/models"
)

// Viewer is the identity a visibility decision is made for
type Viewer struct {
	ID   string
	Role models.RoleType
}

// ViewerOf builds a Viewer from a user
func ViewerOf(u models.User) Viewer {
	return Viewer{ID: u.ID, Role: u.Role}
}

// CanModerate reports whether the viewer may open, reply to and delete feedback
func CanModerate(v Viewer) bool {
	return v.Role.IsPrivileged()
}

// CanViewStudents reports whether the viewer may browse the students directory
func CanViewStudents(v Viewer) bool {
	return v.Role.IsPrivileged()
}

// CanManageDigest reports whether the viewer may see weekly stats and publish digests
func CanManageDigest(v Viewer) bool {
	return v.Role == models.RoleAdmin
}

// CanViewFeedback applies the moderation visibility rules:
// admins see everything, members see student feedback and their own,
// students only their own.
func CanViewFeedback(v Viewer, item models.Feedback) bool {
	switch v.Role {
	case models.RoleAdmin:
		return true
	case models.RoleMember:
		return item.Author.Role == models.RoleStudent || item.Author.ID == v.ID
	case models.RoleStudent:
		return item.Author.ID == v.ID
	default:
		return false
	}
}

// VisibleFeedback filters items down to what v may see, keeping order
func VisibleFeedback(v Viewer, items []models.Feedback) []models.Feedback {
	out := make([]models.Feedback, 0, len(items))
	for _, item := range items {
		if CanViewFeedback(v, item) {
			out = append(out, item)
		}
	}
	return out
}

// DisplayAuthor returns the author to render for item, hiding anonymous authors
// behind placeholder
func DisplayAuthor(item models.Feedback, placeholder string) models.Author {
	if item.IsAnonymous {
		return models.Author{Name: placeholder}
	}
	return item.Author
}
