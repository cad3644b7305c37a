package store

import (
	"strings"

	"github.com/yigit/majlis/internal/app/auth"
	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/i18n"
	"github.com/yigit/majlis/internal/pkg/apperrors"
)

// AllFeedback returns every feedback item regardless of viewer
func (s *Store) AllFeedback() []models.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Feedback, 0, len(s.feedback))
	for _, f := range s.feedback {
		out = append(out, f.Clone())
	}
	return out
}

// Feedback lists the items the session user may see, newest first
func (c *Client) Feedback() ([]models.Feedback, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	viewer, ok := c.viewerLocked()
	if !ok {
		return nil, apperrors.ErrNotAuthenticated
	}

	visible := auth.VisibleFeedback(viewer, s.feedback)
	out := make([]models.Feedback, 0, len(visible))
	for _, f := range visible {
		out = append(out, f.Clone())
	}
	return out, nil
}

// GetFeedback returns one item if the session user may see it
func (c *Client) GetFeedback(id string) (models.Feedback, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	viewer, ok := c.viewerLocked()
	if !ok {
		return models.Feedback{}, apperrors.ErrNotAuthenticated
	}

	idx := s.feedbackIndex(id)
	if idx < 0 || !auth.CanViewFeedback(viewer, s.feedback[idx]) {
		return models.Feedback{}, apperrors.ErrResourceNotFound
	}
	return s.feedback[idx].Clone(), nil
}

// AddFeedback submits a pending feedback item
func (c *Client) AddFeedback(in models.NewFeedback) (models.Feedback, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Feedback{}, apperrors.NewValidationError("title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return models.Feedback{}, apperrors.NewValidationError("content is required")
	}

	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := c.sessionLocked()
	if !ok {
		return models.Feedback{}, apperrors.ErrNotAuthenticated
	}

	item := models.Feedback{
		ID:          "feedback-" + newID(),
		Author:      u.Snapshot(),
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		IsAnonymous: in.IsAnonymous,
		Status:      models.FeedbackPending,
		CreatedAt:   s.now(),
	}
	s.feedback = append([]models.Feedback{item}, s.feedback...)
	c.toastLocked(i18n.KeyFeedbackSubmitted, models.ToastSuccess)

	return item.Clone(), nil
}

// OpenFeedback marks a pending item as opened by a moderator. Opening an
// opened item changes nothing.
func (c *Client) OpenFeedback(id string) (models.Feedback, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := c.requireModeratorLocked(); err != nil {
		return models.Feedback{}, err
	}

	idx := s.feedbackIndex(id)
	if idx < 0 {
		return models.Feedback{}, apperrors.ErrResourceNotFound
	}

	f := &s.feedback[idx]
	if f.Status == models.FeedbackPending {
		f.Status = models.FeedbackOpened
	}
	return f.Clone(), nil
}

// AddFeedbackReply sets the moderator reply, replacing any earlier one
func (c *Client) AddFeedbackReply(id, text string) (models.Feedback, error) {
	if strings.TrimSpace(text) == "" {
		return models.Feedback{}, apperrors.NewValidationError("reply is required")
	}

	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := c.requireModeratorLocked(); err != nil {
		return models.Feedback{}, err
	}

	idx := s.feedbackIndex(id)
	if idx < 0 {
		return models.Feedback{}, apperrors.ErrResourceNotFound
	}

	f := &s.feedback[idx]
	f.Reply = &models.FeedbackReply{
		Text:      text,
		AuthorID:  c.st.sessionUserID,
		CreatedAt: s.now(),
	}
	f.Status = models.FeedbackOpened
	c.toastLocked(i18n.KeyFeedbackReplySent, models.ToastSuccess)

	return f.Clone(), nil
}

// DeleteFeedback removes an item
func (c *Client) DeleteFeedback(id string) error {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := c.requireModeratorLocked(); err != nil {
		return err
	}

	idx := s.feedbackIndex(id)
	if idx < 0 {
		return apperrors.ErrResourceNotFound
	}

	s.feedback = append(s.feedback[:idx:idx], s.feedback[idx+1:]...)
	c.toastLocked(i18n.KeyFeedbackDeleted, models.ToastSuccess)
	return nil
}

func (c *Client) requireModeratorLocked() error {
	viewer, ok := c.viewerLocked()
	if !ok {
		return apperrors.ErrNotAuthenticated
	}
	if !auth.CanModerate(viewer) {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

func (s *Store) feedbackIndex(id string) int {
	for i := range s.feedback {
		if s.feedback[i].ID == id {
			return i
		}
	}
	return -1
}
