package dto

import (
	"time"

	"github.com/yigit/majlis/internal/app/auth"
	"github.com/yigit/majlis/internal/app/models"
)

// CreateFeedbackRequest submits feedback for moderation
type CreateFeedbackRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200"`
	Content     string `json:"content" binding:"required,notblank"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// ToModel converts the request into the store input
func (r CreateFeedbackRequest) ToModel() models.NewFeedback {
	return models.NewFeedback{Title: r.Title, Content: r.Content, IsAnonymous: r.IsAnonymous}
}

// ReplyFeedbackRequest answers a feedback item
type ReplyFeedbackRequest struct {
	Text string `json:"text" binding:"required,notblank"`
}

// FeedbackResponse is a feedback item as shown to a viewer; anonymous
// items carry a placeholder author
type FeedbackResponse struct {
	ID          string                `json:"id"`
	Author      models.Author         `json:"author"`
	Title       string                `json:"title"`
	Content     string                `json:"content"`
	IsAnonymous bool                  `json:"isAnonymous"`
	Status      models.FeedbackStatus `json:"status"`
	CreatedAt   time.Time             `json:"createdAt"`
	Reply       *models.FeedbackReply `json:"reply,omitempty"`
}

// NewFeedbackResponse masks the author of anonymous items with placeholder
func NewFeedbackResponse(f models.Feedback, placeholder string) FeedbackResponse {
	return FeedbackResponse{
		ID:          f.ID,
		Author:      auth.DisplayAuthor(f, placeholder),
		Title:       f.Title,
		Content:     f.Content,
		IsAnonymous: f.IsAnonymous,
		Status:      f.Status,
		CreatedAt:   f.CreatedAt,
		Reply:       f.Reply,
	}
}

// NewFeedbackResponses maps a feedback list
func NewFeedbackResponses(items []models.Feedback, placeholder string) []FeedbackResponse {
	out := make([]FeedbackResponse, 0, len(items))
	for _, f := range items {
		out = append(out, NewFeedbackResponse(f, placeholder))
	}
	return out
}
