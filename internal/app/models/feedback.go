package models

import "time"

// FeedbackReply is the single moderator answer to a feedback item
type FeedbackReply struct {
	Text      string    `json:"text"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feedback is a message submitted for moderation
type Feedback struct {
	ID          string         `json:"id"`
	Author      Author         `json:"author"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	IsAnonymous bool           `json:"isAnonymous"`
	Status      FeedbackStatus `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	Reply       *FeedbackReply `json:"reply,omitempty"`
}

// Clone returns a deep copy of f
func (f Feedback) Clone() Feedback {
	c := f
	c.Author = f.Author.Clone()
	if f.Reply != nil {
		r := *f.Reply
		c.Reply = &r
	}
	return c
}

// NewFeedback holds the caller supplied fields of a feedback item
type NewFeedback struct {
	Title       string
	Content     string
	IsAnonymous bool
}
