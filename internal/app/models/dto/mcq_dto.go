package dto

import "github.com/yigit/majlis/internal/app/models"

// GenerateMCQForm is the multipart form of a generation request; the PDF
// arrives in the "file" part
type GenerateMCQForm struct {
	Topic      string `form:"topic" binding:"required,notblank,max=200"`
	Difficulty string `form:"difficulty" binding:"required,oneof=Easy Medium Hard"`
	Count      int    `form:"count" binding:"required,min=1,max=20"`
}

// GenerateMCQResponse lists the valid generated questions
type GenerateMCQResponse struct {
	Topic     string       `json:"topic"`
	Questions []models.MCQ `json:"questions"`
}

// ExportMCQRequest renders questions into a document
type ExportMCQRequest struct {
	Topic     string       `json:"topic" binding:"required"`
	Format    string       `json:"format" binding:"required,oneof=pdf docx"`
	Questions []models.MCQ `json:"questions" binding:"required,min=1,dive"`
}

// ChatRequest sends one message with the prior conversation
type ChatRequest struct {
	History []models.ChatMessage `json:"history" binding:"omitempty,dive"`
	Message string               `json:"message" binding:"required,max=4000"`
}

// ChatResponse is the assistant's reply
type ChatResponse struct {
	Reply string `json:"reply"`
}
