package models

// MCQ is a generated multiple choice question
type MCQ struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// ChatMessage is one turn of an assistant conversation
type ChatMessage struct {
	Role string `json:"role" binding:"required,oneof=user model"`
	Text string `json:"text" binding:"required"`
}

const (
	ChatRoleUser  = "user"
	ChatRoleModel = "model"
)
