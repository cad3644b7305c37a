package dto

import "github.com/yigit/majlis/internal/app/models"

// PublishDigestRequest publishes an edited digest
type PublishDigestRequest struct {
	Content string `json:"content" binding:"required,notblank"`
}

// RecapResponse reports a manual recap run
type RecapResponse struct {
	Published bool         `json:"published"`
	Post      *models.Post `json:"post,omitempty"`
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Sessions int    `json:"sessions"`
}

// LanguageInfo describes one supported language
type LanguageInfo struct {
	Code      string `json:"code" example:"ar"`
	Direction string `json:"direction" example:"rtl"`
}

// TranslationsResponse is a full UI string table
type TranslationsResponse struct {
	Language  string            `json:"language"`
	Direction string            `json:"direction"`
	Strings   map[string]string `json:"strings"`
}
