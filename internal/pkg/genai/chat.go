package genai

import (
	"context"
	"fmt"
	"strings"

	gemini "google.golang.org/genai"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/pkg/apperrors"
)

const chatSystemInstruction = "You are a friendly assistant for the academy community portal. Answer clearly and concisely."

// Chat sends history plus message and returns the model reply. The caller
// owns the history; nothing is kept between calls.
func (c *Client) Chat(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperrors.NewValidationError("message is required")
	}

	if !c.Configured() {
		return "", fmt.Errorf("%w: %w", apperrors.ErrExternalService, ErrNotConfigured)
	}

	contents := make([]*gemini.Content, 0, len(history))
	for _, turn := range history {
		role := models.ChatRoleUser
		if turn.Role == models.ChatRoleModel {
			role = models.ChatRoleModel
		}
		contents = append(contents, textContent(role, turn.Text))
	}

	chat, err := c.sdk.Chats.Create(ctx, c.cfg.Model, &gemini.GenerateContentConfig{
		SystemInstruction: textContent("", chatSystemInstruction),
	}, contents)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to open chat")
		return "", fmt.Errorf("%w: %w", apperrors.ErrExternalService, err)
	}

	resp, err := chat.SendMessage(ctx, gemini.Part{Text: message})
	if err == nil {
		var reply string
		if reply, err = responseText(resp); err == nil {
			return reply, nil
		}
	}
	c.log.Error().Err(err).Msg("Chat request failed")
	return "", fmt.Errorf("%w: %w", apperrors.ErrExternalService, err)
}
