// Package genai wraps the Gemini SDK for question generation and chat.
package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gemini "google.golang.org/genai"
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("genai: api key is not configured")

// Config holds the model endpoint settings. An empty BaseURL uses the SDK default.
type Config struct {
	APIKey        string
	Model         string
	BaseURL       string
	Timeout       time.Duration
	MaxTextLength int
}

// Client is a thin layer over the Gemini SDK
type Client struct {
	cfg Config
	sdk *gemini.Client // nil when not configured
	log zerolog.Logger
}

// NewClient creates a client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client, log zerolog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = 1_000_000
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		cfg: cfg,
		log: log.With().Str("component", "genai").Logger(),
	}
	if cfg.APIKey == "" {
		return c
	}

	sdk, err := gemini.NewClient(context.Background(), &gemini.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     gemini.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: gemini.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to create Gemini client")
		return c
	}
	c.sdk = sdk
	return c
}

// Configured reports whether requests can be sent
func (c *Client) Configured() bool {
	return c.sdk != nil
}

func textContent(role, text string) *gemini.Content {
	return &gemini.Content{Role: role, Parts: []*gemini.Part{{Text: text}}}
}

// responseText joins the text parts of the first candidate
func responseText(resp *gemini.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("empty response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no candidates in response")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String(), nil
}

// generateContent sends contents and returns the text of the first candidate
func (c *Client) generateContent(ctx context.Context, contents []*gemini.Content, config *gemini.GenerateContentConfig) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	start := time.Now()
	resp, err := c.sdk.Models.GenerateContent(ctx, c.cfg.Model, contents, config)
	c.log.Debug().
		Dur("took", time.Since(start)).
		Str("model", c.cfg.Model).
		Bool("ok", err == nil).
		Msg("generateContent finished")
	if err != nil {
		return "", fmt.Errorf("upstream request failed: %w", err)
	}
	return responseText(resp)
}
