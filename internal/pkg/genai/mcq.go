package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gemini "google.golang.org/genai"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/pkg/apperrors"
)

// Request describes a question generation job
type Request struct {
	Text       string
	Topic      string
	Difficulty models.Difficulty
	Count      int
}

var mcqSchema = &gemini.Schema{
	Type: gemini.TypeArray,
	Items: &gemini.Schema{
		Type: gemini.TypeObject,
		Properties: map[string]*gemini.Schema{
			"question": {Type: gemini.TypeString, Description: "The question text."},
			"options": {
				Type:        gemini.TypeArray,
				Description: "Exactly four possible answers.",
				Items:       &gemini.Schema{Type: gemini.TypeString},
			},
			"answer": {Type: gemini.TypeString, Description: "The correct answer, identical to one of the options."},
		},
		Required: []string{"question", "options", "answer"},
	},
}

// GenerateMCQs asks the model for questions about req.Text. Text beyond the
// configured limit is cut off. Malformed questions are dropped, so an empty
// result is a success; transport and format failures wrap
// apperrors.ErrGenerationFailed.
func (c *Client) GenerateMCQs(ctx context.Context, req Request) ([]models.MCQ, error) {
	text := truncateRunes(req.Text, c.cfg.MaxTextLength)

	raw, err := c.generateContent(ctx,
		[]*gemini.Content{textContent(models.ChatRoleUser, buildMCQPrompt(req, text))},
		&gemini.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   mcqSchema,
		})
	if err != nil {
		c.log.Error().Err(err).Str("topic", req.Topic).Msg("MCQ generation request failed")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrGenerationFailed, err)
	}

	mcqs, err := ParseMCQs(raw)
	if err != nil {
		c.log.Error().Err(err).Str("topic", req.Topic).Msg("MCQ generation returned an unusable payload")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrGenerationFailed, err)
	}

	valid := ValidateMCQs(mcqs)
	if dropped := len(mcqs) - len(valid); dropped > 0 {
		c.log.Warn().Int("dropped", dropped).Msg("Skipped malformed MCQs")
	}
	return valid, nil
}

// ParseMCQs decodes the model output, which must be a JSON array
func ParseMCQs(raw string) ([]models.MCQ, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "[") {
		return nil, fmt.Errorf("response is not a JSON array")
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}

	out := make([]models.MCQ, 0, len(items))
	for _, item := range items {
		var mcq models.MCQ
		// items of the wrong shape are kept empty and fail validation
		_ = json.Unmarshal(item, &mcq)
		out = append(out, mcq)
	}
	return out, nil
}

// ValidateMCQs keeps questions with text and exactly four options whose
// answer is one of them
func ValidateMCQs(in []models.MCQ) []models.MCQ {
	out := make([]models.MCQ, 0, len(in))
	for _, mcq := range in {
		if strings.TrimSpace(mcq.Question) == "" {
			continue
		}
		if len(mcq.Options) != 4 || !contains(mcq.Options, mcq.Answer) {
			continue
		}
		out = append(out, mcq)
	}
	return out
}

func buildMCQPrompt(req Request, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You write educational assessment material. Using only the document text below, write %d multiple-choice questions about %q at %q difficulty.\n\n",
		req.Count, req.Topic, req.Difficulty)
	b.WriteString("Every question needs exactly 4 options with a single correct one, and the answer must repeat that option verbatim. ")
	b.WriteString("Reply with the JSON array only, without commentary or markdown.\n\n")
	b.WriteString("Document text:\n---\n")
	b.WriteString(text)
	b.WriteString("\n---\n")
	return b.String()
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// truncateRunes cuts s to at most n characters
func truncateRunes(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
