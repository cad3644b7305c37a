package genai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/pkg/apperrors"
)

type recordedText struct {
	Text string `json:"text"`
}

type recordedContent struct {
	Role  string         `json:"role"`
	Parts []recordedText `json:"parts"`
}

// recordedRequest is the part of the generateContent body the tests look at
type recordedRequest struct {
	Contents          []recordedContent `json:"contents"`
	SystemInstruction *recordedContent  `json:"systemInstruction"`
	GenerationConfig  *struct {
		ResponseMimeType string `json:"responseMimeType"`
		ResponseSchema   struct {
			Type string `json:"type"`
		} `json:"responseSchema"`
	} `json:"generationConfig"`
}

// geminiStub answers generateContent with text and records the last request
type geminiStub struct {
	status  int
	text    string
	lastReq recordedRequest
	lastKey string
	path    string
}

func (g *geminiStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	g.lastReq = recordedRequest{}
	_ = json.Unmarshal(body, &g.lastReq)
	g.lastKey = r.Header.Get("x-goog-api-key")
	g.path = r.URL.Path

	w.Header().Set("Content-Type", "application/json")
	if g.status != 0 && g.status != http.StatusOK {
		w.WriteHeader(g.status)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"quota","status":"INVALID_ARGUMENT"}}`))
		return
	}

	resp := map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []interface{}{map[string]interface{}{"text": g.text}},
				},
			},
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestClient(t *testing.T, stub *geminiStub, maxLen int) *Client {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, MaxTextLength: maxLen}, srv.Client(), zerolog.Nop())
	require.True(t, c.Configured())
	return c
}

func TestValidateMCQs_DropsMalformed(t *testing.T) {
	good := models.MCQ{Question: "2+2?", Options: []string{"1", "2", "3", "4"}, Answer: "4"}
	threeOptions := models.MCQ{Question: "Capital?", Options: []string{"a", "b", "c"}, Answer: "a"}
	answerMissing := models.MCQ{Question: "Color?", Options: []string{"r", "g", "b", "y"}, Answer: "purple"}

	assert.Equal(t, []models.MCQ{good}, ValidateMCQs([]models.MCQ{good, threeOptions}))
	assert.Equal(t, []models.MCQ{good}, ValidateMCQs([]models.MCQ{answerMissing, good}))

	blank := models.MCQ{Question: "  ", Options: []string{"1", "2", "3", "4"}, Answer: "4"}
	assert.Equal(t, []models.MCQ{good}, ValidateMCQs([]models.MCQ{blank, good}))
	assert.Empty(t, ValidateMCQs(nil))
}

func TestParseMCQs(t *testing.T) {
	mcqs, err := ParseMCQs(` [{"question":"q","options":["a","b","c","d"],"answer":"a"}, "junk", {"question":1},
		{"options":["a","b","c","d"],"answer":"a"}, {"question":7,"options":["a","b","c","d"],"answer":"a"}] `)
	require.NoError(t, err)
	require.Len(t, mcqs, 5)
	assert.Equal(t, "q", mcqs[0].Question)
	assert.Len(t, ValidateMCQs(mcqs), 1)

	for _, bad := range []string{`{"question":"q"}`, `not json`, `[{"question":`, ``} {
		_, err := ParseMCQs(bad)
		assert.Error(t, err, bad)
	}
}

func TestGenerateMCQs(t *testing.T) {
	stub := &geminiStub{text: `[
		{"question":"What is Go?","options":["A language","A game","A car","A fruit"],"answer":"A language"},
		{"question":"Broken","options":["x","y","z"],"answer":"x"}
	]`}
	c := newTestClient(t, stub, 10)

	mcqs, err := c.GenerateMCQs(context.Background(), Request{
		Text:       "0123456789ABCDEF",
		Topic:      "Go",
		Difficulty: models.DifficultyEasy,
		Count:      2,
	})
	require.NoError(t, err)
	require.Len(t, mcqs, 1)
	assert.Equal(t, "What is Go?", mcqs[0].Question)

	assert.Equal(t, "test-key", stub.lastKey)
	assert.True(t, strings.HasSuffix(stub.path, "/models/gemini-2.5-flash:generateContent"), stub.path)
	require.NotNil(t, stub.lastReq.GenerationConfig)
	assert.Equal(t, "application/json", stub.lastReq.GenerationConfig.ResponseMimeType)
	assert.Equal(t, "ARRAY", stub.lastReq.GenerationConfig.ResponseSchema.Type)

	prompt := stub.lastReq.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "0123456789\n")
	assert.NotContains(t, prompt, "ABCDEF", "text past the limit is cut")
}

func TestGenerateMCQs_EmptyIsNotAnError(t *testing.T) {
	stub := &geminiStub{text: `[{"question":"q","options":["a"],"answer":"a"}]`}
	c := newTestClient(t, stub, 0)

	mcqs, err := c.GenerateMCQs(context.Background(), Request{Text: "t", Topic: "x", Difficulty: models.DifficultyHard, Count: 1})
	require.NoError(t, err)
	assert.Empty(t, mcqs)
}

func TestGenerateMCQs_Failures(t *testing.T) {
	tests := []struct {
		name string
		stub *geminiStub
	}{
		{name: "upstream error", stub: &geminiStub{status: http.StatusBadRequest}},
		{name: "object instead of array", stub: &geminiStub{text: `{"question":"q"}`}},
		{name: "not json", stub: &geminiStub{text: "Sure! Here are your questions"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.stub, 0)
			_, err := c.GenerateMCQs(context.Background(), Request{Text: "t", Topic: "x", Difficulty: models.DifficultyMedium, Count: 1})
			assert.ErrorIs(t, err, apperrors.ErrGenerationFailed)
		})
	}
}

func TestGenerateMCQs_NotConfigured(t *testing.T) {
	c := NewClient(Config{}, nil, zerolog.Nop())
	assert.False(t, c.Configured())

	_, err := c.GenerateMCQs(context.Background(), Request{Text: "t"})
	assert.ErrorIs(t, err, apperrors.ErrGenerationFailed)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestChat(t *testing.T) {
	stub := &geminiStub{text: "Hello there"}
	c := newTestClient(t, stub, 0)

	reply, err := c.Chat(context.Background(), []models.ChatMessage{
		{Role: models.ChatRoleUser, Text: "Hi"},
		{Role: models.ChatRoleModel, Text: "How can I help?"},
		{Role: "system", Text: "treated as user"},
	}, "  When is the next workshop? ")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply)

	require.Len(t, stub.lastReq.Contents, 4)
	assert.Equal(t, "user", stub.lastReq.Contents[0].Role)
	assert.Equal(t, "model", stub.lastReq.Contents[1].Role)
	assert.Equal(t, "user", stub.lastReq.Contents[2].Role)
	assert.Equal(t, "When is the next workshop?", stub.lastReq.Contents[3].Parts[0].Text)
	require.NotNil(t, stub.lastReq.SystemInstruction)
	assert.True(t, strings.Contains(stub.lastReq.SystemInstruction.Parts[0].Text, "assistant"))

	_, err = c.Chat(context.Background(), nil, " ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	stub.status = http.StatusBadRequest
	_, err = c.Chat(context.Background(), nil, "hi")
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
}
