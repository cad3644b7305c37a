package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/app/models/dto"
	"github.com/yigit/majlis/internal/i18n"
	"github.com/yigit/majlis/internal/middleware"
	"github.com/yigit/majlis/internal/pkg/apperrors"
	"github.com/yigit/majlis/internal/pkg/documents"
	"github.com/yigit/majlis/internal/pkg/genai"
)

// QuestionGenerator produces multiple choice questions from text
type QuestionGenerator interface {
	GenerateMCQs(ctx context.Context, req genai.Request) ([]models.MCQ, error)
}

// Assistant answers chat messages
type Assistant interface {
	Chat(ctx context.Context, history []models.ChatMessage, message string) (string, error)
}

// GenerationObserver is told how each generation request ended
type GenerationObserver interface {
	ObserveMCQGeneration(result string)
}

// MCQLimits bounds generation requests
type MCQLimits struct {
	MaxPDFBytes  int64
	MaxQuestions int
}

// MCQController handles question generation, export and the chat assistant
type MCQController struct {
	generator  QuestionGenerator
	assistant  Assistant
	translator *i18n.Translator
	observer   GenerationObserver
	limits     MCQLimits
	logger     zerolog.Logger
}

// NewMCQController creates a new MCQController. observer may be nil.
func NewMCQController(
	generator QuestionGenerator,
	assistant Assistant,
	translator *i18n.Translator,
	observer GenerationObserver,
	limits MCQLimits,
	logger zerolog.Logger,
) *MCQController {
	if limits.MaxPDFBytes <= 0 {
		limits.MaxPDFBytes = documents.MaxPDFBytes
	}
	if limits.MaxQuestions <= 0 {
		limits.MaxQuestions = 20
	}
	return &MCQController{
		generator:  generator,
		assistant:  assistant,
		translator: translator,
		observer:   observer,
		limits:     limits,
		logger:     logger,
	}
}

func (c *MCQController) observe(result string) {
	if c.observer != nil {
		c.observer.ObserveMCQGeneration(result)
	}
}

// Generate builds questions from an uploaded PDF
// @Summary Generate MCQs from a PDF
// @Tags mcq
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Source PDF"
// @Param topic formData string true "Topic"
// @Param difficulty formData string true "Easy, Medium or Hard"
// @Param count formData int true "Number of questions (1-20)"
// @Success 200 {object} dto.APIResponse{data=dto.GenerateMCQResponse}
// @Failure 409 {object} dto.ErrorResponse "A generation is already running"
// @Failure 502 {object} dto.ErrorResponse "Generation failed"
// @Router /mcq/generate [post]
func (c *MCQController) Generate(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	var form dto.GenerateMCQForm
	if !middleware.BindForm(ctx, &form) {
		return
	}

	if form.Count > c.limits.MaxQuestions {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError(
			fmt.Sprintf("at most %d questions can be generated", c.limits.MaxQuestions)))
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewCustomError(apperrors.ErrValidationFailed, "a PDF file is required").
			WithCode("mcqErrorNoFile"))
		return
	}

	if !client.TryBeginGeneration() {
		c.observe("busy")
		middleware.HandleAPIError(ctx, apperrors.ErrGenerationInProgress)
		return
	}
	defer client.EndGeneration()

	text, err := c.readPDF(fileHeader.Open, fileHeader.Size)
	if err != nil {
		c.observe("rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	mcqs, err := c.generator.GenerateMCQs(ctx.Request.Context(), genai.Request{
		Text:       text,
		Topic:      form.Topic,
		Difficulty: models.Difficulty(form.Difficulty),
		Count:      form.Count,
	})
	if err != nil {
		c.observe("failed")
		c.logger.Error().Err(err).Str("sessionID", client.ID()).Msg("MCQ generation failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.observe("success")
	if mcqs == nil {
		mcqs = []models.MCQ{}
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.GenerateMCQResponse{Topic: form.Topic, Questions: mcqs}})
}

func (c *MCQController) readPDF(open func() (multipart.File, error), size int64) (string, error) {
	file, err := open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	// read one byte past the limit so oversized bodies are caught even when the size header lies
	data, err := io.ReadAll(io.LimitReader(file, c.limits.MaxPDFBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > size {
		size = int64(len(data))
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if err := documents.ValidatePDF(head, size, c.limits.MaxPDFBytes); err != nil {
		return "", err
	}

	text, err := documents.ExtractText(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		c.logger.Warn().Err(err).Msg("Unreadable PDF upload")
		return "", apperrors.NewCustomError(apperrors.ErrUnsupportedFileType, "the PDF could not be read").
			WithCode("invalidPdfType")
	}
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewValidationError("the PDF contains no text")
	}
	return text, nil
}

// Export renders questions as a PDF or Word document
// @Summary Export MCQs
// @Tags mcq
// @Accept json
// @Produce application/pdf
// @Param request body dto.ExportMCQRequest true "Questions"
// @Success 200 {file} file
// @Router /mcq/export [post]
func (c *MCQController) Export(ctx *gin.Context) {
	var req dto.ExportMCQRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	lang := i18n.DefaultLanguage
	if client, ok := middleware.ClientFrom(ctx); ok {
		lang = client.Language()
	}
	labels := documents.Labels{}
	if c.translator != nil {
		labels.MCQsFor = c.translator.T(lang, i18n.KeyMCQsFor)
		labels.Answer = c.translator.T(lang, i18n.KeyAnswer)
	}

	var buf bytes.Buffer
	var contentType, ext string
	var err error
	switch req.Format {
	case "docx":
		contentType, ext = documents.ContentTypeDOCX, ".docx"
		err = documents.WriteDOCX(&buf, req.Questions, req.Topic, labels)
	default:
		contentType, ext = documents.ContentTypePDF, ".pdf"
		err = documents.WritePDF(&buf, req.Questions, req.Topic, labels)
	}
	if err != nil {
		c.logger.Error().Err(err).Str("format", req.Format).Msg("Failed to export MCQs")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, exportName(req.Topic), ext))
	ctx.Data(http.StatusOK, contentType, buf.Bytes())
}

// exportName turns a topic into a safe file name stem
func exportName(topic string) string {
	var sb strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(topic) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash && sb.Len() > 0 {
			sb.WriteByte('-')
			lastDash = true
		}
	}
	name := strings.TrimSuffix(sb.String(), "-")
	if name == "" {
		return "mcqs"
	}
	return "mcqs-" + name
}

// Chat sends a message to the assistant
// @Summary Chat with the assistant
// @Tags chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Message and history"
// @Success 200 {object} dto.APIResponse{data=dto.ChatResponse}
// @Failure 502 {object} dto.ErrorResponse
// @Router /chat [post]
func (c *MCQController) Chat(ctx *gin.Context) {
	var req dto.ChatRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	reply, err := c.assistant.Chat(ctx.Request.Context(), req.History, req.Message)
	if err != nil {
		c.logger.Error().Err(err).Msg("Chat request failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.ChatResponse{Reply: reply}})
}
