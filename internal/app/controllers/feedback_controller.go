package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/majlis/internal/app/models/dto"
	"github.com/yigit/majlis/internal/app/store"
	"github.com/yigit/majlis/internal/i18n"
	"github.com/yigit/majlis/internal/middleware"
	"github.com/yigit/majlis/internal/pkg/helpers"
)

// FeedbackController handles the feedback moderation flow
type FeedbackController struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewFeedbackController creates a new FeedbackController
func NewFeedbackController(st *store.Store, logger zerolog.Logger) *FeedbackController {
	return &FeedbackController{store: st, logger: logger}
}

// placeholder is the author name shown for anonymous items
func (c *FeedbackController) placeholder(client *store.Client) string {
	if t := c.store.Translator(); t != nil {
		return t.T(client.Language(), i18n.KeyAnonymous)
	}
	return "Anonymous"
}

// ListFeedback returns the feedback visible to the caller
// @Summary List feedback
// @Tags feedback
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.FeedbackResponse}
// @Router /feedback [get]
func (c *FeedbackController) ListFeedback(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	items, err := client.Feedback()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	items, page := helpers.Paginate(ctx, items)
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.NewFeedbackResponses(items, c.placeholder(client)), Pagination: page})
}

// GetFeedback returns one visible feedback item
// @Summary Get feedback
// @Tags feedback
// @Security BearerAuth
// @Param id path string true "Feedback ID"
// @Success 200 {object} dto.APIResponse{data=dto.FeedbackResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /feedback/{id} [get]
func (c *FeedbackController) GetFeedback(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	item, err := client.GetFeedback(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.NewFeedbackResponse(item, c.placeholder(client))})
}

// CreateFeedback submits feedback
// @Summary Submit feedback
// @Tags feedback
// @Security BearerAuth
// @Accept json
// @Param request body dto.CreateFeedbackRequest true "Feedback"
// @Success 201 {object} dto.APIResponse{data=dto.FeedbackResponse}
// @Router /feedback [post]
func (c *FeedbackController) CreateFeedback(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	var req dto.CreateFeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	mark := toastMark(client)
	item, err := client.AddFeedback(req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:   dto.NewFeedbackResponse(item, c.placeholder(client)),
		Toasts: toastsSince(client, mark),
	})
}

// OpenFeedback marks a pending item as opened
// @Summary Open feedback
// @Tags feedback
// @Security BearerAuth
// @Param id path string true "Feedback ID"
// @Success 200 {object} dto.APIResponse{data=dto.FeedbackResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Router /feedback/{id}/open [post]
func (c *FeedbackController) OpenFeedback(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	item, err := client.OpenFeedback(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.NewFeedbackResponse(item, c.placeholder(client))})
}

// ReplyFeedback answers a feedback item
// @Summary Reply to feedback
// @Tags feedback
// @Security BearerAuth
// @Accept json
// @Param id path string true "Feedback ID"
// @Param request body dto.ReplyFeedbackRequest true "Reply"
// @Success 200 {object} dto.APIResponse{data=dto.FeedbackResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Router /feedback/{id}/reply [post]
func (c *FeedbackController) ReplyFeedback(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	var req dto.ReplyFeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	mark := toastMark(client)
	item, err := client.AddFeedbackReply(ctx.Param("id"), req.Text)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:   dto.NewFeedbackResponse(item, c.placeholder(client)),
		Toasts: toastsSince(client, mark),
	})
}

// DeleteFeedback removes a feedback item
// @Summary Delete feedback
// @Tags feedback
// @Security BearerAuth
// @Param id path string true "Feedback ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /feedback/{id} [delete]
func (c *FeedbackController) DeleteFeedback(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}

	mark := toastMark(client)
	if err := client.DeleteFeedback(ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("feedbackID", ctx.Param("id")).Msg("Feedback deleted")
	ctx.JSON(http.StatusOK, dto.APIResponse{Message: "feedback deleted", Toasts: toastsSince(client, mark)})
}
