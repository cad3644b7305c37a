package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/app/models/dto"
	"github.com/yigit/majlis/internal/middleware"
)

// RecapRunner publishes the weekly recap on demand
type RecapRunner interface {
	RunOnce() (models.Post, bool)
}

// AdminController handles the admin dashboard
type AdminController struct {
	recap  RecapRunner
	logger zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(recap RecapRunner, logger zerolog.Logger) *AdminController {
	return &AdminController{recap: recap, logger: logger}
}

// WeeklyStats returns the counters for the last seven days
// @Summary Weekly stats
// @Tags admin
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=store.WeeklyStats}
// @Router /admin/stats [get]
func (c *AdminController) WeeklyStats(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	stats, err := client.WeeklyStats()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: stats})
}

// BuildDigest drafts the weekly digest in the session language
// @Summary Draft digest
// @Tags admin
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=store.Digest}
// @Router /admin/digest [get]
func (c *AdminController) BuildDigest(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	digest, err := client.BuildDigest()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: digest})
}

// PublishDigest posts the digest as an announcement
// @Summary Publish digest
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Param request body dto.PublishDigestRequest true "Digest content"
// @Success 201 {object} dto.APIResponse{data=models.Post}
// @Router /admin/digest [post]
func (c *AdminController) PublishDigest(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	var req dto.PublishDigestRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	mark := toastMark(client)
	post, err := client.PublishDigest(req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: post, Toasts: toastsSince(client, mark)})
}

// RunRecap runs the weekly recap job now
// @Summary Run weekly recap
// @Tags admin
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.RecapResponse}
// @Router /admin/recap [post]
func (c *AdminController) RunRecap(ctx *gin.Context) {
	post, published := c.recap.RunOnce()

	resp := dto.RecapResponse{Published: published}
	if published {
		resp.Post = &post
		c.logger.Info().Str("postID", post.ID).Msg("Weekly recap published on demand")
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}
