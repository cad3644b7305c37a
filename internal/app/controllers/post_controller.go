package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/majlis/internal/app/models/dto"
	"github.com/yigit/majlis/internal/app/store"
	"github.com/yigit/majlis/internal/middleware"
	"github.com/yigit/majlis/internal/pkg/apperrors"
	"github.com/yigit/majlis/internal/pkg/helpers"
)

// PostController handles the feed
type PostController struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewPostController creates a new PostController
func NewPostController(st *store.Store, logger zerolog.Logger) *PostController {
	return &PostController{store: st, logger: logger}
}

// Feed lists posts
// @Summary Feed
// @Tags posts
// @Produce json
// @Param filter query string false "all, post, activity or announcement"
// @Param sort query string false "latest, topRatedWeekly or topRatedAllTime"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]dto.PostResponse}
// @Router /feed [get]
func (c *PostController) Feed(ctx *gin.Context) {
	var query dto.FeedQuery
	if !middleware.BindForm(ctx, &query) {
		return
	}
	q, err := store.ParseFeedQuery(query.Filter, query.Sort)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	posts, page := helpers.Paginate(ctx, c.store.Feed(q))
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.NewPostResponses(posts, viewerID(ctx)), Pagination: page})
}

// GetPost returns one post
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /posts/{id} [get]
func (c *PostController) GetPost(ctx *gin.Context) {
	post, ok := c.store.Post(ctx.Param("id"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewResourceNotFoundError("post not found"))
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.NewPostResponse(post, viewerID(ctx))})
}

// CreatePost publishes a post
// @Summary Publish a post
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreatePostRequest true "Post"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse}
// @Router /posts [post]
func (c *PostController) CreatePost(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	var req dto.CreatePostRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	mark := toastMark(client)
	post, err := client.AddPost(req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("postID", post.ID).Str("type", string(post.Type)).Msg("Post published")
	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:   dto.NewPostResponse(post, post.Author.ID),
		Toasts: toastsSince(client, mark),
	})
}

// ToggleStar stars or unstars a post for the signed in user
// @Summary Toggle star
// @Tags posts
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /posts/{id}/star [post]
func (c *PostController) ToggleStar(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}

	mark := toastMark(client)
	post, err := client.ToggleStar(ctx.Param("id"))
	if err != nil {
		// the store raises a toast for anonymous sessions; include it
		if apperrors.Is(err, apperrors.ErrNotAuthenticated) {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithMessageKey("mustBeSignedIn").
				WithDetails(gin.H{"toasts": toastsSince(client, mark)})
			ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.NewPostResponse(post, viewerID(ctx))})
}

// RateActivity rates an activity from 1 to 5
// @Summary Rate an activity
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Param id path string true "Post ID"
// @Param request body dto.RateRequest true "Rating"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse}
// @Router /posts/{id}/rating [post]
func (c *PostController) RateActivity(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	var req dto.RateRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	mark := toastMark(client)
	post, err := client.RateActivity(ctx.Param("id"), req.Rating)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:   dto.NewPostResponse(post, viewerID(ctx)),
		Toasts: toastsSince(client, mark),
	})
}
