package controllers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/app/models/dto"
	"github.com/yigit/majlis/internal/middleware"
	"github.com/yigit/majlis/internal/pkg/apperrors"
	"github.com/yigit/majlis/internal/pkg/documents"
	"github.com/yigit/majlis/internal/pkg/filestorage"
)

// UploadLimits bounds profile uploads
type UploadLimits struct {
	MaxAvatarBytes int64
	MaxCVBytes     int64
}

// UserController handles profile and directory endpoints
type UserController struct {
	storage filestorage.Storage
	limits  UploadLimits
	logger  zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(storage filestorage.Storage, limits UploadLimits, logger zerolog.Logger) *UserController {
	return &UserController{
		storage: storage,
		limits:  limits,
		logger:  logger,
	}
}

// UpdateProfile changes the signed in user's name or bio
// @Summary Update profile
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Router /me [patch]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if req.Name == nil && req.Bio == nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("nothing to update"))
		return
	}

	mark := toastMark(client)
	user, err := client.UpdateProfile(models.ProfileUpdate{Name: req.Name, Bio: req.Bio})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.NewUserResponse(user), Toasts: toastsSince(client, mark)})
}

// UploadAvatar stores a JPEG or PNG avatar
// @Summary Upload avatar
// @Tags users
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Avatar image"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 413 {object} dto.ErrorResponse
// @Failure 415 {object} dto.ErrorResponse
// @Router /me/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	c.upload(ctx, "avatars", func(head []byte, size int64) (string, error) {
		return documents.ValidateImage(head, size, c.limits.MaxAvatarBytes)
	}, func(ref string) models.ProfileUpdate {
		return models.ProfileUpdate{AvatarURL: &ref}
	})
}

// UploadCV stores a PDF curriculum vitae
// @Summary Upload CV
// @Tags users
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CV as PDF"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Router /me/cv [post]
func (c *UserController) UploadCV(ctx *gin.Context) {
	c.upload(ctx, "cvs", func(head []byte, size int64) (string, error) {
		return ".pdf", documents.ValidatePDF(head, size, c.limits.MaxCVBytes)
	}, func(ref string) models.ProfileUpdate {
		return models.ProfileUpdate{CVURL: &ref}
	})
}

func (c *UserController) upload(
	ctx *gin.Context,
	subPath string,
	validate func(head []byte, size int64) (string, error),
	update func(ref string) models.ProfileUpdate,
) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to open uploaded file")
		middleware.HandleAPIError(ctx, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		middleware.HandleAPIError(ctx, fmt.Errorf("failed to read upload: %w", err))
		return
	}
	head = head[:n]

	ext, err := validate(head, fileHeader.Size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ref, err := c.storage.Save(io.MultiReader(bytes.NewReader(head), file), subPath, ext)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	previous, _ := client.SessionUser()
	mark := toastMark(client)
	user, err := client.UpdateProfile(update(ref))
	if err != nil {
		_ = c.storage.Delete(ref)
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.removeReplaced(previous, user)
	c.logger.Info().Str("userID", user.ID).Str("ref", ref).Msg("Profile file uploaded")
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.NewUserResponse(user), Toasts: toastsSince(client, mark)})
}

// removeReplaced deletes stored files the update superseded
func (c *UserController) removeReplaced(before, after models.User) {
	for _, pair := range [][2]*string{{before.AvatarURL, after.AvatarURL}, {before.CVURL, after.CVURL}} {
		old, cur := pair[0], pair[1]
		if old == nil || (cur != nil && *old == *cur) {
			continue
		}
		if err := c.storage.Delete(*old); err != nil {
			c.logger.Debug().Err(err).Str("ref", *old).Msg("Previous file not removed")
		}
	}
}

// Students lists the student directory
// @Summary Student directory
// @Tags users
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.UserResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Router /students [get]
func (c *UserController) Students(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	students, err := client.Students()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.NewUserResponses(students)})
}
