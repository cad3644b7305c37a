package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/majlis/internal/app/models/dto"
	"github.com/yigit/majlis/internal/pkg/apperrors"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
	key     string
}

// checked in order; the first match wins
var errorMappings = []errorMapping{
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found", ""},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied", ""},
	{apperrors.ErrNotAuthenticated, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", "mustBeSignedIn"},
	{apperrors.ErrSessionNotFound, http.StatusUnauthorized, dto.ErrorCodeSessionNotFound, "Session not found", ""},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials", "invalidCredentials"},
	{apperrors.ErrAccountLocked, http.StatusLocked, dto.ErrorCodeAccountLocked, "Account is temporarily locked", "accountLocked"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired", ""},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token", ""},
	{apperrors.ErrInvalidPasswordResetToken, http.StatusBadRequest, dto.ErrorCodeInvalidResetToken, "Invalid or expired reset token", "invalidResetToken"},
	{apperrors.ErrEmailInUse, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already in use", "emailInUse"},
	{apperrors.ErrInvalidRole, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Role is not allowed", ""},
	{apperrors.ErrInvalidRating, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Rating must be between 1 and 5", ""},
	{apperrors.ErrOwnActivity, http.StatusForbidden, dto.ErrorCodeForbidden, "You cannot rate your own activity", "cannotRateOwnActivity"},
	{apperrors.ErrNotActivity, http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "Only activities can be rated", ""},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed", ""},
	{apperrors.ErrUnsupportedFileType, http.StatusUnsupportedMediaType, dto.ErrorCodeUnsupportedFileType, "Unsupported file type", ""},
	{apperrors.ErrFileTooLarge, http.StatusRequestEntityTooLarge, dto.ErrorCodeFileTooLarge, "File too large", "fileTooLargeGeneric"},
	{apperrors.ErrGenerationInProgress, http.StatusConflict, dto.ErrorCodeGenerationInProgress, "A generation request is already running", "mcqErrorBusy"},
	{apperrors.ErrGenerationFailed, http.StatusBadGateway, dto.ErrorCodeGenerationFailed, "Question generation failed", "mcqErrorGeneric"},
	{apperrors.ErrExternalService, http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "External service error", "chatbotError"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}

		detail := dto.NewErrorDetail(m.code, m.message)
		key := m.key

		var custom *apperrors.CustomError
		if errors.As(err, &custom) {
			if custom.Message != "" {
				detail.Message = custom.Message
			}
			if custom.Code != "" {
				key = custom.Code
			}
			if custom.Details != nil {
				detail.Details = custom.Details
			}
		}
		if key != "" {
			detail.MessageKey = key
		}

		c.JSON(m.status, dto.NewErrorResponse(detail))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
	))
}
