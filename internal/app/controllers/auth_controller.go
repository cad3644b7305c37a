// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/app/models/dto"
	"github.com/yigit/majlis/internal/app/store"
	"github.com/yigit/majlis/internal/i18n"
	"github.com/yigit/majlis/internal/middleware"
	"github.com/yigit/majlis/internal/pkg/apperrors"
	"github.com/yigit/majlis/internal/pkg/auth"
)

// SignInObserver is told about every sign-in outcome
type SignInObserver interface {
	ObserveSignIn(outcome string)
}

// AuthControllerOptions tunes the authentication endpoints
type AuthControllerOptions struct {
	// SignupRoles are the roles open to self-registration
	SignupRoles []models.RoleType
	// ExposeResetToken returns reset tokens in the response body when no mail is sent
	ExposeResetToken bool
}

// AuthController handles sessions and authentication
type AuthController struct {
	store      *store.Store
	jwtService *auth.JWTService
	opts       AuthControllerOptions
	observer   SignInObserver
	logger     zerolog.Logger
}

// NewAuthController creates a new AuthController. observer may be nil.
func NewAuthController(st *store.Store, jwtService *auth.JWTService, opts AuthControllerOptions, observer SignInObserver, logger zerolog.Logger) *AuthController {
	if len(opts.SignupRoles) == 0 {
		opts.SignupRoles = []models.RoleType{models.RoleStudent, models.RoleMember}
	}
	return &AuthController{
		store:      st,
		jwtService: jwtService,
		opts:       opts,
		observer:   observer,
		logger:     logger,
	}
}

// CreateSession opens an anonymous session
// @Summary Open a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.CreateSessionRequest false "Preferred language"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse}
// @Router /auth/session [post]
func (c *AuthController) CreateSession(ctx *gin.Context) {
	var req dto.CreateSessionRequest
	if ctx.Request.ContentLength > 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	client := c.store.NewClient(i18n.Language(req.Language))
	resp, err := c.authResponse(client)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to issue session token")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Debug().Str("sessionID", client.ID()).Msg("Session opened")
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: resp})
}

// CloseSession forgets the caller's session
// @Summary Close the session
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Router /me [delete]
func (c *AuthController) CloseSession(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	c.store.CloseClient(client.ID())
	ctx.Status(http.StatusNoContent)
}

// SignUp registers a user and signs the session in
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignUpRequest true "Registration"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Email already in use"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(ctx *gin.Context) {
	var req dto.SignUpRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !c.roleAllowed(role) {
		c.logger.Warn().Str("role", string(role)).Msg("Rejected self-registration role")
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidRole)
		return
	}

	client, fresh := c.clientOrTransient(ctx)
	mark := toastMark(client)

	result, err := client.SignUp(req.Name, req.Email, req.Password, role)
	if err == nil && result == store.SignUpEmailInUse {
		err = apperrors.ErrEmailInUse
	}
	if err != nil {
		if fresh {
			c.store.CloseClient(client.ID())
		}
		if !apperrors.Is(err, apperrors.ErrEmailInUse) {
			c.logger.Error().Err(err).Msg("Failed to register user")
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.authResponse(client)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: resp, Toasts: toastsSince(client, mark)})
}

// SignIn handles user login
// @Summary User login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignInRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.SignInResponse}
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 423 {object} dto.ErrorResponse "Account locked"
// @Router /auth/signin [post]
func (c *AuthController) SignIn(ctx *gin.Context) {
	var req dto.SignInRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	client, fresh := c.clientOrTransient(ctx)
	mark := toastMark(client)

	result := client.SignIn(req.Email, req.Password)
	if c.observer != nil {
		c.observer.ObserveSignIn(result.String())
	}
	if result != store.SignInSuccess && fresh {
		c.store.CloseClient(client.ID())
	}

	switch result {
	case store.SignInAccountLocked:
		c.logger.Warn().Str("sessionID", client.ID()).Msg("Sign in attempt on locked account")
		middleware.HandleAPIError(ctx, apperrors.ErrAccountLocked)
		return
	case store.SignInInvalidCredentials:
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidCredentials)
		return
	}

	resp, err := c.authResponse(client)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:   dto.SignInResponse{Result: result.String(), Auth: &resp},
		Toasts: toastsSince(client, mark),
	})
}

// SignOut ends the signed in state; the session stays open
// @Summary Sign out
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse}
// @Router /auth/signout [post]
func (c *AuthController) SignOut(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	mark := toastMark(client)
	client.SignOut()

	resp, err := c.authResponse(client)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp, Toasts: toastsSince(client, mark)})
}

// ForgotPassword issues a reset token when the account exists. The
// response does not reveal whether it does unless tokens are exposed.
// @Summary Request a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} dto.APIResponse{data=dto.ResetTokenResponse}
// @Router /auth/forgot-password [post]
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	client, transient := c.clientOrTransient(ctx)
	if transient {
		defer c.store.CloseClient(client.ID())
	}
	mark := toastMark(client)

	token, ok := client.RequestPasswordReset(ctx.Request.Context(), req.Email)

	var resp dto.ResetTokenResponse
	if ok && c.opts.ExposeResetToken {
		resp.Token = token
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp, Toasts: toastsSince(client, mark)})
}

// ResetPassword sets a new password with a reset token
// @Summary Reset a password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired token"
// @Router /auth/reset-password [post]
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req dto.ResetPasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	client, transient := c.clientOrTransient(ctx)
	if transient {
		defer c.store.CloseClient(client.ID())
	}
	mark := toastMark(client)

	ok, err := client.ResetPassword(req.Token, req.NewPassword)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to reset password")
		middleware.HandleAPIError(ctx, err)
		return
	}
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidPasswordResetToken)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Message: "password updated", Toasts: toastsSince(client, mark)})
}

// GetSession describes the caller's session
// @Summary Current session
// @Tags session
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Router /me [get]
func (c *AuthController) GetSession(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: sessionResponse(client)})
}

// SetLanguage switches the session language
// @Summary Switch language
// @Tags session
// @Security BearerAuth
// @Param request body dto.SetLanguageRequest true "Language"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Router /me/language [put]
func (c *AuthController) SetLanguage(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	var req dto.SetLanguageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if err := client.SetLanguage(i18n.Language(req.Language)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: sessionResponse(client)})
}

// SetView records the view the UI session is on
// @Summary Switch view
// @Tags session
// @Security BearerAuth
// @Param request body dto.SetViewRequest true "View"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Router /me/view [put]
func (c *AuthController) SetView(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	var req dto.SetViewRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if err := client.SetActiveView(req.View); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: sessionResponse(client)})
}

// Toasts lists the live toasts of the session
// @Summary Live toasts
// @Tags session
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Toast}
// @Router /me/toasts [get]
func (c *AuthController) Toasts(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	toasts := client.Toasts()
	if toasts == nil {
		toasts = []models.Toast{}
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: toasts})
}

// DismissToast removes a toast before it expires
// @Summary Dismiss a toast
// @Tags session
// @Security BearerAuth
// @Param id path int true "Toast ID"
// @Success 204
// @Router /me/toasts/{id} [delete]
func (c *AuthController) DismissToast(ctx *gin.Context) {
	client, ok := mustClient(ctx)
	if !ok {
		return
	}
	var uri struct {
		ID int64 `uri:"id" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindUri(&uri); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}
	client.DismissToast(uri.ID)
	ctx.Status(http.StatusNoContent)
}

// clientOrTransient returns the caller's session, opening one when none is
// attached. The second result is true for a new session, which the caller
// closes unless it hands out a token for it.
func (c *AuthController) clientOrTransient(ctx *gin.Context) (*store.Client, bool) {
	if client, ok := middleware.ClientFrom(ctx); ok {
		return client, false
	}
	return c.store.NewClient(i18n.Language(ctx.GetHeader("Accept-Language"))), true
}

func (c *AuthController) roleAllowed(role models.RoleType) bool {
	for _, r := range c.opts.SignupRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (c *AuthController) authResponse(client *store.Client) (dto.AuthResponse, error) {
	session := sessionResponse(client)

	var userID, role string
	if session.User != nil {
		userID, role = session.User.ID, string(session.User.Role)
	}
	token, expiresIn, err := c.jwtService.GenerateToken(client.ID(), userID, role)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
		Session: session,
	}, nil
}
