package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/app/models/dto"
	"github.com/yigit/majlis/internal/app/store"
	"github.com/yigit/majlis/internal/pkg/apperrors"
	"github.com/yigit/majlis/internal/pkg/auth"
)

// Context keys set by the session middleware
const (
	ContextClientKey    = "client"
	ContextSessionIDKey = "sessionID"
)

// AuthMiddleware resolves bearer tokens to store sessions
type AuthMiddleware struct {
	jwtService *auth.JWTService
	store      *store.Store
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, st *store.Store) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		store:      st,
	}
}

// RequireSession rejects requests without a valid session token
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return m.session(true)
}

// OptionalSession attaches the session when a token is sent and ignores it otherwise
func (m *AuthMiddleware) OptionalSession() gin.HandlerFunc {
	return m.session(false)
}

func (m *AuthMiddleware) session(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			if required {
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
					WithDetails("Authorization header missing")
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
				return
			}
			c.Next()
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			if !required {
				c.Next()
				return
			}
			tokenErr := apperrors.ErrTokenInvalid
			if errors.Is(err, auth.ErrExpiredToken) {
				tokenErr = apperrors.ErrTokenExpired
			}
			HandleAPIError(c, tokenErr)
			c.Abort()
			return
		}

		client, err := m.store.Client(claims.SessionID)
		if err != nil {
			if !required {
				c.Next()
				return
			}
			HandleAPIError(c, apperrors.ErrSessionNotFound)
			c.Abort()
			return
		}

		c.Set(ContextClientKey, client)
		c.Set(ContextSessionIDKey, client.ID())
		c.Next()
	}
}

// RequireSignedIn rejects sessions without a signed in user. Must run after RequireSession.
func (m *AuthMiddleware) RequireSignedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := ClientFrom(c)
		if !ok {
			abortUnauthorized(c)
			return
		}
		if _, ok := client.SessionUser(); !ok {
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}

// RoleRequired rejects sessions whose user has none of roles. Must run after RequireSession.
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := ClientFrom(c)
		if !ok {
			abortUnauthorized(c)
			return
		}
		user, ok := client.SessionUser()
		if !ok {
			abortUnauthorized(c)
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
			WithDetails("You don't have sufficient permissions for this operation")
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
	}
}

// ClientFrom returns the session attached by the session middleware
func ClientFrom(c *gin.Context) (*store.Client, bool) {
	v, ok := c.Get(ContextClientKey)
	if !ok {
		return nil, false
	}
	client, ok := v.(*store.Client)
	return client, ok
}

// SessionIDFrom returns the id of the attached session
func SessionIDFrom(c *gin.Context) (string, bool) {
	id := c.GetString(ContextSessionIDKey)
	return id, id != ""
}

// tokenFromRequest reads the Authorization header, falling back to the
// token query parameter for websocket upgrades
func tokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return c.Query("token")
	}
	token, err := auth.ExtractBearerToken(strings.TrimSpace(header))
	if err != nil {
		return ""
	}
	return token
}

func abortUnauthorized(c *gin.Context) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
		WithMessageKey("mustBeSignedIn")
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}
