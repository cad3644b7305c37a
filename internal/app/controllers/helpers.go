package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/app/models/dto"
	"github.com/yigit/majlis/internal/app/store"
	"github.com/yigit/majlis/internal/middleware"
)

// toastMark remembers the newest live toast so toastsSince can return
// only the ones raised by the current request
func toastMark(client *store.Client) int64 {
	var mark int64
	for _, t := range client.Toasts() {
		if t.ID > mark {
			mark = t.ID
		}
	}
	return mark
}

func toastsSince(client *store.Client, mark int64) []models.Toast {
	var out []models.Toast
	for _, t := range client.Toasts() {
		if t.ID > mark {
			out = append(out, t)
		}
	}
	return out
}

// mustClient returns the session attached by the session middleware
func mustClient(c *gin.Context) (*store.Client, bool) {
	client, ok := middleware.ClientFrom(c)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	return client, true
}

// viewerID is the signed in user of the optional session, or ""
func viewerID(c *gin.Context) string {
	client, ok := middleware.ClientFrom(c)
	if !ok {
		return ""
	}
	if u, ok := client.SessionUser(); ok {
		return u.ID
	}
	return ""
}

// sessionResponse describes client for the API
func sessionResponse(client *store.Client) dto.SessionResponse {
	resp := dto.SessionResponse{
		SessionID:  client.ID(),
		Language:   client.Language(),
		Direction:  client.Direction(),
		ActiveView: client.ActiveView(),
	}
	if u, ok := client.SessionUser(); ok {
		user := dto.NewUserResponse(u)
		resp.User = &user
	}
	return resp
}
