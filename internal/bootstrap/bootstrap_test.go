package bootstrap

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/majlis/internal/config"
	pkgAuth "github.com/yigit/majlis/internal/pkg/auth"
	"github.com/yigit/majlis/internal/seed"
)

type envelope struct {
	Data   json.RawMessage   `json:"data"`
	Toasts []json.RawMessage `json:"toasts"`
}

func newTestApp(t *testing.T) (*gin.Engine, *Dependencies) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Server.Mode = "production"
	cfg.Auth.BcryptCost = 4
	cfg.Upload.StoragePath = t.TempDir()
	cfg.Recap.Enabled = false

	deps, err := BuildDependencies(cfg, zerolog.Nop())
	require.NoError(t, err)
	return SetupRouter(cfg, deps, zerolog.Nop()), deps
}

func do(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func signIn(t *testing.T, router http.Handler, email string) string {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email":    email,
		"password": seed.DefaultPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Result string `json:"result"`
		Auth   struct {
			Token struct {
				AccessToken string `json:"accessToken"`
			} `json:"token"`
		} `json:"auth"`
	}
	decodeData(t, w, &resp)
	require.Equal(t, "success", resp.Result)
	return resp.Auth.Token.AccessToken
}

func TestHealth(t *testing.T) {
	router, _ := newTestApp(t)

	w := do(t, router, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":0}`, w.Body.String())
}

func TestAnonymousSession_Language(t *testing.T) {
	router, deps := newTestApp(t)

	w := do(t, router, http.MethodPost, "/api/v1/auth/session", "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var auth struct {
		Token struct {
			AccessToken string `json:"accessToken"`
		} `json:"token"`
		Session struct {
			SessionID string `json:"sessionId"`
		} `json:"session"`
	}
	decodeData(t, w, &auth)
	token := auth.Token.AccessToken
	require.NotEmpty(t, token)
	assert.Equal(t, 1, deps.Store.ClientCount())

	w = do(t, router, http.MethodPut, "/api/v1/me/language", token, map[string]string{"language": "ar"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, router, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var session struct {
		Language  string `json:"language"`
		Direction string `json:"direction"`
	}
	decodeData(t, w, &session)
	assert.Equal(t, "ar", session.Language)
	assert.Equal(t, "rtl", session.Direction)

	// anonymous sessions cannot reach signed in routes
	w = do(t, router, http.MethodPost, "/api/v1/posts", token, map[string]string{
		"title": "Hello", "content": "World", "type": "POST",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodDelete, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, deps.Store.ClientCount())

	w = do(t, router, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	router, _ := newTestApp(t)

	for _, path := range []string{"/api/v1/me", "/api/v1/feedback", "/api/v1/admin/stats"} {
		w := do(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := do(t, router, http.MethodGet, "/api/v1/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutes_TokenErrorCodes(t *testing.T) {
	router, deps := newTestApp(t)

	expired, _, err := pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: -time.Minute,
		TokenIssuer:    "majlis.local",
	}).GenerateToken("sess-1", "", "")
	require.NoError(t, err)

	w := do(t, router, http.MethodGet, "/api/v1/me", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_006")

	w = do(t, router, http.MethodGet, "/api/v1/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_005")

	orphan, _, err := deps.JWTService.GenerateToken("no-such-session", "", "")
	require.NoError(t, err)
	w = do(t, router, http.MethodGet, "/api/v1/me", orphan, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_004")
}

func TestSignIn_FailureDoesNotLeakSessions(t *testing.T) {
	router, deps := newTestApp(t)

	w := do(t, router, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email":    "admin@majlis.local",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, deps.Store.ClientCount())
}

func TestCreatePost_ShowsInFeed(t *testing.T) {
	router, _ := newTestApp(t)
	token := signIn(t, router, "maria@majlis.local")

	w := do(t, router, http.MethodPost, "/api/v1/posts", token, map[string]string{
		"title": "Serverless office hours", "content": "Bring your questions.", "type": "POST",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.NotEmpty(t, env.Toasts)

	var created struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &created)

	w = do(t, router, http.MethodGet, "/api/v1/feed?filter=post&sort=latest", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	decodeData(t, w, &feed)
	require.NotEmpty(t, feed)
	assert.Equal(t, created.ID, feed[0].ID)
	for _, p := range feed {
		assert.Equal(t, "POST", p.Type)
	}

	w = do(t, router, http.MethodGet, "/api/v1/feed?sort=bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStar_TogglesForViewer(t *testing.T) {
	router, _ := newTestApp(t)
	token := signIn(t, router, "omar@student.majlis.local")

	w := do(t, router, http.MethodPost, "/api/v1/posts/post-1/star", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var post struct {
		Stars       int  `json:"stars"`
		StarredByMe bool `json:"starredByMe"`
	}
	decodeData(t, w, &post)
	assert.Equal(t, 1, post.Stars)
	assert.True(t, post.StarredByMe)

	w = do(t, router, http.MethodPost, "/api/v1/posts/post-1/star", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &post)
	assert.Equal(t, 0, post.Stars)
	assert.False(t, post.StarredByMe)
}

func TestRoleGuards(t *testing.T) {
	router, _ := newTestApp(t)
	student := signIn(t, router, "omar@student.majlis.local")
	admin := signIn(t, router, "admin@majlis.local")

	assert.Equal(t, http.StatusForbidden, do(t, router, http.MethodGet, "/api/v1/admin/stats", student, nil).Code)
	assert.Equal(t, http.StatusForbidden, do(t, router, http.MethodGet, "/api/v1/students", student, nil).Code)
	assert.Equal(t, http.StatusForbidden, do(t, router, http.MethodPost, "/api/v1/feedback/feedback-1/open", student, nil).Code)

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/api/v1/admin/stats", admin, nil).Code)

	for _, typ := range []string{"ACTIVITY", "ANNOUNCEMENT"} {
		w := do(t, router, http.MethodPost, "/api/v1/posts", student, map[string]string{
			"title": "Weekly Recap: Top Rated Activities", "content": "not really", "type": typ,
		})
		assert.Equal(t, http.StatusForbidden, w.Code, typ)
	}
	assert.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/v1/posts", admin, map[string]string{
		"title": "Exam week", "content": "Library opens early.", "type": "ANNOUNCEMENT",
	}).Code)

	w := do(t, router, http.MethodGet, "/api/v1/students", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var students []struct {
		Role string `json:"role"`
	}
	decodeData(t, w, &students)
	assert.Len(t, students, 5)
	for _, s := range students {
		assert.Equal(t, "STUDENT", s.Role)
	}
}

func TestRateActivity_OwnActivityForbidden(t *testing.T) {
	router, _ := newTestApp(t)
	author := signIn(t, router, "maria@majlis.local")

	w := do(t, router, http.MethodPost, "/api/v1/posts/post-2/rating", author, map[string]int{"rating": 5})
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "cannotRateOwnActivity")

	student := signIn(t, router, "omar@student.majlis.local")
	w = do(t, router, http.MethodPost, "/api/v1/posts/post-2/rating", student, map[string]int{"rating": 5})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestFeed_HidesAuthorEmail(t *testing.T) {
	router, _ := newTestApp(t)

	for _, path := range []string{"/api/v1/feed", "/api/v1/posts/post-1"} {
		w := do(t, router, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.NotContains(t, w.Body.String(), "@majlis.local", path)
		assert.NotContains(t, w.Body.String(), `"email"`, path)
	}
}

func TestI18nTables(t *testing.T) {
	router, _ := newTestApp(t)

	w := do(t, router, http.MethodGet, "/api/v1/i18n/ar", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var table struct {
		Direction string            `json:"direction"`
		Strings   map[string]string `json:"strings"`
	}
	decodeData(t, w, &table)
	assert.Equal(t, "rtl", table.Direction)
	assert.NotEmpty(t, table.Strings["signInSuccess"])

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/i18n/fr", "", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestApp(t)

	do(t, router, http.MethodGet, "/api/v1/health", "", nil)
	w := do(t, router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "majlis_http_requests_total")
	assert.Contains(t, w.Body.String(), "majlis_client_sessions")
}

func TestFeed_Pagination(t *testing.T) {
	router, _ := newTestApp(t)

	w := do(t, router, http.MethodGet, "/api/v1/feed?page=2&size=4", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data       []json.RawMessage `json:"data"`
		Pagination struct {
			CurrentPage int `json:"currentPage"`
			TotalPages  int `json:"totalPages"`
			TotalItems  int `json:"totalItems"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Pagination.CurrentPage)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.Equal(t, 6, resp.Pagination.TotalItems)
}
