package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/majlis/internal/app/models"
)

func newTestServer(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	handler := NewHandler(hub, func(c *gin.Context) (string, bool) {
		sid := c.Query("sid")
		return sid, sid != ""
	}, nil, zerolog.Nop())

	r := gin.New()
	r.GET("/ws", handler.HandleConnection)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server, sid string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?sid=" + sid
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestToastReachesOnlyItsSession(t *testing.T) {
	hub, srv, _ := newTestServer(t)

	alice := dial(t, srv, "session-a")
	bob := dial(t, srv, "session-b")
	require.Eventually(t, func() bool {
		return hub.ClientsCount("session-a") == 1 && hub.ClientsCount("session-b") == 1
	}, time.Second, 10*time.Millisecond)

	hub.NotifyToast("session-a", models.Toast{ID: 7, Message: "Post published!", Severity: models.ToastSuccess})

	require.NoError(t, alice.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := alice.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, EventToast, ev.Type)
	assert.Equal(t, int64(7), ev.Toast.ID)
	assert.Equal(t, "Post published!", ev.Toast.Message)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = bob.ReadMessage()
	assert.Error(t, err)
}

func TestRejectsRequestWithoutSession(t *testing.T) {
	_, srv, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHubClosesConnectionsOnShutdown(t *testing.T) {
	hub, srv, cancel := newTestServer(t)

	conn := dial(t, srv, "session-a")
	require.Eventually(t, func() bool { return hub.ClientsCount("session-a") == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, hub.ClientsCount("session-a"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// never blocks after shutdown
	hub.NotifyToast("session-a", models.Toast{ID: 1})
}
