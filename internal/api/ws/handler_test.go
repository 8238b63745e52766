package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/deskfolio/internal/domain/catalog"
	"github.com/GriffinCanCode/deskfolio/internal/domain/desktop"
	"github.com/GriffinCanCode/deskfolio/internal/domain/session"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/deskfolio/internal/shared/clock"
)

type frame struct {
	Type    string        `json:"type"`
	Message string        `json:"message"`
	Command string        `json:"command"`
	Error   string        `json:"error"`
	View    *desktop.View `json:"view"`
}

type testEnv struct {
	server   *httptest.Server
	sched    *clock.Manual
	desktops *desktop.Manager
	metrics  *monitoring.Metrics
}

func newTestEnv(t *testing.T, origins []string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := catalog.New()
	cat.Register(catalog.App{ID: "about", Title: "About", Dock: true}, catalog.Payload{ContentType: "text/plain"})

	sched := clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	metrics := monitoring.NewMetrics()
	mgr := desktop.NewManager(cat, desktop.Options{
		Viewport:  window.Viewport{Width: 1280, Height: 800, TopBar: 32},
		Scheduler: sched,
		Recorder:  metrics,
	}, desktop.ManagerConfig{})

	router := gin.New()
	router.GET("/desktops/:id/stream", NewHandler(mgr, metrics, nil, origins).HandleConnection)
	srv := httptest.NewServer(router)

	t.Cleanup(func() {
		mgr.StopAll()
		srv.Close()
	})
	return &testEnv{server: srv, sched: sched, desktops: mgr, metrics: metrics}
}

func (e *testEnv) url(id string) string {
	return "ws" + strings.TrimPrefix(e.server.URL, "http") + "/desktops/" + id + "/stream"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(frame) bool) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var f frame
		require.NoError(t, json.Unmarshal(data, &f))
		if match(f) {
			return f
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

func TestStreamSendsGreetingAndInitialView(t *testing.T) {
	env := newTestEnv(t, nil)
	d, err := env.desktops.Create(window.Viewport{})
	require.NoError(t, err)

	conn := dial(t, env.url(d.ID()))

	first := readUntil(t, conn, func(frame) bool { return true })
	assert.Equal(t, TypeSystem, first.Type)

	view := readUntil(t, conn, func(f frame) bool { return f.Type == TypeView })
	require.NotNil(t, view.View)
	assert.Equal(t, d.ID(), view.View.ID)
	assert.True(t, view.View.Screen.Lock)

	assert.Eventually(t, func() bool { return env.metrics.Snapshot().WSConnections == 1 }, time.Second, 5*time.Millisecond)
}

func TestStreamPushesTimerDrivenChanges(t *testing.T) {
	env := newTestEnv(t, nil)
	d, err := env.desktops.Create(window.Viewport{})
	require.NoError(t, err)

	conn := dial(t, env.url(d.ID()))
	readUntil(t, conn, func(f frame) bool { return f.Type == TypeView })

	send(t, conn, Inbound{Type: TypeCommand, Command: desktop.Command{Type: desktop.CmdUnlock}})
	readUntil(t, conn, func(f frame) bool { return f.Type == TypeView && f.View.Session.LoggingIn })

	env.sched.Advance(session.DefaultDelays().Login)
	f := readUntil(t, conn, func(f frame) bool { return f.Type == TypeView && f.View.Screen.Desktop })
	assert.Equal(t, session.PhaseUnlocked, f.View.Session.Phase)

	send(t, conn, Inbound{Type: TypeCommand, Command: desktop.Command{Type: desktop.CmdOpen, AppID: "about"}})
	f = readUntil(t, conn, func(f frame) bool { return f.Type == TypeView && len(f.View.Windows) == 1 })
	assert.Equal(t, "about", f.View.Focused)
}

func TestStreamReportsRefusedCommands(t *testing.T) {
	env := newTestEnv(t, nil)
	d, err := env.desktops.Create(window.Viewport{})
	require.NoError(t, err)

	conn := dial(t, env.url(d.ID()))
	send(t, conn, Inbound{Type: TypeCommand, Command: desktop.Command{Type: desktop.CmdOpen, AppID: "about"}})

	f := readUntil(t, conn, func(f frame) bool { return f.Type == TypeError })
	assert.Equal(t, string(desktop.CmdOpen), f.Command)
	assert.Equal(t, desktop.ErrLocked.Error(), f.Error)
	require.NotNil(t, f.View)
	assert.Empty(t, f.View.Windows)

	send(t, conn, map[string]string{"type": "dance"})
	f = readUntil(t, conn, func(f frame) bool { return f.Type == TypeError })
	assert.Equal(t, "unknown message type", f.Error)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	f = readUntil(t, conn, func(f frame) bool { return f.Type == TypeError })
	assert.Equal(t, "malformed message", f.Error)

	send(t, conn, Inbound{Type: TypePing})
	readUntil(t, conn, func(f frame) bool { return f.Type == TypePong })
}

func TestStreamClosesWhenDesktopDeleted(t *testing.T) {
	env := newTestEnv(t, nil)
	d, err := env.desktops.Create(window.Viewport{})
	require.NoError(t, err)

	conn := dial(t, env.url(d.ID()))
	readUntil(t, conn, func(f frame) bool { return f.Type == TypeView })

	require.NoError(t, env.desktops.Delete(d.ID()))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), err)
			break
		}
	}
}

func TestStreamUnknownDesktop(t *testing.T) {
	env := newTestEnv(t, nil)

	_, resp, err := websocket.DefaultDialer.Dial(env.url("missing"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	open := originChecker(nil)
	assert.True(t, open(req("https://anywhere.example")))

	wildcard := originChecker([]string{"*"})
	assert.True(t, wildcard(req("https://anywhere.example")))

	strict := originChecker([]string{"https://site.example"})
	assert.True(t, strict(req("https://site.example")))
	assert.True(t, strict(req("")))
	assert.False(t, strict(req("https://evil.example")))
}
