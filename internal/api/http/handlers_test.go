package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/deskfolio/internal/domain/catalog"
	"github.com/GriffinCanCode/deskfolio/internal/domain/desktop"
	"github.com/GriffinCanCode/deskfolio/internal/domain/session"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/deskfolio/internal/providers/contact"
	"github.com/GriffinCanCode/deskfolio/internal/providers/weather"
	"github.com/GriffinCanCode/deskfolio/internal/shared/clock"
)

type testEnv struct {
	router   *gin.Engine
	sched    *clock.Manual
	desktops *desktop.Manager
}

func testCatalog() *catalog.Catalog {
	cat := catalog.New()
	cat.Register(catalog.App{ID: "about", Title: "About Me", Dock: true, Order: 1},
		catalog.Payload{ContentType: "text/html", Body: "<p>Backend engineer who likes Go</p>"})
	cat.Register(catalog.App{ID: "projects", Title: "Projects", Dock: true, Order: 2},
		catalog.Payload{ContentType: "text/plain", Body: "A simulated desktop shell"})
	cat.Register(catalog.App{ID: "terminal", Title: "Terminal", Dock: true, Order: 3},
		catalog.Payload{ContentType: "text/plain"})
	return cat
}

func newTestEnv(t *testing.T, relay *contact.Relay, maxDesktops int) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sched := clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	metrics := monitoring.NewMetrics()
	cat := testCatalog()
	mgr := desktop.NewManager(cat, desktop.Options{
		Viewport:  window.Viewport{Width: 1280, Height: 800, TopBar: 32},
		Scheduler: sched,
		Recorder:  metrics,
	}, desktop.ManagerConfig{MaxDesktops: maxDesktops})
	t.Cleanup(mgr.StopAll)

	if relay == nil {
		relay = contact.New(contact.Config{}, nil)
	}
	h := NewHandlers(mgr, cat, relay, weather.New(weather.Config{}, nil), metrics, nil)

	router := gin.New()
	h.Register(router)
	return &testEnv{router: router, sched: sched, desktops: mgr}
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) create(t *testing.T) desktop.View {
	t.Helper()
	w := e.do(http.MethodPost, "/desktops", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var v desktop.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRootAndHealth(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	w := env.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", decode(t, w)["status"])

	env.create(t)
	w = env.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(1), body["desktops"].(map[string]any)["desktops"])
	assert.Equal(t, float64(3), body["catalog"].(map[string]any)["apps"])
	assert.Contains(t, body, "metrics")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	env.create(t)

	w := env.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deskfolio_desktops_active 1")
}

func TestCreateDesktop(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	v := env.create(t)
	assert.NotEmpty(t, v.ID)
	assert.True(t, v.Screen.Lock)
	assert.Equal(t, 1280, v.Viewport.Width)
	assert.Empty(t, v.Windows)

	w := env.do(http.MethodPost, "/desktops", gin.H{"width": 640, "height": 480})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, window.Viewport{Width: 640, Height: 480, TopBar: 32}, v.Viewport)

	w = env.do(http.MethodPost, "/desktops", gin.H{"width": -1, "height": 480})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateDesktopLimit(t *testing.T) {
	env := newTestEnv(t, nil, 1)
	env.create(t)

	w := env.do(http.MethodPost, "/desktops", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListGetDeleteDesktop(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	v := env.create(t)

	w := env.do(http.MethodGet, "/desktops", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{v.ID}, decode(t, w)["desktops"])

	w = env.do(http.MethodGet, "/desktops/"+v.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodDelete, "/desktops/"+v.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/desktops/"+v.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(http.MethodDelete, "/desktops/"+v.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDispatchCommand(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	id := env.create(t).ID
	path := "/desktops/" + id + "/commands"

	// Locked desktops refuse window commands and report the unchanged view
	w := env.do(http.MethodPost, path, desktop.Command{Type: desktop.CmdOpen, AppID: "about"})
	require.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, desktop.ErrLocked.Error(), body["error"])
	assert.Contains(t, body, "view")

	w = env.do(http.MethodPost, path, desktop.Command{Type: desktop.CmdUnlock})
	require.Equal(t, http.StatusOK, w.Code)
	env.sched.Advance(session.DefaultDelays().Login)

	w = env.do(http.MethodPost, path, desktop.Command{Type: desktop.CmdOpen, AppID: "about"})
	require.Equal(t, http.StatusOK, w.Code)

	var v desktop.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	require.Len(t, v.Windows, 1)
	assert.Equal(t, "about", v.Windows[0].ID)
	assert.Equal(t, "About Me", v.Windows[0].Title)
	assert.Equal(t, "about", v.Focused)
}

func TestDispatchCommandErrors(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	id := env.create(t).ID

	tests := []struct {
		name       string
		path       string
		body       any
		wantStatus int
	}{
		{"unknown desktop", "/desktops/nope/commands", desktop.Command{Type: desktop.CmdUnlock}, http.StatusNotFound},
		{"unknown command", "/desktops/" + id + "/commands", desktop.Command{Type: "window.explode"}, http.StatusBadRequest},
		{"missing app id", "/desktops/" + id + "/commands", desktop.Command{Type: desktop.CmdOpen}, http.StatusBadRequest},
		{"malformed body", "/desktops/" + id + "/commands", "not an object", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	w := env.do(http.MethodGet, "/apps", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["apps"], 3)
	assert.Equal(t, []any{"about", "projects", "terminal"}, body["dock"])

	w = env.do(http.MethodGet, "/apps/about", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "About Me", decode(t, w)["title"])

	w = env.do(http.MethodGet, "/apps/about/content", nil)
	require.Equal(t, http.StatusOK, w.Code)
	content := decode(t, w)["content"].(map[string]any)
	assert.Equal(t, "text/html", content["content_type"])

	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	req := httptest.NewRequest(http.MethodGet, "/apps/about/content", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/apps/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/apps/missing/content", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/apps/Bad%20Id", nil).Code)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	w := env.do(http.MethodGet, "/search?q=go", nil)
	require.Equal(t, http.StatusOK, w.Code)
	results := decode(t, w)["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "about", results[0].(map[string]any)["app_id"])

	w = env.do(http.MethodGet, "/search?q=zebra", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["results"])

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/search", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/search?q=go&limit=0", nil).Code)
}

func TestContactNotConfigured(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	w := env.do(http.MethodPost, "/contact", contact.Message{Name: "Ada", Email: "ada@example.com", Body: "hi"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, contact.StatusFailed, decode(t, w)["status"])
}

func TestContactSend(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"em_1"}`))
	}))
	defer upstream.Close()

	relay := contact.New(contact.Config{APIKey: "k", Endpoint: upstream.URL, To: "me@example.com"}, nil)
	env := newTestEnv(t, relay, 0)

	w := env.do(http.MethodPost, "/contact", contact.Message{Name: "Ada", Email: "ada@example.com", Body: "hi"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, contact.StatusSent, decode(t, w)["status"])

	w = env.do(http.MethodPost, "/contact", contact.Message{Name: "Ada", Email: "nope", Body: "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWeatherNotConfigured(t *testing.T) {
	env := newTestEnv(t, nil, 0)

	w := env.do(http.MethodGet, "/weather", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
