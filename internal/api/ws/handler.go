package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/deskfolio/internal/domain/desktop"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/deskfolio/internal/shared/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message types
const (
	TypeSystem  = "system"
	TypeView    = "view"
	TypeError   = "error"
	TypeCommand = "command"
	TypePing    = "ping"
	TypePong    = "pong"
)

// Inbound is a client frame
type Inbound struct {
	Type    string          `json:"type"`
	Command desktop.Command `json:"command"`
}

// Outbound is a server frame
type Outbound struct {
	Type      string        `json:"type"`
	Message   string        `json:"message,omitempty"`
	DesktopID string        `json:"desktop_id,omitempty"`
	Command   string        `json:"command,omitempty"`
	Error     string        `json:"error,omitempty"`
	View      *desktop.View `json:"view,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

// Handler streams desktop views over WebSocket connections
type Handler struct {
	desktops *desktop.Manager
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. Origins are checked against
// allowed; "*" or an empty list admits every origin.
func NewHandler(desktops *desktop.Manager, metrics *monitoring.Metrics, logger *zap.Logger, allowed []string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		desktops: desktops,
		metrics:  metrics,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    1024,
			WriteBufferSize:   4096,
			EnableCompression: true,
			CheckOrigin:       originChecker(allowed),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = true
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// HandleConnection upgrades the request and streams the desktop named by :id
func (h *Handler) HandleConnection(c *gin.Context) {
	d, err := h.desktops.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	s := &stream{
		conn:    conn,
		desktop: d,
		metrics: h.metrics,
		logger:  h.logger.With(zap.String("desktop_id", d.ID())),
	}
	s.run(c.Request.Context())
}

// stream is one connection bound to one desktop
type stream struct {
	conn    *websocket.Conn
	desktop *desktop.Desktop
	metrics *monitoring.Metrics
	logger  *zap.Logger

	writeMu sync.Mutex
}

func (s *stream) run(ctx context.Context) {
	defer s.conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	views, unsubscribe := s.desktop.Subscribe()
	defer unsubscribe()

	s.send(Outbound{Type: TypeSystem, Message: "connected", DesktopID: s.desktop.ID()})
	initial := s.desktop.View()
	s.send(Outbound{Type: TypeView, View: &initial})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writeLoop(ctx, views)
	}()

	s.readLoop(ctx)
	cancel()
	<-done
}

func (s *stream) readLoop(ctx context.Context) {
	s.conn.SetReadLimit(utils.MaxCommandSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg Inbound
		if err := sonic.Unmarshal(data, &msg); err != nil {
			s.sendError("", "malformed message")
			continue
		}
		s.record("in", msg.Type)

		switch msg.Type {
		case TypeCommand:
			view, err := s.desktop.Dispatch(ctx, msg.Command)
			if err != nil {
				s.send(Outbound{
					Type:    TypeError,
					Command: string(msg.Command.Type),
					Error:   err.Error(),
					View:    &view,
				})
			}
		case TypePing:
			s.send(Outbound{Type: TypePong})
		default:
			s.sendError("", "unknown message type")
		}
	}
}

// writeLoop forwards views until the desktop stops or ctx ends
func (s *stream) writeLoop(ctx context.Context, views <-chan desktop.View) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case view, ok := <-views:
			if !ok {
				s.close(websocket.CloseGoingAway, "desktop stopped")
				return
			}
			if err := s.send(Outbound{Type: TypeView, View: &view}); err != nil {
				return
			}
		case <-ticker.C:
			s.writeMu.Lock()
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (s *stream) send(msg Outbound) error {
	msg.Timestamp = time.Now().Unix()
	data, err := sonic.Marshal(msg)
	if err != nil {
		s.logger.Error("Failed to encode frame", zap.Error(err))
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	s.record("out", msg.Type)
	return nil
}

func (s *stream) sendError(command, msg string) {
	s.send(Outbound{Type: TypeError, Command: command, Error: msg})
}

func (s *stream) close(code int, reason string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeWait))
	// Unblock the reader
	_ = s.conn.Close()
}

func (s *stream) record(direction, msgType string) {
	if s.metrics != nil {
		s.metrics.RecordWSMessage(direction, msgType)
	}
}
