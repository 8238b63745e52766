package desktop

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/deskfolio/internal/domain/catalog"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
)

// ManagerConfig bounds the registry
type ManagerConfig struct {
	MaxDesktops  int
	IdleTTL      time.Duration
	ReapInterval time.Duration
}

// Stats summarizes the registry
type Stats struct {
	Desktops    int            `json:"desktops"`
	MaxDesktops int            `json:"max_desktops"`
	ByPhase     map[string]int `json:"by_phase"`
	Windows     int            `json:"windows"`
}

// Manager owns every running desktop
type Manager struct {
	mu       sync.RWMutex
	desktops map[string]*Desktop // Protected by mu
	catalog  *catalog.Catalog
	opts     Options
	cfg      ManagerConfig
	logger   *zap.Logger
}

// NewManager creates an empty registry. opts is the template every new
// desktop is created from; its viewport is the default when Create gets none.
func NewManager(cat *catalog.Catalog, opts Options, cfg ManagerConfig) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	return &Manager{
		desktops: make(map[string]*Desktop),
		catalog:  cat,
		opts:     opts,
		cfg:      cfg,
		logger:   opts.Logger,
	}
}

// Create starts a new locked desktop. A zero width or height falls back to
// the default viewport.
func (m *Manager) Create(vp window.Viewport) (*Desktop, error) {
	opts := m.opts
	if vp.Width > 0 && vp.Height > 0 {
		if vp.TopBar == 0 {
			vp.TopBar = opts.Viewport.TopBar
		}
		opts.Viewport = vp
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxDesktops > 0 && len(m.desktops) >= m.cfg.MaxDesktops {
		return nil, ErrTooManyDesktops
	}

	d := New(uuid.New().String(), m.catalog, opts)
	m.desktops[d.ID()] = d
	m.opts.Recorder.SetDesktops(len(m.desktops))

	m.logger.Info("Desktop created",
		zap.String("desktop_id", d.ID()),
		zap.Int("width", opts.Viewport.Width),
		zap.Int("height", opts.Viewport.Height))
	return d, nil
}

// Get returns a desktop by id
func (m *Manager) Get(id string) (*Desktop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.desktops[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// Delete stops and drops a desktop
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	d, ok := m.desktops[id]
	if ok {
		delete(m.desktops, id)
		m.opts.Recorder.SetDesktops(len(m.desktops))
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	d.Stop()
	m.logger.Info("Desktop deleted", zap.String("desktop_id", id))
	return nil
}

// List returns the ids of every desktop, sorted
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.desktops))
	for id := range m.desktops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of desktops
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.desktops)
}

// Reap drops desktops idle for longer than the configured TTL and returns
// how many were removed. Desktops with an attached subscriber are kept.
func (m *Manager) Reap(now time.Time) int {
	if m.cfg.IdleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	var idle []*Desktop
	for id, d := range m.desktops {
		if !d.Watched() && now.Sub(d.LastActive()) > m.cfg.IdleTTL {
			idle = append(idle, d)
			delete(m.desktops, id)
		}
	}
	if len(idle) > 0 {
		m.opts.Recorder.SetDesktops(len(m.desktops))
	}
	m.mu.Unlock()

	for _, d := range idle {
		d.Stop()
		m.logger.Info("Desktop reaped", zap.String("desktop_id", d.ID()))
	}
	return len(idle)
}

// Serve reaps idle desktops on an interval until ctx is done
func (m *Manager) Serve(ctx context.Context) error {
	interval := m.cfg.ReapInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := m.Reap(m.opts.scheduler().Now()); n > 0 {
				m.logger.Debug("Reaped idle desktops", zap.Int("count", n))
			}
		}
	}
}

// StopAll stops every desktop. Used on shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	desktops := m.desktops
	m.desktops = make(map[string]*Desktop)
	m.opts.Recorder.SetDesktops(0)
	m.mu.Unlock()

	for _, d := range desktops {
		d.Stop()
	}
}

// Stats returns registry statistics
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	desktops := make([]*Desktop, 0, len(m.desktops))
	for _, d := range m.desktops {
		desktops = append(desktops, d)
	}
	m.mu.RUnlock()

	stats := Stats{
		Desktops:    len(desktops),
		MaxDesktops: m.cfg.MaxDesktops,
		ByPhase:     make(map[string]int),
	}
	for _, d := range desktops {
		d.mu.Lock()
		stats.ByPhase[string(d.machine.State().Phase)]++
		stats.Windows += d.windows.Len()
		d.mu.Unlock()
	}
	return stats
}

// String is the registry's name as a supervised service
func (m *Manager) String() string {
	return "desktop-reaper"
}
