package window

import (
	"sort"
	"sync"
)

// Manager owns the set of open windows, their stacking order and geometry.
// An application has at most one window; the window id is the app id.
type Manager struct {
	mu       sync.RWMutex
	windows  map[string]*Window // Protected by mu
	viewport Viewport           // Protected by mu
	gesture  *Gesture           // Protected by mu
	closeSeq uint64             // Protected by mu; never reset
}

// NewManager creates an empty window manager for the given viewport
func NewManager(vp Viewport) *Manager {
	return &Manager{
		windows:  make(map[string]*Window),
		viewport: vp,
	}
}

// Open shows the window for appID, creating it when absent.
// Re-opening an existing window un-minimizes it, cancels a pending close and
// brings it to the front without touching its geometry.
func (m *Manager) Open(appID string) (Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.windows[appID]; ok {
		w.Minimized = false
		w.Closing = false
		m.focus(w)
		return *w, false
	}

	pos, size := m.defaultGeometry()
	w := &Window{
		ID:       appID,
		ZIndex:   m.maxZ() + 1,
		Position: pos,
		Size:     size,
	}
	m.windows[appID] = w
	return *w, true
}

// defaultGeometry sizes a new window at 70% of the viewport, never below the
// resize floors, 10% down from the top and slightly left of center. Must hold mu.
func (m *Manager) defaultGeometry() (Point, Size) {
	vp := m.viewport
	size := Size{
		Width:  max(vp.Width*7/10, MinWidth),
		Height: max(vp.Height*7/10, MinHeight),
	}
	pos := Point{
		X: vp.Width * 12 / 100,
		Y: vp.Height / 10,
	}
	return pos, size
}

// Close removes the window immediately. Other windows keep their z-index.
func (m *Manager) Close(appID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.windows[appID]; !ok {
		return false
	}
	m.remove(appID)
	return true
}

// BeginClose marks the window as animating out. The returned sequence number
// must be handed to FinishClose once the exit delay has elapsed.
func (m *Manager) BeginClose(appID string) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[appID]
	if !ok {
		return 0, false
	}
	w.Closing = true
	m.closeSeq++
	w.closeSeq = m.closeSeq
	m.endGestureFor(appID)
	return w.closeSeq, true
}

// FinishClose removes the window if the close identified by seq is still pending.
// A window re-opened during its exit delay survives.
func (m *Manager) FinishClose(appID string, seq uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[appID]
	if !ok || !w.Closing || w.closeSeq != seq {
		return false
	}
	m.remove(appID)
	return true
}

// remove deletes a window and any gesture on it. Must hold mu.
func (m *Manager) remove(appID string) {
	delete(m.windows, appID)
	m.endGestureFor(appID)
}

// ToggleMinimize flips the minimized flag. Z-order is never touched.
func (m *Manager) ToggleMinimize(appID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[appID]
	if !ok {
		return false
	}
	w.Minimized = !w.Minimized
	if w.Minimized {
		m.endGestureFor(appID)
	}
	return true
}

// ToggleMaximize enters or leaves the maximized state, snapshotting the
// geometry on the way in and restoring it on the way out.
func (m *Manager) ToggleMaximize(appID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[appID]
	if !ok {
		return false
	}
	if w.Maximized {
		w.Position = w.PriorPosition
		w.Size = w.PriorSize
		w.Maximized = false
		return true
	}
	w.PriorPosition = w.Position
	w.PriorSize = w.Size
	w.Maximized = true
	m.endGestureFor(appID)
	return true
}

// Focus raises the window above every other one
func (m *Manager) Focus(appID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[appID]
	if !ok {
		return false
	}
	m.focus(w)
	return true
}

// focus must hold mu
func (m *Manager) focus(w *Window) {
	w.ZIndex = m.maxZ() + 1
}

// maxZ must hold mu
func (m *Manager) maxZ() int {
	top := 0
	for _, w := range m.windows {
		if w.ZIndex > top {
			top = w.ZIndex
		}
	}
	return top
}

// Move shifts a non-maximized window by the given delta
func (m *Manager) Move(appID string, dx, dy int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[appID]
	if !ok || w.Maximized {
		return false
	}
	w.Position.X += dx
	w.Position.Y += dy
	return true
}

// Resize drags one of the eight handles of a non-maximized window by the given delta
func (m *Manager) Resize(appID string, h Handle, dx, dy int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[appID]
	if !ok || w.Maximized {
		return false
	}
	w.Position, w.Size = resize(w.Position, w.Size, h, dx, dy)
	return true
}

// Get returns a copy of the window for appID
func (m *Manager) Get(appID string) (Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.windows[appID]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// Len returns the number of windows in the set, minimized and closing included
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.windows)
}

// Windows returns copies of every window sorted ascending by z-index
func (m *Manager) Windows() []Window {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(false)
}

// Paintable returns the windows to draw, bottom first, minimized ones excluded
func (m *Manager) Paintable() []Window {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(true)
}

// sorted must hold mu
func (m *Manager) sorted(skipMinimized bool) []Window {
	out := make([]Window, 0, len(m.windows))
	for _, w := range m.windows {
		if skipMinimized && w.Minimized {
			continue
		}
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZIndex == out[j].ZIndex {
			return out[i].ID < out[j].ID
		}
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}

// Top returns the id of the highest visible window, if any
func (m *Manager) Top() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	visible := m.sorted(true)
	for i := len(visible) - 1; i >= 0; i-- {
		if !visible[i].Closing {
			return visible[i].ID, true
		}
	}
	return "", false
}

// Clear drops every window and any active gesture
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.windows = make(map[string]*Window)
	m.gesture = nil
}

// SetViewport updates the screen size used for new windows and maximized frames
func (m *Manager) SetViewport(vp Viewport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport = vp
}

// Viewport returns the current screen size
func (m *Manager) Viewport() Viewport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewport
}

// Frame returns the geometry w is painted with: the usable screen area below
// the top bar when maximized, its own position and size otherwise.
func (m *Manager) Frame(w Window) Frame {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if w.Maximized {
		vp := m.viewport
		return Frame{
			Position: Point{X: 0, Y: vp.TopBar},
			Size:     Size{Width: vp.Width, Height: max(vp.Height-vp.TopBar, 0)},
		}
	}
	return Frame{Position: w.Position, Size: w.Size}
}
