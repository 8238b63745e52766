package window

// GestureKind distinguishes a title-bar drag from an edge or corner drag
type GestureKind string

const (
	GestureMove   GestureKind = "move"
	GestureResize GestureKind = "resize"
)

// Gesture is the pointer interaction in progress, if any.
// It carries the geometry captured when the pointer went down so that every
// pointer move is applied against the same snapshot.
type Gesture struct {
	Kind          GestureKind `json:"kind"`
	AppID         string      `json:"app_id"`
	Handle        Handle      `json:"handle,omitempty"`
	StartPointer  Point       `json:"start_pointer"`
	StartPosition Point       `json:"start_position"`
	StartSize     Size        `json:"start_size"`
}

// BeginMove starts dragging a window by its title bar
func (m *Manager) BeginMove(appID string, pointer Point) bool {
	return m.begin(GestureMove, appID, "", pointer)
}

// BeginResize starts dragging one of a window's resize handles
func (m *Manager) BeginResize(appID string, h Handle, pointer Point) bool {
	return m.begin(GestureResize, appID, h, pointer)
}

func (m *Manager) begin(kind GestureKind, appID string, h Handle, pointer Point) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gesture != nil {
		return false
	}
	w, ok := m.windows[appID]
	if !ok || w.Maximized || w.Minimized || w.Closing {
		return false
	}
	m.gesture = &Gesture{
		Kind:          kind,
		AppID:         appID,
		Handle:        h,
		StartPointer:  pointer,
		StartPosition: w.Position,
		StartSize:     w.Size,
	}
	return true
}

// PointerMove applies the pointer's total displacement since the gesture began.
// State is updated live; there is nothing to commit on release.
func (m *Manager) PointerMove(pointer Point) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.gesture
	if g == nil {
		return false
	}
	w, ok := m.windows[g.AppID]
	if !ok || w.Maximized {
		m.gesture = nil
		return false
	}

	dx := pointer.X - g.StartPointer.X
	dy := pointer.Y - g.StartPointer.Y
	switch g.Kind {
	case GestureMove:
		w.Position = Point{X: g.StartPosition.X + dx, Y: g.StartPosition.Y + dy}
	case GestureResize:
		w.Position, w.Size = resize(g.StartPosition, g.StartSize, g.Handle, dx, dy)
	}
	return true
}

// EndGesture releases the pointer. It reports whether a gesture was active.
func (m *Manager) EndGesture() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := m.gesture != nil
	m.gesture = nil
	return active
}

// ActiveGesture returns a copy of the gesture in progress
func (m *Manager) ActiveGesture() (Gesture, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.gesture == nil {
		return Gesture{}, false
	}
	return *m.gesture, true
}

// endGestureFor drops the gesture if it targets appID. Must hold mu.
func (m *Manager) endGestureFor(appID string) {
	if m.gesture != nil && m.gesture.AppID == appID {
		m.gesture = nil
	}
}
