package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveGestureAppliesLive(t *testing.T) {
	m := newTestManager()
	w, _ := m.Open("a")
	start := w.Position

	require.True(t, m.BeginMove("a", Point{X: 500, Y: 100}))

	m.PointerMove(Point{X: 510, Y: 105})
	mid, _ := m.Get("a")
	assert.Equal(t, Point{X: start.X + 10, Y: start.Y + 5}, mid.Position)

	m.PointerMove(Point{X: 480, Y: 140})
	end, _ := m.Get("a")
	assert.Equal(t, Point{X: start.X - 20, Y: start.Y + 40}, end.Position)

	assert.True(t, m.EndGesture())
	assert.False(t, m.EndGesture())

	// Moves after release are ignored
	assert.False(t, m.PointerMove(Point{X: 0, Y: 0}))
	after, _ := m.Get("a")
	assert.Equal(t, end.Position, after.Position)
}

func TestResizeGestureUsesStartSnapshot(t *testing.T) {
	m := newTestManager()
	w, _ := m.Open("a")

	require.True(t, m.BeginResize("a", HandleRight, Point{X: 800, Y: 300}))

	// Shrink well past the floor, then come back: the result depends only on
	// the total displacement from the start.
	m.PointerMove(Point{X: 0, Y: 300})
	shrunk, _ := m.Get("a")
	assert.Equal(t, MinWidth, shrunk.Size.Width)

	m.PointerMove(Point{X: 850, Y: 300})
	grown, _ := m.Get("a")
	assert.Equal(t, w.Size.Width+50, grown.Size.Width)
	assert.Equal(t, w.Position, grown.Position)
}

func TestGestureRefusedWhenMaximized(t *testing.T) {
	m := newTestManager()
	m.Open("a")
	m.ToggleMaximize("a")

	assert.False(t, m.BeginMove("a", Point{}))
	assert.False(t, m.BeginResize("a", HandleTop, Point{}))
}

func TestGestureRefusedWhileAnotherActive(t *testing.T) {
	m := newTestManager()
	m.Open("a")
	m.Open("b")

	require.True(t, m.BeginResize("a", HandleTop, Point{}))
	assert.False(t, m.BeginMove("a", Point{}))
	assert.False(t, m.BeginMove("b", Point{}))

	g, ok := m.ActiveGesture()
	require.True(t, ok)
	assert.Equal(t, GestureResize, g.Kind)
	assert.Equal(t, "a", g.AppID)
	assert.Equal(t, HandleTop, g.Handle)
}

func TestGestureEndsWhenTargetChanges(t *testing.T) {
	tests := []struct {
		name   string
		action func(m *Manager)
	}{
		{"close", func(m *Manager) { m.Close("a") }},
		{"begin close", func(m *Manager) { m.BeginClose("a") }},
		{"minimize", func(m *Manager) { m.ToggleMinimize("a") }},
		{"maximize", func(m *Manager) { m.ToggleMaximize("a") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager()
			m.Open("a")
			require.True(t, m.BeginMove("a", Point{}))

			tt.action(m)

			_, active := m.ActiveGesture()
			assert.False(t, active)
		})
	}
}

func TestGestureUnknownWindow(t *testing.T) {
	m := newTestManager()
	assert.False(t, m.BeginMove("ghost", Point{}))
	assert.False(t, m.PointerMove(Point{X: 1}))
}
