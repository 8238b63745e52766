// Package window implements the desktop window manager.
//
// The manager owns the live set of simulated OS windows: identity, stacking
// order, visibility and geometry. It has no notion of the session phase;
// gating commands behind an unlocked session is the desktop's job.
//
// Stacking:
//   - New and focused windows get max(z-index)+1
//   - Focusing never renumbers other windows
//   - Minimizing never changes any z-index
//
// Geometry:
//   - Maximize snapshots position and size, un-maximize restores them
//   - Move and resize are ignored while maximized
//   - Resizing clamps width to 300 and height to 200
//
// Example Usage:
//
//	wm := window.NewManager(window.Viewport{Width: 1000, Height: 800, TopBar: 32})
//	wm.Open("about")
//	wm.BeginMove("about", window.Point{X: 400, Y: 90})
//	wm.PointerMove(window.Point{X: 450, Y: 120})
//	wm.EndGesture()
package window
