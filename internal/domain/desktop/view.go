package desktop

import (
	"github.com/GriffinCanCode/deskfolio/internal/domain/session"
	"github.com/GriffinCanCode/deskfolio/internal/domain/terminal"
	"github.com/GriffinCanCode/deskfolio/internal/domain/window"
)

// TerminalApp is the catalog id of the app hosting the terminal
const TerminalApp = "terminal"

// View is the render state of a desktop. It is derived entirely from the
// session, the window set and the context menu.
type View struct {
	ID       string          `json:"id"`
	Revision uint64          `json:"revision"`
	Session  session.State   `json:"session"`
	Screen   Screen          `json:"screen"`
	Viewport window.Viewport `json:"viewport"`
	Dock     []DockItem      `json:"dock"`
	Menu     *MenuView       `json:"menu,omitempty"`

	// Only populated while the desktop is shown
	Windows  []WindowView       `json:"windows,omitempty"`
	Focused  string             `json:"focused,omitempty"`
	Gesture  *window.Gesture    `json:"gesture,omitempty"`
	Terminal *terminal.Snapshot `json:"terminal,omitempty"`
}

// Screen flags which top-level screen is visible. Exactly one is set.
type Screen struct {
	Lock         bool `json:"lock"`
	Desktop      bool `json:"desktop"`
	ShuttingDown bool `json:"shutting_down"`
	Shutdown     bool `json:"shutdown"`
	Restarting   bool `json:"restarting"`
}

// WindowView is a window with the frame it is painted at
type WindowView struct {
	window.Window
	Title string       `json:"title"`
	Frame window.Frame `json:"frame"`
}

// DockItem is one dock entry
type DockItem struct {
	AppID     string `json:"app_id"`
	Title     string `json:"title"`
	Icon      string `json:"icon,omitempty"`
	Open      bool   `json:"open"`
	Minimized bool   `json:"minimized"`
}

// view must hold d.mu
func (d *Desktop) view() View {
	state := d.machine.State()

	v := View{
		ID:       d.id,
		Revision: d.revision,
		Session:  state,
		Screen: Screen{
			Lock:         state.Phase == session.PhaseLocked,
			Desktop:      state.Phase == session.PhaseUnlocked,
			ShuttingDown: state.Phase == session.PhaseShuttingDown,
			Shutdown:     state.Phase == session.PhaseShutdown,
			Restarting:   state.Phase == session.PhaseRestarting,
		},
		Viewport: d.windows.Viewport(),
	}

	for _, app := range d.catalog.Dock() {
		item := DockItem{AppID: app.ID, Title: app.Title, Icon: app.Icon}
		if w, ok := d.windows.Get(app.ID); ok {
			item.Open = true
			item.Minimized = w.Minimized
		}
		v.Dock = append(v.Dock, item)
	}

	if state.Phase != session.PhaseUnlocked {
		return v
	}

	if d.menu.Visible {
		_, hasWindow := d.windows.Get(d.menu.Target)
		v.Menu = &MenuView{ContextMenu: d.menu, Items: menuItems(d.menu.Target, hasWindow)}
	}

	for _, w := range d.windows.Paintable() {
		v.Windows = append(v.Windows, WindowView{
			Window: w,
			Title:  d.catalog.Title(w.ID),
			Frame:  d.windows.Frame(w),
		})
	}
	v.Focused, _ = d.windows.Top()

	if g, ok := d.windows.ActiveGesture(); ok {
		v.Gesture = &g
	}

	if _, ok := d.windows.Get(TerminalApp); ok {
		snap := d.term.Snapshot()
		v.Terminal = &snap
	}
	return v
}
