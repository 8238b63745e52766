package desktop

// Menu actions
const (
	MenuOpen     = "open"
	MenuClose    = "close"
	MenuMinimize = "minimize"
	MenuMaximize = "maximize"
)

// ContextMenu is the right-click menu. At most one exists per desktop.
type ContextMenu struct {
	Visible bool   `json:"visible"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Target  string `json:"target,omitempty"`
}

// Show places the menu at (x, y) for target, replacing any open menu
func (m *ContextMenu) Show(x, y int, target string) {
	*m = ContextMenu{Visible: true, X: x, Y: y, Target: target}
}

// Dismiss hides the menu. It reports whether the menu was visible.
func (m *ContextMenu) Dismiss() bool {
	if !m.Visible {
		return false
	}
	*m = ContextMenu{}
	return true
}

// MenuView is the rendered context menu with the actions it offers
type MenuView struct {
	ContextMenu
	Items []string `json:"items"`
}

// menuItems lists the actions for a target. Open windows offer window
// controls; closed apps can only be opened.
func menuItems(target string, hasWindow bool) []string {
	switch {
	case target == "":
		return []string{}
	case hasWindow:
		return []string{MenuOpen, MenuMinimize, MenuMaximize, MenuClose}
	default:
		return []string{MenuOpen}
	}
}
