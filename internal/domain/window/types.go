package window

import "fmt"

const (
	// MinWidth is the narrowest a window can be resized to.
	MinWidth = 300
	// MinHeight is the shortest a window can be resized to.
	MinHeight = 200
)

// Point is a screen coordinate in CSS pixels
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a window extent in CSS pixels
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Viewport describes the screen the desktop is rendered on.
// TopBar is the height of the persistent menu bar that maximized windows sit under.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	TopBar int `json:"top_bar"`
}

// Window is one open application window
type Window struct {
	ID        string `json:"id"`
	ZIndex    int    `json:"z_index"`
	Maximized bool   `json:"maximized"`
	Minimized bool   `json:"minimized"`
	Closing   bool   `json:"closing"`
	Position  Point  `json:"position"`
	Size      Size   `json:"size"`

	// Snapshot taken right before the last maximize
	PriorPosition Point `json:"prior_position"`
	PriorSize     Size  `json:"prior_size"`

	closeSeq uint64
}

// Frame is the geometry a window is painted with
type Frame struct {
	Position Point `json:"position"`
	Size     Size  `json:"size"`
}

// Handle names one of the eight resize handles
type Handle string

const (
	HandleTop         Handle = "top"
	HandleBottom      Handle = "bottom"
	HandleLeft        Handle = "left"
	HandleRight       Handle = "right"
	HandleTopLeft     Handle = "top-left"
	HandleTopRight    Handle = "top-right"
	HandleBottomLeft  Handle = "bottom-left"
	HandleBottomRight Handle = "bottom-right"
)

// ParseHandle validates a handle name
func ParseHandle(s string) (Handle, error) {
	h := Handle(s)
	switch h {
	case HandleTop, HandleBottom, HandleLeft, HandleRight,
		HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight:
		return h, nil
	}
	return "", fmt.Errorf("unknown resize handle %q", s)
}

func (h Handle) top() bool {
	return h == HandleTop || h == HandleTopLeft || h == HandleTopRight
}

func (h Handle) bottom() bool {
	return h == HandleBottom || h == HandleBottomLeft || h == HandleBottomRight
}

func (h Handle) left() bool {
	return h == HandleLeft || h == HandleTopLeft || h == HandleBottomLeft
}

func (h Handle) right() bool {
	return h == HandleRight || h == HandleTopRight || h == HandleBottomRight
}
