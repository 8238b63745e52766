package window

// resize applies a handle drag to a geometry. Each edge moves independently;
// corners combine their two edges. Sizes are clamped to the floors but the
// position still follows the pointer, so a top or left drag past the floor
// keeps shifting the window.
func resize(pos Point, size Size, h Handle, dx, dy int) (Point, Size) {
	if h.top() {
		size.Height = max(size.Height-dy, MinHeight)
		pos.Y += dy
	}
	if h.bottom() {
		size.Height = max(size.Height+dy, MinHeight)
	}
	if h.left() {
		size.Width = max(size.Width-dx, MinWidth)
		pos.X += dx
	}
	if h.right() {
		size.Width = max(size.Width+dx, MinWidth)
	}
	return pos, size
}
