package app

// View owns one region of the terminal UI. Views render and emit user intent
// upward; they never mutate model state directly.
type View interface {
	// Show renders the view.
	Show()
	// Hide clears the view. A hidden view must be safe to Show again.
	Hide()
	// RenderError displays an inline error banner. The worst-case visible
	// failure is this banner; views never panic on bad data.
	RenderError(msg string)
}
