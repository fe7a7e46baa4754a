package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the title bar text.
//
// Parameters:
//   - title: the window title
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial size in screen coordinates. It is clamped to the size limits.
//
// Parameters:
//   - width: the initial width
//   - height: the initial height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width, w.height = width, height
	}
}

// WithSizeLimits bounds the size the user can resize the window to. Non-positive values keep
// the default for that bound.
//
// Parameters:
//   - minWidth, minHeight: the smallest size
//   - maxWidth, maxHeight: the largest size
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		for _, b := range []struct {
			dst *int
			v   int
		}{{&w.minWidth, minWidth}, {&w.minHeight, minHeight}, {&w.maxWidth, maxWidth}, {&w.maxHeight, maxHeight}} {
			if b.v > 0 {
				*b.dst = b.v
			}
		}
	}
}
