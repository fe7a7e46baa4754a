// Package window hosts the cinematic viewer: a GLFW window providing the WebGPU surface and
// the scroll, key, drag and resize events the command maps onto scene input.
package window

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up, negative = down)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*)
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetDragCallback sets the callback for primary button drags. It receives the cursor
	// movement since the previous event while the button is held.
	//
	// Parameters:
	//   - callback: function receiving the cursor delta in pixels
	SetDragCallback(callback func(dx, dy float32))

	// SetDragEndCallback sets the callback for the release of the primary button.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetDragEndCallback(callback func())

	// SetTitle replaces the title bar text. Safe to call from any goroutine; the title is
	// applied on the next message loop iteration.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration.
	RequestClose()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop on the calling goroutine, which must be
	// the main one. Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Viewport returns the framebuffer size in pixels.
	//
	// Returns:
	//   - common.Viewport: the current framebuffer size
	Viewport() common.Viewport
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	mu *sync.Mutex

	// title is the window title displayed in the title bar.
	title string

	// pendingTitle is set by SetTitle and applied by the message loop.
	pendingTitle *string

	// Size limits applied to the platform window.
	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height are the current framebuffer size in pixels.
	width  int
	height int

	// platform is nil until NewWindow opens the GLFW window and again after Close.
	platform *glfwWindow

	// closeRequested is set by RequestClose.
	closeRequested bool

	// dragging is true while the primary button is held.
	dragging     bool
	lastX, lastY float64

	onUpdate  func()
	onResize  func(width, height int)
	onScroll  func(delta float32)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
	onDrag    func(dx, dy float32)
	onDragEnd func()
}

var _ Window = &engineWindow{}

// newEngineWindow applies the defaults and the options without creating a platform window.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		mu:        &sync.Mutex{},
		title:     "Cinematic",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 240,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	w.width = min(max(w.width, w.minWidth), w.maxWidth)
	w.height = min(max(w.height, w.minHeight), w.maxHeight)
	return w
}

// NewWindow creates and shows a new Window with the specified options.
// Applies default values first, then each option in order. Must be called from the main
// goroutine.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	p, err := openGLFW(w)
	if err != nil {
		return nil, fmt.Errorf("open window: %w", err)
	}
	w.platform = p
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetDragCallback(callback func(dx, dy float32)) {
	w.onDrag = callback
}

func (w *engineWindow) SetDragEndCallback(callback func()) {
	w.onDragEnd = callback
}

func (w *engineWindow) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pendingTitle = &title
}

// takeTitle returns a title set since the last call, if any.
func (w *engineWindow) takeTitle() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pendingTitle == nil {
		return "", false
	}
	t := *w.pendingTitle
	w.pendingTitle = nil
	w.title = t
	return t, true
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	w.mu.Lock()
	closing := w.closeRequested
	w.mu.Unlock()
	return !closing && w.platform != nil && w.platform.open()
}

func (w *engineWindow) RequestClose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeRequested = true
}

func (w *engineWindow) Close() error {
	if w.platform == nil {
		return errNotOpen
	}
	w.platform.destroy()
	w.platform = nil
	return nil
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		title, retitle := w.takeTitle()
		if !w.platform.poll(title, retitle) {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Viewport() common.Viewport {
	w.mu.Lock()
	defer w.mu.Unlock()
	return common.Viewport{Width: w.width, Height: w.height}
}

// setSize records a framebuffer size reported by the platform.
func (w *engineWindow) setSize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

// key dispatches a press, repeat or release.
func (w *engineWindow) key(code uint32, down bool) {
	switch {
	case down && w.onKeyDown != nil:
		w.onKeyDown(code)
	case !down && w.onKeyUp != nil:
		w.onKeyUp(code)
	}
}

// cursorMoved turns cursor positions into drag deltas while the primary button is held.
func (w *engineWindow) cursorMoved(x, y float64) {
	if !w.dragging {
		w.lastX, w.lastY = x, y
		return
	}
	dx, dy := x-w.lastX, y-w.lastY
	w.lastX, w.lastY = x, y
	if w.onDrag != nil && (dx != 0 || dy != 0) {
		w.onDrag(float32(dx), float32(dy))
	}
}

// primaryButton records a press or release of the primary mouse button.
func (w *engineWindow) primaryButton(pressed bool, x, y float64) {
	w.lastX, w.lastY = x, y
	if w.dragging && !pressed && w.onDragEnd != nil {
		w.onDragEnd()
	}
	w.dragging = pressed
}
