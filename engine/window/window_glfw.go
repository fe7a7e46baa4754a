package window

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var errNotOpen = errors.New("window is not open")

// glfwWindow is the GLFW side of an engineWindow. Every method must run on the main thread.
type glfwWindow struct {
	window *glfw.Window
}

// openGLFW creates the GLFW window without a client API (WebGPU brings its own) and routes its
// input callbacks into w.
func openGLFW(w *engineWindow) (*glfwWindow, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		w.key(uint32(key), action != glfw.Release)
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})
	win.SetMouseButtonCallback(func(gw *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button == glfw.MouseButtonLeft {
			x, y := gw.GetCursorPos()
			w.primaryButton(action == glfw.Press, x, y)
		}
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.cursorMoved(x, y)
	})
	// Framebuffer pixels, not screen coordinates: they differ on high-DPI displays and the
	// surface is configured in pixels.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.setSize(width, height)
	})

	fbw, fbh := win.GetFramebufferSize()
	w.mu.Lock()
	w.width, w.height = fbw, fbh
	w.mu.Unlock()

	return &glfwWindow{window: win}, nil
}

func (g *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(g.window)
}

func (g *glfwWindow) open() bool {
	return !g.window.ShouldClose()
}

// poll handles pending events and applies a title set since the last poll.
func (g *glfwWindow) poll(title string, retitle bool) bool {
	glfw.PollEvents()
	if retitle {
		g.window.SetTitle(title)
	}
	return g.open()
}

func (g *glfwWindow) destroy() {
	g.window.SetShouldClose(true)
	g.window.Destroy()
	glfw.Terminate()
}
