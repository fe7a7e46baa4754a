// Command cinematic opens a window and plays the building construction scene. The mouse wheel
// stands in for page scrolling; see controls.go for the key bindings.
package main

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/Carmen-Shannon/oxy-cinematic/common"
	"github.com/Carmen-Shannon/oxy-cinematic/config"
	"github.com/Carmen-Shannon/oxy-cinematic/engine"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/renderer"
	"github.com/Carmen-Shannon/oxy-cinematic/engine/window"
	"github.com/spf13/pflag"
)

func init() {
	// GLFW requires every window call on the main thread.
	runtime.LockOSThread()
}

type flags struct {
	configPath string
	width      int
	height     int
	hero       bool
	profile    bool
	vsync      bool
	msaa       int
	software   bool
	dof        bool
	debug      bool
}

func parseFlags(args []string) (flags, *pflag.FlagSet, error) {
	var f flags
	fs := pflag.NewFlagSet("cinematic", pflag.ContinueOnError)
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML config file (defaults to $"+config.EnvVar+")")
	fs.IntVar(&f.width, "width", 0, "window width in pixels")
	fs.IntVar(&f.height, "height", 0, "window height in pixels")
	fs.BoolVar(&f.hero, "hero", true, "start with the hero section on screen")
	fs.BoolVar(&f.profile, "profile", false, "log per-stage frame timings")
	fs.BoolVar(&f.vsync, "vsync", true, "present with vsync")
	fs.IntVar(&f.msaa, "msaa", 0, "scene sample count, 1 or 4")
	fs.BoolVar(&f.software, "software", false, "force a software adapter")
	fs.BoolVar(&f.dof, "dof", false, "enable depth of field")
	fs.BoolVarP(&f.debug, "debug", "v", false, "debug logging")
	err := fs.Parse(args)
	return f, fs, err
}

// loadConfig reads the config file and applies the flags that were set explicitly.
func loadConfig(f flags, fs *pflag.FlagSet) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if fs.Changed("width") {
		cfg.Window.Width = f.width
	}
	if fs.Changed("height") {
		cfg.Window.Height = f.height
	}
	if fs.Changed("profile") {
		cfg.Lifecycle.Profile = f.profile
	}
	if fs.Changed("vsync") {
		cfg.Render.VSync = f.vsync
	}
	if fs.Changed("msaa") {
		cfg.Render.MSAA = f.msaa
	}
	if fs.Changed("software") {
		cfg.Render.Software = f.software
	}
	if fs.Changed("dof") {
		cfg.PostFX.DepthOfField = f.dof
	}
	if cfg.Render.FrameLimit > 0 && (cfg.Lifecycle.TickRate <= 0 || cfg.Render.FrameLimit < cfg.Lifecycle.TickRate) {
		cfg.Lifecycle.TickRate = cfg.Render.FrameLimit
	}
	return cfg, cfg.Validate()
}

// rendererOptions maps the render section onto renderer options.
func rendererOptions(cfg config.RenderConfig, logger *slog.Logger) []renderer.RendererBuilderOption {
	mode := renderer.PresentModeUncapped
	if cfg.VSync {
		mode = renderer.PresentModeVSync
	}
	msaa := renderer.MSAAOff
	if cfg.MSAA == int(renderer.MSAA4x) {
		msaa = renderer.MSAA4x
	}
	return []renderer.RendererBuilderOption{
		renderer.WithLogger(logger),
		renderer.WithPresentMode(mode),
		renderer.WithMSAA(msaa),
		renderer.WithForceSoftwareRenderer(cfg.Software),
	}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "cinematic:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	f, fs, err := parseFlags(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if f.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(f, fs)
	if err != nil {
		return err
	}

	title := cmp.Or(cfg.Window.Title, "oxy-cinematic")
	win, err := window.NewWindow(
		window.WithTitle(title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	engineOpts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	renderOpts := rendererOptions(cfg.Render, logger)
	engineOpts = append(engineOpts,
		engine.WithLogger(logger),
		engine.WithViewport(win.Viewport()),
		engine.WithRenderTargetFactory(func(vp common.Viewport, meshes map[string]geometry.Mesh) (engine.RenderTarget, error) {
			return renderer.NewRenderer(win, vp, meshes, renderOpts...)
		}),
		engine.WithFallbackSink(engine.FallbackFunc(func(message string) {
			logger.Warn("3d view unavailable", "message", message)
			win.SetTitle(title + " - " + message)
		})),
	)
	eng := engine.NewEngine(engineOpts...)

	ctrl := newController(eng, f.hero, win.RequestClose)
	win.SetScrollCallback(ctrl.scroll)
	win.SetKeyDownCallback(ctrl.keyDown)
	win.SetKeyUpCallback(ctrl.keyUp)
	win.SetDragCallback(ctrl.drag)
	win.SetResizeCallback(func(width, height int) {
		eng.Resize(common.Viewport{Width: width, Height: height})
	})

	// The surface must be created on the main thread, so mount before the loop starts.
	if err := eng.Mount(); err != nil {
		return err
	}
	defer eng.Unmount()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		win.RequestClose()
	}()

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- eng.Run(ctx)
	}()

	win.ProcessMessages()
	eng.Unmount()
	stop()
	if err := <-loopErr; err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("viewer closed", "state", eng.State())
	return nil
}
