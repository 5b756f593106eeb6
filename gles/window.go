// Package gles opens an SDL window with an OpenGL ES 2.0 context and holds
// the small amount of GL plumbing shared by the programs.
package gles

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v3.1/gles2"
	"github.com/hiromi-mi/glesvnc/logger"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	ErrVideoInit     = errors.New("video init")
	ErrWindow        = errors.New("window")
	ErrContext       = errors.New("gl context")
	ErrLoadFunctions = errors.New("gl functions")
	ErrGL            = errors.New("gl error")
	ErrShader        = errors.New("shader")
)

// Init starts the SDL subsystems in flags. sdl.INIT_VIDEO is always added.
func Init(flags uint32) error {
	if err := sdl.Init(flags | sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("%w: %v", ErrVideoInit, err)
	}
	return nil
}

func Quit() {
	sdl.Quit()
}

type Config struct {
	Title  string
	Width  int32
	Height int32

	// extra sdl.WINDOW_* flags; sdl.WINDOW_OPENGL is implied
	Flags uint32

	// 16 bit colour keeps the request satisfiable on small devices
	RedSize, GreenSize, BlueSize int
	DepthSize                    int
}

// DefaultConfig is a resizable 1280x720 window.
func DefaultConfig(title string) Config {
	return Config{
		Title:     title,
		Width:     1280,
		Height:    720,
		Flags:     sdl.WINDOW_RESIZABLE,
		RedSize:   5,
		GreenSize: 5,
		BlueSize:  5,
		DepthSize: 24,
	}
}

// Window is an SDL window with a current OpenGL ES 2.0 context.
type Window struct {
	window  *sdl.Window
	context sdl.GLContext
}

func setAttributes(cfg Config) error {
	attrs := []struct {
		attr  sdl.GLattr
		value int
	}{
		{sdl.GL_RED_SIZE, cfg.RedSize},
		{sdl.GL_GREEN_SIZE, cfg.GreenSize},
		{sdl.GL_BLUE_SIZE, cfg.BlueSize},
		{sdl.GL_DEPTH_SIZE, cfg.DepthSize},
		{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_ES},
		{sdl.GL_CONTEXT_MAJOR_VERSION, 2},
		{sdl.GL_CONTEXT_MINOR_VERSION, 0},
		{sdl.GL_ACCELERATED_VISUAL, 1},
	}
	for _, a := range attrs {
		if err := sdl.GLSetAttribute(a.attr, a.value); err != nil {
			return err
		}
	}
	return nil
}

// NewWindow creates the window and its context and loads the GL ES entry
// points through SDL.
func NewWindow(cfg Config) (*Window, error) {
	if err := setAttributes(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWindow, err)
	}

	window, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		cfg.Width, cfg.Height,
		cfg.Flags|sdl.WINDOW_OPENGL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWindow, err)
	}
	w := &Window{window: window}

	w.context, err = window.GLCreateContext()
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("%w: %v", ErrContext, err)
	}
	if err := w.MakeCurrent(); err != nil {
		w.Destroy()
		return nil, err
	}

	if err := gles2.InitWithProcAddrFunc(sdl.GLGetProcAddress); err != nil {
		w.Destroy()
		return nil, fmt.Errorf("%w: %v", ErrLoadFunctions, err)
	}

	if err := sdl.GLSetSwapInterval(1); err != nil {
		logger.Debug("GLSetSwapInterval: %v", err)
	}

	logger.Info("GL vendor %s, renderer %s, version %s",
		gles2.GoStr(gles2.GetString(gles2.VENDOR)),
		gles2.GoStr(gles2.GetString(gles2.RENDERER)),
		gles2.GoStr(gles2.GetString(gles2.VERSION)))

	return w, nil
}

// MakeCurrent re-asserts the context on the calling thread.
func (w *Window) MakeCurrent() error {
	if err := w.window.GLMakeCurrent(w.context); err != nil {
		return fmt.Errorf("%w: %v", ErrContext, err)
	}
	return nil
}

func (w *Window) Swap() {
	w.window.GLSwap()
}

// DrawableSize is the size in pixels of the GL surface, which differs from
// the window size on high density displays.
func (w *Window) DrawableSize() (int, int) {
	width, height := w.window.GLGetDrawableSize()
	return int(width), int(height)
}

// Size is the window size in screen coordinates, the same units SDL uses
// for window and mouse events.
func (w *Window) Size() (int, int) {
	width, height := w.window.GetSize()
	return int(width), int(height)
}

// Viewport resets the GL viewport to the drawable size and returns it.
func (w *Window) Viewport() (int, int) {
	width, height := w.DrawableSize()
	gles2.Viewport(0, 0, int32(width), int32(height))
	return width, height
}

func (w *Window) ID() uint32 {
	id, err := w.window.GetID()
	if err != nil {
		return 0
	}
	return id
}

// Destroy releases the context and the window.
func (w *Window) Destroy() {
	if w.context != nil {
		sdl.GLDeleteContext(w.context)
		w.context = nil
	}
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
}
