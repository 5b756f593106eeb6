// Package gles2demo draws a fixed coloured quad with OpenGL ES 2.0. It is the
// smallest program that exercises the gles window and shader plumbing.
package gles2demo

import (
	"context"
	"fmt"

	"github.com/go-gl/gl/v3.1/gles2"
	"github.com/hiromi-mi/glesvnc/gles"
	"github.com/hiromi-mi/glesvnc/logger"
	"github.com/hiromi-mi/glesvnc/matrix"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	WindowWidth  = 800
	WindowHeight = 800

	frameDelay = 100 // milliseconds
)

const vertexShader = `
attribute vec4 av4position;
attribute vec3 av3color;
uniform mat4 mvp;
varying vec3 vv3color;
void main() {
	vv3color = av3color;
	gl_Position = mvp * av4position;
}
`

const fragmentShader = `
precision lowp float;
varying vec3 vv3color;
void main() {
	gl_FragColor = vec4(vv3color, 1.0);
}
`

// one colour per vertex of gles.QuadVertices
var colors = []float32{
	1, 1, 1,
	0, 0, 0,
	1, 0, 0,

	1, 1, 1,
	0, 0, 1,
	0, 0, 0,
}

// the quad is always drawn at this screen rectangle
var placement = struct{ x, y, w, h float32 }{100, 100, 100, 100}

func WindowConfig() gles.Config {
	cfg := gles.DefaultConfig("testgles2")
	cfg.Width = WindowWidth
	cfg.Height = WindowHeight
	cfg.Flags = sdl.WINDOW_RESIZABLE | sdl.WINDOW_BORDERLESS
	return cfg
}

type action int

const (
	actionNone action = iota
	actionQuit
	actionResize
	actionAddController
)

// classify decides what an event means to the demo. windowID is the id of
// the demo window; resizes of other windows are ignored.
func classify(ev sdl.Event, windowID uint32) action {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		return actionQuit
	case *sdl.KeyboardEvent:
		return actionQuit
	case *sdl.ControllerButtonEvent:
		if e.Type == sdl.CONTROLLERBUTTONDOWN {
			return actionQuit
		}
	case *sdl.ControllerDeviceEvent:
		if e.Type == sdl.CONTROLLERDEVICEADDED {
			return actionAddController
		}
	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED && e.WindowID == windowID {
			return actionResize
		}
	}
	return actionNone
}

// surface is the part of gles.Window the demo draws through.
type surface interface {
	MakeCurrent() error
	Swap()
	Viewport() (int, int)
	Size() (int, int)
	ID() uint32
}

type Demo struct {
	window  surface
	program *gles.Program

	mvp      int32
	vertices uint32
	colours  uint32

	width  int
	height int

	controllers []*sdl.GameController
}

// New sets up the viewport and shader state on win, which must be current.
func New(win *gles.Window) (*Demo, error) {
	d := &Demo{window: win}
	d.fitWindow()

	var err error
	d.program, err = gles.NewProgram(vertexShader, fragmentShader)
	if err != nil {
		return nil, err
	}
	d.program.Use()

	position, err := d.program.Attrib("av4position")
	if err != nil {
		d.Destroy()
		return nil, err
	}
	colour, err := d.program.Attrib("av3color")
	if err != nil {
		d.Destroy()
		return nil, err
	}
	d.mvp = d.program.Uniform("mvp")

	if d.vertices, err = gles.NewBuffer(gles.QuadVertices); err != nil {
		d.Destroy()
		return nil, err
	}
	if d.colours, err = gles.NewBuffer(colors); err != nil {
		d.Destroy()
		return nil, err
	}
	if err := gles.BindAttrib(d.vertices, position, 3); err != nil {
		d.Destroy()
		return nil, err
	}
	if err := gles.BindAttrib(d.colours, colour, 3); err != nil {
		d.Destroy()
		return nil, err
	}

	return d, nil
}

// Render draws the quad for a width by height screen then sleeps for one
// frame.
func (d *Demo) Render(width, height int) error {
	m := matrix.Placement(placement.x, placement.y, placement.w, placement.h, width, height)

	gles2.UniformMatrix4fv(d.mvp, 1, false, m.Ptr())
	if err := gles.CheckError("UniformMatrix4fv"); err != nil {
		return err
	}
	gles2.DrawArrays(gles2.TRIANGLES, 0, gles.QuadVertexCount)
	if err := gles.CheckError("DrawArrays"); err != nil {
		return err
	}

	sdl.Delay(frameDelay)
	return nil
}

// fitWindow covers the drawable with the viewport. The quad placement is in
// window coordinates, so the screen size is the window size.
func (d *Demo) fitWindow() {
	d.window.Viewport()
	d.width, d.height = d.window.Size()
}

func (d *Demo) resize() error {
	if err := d.window.MakeCurrent(); err != nil {
		logger.Warn("%v", err)
		return nil
	}
	d.fitWindow()
	if err := d.Render(d.width, d.height); err != nil {
		return err
	}
	d.window.Swap()
	return nil
}

// Run polls events and redraws until a key, a controller button or a quit
// request arrives, or ctx is cancelled.
func (d *Demo) Run(ctx context.Context) error {
	windowID := d.window.ID()

	for {
		if ctx.Err() != nil {
			return nil
		}

		for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
			switch classify(ev, windowID) {
			case actionQuit:
				return nil
			case actionAddController:
				which := ev.(*sdl.ControllerDeviceEvent).Which
				if pad := sdl.GameControllerOpen(int(which)); pad != nil {
					logger.Info("controller: %s", pad.Name())
					d.controllers = append(d.controllers, pad)
				}
			case actionResize:
				if err := d.resize(); err != nil {
					return err
				}
			}
		}

		if err := d.window.MakeCurrent(); err != nil {
			logger.Warn("%v", err)
			sdl.Delay(frameDelay)
			continue
		}
		if err := d.Render(d.width, d.height); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		d.window.Swap()
	}
}

func (d *Demo) Destroy() {
	for _, pad := range d.controllers {
		pad.Close()
	}
	d.controllers = nil

	if d.vertices != 0 {
		gles.DeleteBuffer(d.vertices)
		d.vertices = 0
	}
	if d.colours != 0 {
		gles.DeleteBuffer(d.colours)
		d.colours = 0
	}
	if d.program != nil {
		d.program.Destroy()
	}
}
