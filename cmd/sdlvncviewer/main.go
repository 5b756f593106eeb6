// Command sdlvncviewer shows a VNC desktop in an OpenGL ES 2.0 window.
//
//	sdlvncviewer [-host host[:display|::port]] [-pass password] [-askpass]
//	             [-size width height] [-exitkey letter] [-debug]
//
// Ctrl+Alt+q (or the letter given with -exitkey) leaves the viewer.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/hiromi-mi/glesvnc/gles"
	"github.com/hiromi-mi/glesvnc/logger"
	"github.com/hiromi-mi/glesvnc/rfb"
	"github.com/hiromi-mi/glesvnc/viewer"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	// SDL and GL calls must all come from the main thread, and only init
	// still runs on it
	runtime.LockOSThread()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// exitCode maps a setup or session error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, gles.ErrWindow),
		errors.Is(err, gles.ErrContext),
		errors.Is(err, gles.ErrLoadFunctions),
		errors.Is(err, viewer.ErrRegisterEvent):
		return 2
	default:
		return 1
	}
}

func run(args []string) int {
	opts := viewer.ParseArgs(args)
	logger.SetVerbose(opts.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gles.Init(sdl.INIT_GAMECONTROLLER); err != nil {
		logger.Fatal("%v", err)
		return exitCode(err)
	}
	defer gles.Quit()

	cfg := gles.DefaultConfig("SDL vnc viewer")
	cfg.Width, cfg.Height = int32(opts.Width), int32(opts.Height)
	win, err := gles.NewWindow(cfg)
	if err != nil {
		logger.Fatal("%v", err)
		return exitCode(err)
	}
	defer win.Destroy()

	renderer, err := viewer.NewGLRenderer(win)
	if err != nil {
		logger.Fatal("%v", err)
		return exitCode(err)
	}
	defer renderer.Destroy()

	// 16 bit: rfb.NewClient(5, 3, 2)
	client := rfb.NewClient(8, 3, 4)
	defer client.Close()

	v, err := viewer.New(client, renderer, opts)
	if err != nil {
		logger.Fatal("%v", err)
		return exitCode(err)
	}
	defer v.Close()

	if err := v.Connect(ctx); err != nil {
		if errors.Is(err, viewer.ErrAlloc) {
			logger.Fatal("%v", err)
			return exitCode(err)
		}
		logger.Warn("%v", err)
		return 0
	}

	if err := v.Run(ctx); err != nil {
		logger.Fatal("%v", err)
		return exitCode(err)
	}
	logger.Info("QUIT: 0")
	return 0
}
