// Command testgles2 draws a coloured quad with OpenGL ES 2.0 until a key or
// controller button is pressed.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/hiromi-mi/glesvnc/gles"
	"github.com/hiromi-mi/glesvnc/gles2demo"
	"github.com/hiromi-mi/glesvnc/logger"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	// keep the main goroutine on the main thread for SDL
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, gles.ErrWindow),
		errors.Is(err, gles.ErrContext),
		errors.Is(err, gles.ErrLoadFunctions):
		return 2
	default:
		return 1
	}
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gles.Init(sdl.INIT_GAMECONTROLLER); err != nil {
		logger.Fatal("%v", err)
		return exitCode(err)
	}
	defer gles.Quit()

	win, err := gles.NewWindow(gles2demo.WindowConfig())
	if err != nil {
		logger.Fatal("%v", err)
		return exitCode(err)
	}
	defer win.Destroy()

	demo, err := gles2demo.New(win)
	if err != nil {
		logger.Fatal("%v", err)
		return exitCode(err)
	}
	defer demo.Destroy()

	if err := demo.Run(ctx); err != nil {
		logger.Fatal("%v", err)
		return exitCode(err)
	}
	return 0
}
