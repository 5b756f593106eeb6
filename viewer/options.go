package viewer

import (
	"strconv"

	"github.com/hiromi-mi/glesvnc/input"
	"github.com/hiromi-mi/glesvnc/logger"
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

type Options struct {
	Password    string
	HasPassword bool

	Width  int
	Height int

	// empty means localhost:5900
	Host string

	ExitKey rune
	AskPass bool
	Debug   bool
}

func DefaultOptions() Options {
	return Options{
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		ExitKey: input.DefaultExitKey,
	}
}

// ParseArgs reads the command line without the program name. -size takes
// two values, which is why this is not done with the flag package. Unknown
// arguments and flags missing their values are logged and skipped.
func ParseArgs(args []string) Options {
	opts := DefaultOptions()

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-pass" && i+1 < len(args):
			opts.Password = args[i+1]
			opts.HasPassword = true
			i++
		case args[i] == "-size" && i+2 < len(args):
			w, errW := strconv.Atoi(args[i+1])
			h, errH := strconv.Atoi(args[i+2])
			if errW != nil || errH != nil || w <= 0 || h <= 0 {
				logger.Warn("bad window size %s %s", args[i+1], args[i+2])
			} else {
				opts.Width, opts.Height = w, h
			}
			i += 2
		case args[i] == "-host" && i+1 < len(args):
			opts.Host = args[i+1]
			i++
		case args[i] == "-exitkey" && i+1 < len(args):
			k := []rune(args[i+1])
			if len(k) != 1 || k[0] < 'a' || k[0] > 'z' {
				logger.Warn("exit key must be a lower case letter, not %q", args[i+1])
			} else {
				opts.ExitKey = k[0]
			}
			i++
		case args[i] == "-askpass":
			opts.AskPass = true
		case args[i] == "-debug":
			opts.Debug = true
		default:
			logger.Warn("ignoring argument %q", args[i])
		}
	}
	return opts
}
