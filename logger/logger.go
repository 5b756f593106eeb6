package logger

import (
	"io"
	"log"
	"os"
	"sync"
)

type Logger interface {
	Fatal(string, ...interface{})
	Warn(string, ...interface{})
	Info(string, ...interface{})
	Debug(string, ...interface{})
}

var (
	mu     sync.Mutex
	logger Logger
)

func init() {
	SetDefaultLogger()
}

// SetDefaultLogger installs a BaseLogger writing to stderr with debug lines
// suppressed.
func SetDefaultLogger() {
	SetLogger(New(os.Stderr, false))
}

func SetLogger(l Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

func current() Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// SetVerbose toggles debug output on the default logger. It is a no-op when
// a custom Logger has been installed.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	if bl, ok := logger.(*BaseLogger); ok {
		bl.Verbose = v
	}
}

type BaseLogger struct {
	Logger  *log.Logger
	Verbose bool
}

func New(w io.Writer, verbose bool) *BaseLogger {
	return &BaseLogger{
		Logger:  log.New(w, "", log.Lmicroseconds|log.Ldate|log.Ltime),
		Verbose: verbose,
	}
}

func (bl *BaseLogger) Fatal(format string, v ...interface{}) {
	bl.Logger.Printf("FATAL: "+format, v...)
}

func (bl *BaseLogger) Warn(format string, v ...interface{}) {
	bl.Logger.Printf("WARN: "+format, v...)
}

func (bl *BaseLogger) Info(format string, v ...interface{}) {
	bl.Logger.Printf("INFO: "+format, v...)
}

func (bl *BaseLogger) Debug(format string, v ...interface{}) {
	if !bl.Verbose {
		return
	}
	bl.Logger.Printf("DEBUG: "+format, v...)
}

func Fatal(format string, v ...interface{}) { current().Fatal(format, v...) }
func Warn(format string, v ...interface{})  { current().Warn(format, v...) }
func Info(format string, v ...interface{})  { current().Info(format, v...) }
func Debug(format string, v ...interface{}) { current().Debug(format, v...) }
