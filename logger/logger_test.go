package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseLoggerPrefixes(t *testing.T) {
	var buf bytes.Buffer
	bl := New(&buf, false)

	bl.Fatal("shader %d", 1)
	bl.Warn("unknown keysym: %d", 1234)
	bl.Info("connected")
	bl.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "FATAL: shader 1")
	assert.Contains(t, out, "WARN: unknown keysym: 1234")
	assert.Contains(t, out, "INFO: connected")
	assert.NotContains(t, out, "hidden")
}

func TestVerboseDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(New(&buf, false))
	defer SetDefaultLogger()

	Debug("first")
	SetVerbose(true)
	Debug("second")

	assert.NotContains(t, buf.String(), "first")
	assert.Contains(t, buf.String(), "DEBUG: second")
}
