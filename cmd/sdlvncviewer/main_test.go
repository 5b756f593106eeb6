package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hiromi-mi/glesvnc/gles"
	"github.com/hiromi-mi/glesvnc/viewer"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{gles.ErrVideoInit, 1},
		{gles.ErrGL, 1},
		{gles.ErrShader, 1},
		{viewer.ErrAlloc, 1},
		{gles.ErrWindow, 2},
		{gles.ErrContext, 2},
		{gles.ErrLoadFunctions, 2},
		{viewer.ErrRegisterEvent, 2},
		{errors.New("other"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), "%v", tt.err)
		if tt.err != nil {
			assert.Equal(t, tt.want, exitCode(fmt.Errorf("wrapped: %w", tt.err)), "wrapped %v", tt.err)
		}
	}
}
