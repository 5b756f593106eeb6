package gles

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.1/gles2"
)

// Program is a linked vertex and fragment shader pair.
type Program struct {
	Handle uint32
}

// NewProgram compiles and links a program. Compiler and linker logs are
// returned inside an ErrShader error.
func NewProgram(vertSrc string, fragSrc string) (*Program, error) {
	vert, err := compileShader(gles2.VERTEX_SHADER, vertSrc)
	if err != nil {
		return nil, fmt.Errorf("vertex: %w", err)
	}
	defer gles2.DeleteShader(vert)

	frag, err := compileShader(gles2.FRAGMENT_SHADER, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("fragment: %w", err)
	}
	defer gles2.DeleteShader(frag)

	p := &Program{Handle: gles2.CreateProgram()}
	gles2.AttachShader(p.Handle, vert)
	gles2.AttachShader(p.Handle, frag)
	gles2.LinkProgram(p.Handle)

	var status int32
	gles2.GetProgramiv(p.Handle, gles2.LINK_STATUS, &status)
	if status == gles2.FALSE {
		var logLength int32
		gles2.GetProgramiv(p.Handle, gles2.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gles2.GetProgramInfoLog(p.Handle, logLength, nil, gles2.Str(log))
		p.Destroy()
		return nil, fmt.Errorf("%w: link: %s", ErrShader, strings.TrimRight(log, "\x00"))
	}

	return p, nil
}

func compileShader(kind uint32, src string) (uint32, error) {
	shader := gles2.CreateShader(kind)

	csource, free := gles2.Strs(src + "\x00")
	gles2.ShaderSource(shader, 1, csource, nil)
	free()

	gles2.CompileShader(shader)
	if log := shaderCompileError(shader); log != "" {
		gles2.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s", ErrShader, log)
	}
	return shader, nil
}

// shaderCompileError returns the compiler log when compilation failed.
func shaderCompileError(shader uint32) string {
	var isCompiled int32
	gles2.GetShaderiv(shader, gles2.COMPILE_STATUS, &isCompiled)
	if isCompiled != gles2.FALSE {
		return ""
	}

	var logLength int32
	gles2.GetShaderiv(shader, gles2.INFO_LOG_LENGTH, &logLength)
	if logLength <= 0 {
		return "unknown compile error"
	}
	// the length includes the terminating NUL
	log := strings.Repeat("\x00", int(logLength+1))
	gles2.GetShaderInfoLog(shader, logLength, &logLength, gles2.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (p *Program) Use() {
	gles2.UseProgram(p.Handle)
}

// Attrib returns the location of a vertex attribute. Missing attributes are
// an error since every program here uses all of its inputs.
func (p *Program) Attrib(name string) (uint32, error) {
	loc := gles2.GetAttribLocation(p.Handle, gles2.Str(name+"\x00"))
	if loc < 0 {
		return 0, fmt.Errorf("%w: no attribute %s", ErrShader, name)
	}
	return uint32(loc), nil
}

func (p *Program) Uniform(name string) int32 {
	return gles2.GetUniformLocation(p.Handle, gles2.Str(name+"\x00"))
}

func (p *Program) Destroy() {
	if p.Handle != 0 {
		gles2.DeleteProgram(p.Handle)
		p.Handle = 0
	}
}
