//go:build tinygo || !cgo

package glcompile

import (
	"errors"

	"github.com/soypat/shadermat"
)

var errNoCGO = errors.New("program compilation requires CGo and is not supported on TinyGo")

// Program stands in for a compiled program when CGo is unavailable.
type Program struct{}

// Init returns an error since GLFW requires CGo.
func Init() (terminate func(), err error) {
	return nil, errNoCGO
}

// Compile returns an error since OpenGL requires CGo.
func (cfg Config) Compile(m *shadermat.ShaderMaterial) (Program, error) {
	return Program{}, errNoCGO
}

// SetUniforms returns an error since OpenGL requires CGo.
func SetUniforms(prog Program, m *shadermat.ShaderMaterial) error {
	return errNoCGO
}
