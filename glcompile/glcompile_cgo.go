//go:build !tinygo && cgo

package glcompile

import (
	"fmt"
	"sort"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/shadermat"
)

// Init starts a hidden 1x1 GLFW window so programs can be compiled.
// It returns a termination function that should be called when done with the GPU.
func Init() (terminate func(), err error) {
	_, terminate, err = glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   "shadermat",
		Version: [2]int{4, 6},
		Width:   1,
		Height:  1,
	})
	return terminate, err
}

// Compile compiles and links the vertex and fragment stages of m.
// On failure the error contains the offending source.
func (cfg Config) Compile(m *shadermat.ShaderMaterial) (glgl.Program, error) {
	vert := cfg.AppendStage(nil, m, shadermat.StageVertex)
	frag := cfg.AppendStage(nil, m, shadermat.StageFragment)
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   string(append(vert, 0)),
		Fragment: string(append(frag, 0)),
	})
	if err != nil {
		return prog, fmt.Errorf("compiling %q:\n%s\n\n%s\n\n%w", m.Name, vert, frag, err)
	}
	return prog, nil
}

// SetUniforms uploads the uniform values of m to the bound program prog.
// Uniforms optimized away by the compiler and nil textures are skipped.
// Texture uniforms are assigned consecutive texture units in name order;
// binding texture data to those units is left to the caller.
func SetUniforms(prog glgl.Program, m *shadermat.ShaderMaterial) error {
	names := make([]string, 0, len(m.Uniforms))
	for name := range m.Uniforms {
		names = append(names, name)
	}
	sort.Strings(names)
	var unit int32
	for _, name := range names {
		v, _ := m.Uniforms.Value(name)
		if v == nil {
			continue
		}
		loc, err := prog.UniformLocation(name + "\x00")
		if err != nil {
			continue // Not active in program.
		}
		switch val := v.(type) {
		case *shadermat.Texture:
			if val == nil {
				continue
			}
			gl.Uniform1i(loc, unit)
			unit++
		case bool:
			var b int32
			if val {
				b = 1
			}
			gl.Uniform1i(loc, b)
		case int:
			gl.Uniform1i(loc, int32(val))
		case int32:
			gl.Uniform1i(loc, val)
		case uint32:
			gl.Uniform1ui(loc, val)
		case float32:
			gl.Uniform1f(loc, val)
		case float64:
			gl.Uniform1f(loc, float32(val))
		case shadermat.Color:
			gl.Uniform3f(loc, val.R, val.G, val.B)
		case ms2.Vec:
			gl.Uniform2f(loc, val.X, val.Y)
		case ms3.Vec:
			gl.Uniform3f(loc, val.X, val.Y, val.Z)
		case [4]float32:
			gl.Uniform4f(loc, val[0], val[1], val[2], val[3])
		case ms3.Mat3:
			// Matrices are stored row major.
			gl.UniformMatrix3fv(loc, 1, true, (*float32)(unsafe.Pointer(&val)))
		case ms3.Mat4:
			gl.UniformMatrix4fv(loc, 1, true, (*float32)(unsafe.Pointer(&val)))
		case []float32:
			if len(val) > 0 {
				gl.Uniform1fv(loc, int32(len(val)), &val[0])
			}
		default:
			return fmt.Errorf("uniform %q: unsupported value type %T", name, v)
		}
		if err := glgl.Err(); err != nil {
			return fmt.Errorf("uniform %q: %w", name, err)
		}
	}
	return nil
}
