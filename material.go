package shadermat

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/soypat/shadermat/glbuild"
	"github.com/zeebo/blake3"
)

// Side selects which faces of a mesh a material renders.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Properties is a bag of material property values keyed by property name,
// i.e: "transparent", "side", "lights". The "defines" key holds [Defines]
// applied before a template's own defines when extending.
type Properties map[string]any

// ShaderMaterial is a material rendered with explicit GLSL sources, uniforms and defines.
type ShaderMaterial struct {
	Name           string
	VertexShader   string
	FragmentShader string
	Uniforms       Uniforms
	Defines        Defines
	Lights         bool
	Fog            bool
	Transparent    bool
	Wireframe      bool
	DepthTest      bool
	DepthWrite     bool
	Side           Side
	// templates is the ordered list of templates applied to derive the material.
	templates []*Template
}

const defaultVertexShader = "void main() {\n\tgl_Position = projectionMatrix * modelViewMatrix * vec4( position, 1.0 );\n}"
const defaultFragmentShader = "void main() {\n\tgl_FragColor = vec4( 1.0, 0.0, 0.0, 1.0 );\n}"

// NewShaderMaterial returns a material with default sources and no uniforms.
func NewShaderMaterial() *ShaderMaterial {
	return &ShaderMaterial{
		VertexShader:   defaultVertexShader,
		FragmentShader: defaultFragmentShader,
		Uniforms:       make(Uniforms),
		Defines:        make(Defines),
		DepthTest:      true,
		DepthWrite:     true,
	}
}

// Copy copies the full state of src into m. Uniforms are cloned so no
// unshared holder is aliased between the two materials.
func (m *ShaderMaterial) Copy(src *ShaderMaterial) {
	*m = *src
	m.Uniforms = CloneUniforms(src.Uniforms)
	if m.Uniforms == nil {
		m.Uniforms = make(Uniforms)
	}
	m.Defines = src.Defines.Clone()
	if m.Defines == nil {
		m.Defines = make(Defines)
	}
	m.templates = append([]*Template(nil), src.templates...)
}

// Clone returns a copy of m. See [ShaderMaterial.Copy].
func (m *ShaderMaterial) Clone() *ShaderMaterial {
	cp := new(ShaderMaterial)
	cp.Copy(m)
	return cp
}

// Templates returns the templates applied to derive m, oldest first.
func (m *ShaderMaterial) Templates() []*Template {
	return append([]*Template(nil), m.templates...)
}

// SetValues assigns known material properties from props. The "defines"
// key is ignored since defines are merged by the Extender. Keys that are
// not material properties or hold a value of the wrong type are returned
// as errors after every valid key has been assigned.
func (m *ShaderMaterial) SetValues(props Properties) (errs []error) {
	for key, v := range props {
		ok := true
		switch key {
		case "defines":
		case "name":
			m.Name, ok = v.(string)
		case "vertexShader":
			m.VertexShader, ok = v.(string)
		case "fragmentShader":
			m.FragmentShader, ok = v.(string)
		case "lights":
			m.Lights, ok = v.(bool)
		case "fog":
			m.Fog, ok = v.(bool)
		case "transparent":
			m.Transparent, ok = v.(bool)
		case "wireframe":
			m.Wireframe, ok = v.(bool)
		case "depthTest":
			m.DepthTest, ok = v.(bool)
		case "depthWrite":
			m.DepthWrite, ok = v.(bool)
		case "side":
			m.Side, ok = parseSide(v)
		case "uniforms":
			var u Uniforms
			u, ok = v.(Uniforms)
			if ok {
				m.Uniforms = u
			}
		default:
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownProperty, key))
			continue
		}
		if !ok {
			errs = append(errs, fmt.Errorf("material property %q: unexpected value %T", key, v))
		}
	}
	return errs
}

func parseSide(v any) (Side, bool) {
	switch val := v.(type) {
	case Side:
		return val, true
	case int:
		return Side(val), val >= 0 && val <= int(DoubleSide)
	case string:
		switch val {
		case "front":
			return FrontSide, true
		case "back":
			return BackSide, true
		case "double":
			return DoubleSide, true
		}
	}
	return FrontSide, false
}

// Source returns the material's source for the given stage.
func (m *ShaderMaterial) Source(stage Stage) string {
	if stage == StageVertex {
		return m.VertexShader
	}
	return m.FragmentShader
}

// AppendProgram appends the complete program text of a stage to dst: the
// optional version directive, one #define line per define in name order,
// then the stage source.
func (m *ShaderMaterial) AppendProgram(dst []byte, stage Stage, version string) []byte {
	if version != "" {
		dst = append(dst, version...)
		if version[len(version)-1] != '\n' {
			dst = append(dst, '\n')
		}
	}
	for _, name := range m.Defines.Names() {
		dst = glbuild.AppendDefineValue(dst, name, m.Defines[name])
	}
	return append(dst, m.Source(stage)...)
}

// AppendUniformDecls appends a GLSL uniform declaration for every uniform
// in names whose value has a known GLSL type. Names of unknown type are skipped.
func (m *ShaderMaterial) AppendUniformDecls(dst []byte, names ...string) []byte {
	return appendUniformDecls(dst, m.Uniforms, names)
}

func appendUniformDecls(dst []byte, u Uniforms, names []string) []byte {
	for _, name := range names {
		v, ok := u.Value(name)
		if !ok {
			continue
		}
		typename, arrayLen, err := uniformTypename(v)
		if err != nil {
			continue
		}
		dst = glbuild.AppendUniformDecl(dst, typename, name, arrayLen)
	}
	return dst
}

func uniformTypename(v any) (typename string, arrayLen int, err error) {
	switch v.(type) {
	case *Texture:
		return "sampler2D", -1, nil
	case Color:
		return "vec3", -1, nil
	case []*Texture:
		return "sampler2D", len(v.([]*Texture)), nil
	}
	return glbuild.Typename(v)
}

var keyEncMode cbor.EncMode

func init() {
	var err error
	keyEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("shadermat: CBOR encoder initialization failed: " + err.Error())
	}
}

type programKey struct {
	Vertex   string         `cbor:"1,keyasint"`
	Fragment string         `cbor:"2,keyasint"`
	Defines  map[string]any `cbor:"3,keyasint"`
}

// ProgramKey returns a digest identifying the compiled program of m.
// Materials with identical sources and defines share a key regardless of
// uniform values, so compiled programs may be reused between them.
func (m *ShaderMaterial) ProgramKey() (string, error) {
	data, err := keyEncMode.Marshal(programKey{
		Vertex:   m.VertexShader,
		Fragment: m.FragmentShader,
		Defines:  m.Defines,
	})
	if err != nil {
		return "", fmt.Errorf("encoding program key: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
