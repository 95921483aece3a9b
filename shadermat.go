// Package shadermat derives shader materials from built-in material types
// or other shader materials by patching their GLSL sources, merging
// uniforms and deriving preprocessor defines.
package shadermat

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// ErrMissingPreset is reported when a built-in material type's uniform preset is not registered.
var ErrMissingPreset = errors.New("uniform preset not found")

// Extender derives shader materials from built-in material types or other
// shader materials using the chunks and presets of a [Library].
//
// Unknown material types and missing chunks do not abort a derivation.
// They are accumulated as errors, retrievable with [Extender.Err], and the
// best-effort result is returned. An Extender is not safe for concurrent use.
type Extender struct {
	Library *Library
	// Logger receives a warning for each accumulated error. May be nil.
	Logger    *slog.Logger
	accumErrs []error
}

// NewExtender returns an Extender reading chunks and presets from lib.
func NewExtender(lib *Library) *Extender {
	return &Extender{Library: lib}
}

// Err returns all errors accumulated since the Extender was created or last reset.
func (ext *Extender) Err() error {
	if len(ext.accumErrs) == 0 {
		return nil
	}
	return errors.Join(ext.accumErrs...)
}

// Errors returns the accumulated errors in the order they were reported.
func (ext *Extender) Errors() []error {
	return append([]error(nil), ext.accumErrs...)
}

// ResetErrors discards accumulated errors.
func (ext *Extender) ResetErrors() {
	ext.accumErrs = ext.accumErrs[:0]
}

func (ext *Extender) errorf(sentinel error, format string, args ...any) {
	ext.report(fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...))
}

func (ext *Extender) report(err error) {
	ext.accumErrs = append(ext.accumErrs, err)
	if ext.Logger != nil {
		ext.Logger.Warn("shadermat: derivation problem", "err", err)
	}
}

var emptyLibrary = NewLibrary()

func (ext *Extender) library() *Library {
	if ext.Library == nil {
		return emptyLibrary
	}
	return ext.Library
}

// Material is a built-in material instance that can be extended. Its
// type name selects the preset and its truthy properties override the
// preset uniforms of the same name.
type Material interface {
	MaterialType() string
	Property(name string) (any, bool)
}

// Params is a map-backed [Material].
type Params struct {
	Type   string
	Values map[string]any
}

var _ Material = Params{} // Interface implementation compile-time check.

func (p Params) MaterialType() string { return p.Type }

func (p Params) Property(name string) (any, bool) {
	v, ok := p.Values[name]
	return v, ok
}

type sourceKind uint8

const (
	sourceUndefined sourceKind = iota
	sourceType
	sourceShader
	sourceMaterial
)

// Source is the material a derivation starts from. Create one with
// [FromType], [FromShader] or [FromMaterial].
type Source struct {
	kind     sourceKind
	typeName string
	shader   *ShaderMaterial
	material Material
}

// FromType starts a derivation from a built-in material type's preset, i.e: "MeshLambertMaterial".
func FromType(typeName string) Source {
	return Source{kind: sourceType, typeName: typeName}
}

// FromShader starts a derivation from a copy of an existing shader material.
func FromShader(m *ShaderMaterial) Source {
	return Source{kind: sourceShader, shader: m}
}

// FromMaterial starts a derivation from a built-in material instance.
func FromMaterial(m Material) Source {
	return Source{kind: sourceMaterial, material: m}
}

// Shader is a bare vertex/fragment source pair with its uniforms.
type Shader struct {
	VertexShader   string
	FragmentShader string
	Uniforms       Uniforms
}

// PatchShader applies the source changes and uniforms of tpl to s in place.
// Defines and material properties of tpl are ignored.
func (ext *Extender) PatchShader(s *Shader, tpl *Template) *Shader {
	s.VertexShader, s.FragmentShader = ext.applySource(s.VertexShader, s.FragmentShader, tpl, tpl.Header)
	if s.Uniforms == nil {
		s.Uniforms = make(Uniforms)
	}
	MergeUniforms(s.Uniforms, nil, tpl.Uniforms)
	return s
}

// Extend derives a new shader material from src by applying tpl, which may be nil.
//
// The base sources and uniforms come from the preset of src's material
// type, or are copied from src when it is a shader material. When
// tpl.Inherit is set its defines and uniforms are merged and every template
// recorded on it is replayed before tpl is applied. Defines set to false
// are absent from the result. If src's type is unknown the error is
// accumulated and a default material is returned.
func (ext *Extender) Extend(src Source, tpl *Template) *ShaderMaterial {
	if tpl == nil {
		tpl = &Template{}
	}
	material := NewShaderMaterial()
	props := make(Properties, len(tpl.Material))
	for k, v := range tpl.Material {
		props[k] = v
	}
	defines := make(Defines)
	var (
		uniforms         Uniforms
		vertex, fragment string
		chain            []*Template
	)

	switch src.kind {
	case sourceShader:
		if src.shader == nil {
			ext.errorf(ErrUnknownType, "nil shader material")
			return material
		}
		material.Copy(src.shader)
		uniforms = material.Uniforms
		vertex, fragment = src.shader.VertexShader, src.shader.FragmentShader
		defines.Merge(src.shader.Defines)
		chain = material.templates

	case sourceType, sourceMaterial:
		typeName := src.typeName
		if src.kind == sourceMaterial {
			if src.material == nil {
				ext.errorf(ErrUnknownType, "nil material")
				return material
			}
			typeName = src.material.MaterialType()
		}
		var ok bool
		uniforms, vertex, fragment, ok = ext.resolvePreset(typeName)
		if !ok {
			return material
		}
		if _, set := props["lights"]; !set {
			props["lights"] = true
		}
		if src.kind == sourceMaterial {
			for name, holder := range uniforms {
				if v, ok := src.material.Property(name); ok && truthy(v) && holder != nil {
					holder.Value = CloneUniformValue(v)
				}
			}
		}

	default:
		ext.errorf(ErrUnknownType, "undefined source")
		return material
	}

	if inherit := tpl.Inherit; inherit != nil {
		defines.Merge(inherit.Defines)
		for name, holder := range CloneUniforms(inherit.Uniforms) {
			uniforms[name] = holder
		}
		for _, replay := range inherit.templates {
			vertex, fragment = ext.applySource(vertex, fragment, replay.withoutUniforms(), replay.Header)
		}
		chain = append(chain[:len(chain):len(chain)], inherit.templates...)
	}

	defines.Merge(tpl.propertyDefines())
	defines.Merge(tpl.Defines)

	header := tpl.Header
	if tpl.DeclareUniforms {
		header = ext.uniformDeclarations(tpl) + header
	}
	vertex, fragment = ext.applySource(vertex, fragment, tpl, header)
	MergeUniforms(uniforms, defines, tpl.Uniforms)
	// Explicitly disabled defines stay disabled over uniform-derived flags.
	for _, explicit := range []Defines{tpl.propertyDefines(), tpl.Defines} {
		for name, v := range explicit {
			if b, ok := v.(bool); ok && !b {
				defines[name] = false
			}
		}
	}

	for _, err := range material.SetValues(props) {
		ext.report(err)
	}
	material.Uniforms = uniforms
	material.Defines = defines
	material.VertexShader = vertex
	material.FragmentShader = fragment

	recorded := *tpl
	recorded.Header = header
	recorded.DeclareUniforms = false
	recorded.Inherit = nil
	material.templates = append(chain[:len(chain):len(chain)], &recorded)

	material.Defines.Prune()
	return material
}

// resolvePreset returns clones of the preset uniforms and sources of a
// built-in material type. ok is false only when the type is unknown.
func (ext *Extender) resolvePreset(typeName string) (uniforms Uniforms, vertex, fragment string, ok bool) {
	_, preset, ok := ChunkID(typeName)
	if !ok {
		ext.errorf(ErrUnknownType, "%q", typeName)
		return nil, "", "", false
	}
	lib := ext.library()
	uniforms, found := lib.Preset(preset)
	if !found {
		ext.errorf(ErrMissingPreset, "%q for %s", preset, typeName)
		uniforms = make(Uniforms)
	}
	var err error
	vertex, err = lib.MapShader(typeName, StageVertex)
	if err != nil {
		ext.report(err)
	}
	fragment, err = lib.MapShader(typeName, StageFragment)
	if err != nil {
		ext.report(err)
	}
	return uniforms, vertex, fragment, true
}

// applySource applies end snippets, patches and headers of tpl to both stages.
func (ext *Extender) applySource(vertex, fragment string, tpl *Template, header string) (string, string) {
	apply := func(stage Stage, src string) string {
		src = injectEnd(src, tpl.stageEnd(stage))
		src = ext.ApplyPatches(src, tpl.stagePatches(stage))
		return prependHeaders(src, header, tpl.stageHeader(stage))
	}
	return apply(StageVertex, vertex), apply(StageFragment, fragment)
}

func prependHeaders(src string, headers ...string) string {
	var sb strings.Builder
	for _, h := range headers {
		if h == "" {
			continue
		}
		sb.WriteString(h)
		sb.WriteByte('\n')
	}
	if sb.Len() == 0 {
		return src
	}
	sb.WriteString(src)
	return sb.String()
}

// uniformDeclarations returns GLSL declarations of the template's uniforms in name order.
func (ext *Extender) uniformDeclarations(tpl *Template) string {
	resolved := make(Uniforms, len(tpl.Uniforms))
	MergeUniforms(resolved, nil, tpl.Uniforms)
	names := make([]string, 0, len(resolved))
	for name, holder := range resolved {
		if _, _, err := uniformTypename(holder.Value); err != nil {
			ext.report(fmt.Errorf("declaring uniform %q: %w", name, err))
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return string(appendUniformDecls(nil, resolved, names))
}
