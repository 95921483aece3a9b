package shadermat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// File is a material file: an ordered list of material derivations.
// Materials may extend or inherit from materials declared earlier in the file.
type File struct {
	// Version is the GLSL version directive used when emitting full programs, i.e: "#version 300 es".
	Version   string
	Materials []MaterialSpec
}

// MaterialSpec declares one derived material.
type MaterialSpec struct {
	Name string
	// Base is the built-in material type to extend. Exactly one of Base and From must be set.
	Base string
	// From names a material declared earlier in the file to extend.
	From string
	// Properties are instance values overriding Base's preset uniforms.
	Properties map[string]any
	Template   *Template
}

// LoadFile reads a material file. Files ending in .json or .jsonc may
// contain comments and trailing commas; any other file is read as YAML.
// Texture paths are resolved relative to the file's directory.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" || ext == ".jsonc" {
		// JSON is valid YAML; decoding it with yaml.v3 keeps mapping order for patches.
		data = jsonc.ToJSON(data)
	}
	f, err := ParseFile(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("parsing material file %q: %w", path, err)
	}
	return f, nil
}

// ParseFile parses YAML material file data. Texture paths are resolved relative to dir.
func ParseFile(data []byte, dir string) (*File, error) {
	var raw struct {
		Version   string `yaml:"version"`
		Materials []struct {
			Name       string    `yaml:"name"`
			Base       string    `yaml:"base"`
			From       string    `yaml:"from"`
			Properties yaml.Node `yaml:"properties"`
			Template   yaml.Node `yaml:"template"`
		} `yaml:"materials"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	dec := valueDecoder{dir: dir}
	f := &File{Version: raw.Version}
	for i, m := range raw.Materials {
		if m.Name == "" {
			return nil, fmt.Errorf("material %d: missing name", i)
		}
		decl := MaterialSpec{Name: m.Name, Base: m.Base, From: m.From}
		var err error
		decl.Properties, err = dec.decodeValues(&m.Properties)
		if err != nil {
			return nil, fmt.Errorf("material %q properties: %w", m.Name, err)
		}
		decl.Template, err = dec.decodeTemplate(&m.Template)
		if err != nil {
			return nil, fmt.Errorf("material %q template: %w", m.Name, err)
		}
		f.Materials = append(f.Materials, decl)
	}
	return f, nil
}

// Build derives every material of the file in declaration order and returns
// them by name. Reference errors are returned immediately; derivation
// problems are accumulated on ext.
func (f *File) Build(ext *Extender) (map[string]*ShaderMaterial, error) {
	built := make(map[string]*ShaderMaterial, len(f.Materials))
	for _, decl := range f.Materials {
		if _, dup := built[decl.Name]; dup {
			return nil, fmt.Errorf("duplicate material name %q", decl.Name)
		}
		tpl := decl.Template
		if tpl == nil {
			tpl = &Template{}
		}
		if tpl.InheritName != "" {
			parent, ok := built[tpl.InheritName]
			if !ok {
				return nil, fmt.Errorf("material %q inherits undeclared material %q", decl.Name, tpl.InheritName)
			}
			tpl.Inherit = parent
		}
		var src Source
		switch {
		case decl.Base != "" && decl.From != "":
			return nil, fmt.Errorf("material %q: base and from are mutually exclusive", decl.Name)
		case decl.From != "":
			parent, ok := built[decl.From]
			if !ok {
				return nil, fmt.Errorf("material %q extends undeclared material %q", decl.Name, decl.From)
			}
			src = FromShader(parent)
		case len(decl.Properties) > 0:
			src = FromMaterial(Params{Type: decl.Base, Values: decl.Properties})
		default:
			src = FromType(decl.Base)
		}
		m := ext.Extend(src, tpl)
		if _, named := tpl.Material["name"]; !named {
			m.Name = decl.Name
		}
		built[decl.Name] = m
	}
	return built, nil
}

// UnmarshalYAML decodes a mapping of markers to replacement text or to
// nested chunk mappings, keeping the mapping order.
func (p *Patches) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: patches must be a mapping", node.Line)
	}
	patches := make(Patches, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch value.Kind {
		case yaml.MappingNode:
			var nested Patches
			if err := nested.UnmarshalYAML(value); err != nil {
				return err
			}
			patches = append(patches, Patch{Key: key.Value, Chunk: nested})
		case yaml.ScalarNode:
			patches = append(patches, Patch{Key: key.Value, Value: value.Value})
		default:
			return fmt.Errorf("line %d: patch %q must be text or a chunk mapping", value.Line, key.Value)
		}
	}
	*p = patches
	return nil
}

type valueDecoder struct {
	dir string
}

func (dec valueDecoder) decodeTemplate(node *yaml.Node) (*Template, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	var raw struct {
		Material        yaml.Node      `yaml:"material"`
		Defines         map[string]any `yaml:"defines"`
		Uniforms        yaml.Node      `yaml:"uniforms"`
		Header          string         `yaml:"header"`
		VertexHeader    string         `yaml:"vertexHeader"`
		FragmentHeader  string         `yaml:"fragmentHeader"`
		Vertex          Patches        `yaml:"vertex"`
		Fragment        Patches        `yaml:"fragment"`
		VertexEnd       string         `yaml:"vertexEnd"`
		FragmentEnd     string         `yaml:"fragmentEnd"`
		Inherit         string         `yaml:"inherit"`
		Extends         string         `yaml:"extends"`
		DeclareUniforms bool           `yaml:"declareUniforms"`
	}
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	if raw.Inherit != "" && raw.Extends != "" && raw.Inherit != raw.Extends {
		return nil, errors.New("inherit and extends name different materials")
	}
	tpl := &Template{
		Header:          raw.Header,
		VertexHeader:    raw.VertexHeader,
		FragmentHeader:  raw.FragmentHeader,
		Vertex:          raw.Vertex,
		Fragment:        raw.Fragment,
		VertexEnd:       raw.VertexEnd,
		FragmentEnd:     raw.FragmentEnd,
		InheritName:     raw.Inherit,
		DeclareUniforms: raw.DeclareUniforms,
	}
	if tpl.InheritName == "" {
		tpl.InheritName = raw.Extends
	}
	if raw.Defines != nil {
		tpl.Defines = Defines(raw.Defines)
	}
	var err error
	tpl.Uniforms, err = dec.decodeValues(&raw.Uniforms)
	if err != nil {
		return nil, fmt.Errorf("uniforms: %w", err)
	}
	if raw.Material.Kind != 0 {
		var props map[string]any
		if err := raw.Material.Decode(&props); err != nil {
			return nil, fmt.Errorf("material: %w", err)
		}
		tpl.Material = Properties(props)
		if d, ok := props["defines"].(map[string]any); ok {
			tpl.Material["defines"] = Defines(d)
		}
	}
	return tpl, nil
}

// decodeValues decodes a mapping of uniform or property names to values.
func (dec valueDecoder) decodeValues(node *yaml.Node) (map[string]any, error) {
	if node.Kind == 0 {
		return nil, nil
	} else if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	values := make(map[string]any, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		v, err := dec.decodeValue(node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		values[name] = v
	}
	return values, nil
}

// decodeValue decodes a uniform value:
//   - scalars decode to bool, int, float64 or string; "#rrggbb" strings decode to [Color].
//   - sequences of 2, 3 or 4 numbers decode to ms2.Vec, ms3.Vec and [4]float32, other lengths to []float32.
//   - {value: v, shared: bool} decodes to a *Uniform holder.
//   - {texture: path} loads a *Texture, {color: "#rrggbb"} decodes to a [Color].
func (dec valueDecoder) decodeValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		if s, ok := v.(string); ok && strings.HasPrefix(s, "#") {
			return ParseColor(s)
		}
		return v, nil

	case yaml.SequenceNode:
		var f []float32
		if err := node.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: uniform arrays must hold numbers: %w", node.Line, err)
		}
		switch len(f) {
		case 2:
			return ms2.Vec{X: f[0], Y: f[1]}, nil
		case 3:
			return ms3.Vec{X: f[0], Y: f[1], Z: f[2]}, nil
		case 4:
			return [4]float32{f[0], f[1], f[2], f[3]}, nil
		}
		return f, nil

	case yaml.MappingNode:
		var raw struct {
			Value   *yaml.Node `yaml:"value"`
			Shared  bool       `yaml:"shared"`
			Texture string     `yaml:"texture"`
			Color   string     `yaml:"color"`
		}
		if err := node.Decode(&raw); err != nil {
			return nil, err
		}
		switch {
		case raw.Value != nil:
			v, err := dec.decodeValue(raw.Value)
			if err != nil {
				return nil, err
			}
			return &Uniform{Value: v, Shared: raw.Shared}, nil
		case raw.Texture != "":
			path := raw.Texture
			if !filepath.IsAbs(path) {
				path = filepath.Join(dec.dir, path)
			}
			return LoadTexture(path)
		case raw.Color != "":
			return ParseColor(raw.Color)
		}
		return nil, fmt.Errorf("line %d: mapping needs one of value, texture or color", node.Line)

	case yaml.AliasNode:
		return dec.decodeValue(node.Alias)
	}
	return nil, fmt.Errorf("line %d: unsupported value", node.Line)
}
