package shadermat

import (
	"errors"
	"fmt"
	"sort"
)

// Stage identifies a shader pipeline stage.
type Stage string

const (
	StageVertex   Stage = "vert"
	StageFragment Stage = "frag"
)

var (
	// ErrUnknownType is reported when a material type has no known preset mapping.
	ErrUnknownType = errors.New("no mapping for material type")
	// ErrMissingChunk is reported when a nested patch references an unregistered chunk.
	ErrMissingChunk = errors.New("shader chunk not found")
	// ErrUnknownProperty is reported when a property bag key is not a material property.
	ErrUnknownProperty = errors.New("not a material property")
)

// mapping pairs the chunk id prefix of a built-in material type (meshlambert
// resolves to meshlambert_vert and meshlambert_frag) with its uniform preset name.
type mapping struct {
	id     string
	preset string
}

var materialMappings = map[string]mapping{
	"MeshLambertMaterial":  {id: "meshlambert", preset: "lambert"},
	"MeshBasicMaterial":    {id: "meshbasic", preset: "basic"},
	"MeshStandardMaterial": {id: "meshphysical", preset: "physical"},
	"MeshPhongMaterial":    {id: "meshphong", preset: "phong"},
	"MeshMatcapMaterial":   {id: "meshmatcap", preset: "matcap"},
	"PointsMaterial":       {id: "points", preset: "points"},
	"LineDashedMaterial":   {id: "dashed", preset: "linedashed"},
	"MeshDepthMaterial":    {id: "depth", preset: "depth"},
	"MeshNormalMaterial":   {id: "normal", preset: "normal"},
	"MeshDistanceMaterial": {id: "distanceRGBA", preset: "distanceRGBA"},
	"SpriteMaterial":       {id: "sprite", preset: "sprite"},
}

// MaterialTypes returns the sorted names of all built-in material types that can be extended.
func MaterialTypes() []string {
	names := make([]string, 0, len(materialMappings))
	for name := range materialMappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ChunkID returns the chunk id prefix and preset name for a built-in material type.
func ChunkID(typeName string) (id, preset string, ok bool) {
	m, ok := materialMappings[typeName]
	return m.id, m.preset, ok
}

// Library is a registry of named GLSL chunks and named default uniform sets.
// A Library is not safe for concurrent mutation; populate it before use.
type Library struct {
	chunks  map[string]string
	presets map[string]Uniforms
}

// NewLibrary returns an empty Library.
func NewLibrary() *Library {
	return &Library{
		chunks:  make(map[string]string),
		presets: make(map[string]Uniforms),
	}
}

// RegisterChunk registers GLSL source under name, replacing any previous chunk.
func (lib *Library) RegisterChunk(name, source string) {
	lib.chunks[name] = source
}

// RegisterPreset registers the default uniform set for a preset name.
// The library keeps its own copy of the uniforms.
func (lib *Library) RegisterPreset(name string, uniforms Uniforms) {
	lib.presets[name] = CloneUniforms(uniforms)
}

// Chunk returns the chunk registered under name.
func (lib *Library) Chunk(name string) (string, bool) {
	src, ok := lib.chunks[name]
	return src, ok
}

// Preset returns a fresh clone of the uniform set registered under name.
func (lib *Library) Preset(name string) (Uniforms, bool) {
	u, ok := lib.presets[name]
	if !ok {
		return nil, false
	}
	return CloneUniforms(u), true
}

// Chunks returns the sorted names of all registered chunks.
func (lib *Library) Chunks() []string {
	names := make([]string, 0, len(lib.chunks))
	for name := range lib.chunks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MapShader returns the registered source of the given stage for a built-in material type.
func (lib *Library) MapShader(typeName string, stage Stage) (string, error) {
	m, ok := materialMappings[typeName]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownType, typeName)
	}
	name := m.id + "_" + string(stage)
	src, ok := lib.chunks[name]
	if !ok {
		return "", fmt.Errorf("%w: %q for %s", ErrMissingChunk, name, typeName)
	}
	return src, nil
}
