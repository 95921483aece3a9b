// Package chunklib embeds the GLSL chunks and uniform presets of the
// built-in material types so they can be extended with shadermat.
package chunklib

import (
	"embed"
	"io/fs"
	"path"
	"strings"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/shadermat"
)

//go:embed chunks/*.glsl
var chunkFS embed.FS

const chunkExt = ".glsl"

// Register adds every embedded chunk and preset to lib. Existing entries
// with the same names are replaced.
func Register(lib *shadermat.Library) error {
	entries, err := fs.ReadDir(chunkFS, "chunks")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, chunkExt) {
			continue
		}
		src, err := fs.ReadFile(chunkFS, path.Join("chunks", name))
		if err != nil {
			return err
		}
		lib.RegisterChunk(strings.TrimSuffix(name, chunkExt), string(src))
	}
	for name, preset := range Presets() {
		lib.RegisterPreset(name, preset)
	}
	return nil
}

// Default returns a new library holding every embedded chunk and preset.
// Callers may register further chunks on the returned library.
func Default() *shadermat.Library {
	lib := shadermat.NewLibrary()
	if err := Register(lib); err != nil {
		panic("chunklib: embedded chunks unreadable: " + err.Error())
	}
	return lib
}

// Presets returns freshly allocated default uniform sets keyed by preset name.
func Presets() map[string]shadermat.Uniforms {
	return map[string]shadermat.Uniforms{
		"basic": merge(common(), specularMap(), envMap(), fog()),
		"lambert": merge(common(), specularMap(), envMap(), emissive(), fog(), lights(), displacement(), shadermat.Uniforms{
			"emissive": {Value: shadermat.Color{}},
		}),
		"phong": merge(common(), specularMap(), envMap(), emissive(), normalMap(), fog(), lights(), displacement(), shadermat.Uniforms{
			"emissive":  {Value: shadermat.Color{}},
			"specular":  {Value: shadermat.ColorFromHex(0x111111)},
			"shininess": {Value: float32(30)},
		}),
		"physical": merge(common(), envMap(), emissive(), normalMap(), fog(), lights(), displacement(), shadermat.Uniforms{
			"emissive":        {Value: shadermat.Color{}},
			"roughness":       {Value: float32(1)},
			"metalness":       {Value: float32(0)},
			"roughnessMap":    {},
			"metalnessMap":    {},
			"envMapIntensity": {Value: float32(1)},
		}),
		"matcap": merge(common(), normalMap(), fog(), displacement(), shadermat.Uniforms{
			"matcap": {},
		}),
		"points": merge(fog(), shadermat.Uniforms{
			"diffuse":     {Value: shadermat.ColorFromHex(0xffffff)},
			"opacity":     {Value: float32(1)},
			"size":        {Value: float32(1)},
			"scale":       {Value: float32(1)},
			"map":         {},
			"alphaMap":    {},
			"alphaTest":   {Value: float32(0)},
			"uvTransform": {Value: ms3.IdentityMat3()},
		}),
		"linedashed": merge(common(), fog(), shadermat.Uniforms{
			"scale":     {Value: float32(1)},
			"dashSize":  {Value: float32(1)},
			"totalSize": {Value: float32(2)},
		}),
		"depth": merge(common(), displacement()),
		"normal": merge(normalMap(), displacement(), shadermat.Uniforms{
			"opacity": {Value: float32(1)},
		}),
		"distanceRGBA": merge(common(), displacement(), shadermat.Uniforms{
			"referencePosition": {Value: ms3.Vec{}},
			"nearDistance":      {Value: float32(1)},
			"farDistance":       {Value: float32(1000)},
		}),
		"sprite": merge(fog(), shadermat.Uniforms{
			"diffuse":     {Value: shadermat.ColorFromHex(0xffffff)},
			"opacity":     {Value: float32(1)},
			"center":      {Value: ms2.Vec{X: 0.5, Y: 0.5}},
			"rotation":    {Value: float32(0)},
			"map":         {},
			"alphaMap":    {},
			"alphaTest":   {Value: float32(0)},
			"uvTransform": {Value: ms3.IdentityMat3()},
		}),
	}
}

func merge(sets ...shadermat.Uniforms) shadermat.Uniforms {
	dst := make(shadermat.Uniforms)
	for _, set := range sets {
		for name, holder := range set {
			dst[name] = holder
		}
	}
	return dst
}

func common() shadermat.Uniforms {
	return shadermat.Uniforms{
		"diffuse":     {Value: shadermat.ColorFromHex(0xffffff)},
		"opacity":     {Value: float32(1)},
		"map":         {},
		"uvTransform": {Value: ms3.IdentityMat3()},
		"alphaMap":    {},
		"alphaTest":   {Value: float32(0)},
	}
}

func specularMap() shadermat.Uniforms {
	return shadermat.Uniforms{"specularMap": {}}
}

func envMap() shadermat.Uniforms {
	return shadermat.Uniforms{
		"envMap":          {},
		"flipEnvMap":      {Value: float32(-1)},
		"reflectivity":    {Value: float32(1)},
		"refractionRatio": {Value: float32(0.98)},
	}
}

func emissive() shadermat.Uniforms {
	return shadermat.Uniforms{"emissiveMap": {}}
}

func normalMap() shadermat.Uniforms {
	return shadermat.Uniforms{
		"normalMap":   {},
		"normalScale": {Value: ms2.Vec{X: 1, Y: 1}},
	}
}

func displacement() shadermat.Uniforms {
	return shadermat.Uniforms{
		"displacementMap":   {},
		"displacementScale": {Value: float32(1)},
		"displacementBias":  {Value: float32(0)},
	}
}

func fog() shadermat.Uniforms {
	return shadermat.Uniforms{
		"fogDensity": {Value: float32(0.00025)},
		"fogNear":    {Value: float32(1)},
		"fogFar":     {Value: float32(2000)},
		"fogColor":   {Value: shadermat.ColorFromHex(0xffffff)},
	}
}

func lights() shadermat.Uniforms {
	return shadermat.Uniforms{
		"ambientLightColor": {Value: shadermat.Color{}},
		"directionalLights": {Value: []ms3.Vec{}},
	}
}
