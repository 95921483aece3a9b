package shadermat

import (
	"image/color"
	"reflect"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// Uniform holds the value of a named shader uniform.
type Uniform struct {
	Value any
	// Shared marks the holder as intentionally shared between materials.
	// Shared uniforms are never cloned, so updating Value on one material
	// is observed by every material holding the same *Uniform.
	Shared bool
}

// UniformCloner is implemented by uniform values that need a deep copy
// when a uniform set is cloned.
type UniformCloner interface {
	CloneUniformValue() any
}

// Uniforms maps uniform names to their holders.
type Uniforms map[string]*Uniform

// CloneUniforms returns a copy of u where no unshared holder nor reference
// typed value is aliased with u. Textures and values implementing
// [UniformCloner] are cloned, slices are shallow-copied, vectors, matrices
// and colors are copied by value. Shared holders are kept as is.
func CloneUniforms(u Uniforms) Uniforms {
	if u == nil {
		return nil
	}
	dst := make(Uniforms, len(u))
	for name, holder := range u {
		if holder == nil {
			dst[name] = nil
			continue
		}
		if holder.Shared {
			dst[name] = holder
			continue
		}
		dst[name] = &Uniform{Value: CloneUniformValue(holder.Value)}
	}
	return dst
}

// CloneUniformValue returns a copy of v suitable for a new uniform holder.
func CloneUniformValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case UniformCloner:
		return val.CloneUniformValue()
	case bool, int, int32, uint32, float32, float64, string,
		ms2.Vec, ms3.Vec, ms3.Quat, ms2.Mat2, ms3.Mat3, ms3.Mat4, [4]float32, Color:
		return val
	case color.Color:
		return ColorFromRGBA(val)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && !rv.IsNil() {
		cp := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(cp, rv)
		return cp.Interface()
	}
	return v
}

// Set assigns value to the named uniform, creating its holder if needed.
func (u Uniforms) Set(name string, value any) {
	if holder := u[name]; holder != nil {
		holder.Value = value
		return
	}
	u[name] = &Uniform{Value: value}
}

// Value returns the value of the named uniform.
func (u Uniforms) Value(name string) (any, bool) {
	holder := u[name]
	if holder == nil {
		return nil, false
	}
	return holder.Value, true
}

// thresholdFlag derives a define from a numeric uniform when the
// uniform differs from the not-applicable sentinel.
type thresholdFlag struct {
	define string
	not    float64
}

var thresholdFlags = map[string]thresholdFlag{
	"alphaTest": {define: "ALPHATEST", not: 0},
}

var mapFlags = map[string]string{
	"map":             "USE_MAP",
	"aoMap":           "USE_AOMAP",
	"envMap":          "USE_ENVMAP",
	"bumpMap":         "USE_BUMPMAP",
	"normalMap":       "USE_NORMALMAP",
	"lightMap":        "USE_LIGHTMAP",
	"emissiveMap":     "USE_EMISSIVEMAP",
	"specularMap":     "USE_SPECULARMAP",
	"roughnessMap":    "USE_ROUGHNESSMAP",
	"metalnessMap":    "USE_METALNESSMAP",
	"alphaMap":        "USE_ALPHAMAP",
	"displacementMap": "USE_DISPLACEMENTMAP",
}

// MapFlag returns the define enabled by a truthy texture uniform of the given name.
func MapFlag(uniform string) (define string, ok bool) {
	define, ok = mapFlags[uniform]
	return define, ok
}

// MergeUniforms merges src into dst. A *Uniform entry replaces the holder
// in dst, any other entry is assigned to the value of the existing or newly
// created holder. When defines is non-nil texture and threshold flags are
// derived from the resolved values.
func MergeUniforms(dst Uniforms, defines Defines, src map[string]any) {
	for name, v := range src {
		var value any
		if holder, ok := v.(*Uniform); ok && holder != nil {
			dst[name] = holder
			value = holder.Value
		} else {
			dst.Set(name, v)
			value = v
		}
		if defines == nil {
			continue
		}
		if define, ok := mapFlags[name]; ok && truthy(value) {
			defines[define] = true
		}
		if flag, ok := thresholdFlags[name]; ok {
			f, isNum := toFloat(value)
			if !isNum || f != flag.not {
				defines[flag.define] = value
			}
		}
	}
}

// truthy reports whether v would enable a feature: nil, false, zero
// numbers, empty strings and nil pointers are not truthy.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case *Texture:
		return val != nil
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint32:
		return float64(val), true
	}
	return 0, false
}
