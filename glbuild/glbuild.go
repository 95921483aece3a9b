// Package glbuild appends GLSL declarations and directives to byte buffers.
package glbuild

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/soypat/geometry/md2"
	"github.com/soypat/geometry/md3"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

const VersionStr = "#version 330\n"

func AppendDefineDecl(b []byte, aliasToDefine, aliasReplace string) []byte {
	b = append(b, "#define "...)
	b = append(b, aliasToDefine...)
	if aliasReplace != "" {
		b = append(b, ' ')
		b = append(b, aliasReplace...)
	}
	b = append(b, '\n')
	return b
}

func AppendUndefineDecl(b []byte, aliasToUndefine string) []byte {
	b = append(b, "#undef "...)
	b = append(b, aliasToUndefine...)
	b = append(b, '\n')
	return b
}

// AppendDefineValue appends a #define directive for name with value v.
// A true value defines a bare name, a false value appends nothing.
// Numbers are formatted as GLSL literals; floats always carry a decimal point.
func AppendDefineValue(b []byte, name string, v any) []byte {
	switch val := v.(type) {
	case nil:
		return AppendDefineDecl(b, name, "")
	case bool:
		if !val {
			return b
		}
		return AppendDefineDecl(b, name, "")
	case string:
		return AppendDefineDecl(b, name, val)
	case int:
		return AppendDefineDecl(b, name, strconv.Itoa(val))
	case int32:
		return AppendDefineDecl(b, name, strconv.FormatInt(int64(val), 10))
	case int64:
		return AppendDefineDecl(b, name, strconv.FormatInt(val, 10))
	case uint32:
		return AppendDefineDecl(b, name, strconv.FormatUint(uint64(val), 10)+"u")
	case float32:
		return AppendDefineDecl(b, name, string(AppendFloat(nil, '-', '.', val)))
	case float64:
		return AppendDefineDecl(b, name, string(AppendFloat(nil, '-', '.', float32(val))))
	}
	return AppendDefineDecl(b, name, fmt.Sprint(v))
}

// AppendUniformDecl appends a uniform declaration. arrayLen < 0 declares a non-array uniform.
//
//	uniform <typename> <name>[<arrayLen>];
func AppendUniformDecl(b []byte, typename, name string, arrayLen int) []byte {
	b = append(b, "uniform "...)
	b = append(b, typename...)
	b = append(b, ' ')
	b = append(b, name...)
	if arrayLen >= 0 {
		b = append(b, '[')
		b = strconv.AppendInt(b, int64(arrayLen), 10)
		b = append(b, ']')
	}
	b = append(b, ";\n"...)
	return b
}

// Typename returns the GLSL type of a uniform value. Slices map to arrays of
// their element type with arrayLen set to the slice length, otherwise arrayLen is -1.
func Typename(v any) (typename string, arrayLen int, err error) {
	tp := reflect.TypeOf(v)
	if tp != nil && tp.Kind() == reflect.Slice {
		n := reflect.ValueOf(v).Len()
		if n == 0 {
			return "", 0, errors.New("zero-length uniform array")
		}
		typename, err = glTypename(tp.Elem())
		return typename, n, err
	}
	typename, err = glTypename(tp)
	return typename, -1, err
}

func glTypename(tp reflect.Type) (typename string, err error) {
	switch tp {
	case reflect.TypeOf(md2.Vec{}):
		typename = "dvec2"
	case reflect.TypeOf(md3.Vec{}):
		typename = "dvec3"
	case reflect.TypeOf(float64(0)), reflect.TypeOf(float32(0)):
		typename = "float"
	case reflect.TypeOf(false):
		typename = "bool"
	case reflect.TypeOf(ms2.Vec{}):
		typename = "vec2"
	case reflect.TypeOf(ms3.Vec{}), reflect.TypeOf([3]float32{}):
		typename = "vec3"
	case reflect.TypeOf([4]float32{}), reflect.TypeOf([2]ms2.Vec{}), reflect.TypeOf(ms3.Quat{}):
		typename = "vec4"
	case reflect.TypeOf(ms2.Mat2{}):
		typename = "mat2"
	case reflect.TypeOf(ms3.Mat3{}):
		typename = "mat3"
	case reflect.TypeOf(ms3.Mat4{}):
		typename = "mat4"
	case reflect.TypeOf(uint32(0)):
		typename = "uint"
	case reflect.TypeOf(int32(0)), reflect.TypeOf(int(0)):
		typename = "int"
	case reflect.TypeOf([2]uint32{}):
		typename = "uvec2"
	case reflect.TypeOf([2]int32{}):
		typename = "ivec2"
	case reflect.TypeOf([3]uint32{}):
		typename = "uvec3"
	case reflect.TypeOf([3]int32{}):
		typename = "ivec3"
	case nil:
		err = errors.New("nil element type")
	default:
		err = fmt.Errorf("equivalent type not implemented for %s", tp.String())
	}
	return typename, err
}

const decimalDigits = 9

// AppendFloat appends v as a GLSL float literal. Trailing zeroes are trimmed
// but at least one decimal digit is kept so the literal is not parsed as an int.
func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if decimal != '.' && idx >= 0 {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	// Finally trim zeroes.
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+start+1 && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

func AppendFloats(b []byte, sep, neg, decimal byte, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloat(b, neg, decimal, v)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
		}
	}
	return b
}
