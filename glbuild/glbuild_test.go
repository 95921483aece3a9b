package glbuild_test

import (
	"testing"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/shadermat/glbuild"
)

func TestAppendFloat(t *testing.T) {
	var tests = []struct {
		v    float32
		neg  byte
		dec  byte
		want string
	}{
		{v: 1, neg: '-', dec: '.', want: "1.0"},
		{v: 0.5, neg: '-', dec: '.', want: "0.5"},
		{v: -2.25, neg: '-', dec: '.', want: "-2.25"},
		{v: -2.25, neg: 'n', dec: 'p', want: "n2p25"},
		{v: 30, neg: '-', dec: '.', want: "30.0"},
	}
	for _, test := range tests {
		got := string(glbuild.AppendFloat(nil, test.neg, test.dec, test.v))
		if got != test.want {
			t.Errorf("AppendFloat(%v): want %q, got %q", test.v, test.want, got)
		}
	}
	got := string(glbuild.AppendFloats([]byte("vec2("), ',', '-', '.', 1, 0.5))
	if got != "vec2(1.0,0.5" {
		t.Errorf("AppendFloats got %q", got)
	}
}

func TestAppendDefineValue(t *testing.T) {
	var tests = []struct {
		v    any
		want string
	}{
		{v: true, want: "#define NAME\n"},
		{v: false, want: ""},
		{v: nil, want: "#define NAME\n"},
		{v: 3, want: "#define NAME 3\n"},
		{v: uint32(2), want: "#define NAME 2u\n"},
		{v: float32(0.5), want: "#define NAME 0.5\n"},
		{v: 4.0, want: "#define NAME 4.0\n"},
		{v: "vec3(1.0)", want: "#define NAME vec3(1.0)\n"},
	}
	for _, test := range tests {
		got := string(glbuild.AppendDefineValue(nil, "NAME", test.v))
		if got != test.want {
			t.Errorf("%#v: want %q, got %q", test.v, test.want, got)
		}
	}
	if got := string(glbuild.AppendUndefineDecl(nil, "NAME")); got != "#undef NAME\n" {
		t.Errorf("undefine got %q", got)
	}
}

func TestTypename(t *testing.T) {
	var tests = []struct {
		v        any
		want     string
		arrayLen int
	}{
		{v: float32(1), want: "float", arrayLen: -1},
		{v: 1, want: "int", arrayLen: -1},
		{v: true, want: "bool", arrayLen: -1},
		{v: ms2.Vec{}, want: "vec2", arrayLen: -1},
		{v: ms3.Vec{}, want: "vec3", arrayLen: -1},
		{v: [4]float32{}, want: "vec4", arrayLen: -1},
		{v: ms3.Mat4{}, want: "mat4", arrayLen: -1},
		{v: []float32{1, 2, 3}, want: "float", arrayLen: 3},
		{v: []ms3.Vec{{}, {}}, want: "vec3", arrayLen: 2},
	}
	for _, test := range tests {
		got, n, err := glbuild.Typename(test.v)
		if err != nil {
			t.Errorf("%T: %v", test.v, err)
			continue
		}
		if got != test.want || n != test.arrayLen {
			t.Errorf("%T: want %s[%d], got %s[%d]", test.v, test.want, test.arrayLen, got, n)
		}
		decl := string(glbuild.AppendUniformDecl(nil, got, "u", n))
		wantDecl := "uniform " + test.want + " u;\n"
		if n >= 0 {
			wantDecl = "uniform " + test.want + " u[" + string(rune('0'+n)) + "];\n"
		}
		if decl != wantDecl {
			t.Errorf("%T: want declaration %q, got %q", test.v, wantDecl, decl)
		}
	}
	for _, bad := range []any{nil, []float32{}, struct{}{}, "str"} {
		if _, _, err := glbuild.Typename(bad); err == nil {
			t.Errorf("%#v: expected error", bad)
		}
	}
}
