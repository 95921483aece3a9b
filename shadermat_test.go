package shadermat_test

import (
	"errors"
	"image"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/shadermat"
	"github.com/soypat/shadermat/chunklib"
)

const lambertMainLine = "vec4 diffuseColor = vec4( diffuse, opacity );"

func TestExtendEmptyTemplateIsPreset(t *testing.T) {
	lib := chunklib.Default()
	for _, typeName := range shadermat.MaterialTypes() {
		ext := shadermat.NewExtender(lib)
		for _, tpl := range []*shadermat.Template{nil, {}} {
			m := ext.Extend(shadermat.FromType(typeName), tpl)
			if err := ext.Err(); err != nil {
				t.Fatalf("%s: %v", typeName, err)
			}
			wantVert, _ := lib.MapShader(typeName, shadermat.StageVertex)
			wantFrag, _ := lib.MapShader(typeName, shadermat.StageFragment)
			if m.VertexShader != wantVert {
				t.Errorf("%s: vertex source differs from chunk", typeName)
			}
			if m.FragmentShader != wantFrag {
				t.Errorf("%s: fragment source differs from chunk", typeName)
			}
			_, presetName, _ := shadermat.ChunkID(typeName)
			preset, _ := lib.Preset(presetName)
			if len(m.Uniforms) != len(preset) {
				t.Errorf("%s: want %d preset uniforms, got %d", typeName, len(preset), len(m.Uniforms))
			}
			if !m.Lights {
				t.Errorf("%s: lights should be enabled for built-in types", typeName)
			}
			if len(m.Defines) != 0 {
				t.Errorf("%s: unexpected defines %v", typeName, m.Defines)
			}
		}
	}
}

func TestExtendLambertInsertAfter(t *testing.T) {
	lib := chunklib.Default()
	frag, err := lib.MapShader("MeshLambertMaterial", shadermat.StageFragment)
	if err != nil {
		t.Fatal(err)
	} else if !strings.Contains(frag, lambertMainLine) {
		t.Fatal("lambert fragment chunk lacks main line")
	}
	ext := shadermat.NewExtender(lib)
	m := ext.Extend(shadermat.FromType("MeshLambertMaterial"), &shadermat.Template{
		Fragment: shadermat.Patches{shadermat.InsertAfter(lambertMainLine, "// injected")},
	})
	if !strings.Contains(m.FragmentShader, lambertMainLine+"\n// injected") {
		t.Errorf("injected line not found after main line:\n%s", m.FragmentShader)
	}
	if strings.Contains(m.VertexShader, "// injected") {
		t.Error("fragment patch leaked into vertex source")
	}
}

func TestExtendReplace(t *testing.T) {
	ext := shadermat.NewExtender(chunklib.Default())
	m := ext.Extend(shadermat.FromType("MeshLambertMaterial"), &shadermat.Template{
		Fragment: shadermat.Patches{shadermat.Replace(lambertMainLine, "vec4 diffuseColor = vec4( 1.0 );")},
	})
	if strings.Contains(m.FragmentShader, lambertMainLine) {
		t.Error("replaced marker still present")
	}
	if !strings.Contains(m.FragmentShader, "vec4 diffuseColor = vec4( 1.0 );") {
		t.Error("replacement not present")
	}
}

func TestExtendMapFlags(t *testing.T) {
	tex := shadermat.NewTexture("checker", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	var tests = []struct {
		uniforms   map[string]any
		wantDefine string
		wantValue  any
		wantAbsent []string
	}{
		{uniforms: map[string]any{"map": tex}, wantDefine: "USE_MAP", wantValue: true},
		{uniforms: map[string]any{"normalMap": tex, "alphaMap": nil}, wantDefine: "USE_NORMALMAP", wantValue: true, wantAbsent: []string{"USE_ALPHAMAP"}},
		{uniforms: map[string]any{"map": (*shadermat.Texture)(nil)}, wantAbsent: []string{"USE_MAP"}},
		{uniforms: map[string]any{"alphaTest": 0.5}, wantDefine: "ALPHATEST", wantValue: 0.5},
		{uniforms: map[string]any{"alphaTest": 0}, wantAbsent: []string{"ALPHATEST"}},
		{uniforms: map[string]any{"map": &shadermat.Uniform{Value: tex}}, wantDefine: "USE_MAP", wantValue: true},
	}
	for i, test := range tests {
		ext := shadermat.NewExtender(chunklib.Default())
		m := ext.Extend(shadermat.FromType("MeshBasicMaterial"), &shadermat.Template{Uniforms: test.uniforms})
		if test.wantDefine != "" {
			got, ok := m.Defines[test.wantDefine]
			if !ok {
				t.Errorf("test %d: define %s missing", i, test.wantDefine)
			} else if got != test.wantValue {
				t.Errorf("test %d: define %s want %v, got %v", i, test.wantDefine, test.wantValue, got)
			}
		}
		for _, absent := range test.wantAbsent {
			if _, ok := m.Defines[absent]; ok {
				t.Errorf("test %d: define %s should be absent", i, absent)
			}
		}
	}
}

func TestExtendFalseDefineAbsent(t *testing.T) {
	ext := shadermat.NewExtender(chunklib.Default())
	parent := ext.Extend(shadermat.FromType("MeshPhongMaterial"), &shadermat.Template{
		Defines: shadermat.Defines{"FLAT_SHADED": true, "RIM": 2},
	})
	m := ext.Extend(shadermat.FromShader(parent), &shadermat.Template{
		Material: shadermat.Properties{"defines": shadermat.Defines{"EXTRA": true}},
		Defines:  shadermat.Defines{"FLAT_SHADED": false, "EXTRA": false, "USE_MAP": false},
		Uniforms: map[string]any{"map": shadermat.NewTexture("t", nil)},
	})
	for _, name := range []string{"FLAT_SHADED", "EXTRA", "USE_MAP"} {
		if _, ok := m.Defines[name]; ok {
			t.Errorf("define %s set to false must be absent", name)
		}
	}
	if m.Defines["RIM"] != 2 {
		t.Errorf("inherited define RIM lost: %v", m.Defines)
	}
	program := string(m.AppendProgram(nil, shadermat.StageFragment, ""))
	if strings.Contains(program, "FLAT_SHADED") {
		t.Error("false define emitted in program")
	}
	if !strings.HasPrefix(program, "#define RIM 2\n") {
		t.Errorf("program should start with define, got %q", program[:min(len(program), 40)])
	}
}

func TestExtendInheritReplaysTemplates(t *testing.T) {
	ext := shadermat.NewExtender(chunklib.Default())
	first := ext.Extend(shadermat.FromType("MeshLambertMaterial"), &shadermat.Template{
		Fragment: shadermat.Patches{shadermat.InsertAfter(lambertMainLine, "// A")},
		Uniforms: map[string]any{"time": float32(2)},
		Defines:  shadermat.Defines{"WAVES": 3},
	})
	second := ext.Extend(shadermat.FromShader(first), &shadermat.Template{
		Fragment: shadermat.Patches{shadermat.InsertAfter("// A", "// B")},
	})
	if got := len(second.Templates()); got != 2 {
		t.Fatalf("want 2 recorded templates, got %d", got)
	}
	third := ext.Extend(shadermat.FromType("MeshLambertMaterial"), &shadermat.Template{
		Inherit:  second,
		Fragment: shadermat.Patches{shadermat.InsertAfter("// B", "// C")},
	})
	if err := ext.Err(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(third.FragmentShader, lambertMainLine+"\n// A\n// B\n// C") {
		t.Errorf("templates not replayed in order:\n%s", third.FragmentShader)
	}
	if strings.Count(third.FragmentShader, "// A") != 1 {
		t.Error("template replayed more than once")
	}
	if got := len(third.Templates()); got != 3 {
		t.Errorf("want 3 recorded templates, got %d", got)
	}
	if third.Defines["WAVES"] != 3 {
		t.Errorf("inherited defines not merged: %v", third.Defines)
	}
	v, ok := third.Uniforms.Value("time")
	if !ok || v != float32(2) {
		t.Errorf("inherited uniform time want 2, got %v", v)
	}
	if third.Uniforms["time"] == second.Uniforms["time"] {
		t.Error("inherited uniform holder aliased")
	}
	if _, ok := third.Uniforms["diffuse"]; !ok {
		t.Error("base preset uniforms lost on inherit")
	}
}

func TestExtendSharedUniform(t *testing.T) {
	ext := shadermat.NewExtender(chunklib.Default())
	shared := &shadermat.Uniform{Value: float32(0), Shared: true}
	m1 := ext.Extend(shadermat.FromType("MeshBasicMaterial"), &shadermat.Template{
		Uniforms: map[string]any{"time": shared},
	})
	m2 := ext.Extend(shadermat.FromShader(m1), nil)
	m3 := m2.Clone()
	if m1.Uniforms["time"] != shared || m2.Uniforms["time"] != shared || m3.Uniforms["time"] != shared {
		t.Fatal("shared uniform holder was cloned")
	}
	shared.Value = float32(1.5)
	if v, _ := m3.Uniforms.Value("time"); v != float32(1.5) {
		t.Error("shared update not observed")
	}
	if m1.Uniforms["diffuse"] == m2.Uniforms["diffuse"] {
		t.Error("unshared uniform holder aliased between materials")
	}
	m2.Uniforms.Set("opacity", float32(0.25))
	if v, _ := m1.Uniforms.Value("opacity"); v != float32(1) {
		t.Errorf("mutating derived material changed source: opacity=%v", v)
	}
}

func TestExtendFromMaterial(t *testing.T) {
	ext := shadermat.NewExtender(chunklib.Default())
	red := shadermat.ColorFromHex(0xff0000)
	m := ext.Extend(shadermat.FromMaterial(shadermat.Params{
		Type: "MeshBasicMaterial",
		Values: map[string]any{
			"diffuse":     red,
			"opacity":     0,
			"unrelated":   true,
			"transparent": true,
		},
	}), nil)
	if err := ext.Err(); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.Uniforms.Value("diffuse"); v != red {
		t.Errorf("instance diffuse not applied, got %v", v)
	}
	if v, _ := m.Uniforms.Value("opacity"); v != float32(1) {
		t.Errorf("falsy instance value must keep preset, got %v", v)
	}
	if _, ok := m.Uniforms["unrelated"]; ok {
		t.Error("non-uniform instance property added to uniforms")
	}
}

func TestExtendUnknownType(t *testing.T) {
	ext := shadermat.NewExtender(chunklib.Default())
	m := ext.Extend(shadermat.FromType("MeshToonMaterial"), &shadermat.Template{
		Fragment: shadermat.Patches{shadermat.InsertAfter("x", "y")},
	})
	if !errors.Is(ext.Err(), shadermat.ErrUnknownType) {
		t.Fatalf("want ErrUnknownType, got %v", ext.Err())
	}
	def := shadermat.NewShaderMaterial()
	if m.VertexShader != def.VertexShader || m.FragmentShader != def.FragmentShader {
		t.Error("unknown type should yield default material")
	}
}

func TestExtendHeadersAndProperties(t *testing.T) {
	ext := shadermat.NewExtender(chunklib.Default())
	m := ext.Extend(shadermat.FromType("MeshBasicMaterial"), &shadermat.Template{
		Material: shadermat.Properties{
			"transparent": true,
			"side":        "double",
			"lights":      false,
			"bogus":       1,
		},
		Header:          "uniform float amount;",
		VertexHeader:    "// vertex only",
		FragmentHeader:  "// fragment only",
		Uniforms:        map[string]any{"offset": ms2.Vec{X: 1}, "time": float32(0)},
		DeclareUniforms: true,
	})
	const decls = "uniform vec2 offset;\nuniform float time;\n"
	if !strings.HasPrefix(m.VertexShader, decls+"uniform float amount;\n// vertex only\n") {
		t.Errorf("unexpected vertex header:\n%s", m.VertexShader[:min(len(m.VertexShader), 120)])
	}
	if !strings.HasPrefix(m.FragmentShader, decls+"uniform float amount;\n// fragment only\n") {
		t.Errorf("unexpected fragment header:\n%s", m.FragmentShader[:min(len(m.FragmentShader), 120)])
	}
	if !m.Transparent || m.Side != shadermat.DoubleSide || m.Lights {
		t.Errorf("material properties not applied: %+v", m)
	}
	if !errors.Is(ext.Err(), shadermat.ErrUnknownProperty) {
		t.Errorf("want ErrUnknownProperty, got %v", ext.Err())
	}

	// Recorded templates hold the expanded header so replays do not declare twice.
	tpls := m.Templates()
	if len(tpls) != 1 || tpls[0].DeclareUniforms || !strings.HasPrefix(tpls[0].Header, decls) {
		t.Errorf("unexpected recorded template %+v", tpls)
	}
	child := ext.Extend(shadermat.FromType("MeshBasicMaterial"), &shadermat.Template{Inherit: m})
	if strings.Count(child.VertexShader, "uniform vec2 offset;") != 1 {
		t.Error("replayed header declared uniform more than once")
	}
}

func TestPatchShader(t *testing.T) {
	ext := shadermat.NewExtender(chunklib.Default())
	s := &shadermat.Shader{
		VertexShader:   "void main() {\n\tgl_Position = vec4(0.0);\n}",
		FragmentShader: "void main() {\n\tgl_FragColor = vec4(1.0);\n}",
	}
	ext.PatchShader(s, &shadermat.Template{
		Header:      "uniform float time;",
		Vertex:      shadermat.Patches{shadermat.Replace("vec4(0.0)", "vec4(time)")},
		FragmentEnd: "\tgl_FragColor.r = 0.0;",
		Uniforms:    map[string]any{"time": float32(1)},
		Defines:     shadermat.Defines{"IGNORED": true},
	})
	if s.VertexShader != "uniform float time;\nvoid main() {\n\tgl_Position = vec4(time);\n}" {
		t.Errorf("unexpected vertex:\n%s", s.VertexShader)
	}
	if s.FragmentShader != "uniform float time;\nvoid main() {\n\tgl_FragColor = vec4(1.0);\n\tgl_FragColor.r = 0.0;\n}" {
		t.Errorf("unexpected fragment:\n%s", s.FragmentShader)
	}
	if v, _ := s.Uniforms.Value("time"); v != float32(1) {
		t.Error("uniform not merged")
	}
}

func TestExtenderLogger(t *testing.T) {
	var sb strings.Builder
	ext := shadermat.NewExtender(shadermat.NewLibrary())
	ext.Logger = newTestLogger(&sb)
	ext.Extend(shadermat.FromType("Nope"), nil)
	if !strings.Contains(sb.String(), "no mapping for material type") {
		t.Errorf("warning not logged: %q", sb.String())
	}
	if len(ext.Errors()) != 1 {
		t.Errorf("want 1 error, got %v", ext.Errors())
	}
}

func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, nil))
}
