// Package glcompile compiles shader materials into OpenGL programs.
//
// Material sources use the WebGL1 dialect of the chunk library
// (attribute, varying, texture2D and gl_FragColor). A prelude mapping that
// dialect onto GLSL 3.30 core and declaring the built-in camera and object
// uniforms is inserted after the version directive of each stage.
package glcompile

import (
	"strconv"

	"github.com/soypat/shadermat"
	"github.com/soypat/shadermat/glbuild"
)

// Config controls how stage sources are assembled.
type Config struct {
	// Version is the version directive. Defaults to [glbuild.VersionStr].
	Version string
	// NumDirLights sets NUM_DIR_LIGHTS for materials with lights enabled.
	NumDirLights int
}

const vertexPrelude = `#define attribute in
#define varying out
#define texture2D texture
uniform mat4 modelMatrix;
uniform mat4 modelViewMatrix;
uniform mat4 projectionMatrix;
uniform mat4 viewMatrix;
uniform mat3 normalMatrix;
uniform vec3 cameraPosition;
in vec3 position;
in vec3 normal;
in vec2 uv;
#ifdef USE_COLOR
	in vec3 color;
#endif
`

const fragmentPrelude = `#define varying in
#define texture2D texture
#define textureCube texture
out vec4 pc_fragColor;
#define gl_FragColor pc_fragColor
uniform mat4 viewMatrix;
uniform vec3 cameraPosition;
`

// AppendStage appends the complete source of a stage of m to dst: the
// version directive, the stage prelude, the material defines and the
// material source. The result is not NUL terminated.
func (cfg Config) AppendStage(dst []byte, m *shadermat.ShaderMaterial, stage shadermat.Stage) []byte {
	version := cfg.Version
	if version == "" {
		version = glbuild.VersionStr
	}
	dst = append(dst, version...)
	if version[len(version)-1] != '\n' {
		dst = append(dst, '\n')
	}
	if stage == shadermat.StageVertex {
		dst = append(dst, vertexPrelude...)
	} else {
		dst = append(dst, fragmentPrelude...)
	}
	if m.Lights {
		dst = glbuild.AppendDefineDecl(dst, "NUM_DIR_LIGHTS", strconv.Itoa(cfg.NumDirLights))
	}
	if m.Fog {
		dst = glbuild.AppendDefineDecl(dst, "USE_FOG", "")
	}
	return m.AppendProgram(dst, stage, "")
}
