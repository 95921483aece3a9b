package shadermat

// Template describes how to derive a shader material from a source:
// which text to inject into the sources, which uniforms and defines to
// merge and which material to inherit previously applied templates from.
// Templates applied to a material are recorded on it so later derivations
// can replay them through [Template.Inherit].
type Template struct {
	// Material holds material properties assigned to the derived material.
	// Its "defines" entry is merged before Defines.
	Material Properties
	Defines  Defines
	// Uniforms holds raw uniform values or *Uniform holders.
	Uniforms map[string]any

	// Header is prepended to both stages, VertexHeader and FragmentHeader
	// to their stage only, after Header.
	Header         string
	VertexHeader   string
	FragmentHeader string

	Vertex   Patches
	Fragment Patches

	// VertexEnd and FragmentEnd are inserted before the closing brace of
	// the stage's main function.
	VertexEnd   string
	FragmentEnd string

	// Inherit replays the templates recorded on the material before this
	// template is applied and uses its defines and uniforms as a baseline.
	Inherit *ShaderMaterial
	// InheritName names the material to inherit from in a material file.
	// It is resolved to Inherit when the file is built.
	InheritName string

	// DeclareUniforms prepends a uniform declaration for each template
	// uniform of known GLSL type to the shared header.
	DeclareUniforms bool
}

// withoutUniforms returns a shallow copy of t with no uniforms. Replayed
// templates must not merge their uniforms a second time.
func (t *Template) withoutUniforms() *Template {
	cp := *t
	cp.Uniforms = nil
	return &cp
}

func (t *Template) stageHeader(stage Stage) string {
	if stage == StageVertex {
		return t.VertexHeader
	}
	return t.FragmentHeader
}

func (t *Template) stagePatches(stage Stage) Patches {
	if stage == StageVertex {
		return t.Vertex
	}
	return t.Fragment
}

func (t *Template) stageEnd(stage Stage) string {
	if stage == StageVertex {
		return t.VertexEnd
	}
	return t.FragmentEnd
}

// propertyDefines returns the defines held in the material property bag.
func (t *Template) propertyDefines() Defines {
	switch d := t.Material["defines"].(type) {
	case Defines:
		return d
	case map[string]any:
		return Defines(d)
	}
	return nil
}
