package shadermat

import (
	"strings"
)

const (
	prefixReplace = '@'
	prefixBefore  = '?'
)

// Patch is a single textual substitution applied to GLSL source.
//
// The first byte of Key selects the insertion mode:
//   - '@': the first occurrence of the rest of Key is replaced by Value.
//   - '?': Value is inserted on its own line before the first occurrence.
//   - otherwise Value is inserted on its own line after the first occurrence of Key.
//
// When Chunk is non-nil Key names a registered chunk instead. The chunk's
// source is patched recursively with Chunk and substituted for the
// first "#include <Key>" directive.
type Patch struct {
	Key   string
	Value string
	Chunk Patches
}

// Patches is an ordered list of patches. Patches are applied in slice order.
type Patches []Patch

// Replace returns a patch replacing the first occurrence of marker with value.
func Replace(marker, value string) Patch {
	return Patch{Key: string(prefixReplace) + marker, Value: value}
}

// InsertBefore returns a patch inserting value on the line before the first occurrence of marker.
func InsertBefore(marker, value string) Patch {
	return Patch{Key: string(prefixBefore) + marker, Value: value}
}

// InsertAfter returns a patch inserting value on the line after the first occurrence of marker.
func InsertAfter(marker, value string) Patch {
	return Patch{Key: marker, Value: value}
}

// PatchChunk returns a patch that expands the #include of chunk name with
// the chunk's registered source after applying patches to it.
func PatchChunk(name string, patches ...Patch) Patch {
	if patches == nil {
		patches = Patches{}
	}
	return Patch{Key: name, Chunk: patches}
}

// IsChunk reports whether the patch expands a named chunk.
func (p Patch) IsChunk() bool { return p.Chunk != nil }

// apply performs a string patch on src. Chunk patches are handled by the Extender.
func (p Patch) apply(src string) string {
	if p.Key == "" {
		return src
	}
	switch p.Key[0] {
	case prefixReplace:
		return strings.Replace(src, p.Key[1:], p.Value, 1)
	case prefixBefore:
		line := p.Key[1:]
		return strings.Replace(src, line, p.Value+"\n"+line, 1)
	default:
		return strings.Replace(src, p.Key, p.Key+"\n"+p.Value, 1)
	}
}

// includeDirective returns the directive a chunk patch substitutes.
func includeDirective(chunk string) string {
	return "#include <" + chunk + ">"
}

// ApplyPatches applies patches to src in order and returns the result.
// A chunk patch whose chunk is not registered is reported and skipped.
// A marker that is not present in src leaves src unchanged.
func (ext *Extender) ApplyPatches(src string, patches Patches) string {
	for _, p := range patches {
		if !p.IsChunk() {
			src = p.apply(src)
			continue
		}
		chunk, ok := ext.library().Chunk(p.Key)
		if !ok {
			ext.errorf(ErrMissingChunk, "%q", p.Key)
			continue
		}
		src = strings.Replace(src, includeDirective(p.Key), ext.ApplyPatches(chunk, p.Chunk), 1)
	}
	return src
}

// injectEnd inserts snippet on its own line before the closing brace of the
// main function. When no main function is found the last closing brace in
// src is used instead. Sources with no closing brace are returned unchanged.
func injectEnd(src, snippet string) string {
	if snippet == "" {
		return src
	}
	idx := mainClosingBrace(src)
	if idx < 0 {
		idx = strings.LastIndexByte(src, '}')
		if idx < 0 {
			return src
		}
	}
	return src[:idx] + snippet + "\n" + src[idx:]
}

// mainClosingBrace returns the index of the brace closing "void main()",
// matched by brace depth. Braces in comments are not skipped.
func mainClosingBrace(src string) int {
	start := strings.Index(src, "void main(")
	if start < 0 {
		return -1
	}
	open := strings.IndexByte(src[start:], '{')
	if open < 0 {
		return -1
	}
	depth := 0
	for i := start + open; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
