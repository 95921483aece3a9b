package shadermat

import "sort"

// Defines maps preprocessor names to their values. A true value emits a
// bare "#define NAME", other values emit "#define NAME value".
// A define set to false is removed when a material is finalized since the
// preprocessor only tests for presence.
type Defines map[string]any

// Merge copies every entry of src into d, overwriting existing entries.
func (d Defines) Merge(src Defines) {
	for name, v := range src {
		d[name] = v
	}
}

// Prune deletes every define whose value is exactly false.
func (d Defines) Prune() {
	for name, v := range d {
		if b, ok := v.(bool); ok && !b {
			delete(d, name)
		}
	}
}

// Clone returns a shallow copy of d.
func (d Defines) Clone() Defines {
	if d == nil {
		return nil
	}
	dst := make(Defines, len(d))
	dst.Merge(d)
	return dst
}

// Names returns the define names in sorted order.
func (d Defines) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
