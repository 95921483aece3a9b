package shadermat

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Wrap is a texture coordinate wrapping mode.
type Wrap uint8

const (
	WrapClamp Wrap = iota
	WrapRepeat
	WrapMirror
)

// Texture is a sampler uniform value. Cloning a texture copies its
// sampling parameters and shares the underlying image.
type Texture struct {
	Name   string
	Image  image.Image
	WrapS  Wrap
	WrapT  Wrap
	FlipY  bool
	Mipmap bool
}

var _ UniformCloner = (*Texture)(nil) // Interface implementation compile-time check.

// NewTexture returns a texture sampling img with default parameters.
func NewTexture(name string, img image.Image) *Texture {
	return &Texture{Name: name, Image: img, FlipY: true, Mipmap: true}
}

// LoadTexture decodes the image at path into a texture named after the file.
// PNG, JPEG, GIF, BMP, TIFF and WebP images are supported.
func LoadTexture(path string) (*Texture, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	img, _, err := image.Decode(fp)
	if err != nil {
		return nil, fmt.Errorf("decoding texture %q: %w", path, err)
	}
	return NewTexture(filepath.Base(path), img), nil
}

// Clone returns a copy of t sharing the same image.
func (t *Texture) Clone() *Texture {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

// CloneUniformValue implements [UniformCloner].
func (t *Texture) CloneUniformValue() any { return t.Clone() }

// Size returns the texture dimensions in pixels. Textures without an image have zero size.
func (t *Texture) Size() (width, height int) {
	if t == nil || t.Image == nil {
		return 0, 0
	}
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}
