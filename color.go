package shadermat

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
)

// Color is a linear-agnostic RGB color uniform with components in [0,1].
// It is emitted to GLSL as a vec3.
type Color struct {
	R, G, B float32
}

// ColorFromHex converts a 0xRRGGBB value to a Color.
func ColorFromHex(hex uint32) Color {
	return Color{
		R: float32(hex>>16&0xff) / 255,
		G: float32(hex>>8&0xff) / 255,
		B: float32(hex&0xff) / 255,
	}
}

// ParseColor parses a "#rrggbb" or "0xrrggbb" color string.
func ParseColor(s string) (Color, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "#"), "0x")
	if len(digits) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want 6 hex digits", s)
	}
	hex, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return ColorFromHex(uint32(hex)), nil
}

// ColorFromRGBA converts any [color.Color] to a Color, dropping alpha.
func ColorFromRGBA(c color.Color) Color {
	if col, ok := c.(Color); ok {
		return col
	}
	r, g, b, _ := c.RGBA()
	return Color{R: float32(r) / 0xffff, G: float32(g) / 0xffff, B: float32(b) / 0xffff}
}

// RGBA implements [color.Color].
func (c Color) RGBA() (r, g, b, a uint32) {
	return unitToU16(c.R), unitToU16(c.G), unitToU16(c.B), 0xffff
}

// Hex returns the color as 0xRRGGBB, clamping out-of-range components.
func (c Color) Hex() uint32 {
	return uint32(unitToU8(c.R))<<16 | uint32(unitToU8(c.G))<<8 | uint32(unitToU8(c.B))
}

// Linear converts c from sRGB to linear space.
func (c Color) Linear() Color {
	return Color{R: srgbToLinear(c.R), G: srgbToLinear(c.G), B: srgbToLinear(c.B)}
}

// SRGB converts c from linear to sRGB space.
func (c Color) SRGB() Color {
	return Color{R: linearToSRGB(c.R), G: linearToSRGB(c.G), B: linearToSRGB(c.B)}
}

// Array returns the components in RGB order.
func (c Color) Array() [3]float32 { return [3]float32{c.R, c.G, c.B} }

// ColorFromHSV converts hue, saturation and value in [0,1] to a Color.
func ColorFromHSV(h, s, v float32) Color {
	r, g, b := hsvToRGB(h, s, v)
	return Color{R: r, G: g, B: b}
}

// HSV returns the hue, saturation and value of c, each in [0,1].
func (c Color) HSV() (h, s, v float32) {
	return rgbToHSV(clamp01(c.R), clamp01(c.G), clamp01(c.B))
}

// Lerp interpolates componentwise between c0 and c1.
func Lerp(c0, c1 Color, t float32) Color {
	return Color{
		R: ms1.Interp(c0.R, c1.R, t),
		G: ms1.Interp(c0.G, c1.G, t),
		B: ms1.Interp(c0.B, c1.B, t),
	}
}

// LerpHSV interpolates between c0 and c1 in HSV space along the shortest hue arc.
func LerpHSV(c0, c1 Color, t float32) Color {
	h0, s0, v0 := c0.HSV()
	h1, s1, v1 := c1.HSV()
	switch {
	case h1-h0 > 0.5:
		h0 += 1
	case h1-h0 < -0.5:
		h1 += 1
	}
	h := ms1.Interp(h0, h1, t)
	if h > 1 {
		h -= 1
	}
	return ColorFromHSV(h, ms1.Interp(s0, s1, t), ms1.Interp(v0, v1, t))
}

func hsvToRGB(h, s, v float32) (r, g, b float32) {
	var (
		c = s * v
		x = c * (1 - math.Abs(math.Mod(h*6, 2)-1))
		m = v - c
	)
	switch {
	case h <= 1.0/6:
		r, g, b = c, x, 0
	case h <= 2.0/6:
		r, g, b = x, c, 0
	case h <= 3.0/6:
		r, g, b = 0, c, x
	case h <= 4.0/6:
		r, g, b = 0, x, c
	case h <= 5.0/6:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}

func rgbToHSV(r, g, b float32) (h, s, v float32) {
	xmax := max(r, g, b)
	c := xmax - min(r, g, b)
	v = xmax
	switch {
	case c == 0:
	case v == r:
		h = (g - b) / (c * 6)
	case v == g:
		h = 1.0/3 + (b-r)/(c*6)
	default:
		h = 2.0/3 + (r-g)/(c*6)
	}
	if h < 0 {
		h += 1
	}
	if xmax > 0 {
		s = c / xmax
	}
	return h, s, v
}

func srgbToLinear(c float32) float32 {
	if c < 0.04045 {
		return c * 0.0773993808
	}
	return math.Pow(c*0.9478672986+0.0521327014, 2.4)
}

func linearToSRGB(c float32) float32 {
	if c < 0.0031308 {
		return c * 12.92
	}
	return 1.055*math.Pow(c, 0.41666) - 0.055
}

func clamp01(v float32) float32 {
	return math.Max(0, math.Min(1, v))
}

func unitToU16(v float32) uint32 { return uint32(math.Round(clamp01(v) * 0xffff)) }
func unitToU8(v float32) uint8   { return uint8(math.Round(clamp01(v) * 0xff)) }
