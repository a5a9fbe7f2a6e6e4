// Package color converts between the HomeKit hue/saturation/brightness model
// and the RGB triples the device accepts.
package color

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an immutable point in color space. HSV components are kept so that
// a hue written while saturation is zero survives until the next flush.
type Color struct {
	h float64 // degrees [0,360)
	s float64 // [0,1]
	v float64 // [0,1]
}

// FromRGB builds a Color from 8-bit channels.
func FromRGB(r, g, b uint8) Color {
	h, s, v := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}.Hsv()
	return Color{h: wrapHue(h), s: s, v: v}
}

// FromHSV builds a Color from hue in degrees and saturation/value in percent.
// Out-of-range inputs are clamped; hue wraps modulo 360.
func FromHSV(h, s, v float64) Color {
	return Color{
		h: wrapHue(h),
		s: clampPercent(s) / 100,
		v: clampPercent(v) / 100,
	}
}

// WithHue returns a copy with the hue replaced.
func (c Color) WithHue(h float64) Color {
	c.h = wrapHue(h)
	return c
}

// WithSaturation returns a copy with the saturation (percent) replaced.
func (c Color) WithSaturation(s float64) Color {
	c.s = clampPercent(s) / 100
	return c
}

// Hue in degrees, [0,360).
func (c Color) Hue() float64 {
	return c.h
}

// Saturation in percent.
func (c Color) Saturation() float64 {
	return c.s * 100
}

// Value (HSV brightness) in percent.
func (c Color) Value() float64 {
	return c.v * 100
}

// RGBBytes rounds each channel to the nearest integer in [0,255].
func (c Color) RGBBytes() (r, g, b uint8) {
	return colorful.Hsv(c.h, c.s, c.v).Clamped().RGB255()
}

// RGB returns the channels as ints, the shape the device expects on the wire.
func (c Color) RGB() []int {
	r, g, b := c.RGBBytes()
	return []int{int(r), int(g), int(b)}
}

// Hex renders the color as #rrggbb for logging.
func (c Color) Hex() string {
	return colorful.Hsv(c.h, c.s, c.v).Clamped().Hex()
}

func (c Color) String() string {
	r, g, b := c.RGBBytes()
	return fmt.Sprintf("rgb(%d,%d,%d)", r, g, b)
}

func wrapHue(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func clampPercent(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
