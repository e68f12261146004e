// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gfx

import (
	"honnef.co/go/color"
)

// Color is a non-premultiplied RGBA color in the device color space.
// Components are in [0, 1].
type Color struct {
	R, G, B, A float32
}

func RGB(r, g, b float32) Color {
	return Color{r, g, b, 1}
}

func RGBA(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

var (
	Transparent = Color{0, 0, 0, 0}
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
)

func (c Color) WithAlphaFactor(alpha float32) Color {
	c.A *= alpha
	return c
}

// Premultiplied returns the color with the alpha multiplied into the color
// channels, in the layout instance data and uniforms expect.
func (c Color) Premultiplied() [4]float32 {
	return [4]float32{
		c.R * c.A,
		c.G * c.A,
		c.B * c.A,
		c.A,
	}
}

// PremulUint32 packs the premultiplied color into 8-bit channels, R in the
// least significant byte.
func (c Color) PremulUint32() uint32 {
	pack := func(v float32) uint32 {
		switch {
		case v <= 0:
			return 0
		case v >= 1:
			return 255
		default:
			return uint32(v*255 + 0.5)
		}
	}
	p := c.Premultiplied()
	return pack(p[0]) | pack(p[1])<<8 | pack(p[2])<<16 | pack(p[3])<<24
}

// FromManaged converts a color-managed color to the device color space.
func FromManaged(c *color.Color) Color {
	cc := c.Convert(color.LinearSRGB)
	return Color{
		R: float32(cc.Values[0]),
		G: float32(cc.Values[1]),
		B: float32(cc.Values[2]),
		A: float32(cc.Alpha),
	}
}

// Premul32 premultiplies a color-managed color, converting to the device
// color space first.
func Premul32(c *color.Color) [4]float32 {
	return FromManaged(c).Premultiplied()
}
