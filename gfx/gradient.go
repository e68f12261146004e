package gfx

import "honnef.co/go/curve"

type ColorStop struct {
	Offset float32
	Color  Color
}

func (cs ColorStop) WithAlphaFactor(alpha float32) ColorStop {
	return ColorStop{
		Offset: cs.Offset,
		Color:  cs.Color.WithAlphaFactor(alpha),
	}
}

type Gradient interface {
	isGradient()
}

type LinearGradient struct {
	Start  curve.Point
	End    curve.Point
	Stops  []ColorStop
	Extend Extend
}

func (LinearGradient) isGradient() {}

type RadialGradient struct {
	Center  curve.Point
	RadiusX float32
	RadiusY float32
	Stops   []ColorStop
	Extend  Extend
}

func (RadialGradient) isGradient() {}

type Extend int

const (
	Pad Extend = iota
	Repeat
	Reflect
)
