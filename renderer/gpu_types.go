package renderer

import (
	"fmt"
	"structs"

	"honnef.co/go/curve"
	"honnef.co/go/quilt/gfx"
)

// GPU-visible instance and table records. Field order and size must match
// the vertex layout descriptors in desc.go; the upload paths verify the
// stride equality at runtime.

// RenderTaskAddress indexes a task's slot in the render task table.
type RenderTaskAddress uint16

// TransformPaletteID indexes a transform pair in the transform palette.
type TransformPaletteID uint32

// ZBufferID is the depth value assigned to a primitive.
type ZBufferID int32

// GpuCacheAddress is a cell address in the GPU cache texture.
type GpuCacheAddress struct {
	_ structs.HostLayout

	U uint16
	V uint16
}

// PrimitiveInstanceData is the packed per-primitive instance payload. The
// four integers are a shader-family specific encoding of addresses and
// flags.
type PrimitiveInstanceData struct {
	_ structs.HostLayout

	Data [4]int32
}

type ResolveInstanceData struct {
	_ structs.HostLayout

	Rect [4]float32
}

type BlurDirection int32

const (
	BlurHorizontal BlurDirection = iota
	BlurVertical
)

type BlurInstance struct {
	_ structs.HostLayout

	TaskAddress       RenderTaskAddress
	SourceTaskAddress RenderTaskAddress
	Direction         BlurDirection
}

type ScalingInstance struct {
	_ structs.HostLayout

	TargetRect  [4]float32
	SourceRect  [4]int32
	SourceLayer int32
}

type SvgFilterInstance struct {
	_ structs.HostLayout

	TaskAddress       RenderTaskAddress
	Input1TaskAddress RenderTaskAddress
	Input2TaskAddress RenderTaskAddress
	Kind              uint16
	InputCount        uint16
	GenericInt        uint16
	ExtraDataAddress  GpuCacheAddress
}

// VectorStencilInstance parameterizes one quadratic edge of a stencil
// draw. Straight edges place the control point on the segment so the
// curve evaluates to the line.
type VectorStencilInstance struct {
	_ structs.HostLayout

	FromPosition [2]float32
	CtrlPosition [2]float32
	ToPosition   [2]float32
	FromNormal   [2]float32
	CtrlNormal   [2]float32
	ToNormal     [2]float32
	PathID       uint16
	Pad          uint16
}

// VectorCoverInstance fills the pixels a stencil pass marked, copying
// coverage from the stencil area at StencilOrigin into TargetRect.
type VectorCoverInstance struct {
	_ structs.HostLayout

	TargetRect    [4]int32
	StencilOrigin [2]int32
	Subpixel      uint16
	Pad           uint16
}

type BorderInstance struct {
	_ structs.HostLayout

	TaskOrigin [2]float32
	LocalRect  [4]float32
	Color0     [4]float32
	Color1     [4]float32
	Flags      int32
	Widths     [2]float32
	Radius     [2]float32
	ClipParams [8]float32
}

type LineDecorationJob struct {
	_ structs.HostLayout

	TaskRect          [4]float32
	LocalSize         [2]float32
	WavyLineThickness float32
	Style             int32
	AxisSelect        float32
}

type GradientJob struct {
	_ structs.HostLayout

	TaskRect   [4]float32
	Stops      [4]float32
	Colors     [4][4]float32
	AxisSelect float32
	StartStop  [2]float32
}

// NewGradientJob fills a fast-path gradient job from up to four color
// stops. Shorter stop lists repeat their last stop so the interpolated
// color stays constant past it.
func NewGradientJob(taskRect [4]float32, axisSelect float32, startStop [2]float32, stops []gfx.ColorStop) GradientJob {
	job := GradientJob{
		TaskRect:   taskRect,
		AxisSelect: axisSelect,
		StartStop:  startStop,
	}
	if len(stops) == 0 || len(stops) > len(job.Stops) {
		panic(fmt.Sprintf("gradient job takes 1 to %d stops, got %d", len(job.Stops), len(stops)))
	}
	for i := range job.Stops {
		s := stops[min(i, len(stops)-1)]
		job.Stops[i] = s.Offset
		job.Colors[i] = s.Color.Premultiplied()
	}
	return job
}

// ClipMaskInstanceCommon carries the fields shared by all clip mask
// instances.
type ClipMaskInstanceCommon struct {
	_ structs.HostLayout

	SubRect          [4]float32
	TaskOrigin       [2]float32
	ScreenOrigin     [2]float32
	DevicePixelScale float32
	ClipTransformID  TransformPaletteID
	PrimTransformID  TransformPaletteID
}

type ClipRect struct {
	_ structs.HostLayout

	Rect [4]float32
	Mode float32
}

type ClipCorner struct {
	_ structs.HostLayout

	Rect         [4]float32
	OuterRadiusX float32
	OuterRadiusY float32
	InnerRadiusX float32
	InnerRadiusY float32
}

// ClipData parameterizes a rounded rectangle clip: the whole rect, its
// mode, and one rect/radius pair per corner.
type ClipData struct {
	_ structs.HostLayout

	Rect        ClipRect
	TopLeft     ClipCorner
	TopRight    ClipCorner
	BottomLeft  ClipCorner
	BottomRight ClipCorner
}

// ClipDataUniform builds clip data for a rounded rect whose four corners
// share a single radius.
func ClipDataUniform(size [2]float32, radius, mode float32) ClipData {
	corner := func(x, y float32) ClipCorner {
		return ClipCorner{
			Rect:         [4]float32{x, y, radius, radius},
			OuterRadiusX: radius,
			OuterRadiusY: radius,
		}
	}
	return ClipData{
		Rect: ClipRect{
			Rect: [4]float32{0, 0, size[0], size[1]},
			Mode: mode,
		},
		TopLeft:     corner(0, 0),
		TopRight:    corner(size[0]-radius, 0),
		BottomLeft:  corner(0, size[1]-radius),
		BottomRight: corner(size[0]-radius, size[1]-radius),
	}
}

type ClipMaskInstanceRect struct {
	_ structs.HostLayout

	Common   ClipMaskInstanceCommon
	LocalPos [2]float32
	ClipData ClipData
}

type BoxShadowStretchMode int32

const (
	StretchSimple BoxShadowStretchMode = iota
	StretchStretch
)

type ClipMaskInstanceBoxShadow struct {
	_ structs.HostLayout

	Common          ClipMaskInstanceCommon
	ResourceAddress GpuCacheAddress
	SrcRectSize     [2]float32
	ClipMode        int32
	StretchModeX    int32
	StretchModeY    int32
	DestRect        [4]float32
}

type ClipMaskInstanceImage struct {
	_ structs.HostLayout

	Common          ClipMaskInstanceCommon
	TileRect        [4]float32
	ResourceAddress GpuCacheAddress
	LocalRect       [4]float32
}

// TexelRect is a texture-space rectangle, uv0 the top left and uv1 the
// bottom right corner.
type TexelRect struct {
	_ structs.HostLayout

	UV0 [2]float32
	UV1 [2]float32
}

type CompositeInstance struct {
	_ structs.HostLayout

	Rect     [4]float32
	ClipRect [4]float32
	Color    [4]float32

	// aParams: z id, color space or uv kind, yuv format, yuv rescale
	ZID                float32
	ColorSpaceOrUVType float32
	YuvFormat          float32
	YuvRescale         float32

	UVRects       [3]TexelRect
	TextureLayers [3]float32
}

// NewCompositeInstance fills a solid-color composite instance. The UV
// rects cover the whole normalized texture and the YUV parameters are
// unused for solid tiles.
func NewCompositeInstance(rect, clipRect [4]float32, c gfx.Color, z ZBufferID) CompositeInstance {
	uv := TexelRect{UV0: [2]float32{0, 0}, UV1: [2]float32{1, 1}}
	return CompositeInstance{
		Rect:     rect,
		ClipRect: clipRect,
		Color:    c.Premultiplied(),
		ZID:      float32(z),
		UVRects:  [3]TexelRect{uv, uv, uv},
	}
}

type ClearInstance struct {
	_ structs.HostLayout

	Rect  [4]float32
	Color [4]float32
}

func NewClearInstance(rect [4]float32, c gfx.Color) ClearInstance {
	return ClearInstance{
		Rect:  rect,
		Color: c.Premultiplied(),
	}
}

// PrimitiveHeaderF is the float half of a primitive header, one slot per
// primitive instance in the headers texture.
type PrimitiveHeaderF struct {
	_ structs.HostLayout

	LocalRect     [4]float32
	LocalClipRect [4]float32
}

// PrimitiveHeaderI is the integer half of a primitive header.
type PrimitiveHeaderI struct {
	_ structs.HostLayout

	Z                   ZBufferID
	Unused              int32
	SpecificPrimAddress int32
	TransformID         TransformPaletteID
	UserData            [4]int32
}

// TransformData is one palette entry: a transform and its inverse, stored
// column major as two 4x4 matrices.
type TransformData struct {
	_ structs.HostLayout

	Transform    [16]float32
	InvTransform [16]float32
}

// TransformDataFromAffine promotes a 2D affine to a palette entry. If the
// affine is singular the inverse half is left zeroed, matching what the
// shaders expect for non-invertible transforms.
func TransformDataFromAffine(transform curve.Affine) TransformData {
	c := transform.Coefficients()
	td := TransformData{
		Transform: mat4FromCoefficients(c),
	}
	det := c[0]*c[3] - c[1]*c[2]
	if det != 0 {
		inv := [6]float64{
			c[3] / det,
			-c[1] / det,
			-c[2] / det,
			c[0] / det,
			(c[2]*c[5] - c[3]*c[4]) / det,
			(c[1]*c[4] - c[0]*c[5]) / det,
		}
		td.InvTransform = mat4FromCoefficients(inv)
	}
	return td
}

func mat4FromCoefficients(c [6]float64) [16]float32 {
	return [16]float32{
		float32(c[0]), float32(c[1]), 0, 0,
		float32(c[2]), float32(c[3]), 0, 0,
		0, 0, 1, 0,
		float32(c[4]), float32(c[5]), 0, 1,
	}
}

// RenderTaskData is one render task's slot in the tasks texture: the task's
// target rect followed by task specific parameters.
type RenderTaskData struct {
	_ structs.HostLayout

	Data [12]float32
}
