package device

import (
	"fmt"

	"honnef.co/go/wgpu"
)

// VertexAttributeKind is the component type of a vertex attribute.
type VertexAttributeKind int

const (
	F32 VertexAttributeKind = iota
	U8Norm
	U16Norm
	I32
	U16
)

func (kind VertexAttributeKind) String() string {
	switch kind {
	case F32:
		return "F32"
	case U8Norm:
		return "U8Norm"
	case U16Norm:
		return "U16Norm"
	case I32:
		return "I32"
	case U16:
		return "U16"
	default:
		return fmt.Sprintf("VertexAttributeKind(%d)", int(kind))
	}
}

// SizeInBytes returns the size of a single component.
func (kind VertexAttributeKind) SizeInBytes() int {
	switch kind {
	case F32, I32:
		return 4
	case U16Norm, U16:
		return 2
	case U8Norm:
		return 1
	default:
		panic(fmt.Sprintf("unhandled vertex attribute kind %s", kind))
	}
}

// format returns the wgpu vertex format for count components of this kind.
// Not every combination exists: WebGPU has no scalar 8- or 16-bit formats.
func (kind VertexAttributeKind) format(count int) (wgpu.VertexFormat, bool) {
	switch kind {
	case F32:
		switch count {
		case 1:
			return wgpu.VertexFormatFloat32, true
		case 2:
			return wgpu.VertexFormatFloat32x2, true
		case 3:
			return wgpu.VertexFormatFloat32x3, true
		case 4:
			return wgpu.VertexFormatFloat32x4, true
		}
	case I32:
		switch count {
		case 1:
			return wgpu.VertexFormatSint32, true
		case 2:
			return wgpu.VertexFormatSint32x2, true
		case 3:
			return wgpu.VertexFormatSint32x3, true
		case 4:
			return wgpu.VertexFormatSint32x4, true
		}
	case U16:
		switch count {
		case 2:
			return wgpu.VertexFormatUint16x2, true
		case 4:
			return wgpu.VertexFormatUint16x4, true
		}
	case U16Norm:
		switch count {
		case 2:
			return wgpu.VertexFormatUnorm16x2, true
		case 4:
			return wgpu.VertexFormatUnorm16x4, true
		}
	case U8Norm:
		switch count {
		case 2:
			return wgpu.VertexFormatUnorm8x2, true
		case 4:
			return wgpu.VertexFormatUnorm8x4, true
		}
	}
	return 0, false
}

type VertexAttribute struct {
	Name  string
	Count int
	Kind  VertexAttributeKind
}

func (a VertexAttribute) SizeInBytes() int {
	return a.Count * a.Kind.SizeInBytes()
}

// VertexDescriptor describes the layout of a vertex array: the per-vertex
// attributes stepped once per vertex, and the per-instance attributes stepped
// once per instance (or per vertex, when the instance divisor is zero).
type VertexDescriptor struct {
	VertexAttributes   []VertexAttribute
	InstanceAttributes []VertexAttribute
}

func attributeStride(attrs []VertexAttribute) int {
	var stride int
	for _, a := range attrs {
		stride += a.SizeInBytes()
	}
	return stride
}

// Stride returns the byte stride of the per-vertex attributes.
func (vd *VertexDescriptor) Stride() int {
	return attributeStride(vd.VertexAttributes)
}

// InstanceStride returns the byte stride of the per-instance attributes.
func (vd *VertexDescriptor) InstanceStride() int {
	return attributeStride(vd.InstanceAttributes)
}

// BufferLayouts returns the wgpu vertex buffer layouts matching the
// descriptor, for embedders that build render pipelines over VAOs created
// from it. Slot 0 carries the vertex attributes, slot 1 the instance
// attributes; shader locations number vertex attributes first. With an
// instance divisor of zero the instance slot steps per vertex.
//
// WebGPU has no scalar 8- or 16-bit vertex formats. Two adjacent scalar
// attributes of the same such kind fuse into one two-component attribute,
// keeping their offsets and the stride; the shader declares a single
// two-component input in their place.
//
// Panics when an attribute has no wgpu representation even after fusing.
func (vd *VertexDescriptor) BufferLayouts(instanceDivisor uint32) []wgpu.VertexBufferLayout {
	instanceStep := wgpu.VertexStepModeInstance
	if instanceDivisor == 0 {
		instanceStep = wgpu.VertexStepModeVertex
	}
	layouts := []wgpu.VertexBufferLayout{
		bufferLayout(vd.VertexAttributes, wgpu.VertexStepModeVertex, 0),
	}
	if len(vd.InstanceAttributes) > 0 {
		// Locations continue after the emitted vertex attributes, which may
		// be fewer than the declared ones when pairs fused.
		firstLocation := uint32(len(layouts[0].Attributes))
		layouts = append(layouts, bufferLayout(vd.InstanceAttributes, instanceStep, firstLocation))
	}
	return layouts
}

func bufferLayout(attrs []VertexAttribute, step wgpu.VertexStepMode, firstLocation uint32) wgpu.VertexBufferLayout {
	layout := wgpu.VertexBufferLayout{
		ArrayStride: uint64(attributeStride(attrs)),
		StepMode:    step,
	}
	var offset uint64
	location := firstLocation
	for i := 0; i < len(attrs); i++ {
		a := attrs[i]
		count := a.Count
		// A scalar without a format of its own fuses with a same-kind
		// scalar neighbor.
		if _, ok := a.Kind.format(count); !ok && count == 1 && i+1 < len(attrs) &&
			attrs[i+1].Kind == a.Kind && attrs[i+1].Count == 1 {
			count = 2
			i++
		}
		format, ok := a.Kind.format(count)
		if !ok {
			panic(fmt.Sprintf("attribute %s: no wgpu vertex format for %dx%s", a.Name, a.Count, a.Kind))
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         format,
			Offset:         offset,
			ShaderLocation: location,
		})
		offset += uint64(count * a.Kind.SizeInBytes())
		location++
	}
	return layout
}

// VertexUsageHint mirrors the GL usage hints uploads are tagged with. wgpu
// has no equivalent; the hint still routes buffers into distinct recycling
// pools so stream buffers do not churn the static ones.
type VertexUsageHint int

const (
	Static VertexUsageHint = iota
	Dynamic
	Stream
)
