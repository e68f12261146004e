package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honnef.co/go/wgpu"
)

func TestAttributeSizes(t *testing.T) {
	assert.Equal(t, 4, F32.SizeInBytes())
	assert.Equal(t, 4, I32.SizeInBytes())
	assert.Equal(t, 2, U16.SizeInBytes())
	assert.Equal(t, 2, U16Norm.SizeInBytes())
	assert.Equal(t, 1, U8Norm.SizeInBytes())

	a := VertexAttribute{Name: "aTaskRect", Count: 4, Kind: F32}
	assert.Equal(t, 16, a.SizeInBytes())
}

func TestDescriptorStrides(t *testing.T) {
	desc := VertexDescriptor{
		VertexAttributes: []VertexAttribute{
			{Name: "aPosition", Count: 2, Kind: U8Norm},
		},
		InstanceAttributes: []VertexAttribute{
			{Name: "aData", Count: 4, Kind: I32},
		},
	}
	assert.Equal(t, 2, desc.Stride())
	assert.Equal(t, 16, desc.InstanceStride())
}

func TestBufferLayouts(t *testing.T) {
	desc := VertexDescriptor{
		VertexAttributes: []VertexAttribute{
			{Name: "aPosition", Count: 2, Kind: U8Norm},
		},
		InstanceAttributes: []VertexAttribute{
			{Name: "aRect", Count: 4, Kind: F32},
			{Name: "aColor", Count: 4, Kind: F32},
			{Name: "aFlags", Count: 1, Kind: I32},
		},
	}

	layouts := desc.BufferLayouts(1)
	require.Len(t, layouts, 2)

	vertex := layouts[0]
	assert.Equal(t, uint64(2), vertex.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, vertex.StepMode)
	require.Len(t, vertex.Attributes, 1)
	assert.Equal(t, wgpu.VertexFormatUnorm8x2, vertex.Attributes[0].Format)
	assert.Equal(t, uint32(0), vertex.Attributes[0].ShaderLocation)

	instance := layouts[1]
	assert.Equal(t, uint64(36), instance.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeInstance, instance.StepMode)
	require.Len(t, instance.Attributes, 3)
	assert.Equal(t, uint64(0), instance.Attributes[0].Offset)
	assert.Equal(t, uint64(16), instance.Attributes[1].Offset)
	assert.Equal(t, uint64(32), instance.Attributes[2].Offset)
	assert.Equal(t, wgpu.VertexFormatSint32, instance.Attributes[2].Format)
	// Locations continue after the vertex attributes.
	assert.Equal(t, uint32(1), instance.Attributes[0].ShaderLocation)
	assert.Equal(t, uint32(3), instance.Attributes[2].ShaderLocation)
}

func TestBufferLayoutsDivisorZero(t *testing.T) {
	desc := VertexDescriptor{
		VertexAttributes: []VertexAttribute{
			{Name: "aPosition", Count: 2, Kind: U8Norm},
		},
		InstanceAttributes: []VertexAttribute{
			{Name: "aData", Count: 4, Kind: I32},
		},
	}
	layouts := desc.BufferLayouts(0)
	require.Len(t, layouts, 2)
	assert.Equal(t, wgpu.VertexStepModeVertex, layouts[1].StepMode)
}

func TestBufferLayoutsFuseScalarPairs(t *testing.T) {
	desc := VertexDescriptor{
		VertexAttributes: []VertexAttribute{
			{Name: "aPosition", Count: 2, Kind: U8Norm},
		},
		InstanceAttributes: []VertexAttribute{
			{Name: "aRenderTaskAddress", Count: 1, Kind: U16},
			{Name: "aSourceTaskAddress", Count: 1, Kind: U16},
			{Name: "aDirection", Count: 1, Kind: I32},
		},
	}

	layouts := desc.BufferLayouts(1)
	require.Len(t, layouts, 2)

	// The two scalar task addresses come out as one Uint16x2; the stride
	// still covers all three declared attributes.
	instance := layouts[1]
	assert.Equal(t, uint64(8), instance.ArrayStride)
	require.Len(t, instance.Attributes, 2)
	assert.Equal(t, wgpu.VertexFormatUint16x2, instance.Attributes[0].Format)
	assert.Equal(t, uint64(0), instance.Attributes[0].Offset)
	assert.Equal(t, uint32(1), instance.Attributes[0].ShaderLocation)
	assert.Equal(t, wgpu.VertexFormatSint32, instance.Attributes[1].Format)
	assert.Equal(t, uint64(4), instance.Attributes[1].Offset)
	assert.Equal(t, uint32(2), instance.Attributes[1].ShaderLocation)
}

func TestBufferLayoutsRejectUnpairedScalar16(t *testing.T) {
	// A lone scalar U16 has nothing to fuse with.
	lone := VertexDescriptor{
		InstanceAttributes: []VertexAttribute{
			{Name: "aTaskAddress", Count: 1, Kind: U16},
		},
	}
	assert.Panics(t, func() {
		lone.BufferLayouts(1)
	})

	// Neither does one whose neighbor is of a different kind.
	mixed := VertexDescriptor{
		InstanceAttributes: []VertexAttribute{
			{Name: "aTaskAddress", Count: 1, Kind: U16},
			{Name: "aDirection", Count: 1, Kind: I32},
		},
	}
	assert.Panics(t, func() {
		mixed.BufferLayouts(1)
	})
}

func TestPoolSizeClass(t *testing.T) {
	assert.Equal(t, uint64(2), poolSizeClass(1, 1))
	assert.Equal(t, uint64(2), poolSizeClass(2, 1))
	assert.Equal(t, uint64(6), poolSizeClass(5, 1))
	assert.Equal(t, uint64(8), poolSizeClass(7, 1))
	assert.Equal(t, uint64(8), poolSizeClass(8, 1))
	assert.Equal(t, uint64(12), poolSizeClass(9, 1))
	assert.Equal(t, uint64(16), poolSizeClass(13, 1))
	assert.Equal(t, uint64(24), poolSizeClass(17, 1))

	// Classes are idempotent.
	for _, x := range []uint64{100, 1000, 4096, 70000} {
		c := poolSizeClass(x, 1)
		assert.Equal(t, c, poolSizeClass(c, 1))
	}
}
