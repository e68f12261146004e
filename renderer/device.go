// Package renderer stages per-frame instance data into GPU vertex buffers
// and data textures.
//
// Each draw batch accumulates typed instance records in an InstanceList.
// Baking moves the records into chunked vertex buffers managed by an
// InstancePool, coalescing small batches into shared buffers that stay
// mapped for the duration of staging. A VertexContextHub owns one vertex
// context per shader family, all sharing a single quad vertex and index
// stream. Structured per-frame tables (primitive headers, transforms,
// render tasks) are mirrored into data textures by VertexDataTextures.
package renderer

import (
	"honnef.co/go/quilt/device"
)

// Device is the subset of device verbs the staging layer drives.
// *device.Device implements it.
type Device interface {
	BeginFrame() device.FrameID
	EndFrame()
	Stats() device.FrameStats

	CreateVAO(desc *device.VertexDescriptor, instanceDivisor uint32) device.VAOID
	CreateVAOWithNewInstances(desc *device.VertexDescriptor, base device.VAOID) device.VAOID
	DeleteVAO(id device.VAOID)
	BindVAO(id device.VAOID)
	UpdateVAOIndices(id device.VAOID, indices []uint16, hint device.VertexUsageHint)
	UpdateVAOMainVertices(id device.VAOID, data []byte, hint device.VertexUsageHint)
	SwitchInstanceBuffer(id device.VAOID, vbo device.VBOID, offset int)
	VAOInstanceVBO(id device.VAOID) device.VBOID
	VAOInstanceDivisor(id device.VAOID) uint32

	CreateVBO() device.VBOID
	DeleteVBO(id device.VBOID)
	BindVBO(id device.VBOID)
	UpdateVBOData(id device.VBOID, data []byte, hint device.VertexUsageHint)
	InitializeMappedVBO(id device.VBOID, size int, hint device.VertexUsageHint) []byte
	UnmapVBO(id device.VBOID)

	CreateTexture(format device.TexelFormat, width, height int) device.TextureID
	DeleteTexture(id device.TextureID)
	UploadTexture(id device.TextureID, rows int, data []byte)
	BindTexture(unit int, id device.TextureID)
	TextureSize(id device.TextureID) (width, height int)
	MaxTextureSize() int
}

var _ Device = (*device.Device)(nil)
