package renderer

import (
	"fmt"
	"unsafe"

	"golang.org/x/exp/constraints"
	"honnef.co/go/quilt"
	"honnef.co/go/quilt/device"
	"honnef.co/go/quilt/mem"
	"honnef.co/go/safeish"
)

// MaxVertexTextureWidth is the fixed width, in texels, of the data textures
// that vertex shaders index.
const MaxVertexTextureWidth = 1024

// VertexTextureExtraRows is how many rows of slack a data texture keeps
// before shrinking.
const VertexTextureExtraRows = 10

// TextureSampler names the texture units shaders sample from. The values
// are the unit numbers the shader sources are written against.
type TextureSampler int

const (
	SamplerColor0            TextureSampler = 0
	SamplerColor1            TextureSampler = 1
	SamplerColor2            TextureSampler = 2
	SamplerGpuCache          TextureSampler = 3
	SamplerTransformPalette  TextureSampler = 4
	SamplerRenderTasks       TextureSampler = 5
	SamplerDither            TextureSampler = 6
	SamplerPrimitiveHeadersF TextureSampler = 7
	SamplerPrimitiveHeadersI TextureSampler = 8
	SamplerClipMask          TextureSampler = 9
)

// VertexDataTexture mirrors a CPU-side table of fixed size records into a
// texture the vertex stage samples by address. Records must be a whole
// number of texels wide.
type VertexDataTexture[T any] struct {
	texture device.TextureID
	height  int
	format  device.TexelFormat
}

func NewVertexDataTexture[T any](format device.TexelFormat) VertexDataTexture[T] {
	return VertexDataTexture[T]{format: format}
}

// Texture returns the backing texture. Panics before the first Update.
func (t *VertexDataTexture[T]) Texture() device.TextureID {
	if t.texture == 0 {
		panic("vertex data texture used before its first update")
	}
	return t.texture
}

// SizeInBytes estimates the GPU memory consumed by the texture.
func (t *VertexDataTexture[T]) SizeInBytes() int {
	return t.height * MaxVertexTextureWidth * device.BytesPerTexel
}

// Update re-uploads data in full, growing or shrinking the texture as
// needed. The record count is padded up to a whole number of rows; the
// padding texels are zeroed and shaders must not read them. The padded
// copy is staged through arena scratch and does not outlive the call.
func (t *VertexDataTexture[T]) Update(dev Device, arena *mem.Arena, data []T) {
	elemSize := int(unsafe.Sizeof(*new(T)))
	if elemSize%device.BytesPerTexel != 0 {
		panic(fmt.Sprintf("record size %d is not a whole number of texels", elemSize))
	}
	texelsPerItem := elemSize / device.BytesPerTexel
	itemsPerRow := MaxVertexTextureWidth / texelsPerItem
	if itemsPerRow == 0 {
		panic(fmt.Sprintf("record size %d exceeds one texture row", elemSize))
	}

	// Always end up with a texture, even without data, so that sampler
	// binding never has to special-case an empty table.
	count := len(data)
	if count == 0 {
		if t.texture != 0 {
			return
		}
		count = itemsPerRow
	} else {
		count = nextMultipleOf(count, itemsPerRow)
	}
	neededHeight := count / itemsPerRow

	// These textures are generally very small, usually one row each, so
	// re-uploading them whole every frame beats tracking incremental
	// updates. Size tightly, and shrink once the waste would exceed
	// VertexTextureExtraRows rows.
	if neededHeight > t.height || neededHeight+VertexTextureExtraRows < t.height {
		if t.texture != 0 {
			dev.DeleteTexture(t.texture)
		}
		// Height two minimum; one-row textures hit driver bugs.
		height := max(neededHeight, 2)
		quilt.Logger().Debug("resizing vertex data texture", "format", t.format, "rows", height)
		t.texture = dev.CreateTexture(t.format, MaxVertexTextureWidth, height)
		t.height = height
	}

	// The arena hands back zeroed memory, which is what the padding
	// texels need.
	need := neededHeight * MaxVertexTextureWidth * device.BytesPerTexel
	scratch := mem.NewSlice[[]byte](arena, need, need)
	copy(scratch, safeish.SliceCast[[]byte](data))
	dev.UploadTexture(t.texture, neededHeight, scratch)
}

func (t *VertexDataTexture[T]) Deinit(dev Device) {
	if t.texture != 0 {
		dev.DeleteTexture(t.texture)
		t.texture = 0
		t.height = 0
	}
}

// VertexDataTextures drives the four per-frame tables every shader family
// reads: the two primitive header halves, the transform palette, and the
// render task table.
type VertexDataTextures struct {
	primHeaderF VertexDataTexture[PrimitiveHeaderF]
	primHeaderI VertexDataTexture[PrimitiveHeaderI]
	transforms  VertexDataTexture[TransformData]
	renderTasks VertexDataTexture[RenderTaskData]
}

func NewVertexDataTextures() *VertexDataTextures {
	return &VertexDataTextures{
		primHeaderF: NewVertexDataTexture[PrimitiveHeaderF](device.RGBAF32),
		primHeaderI: NewVertexDataTexture[PrimitiveHeaderI](device.RGBAI32),
		transforms:  NewVertexDataTexture[TransformData](device.RGBAF32),
		renderTasks: NewVertexDataTexture[RenderTaskData](device.RGBAF32),
	}
}

// Update uploads a frame's tables and binds all four textures to their
// sampler units. arena backs the padded row copies.
func (vt *VertexDataTextures) Update(dev Device, arena *mem.Arena, frame *Frame) {
	vt.primHeaderF.Update(dev, arena, frame.PrimHeadersF)
	vt.primHeaderI.Update(dev, arena, frame.PrimHeadersI)
	vt.transforms.Update(dev, arena, frame.Transforms)
	vt.renderTasks.Update(dev, arena, frame.RenderTasks)

	dev.BindTexture(int(SamplerPrimitiveHeadersF), vt.primHeaderF.Texture())
	dev.BindTexture(int(SamplerPrimitiveHeadersI), vt.primHeaderI.Texture())
	dev.BindTexture(int(SamplerTransformPalette), vt.transforms.Texture())
	dev.BindTexture(int(SamplerRenderTasks), vt.renderTasks.Texture())
}

// SizeInBytes estimates the GPU memory held across the four textures.
func (vt *VertexDataTextures) SizeInBytes() int {
	return vt.primHeaderF.SizeInBytes() +
		vt.primHeaderI.SizeInBytes() +
		vt.transforms.SizeInBytes() +
		vt.renderTasks.SizeInBytes()
}

func (vt *VertexDataTextures) Deinit(dev Device) {
	vt.transforms.Deinit(dev)
	vt.primHeaderF.Deinit(dev)
	vt.primHeaderI.Deinit(dev)
	vt.renderTasks.Deinit(dev)
}

// PrimHeadersFTexture returns the float primitive headers texture.
func (vt *VertexDataTextures) PrimHeadersFTexture() device.TextureID {
	return vt.primHeaderF.Texture()
}

// PrimHeadersITexture returns the integer primitive headers texture.
func (vt *VertexDataTextures) PrimHeadersITexture() device.TextureID {
	return vt.primHeaderI.Texture()
}

// TransformsTexture returns the transform palette texture.
func (vt *VertexDataTextures) TransformsTexture() device.TextureID {
	return vt.transforms.Texture()
}

// RenderTasksTexture returns the render task table texture.
func (vt *VertexDataTextures) RenderTasksTexture() device.TextureID {
	return vt.renderTasks.Texture()
}

func nextMultipleOf[T constraints.Integer](x, y T) T {
	r := x % y
	if r == 0 {
		return x
	} else {
		return x + y - r
	}
}
