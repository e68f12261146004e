package device

import (
	"fmt"

	"honnef.co/go/wgpu"
)

// TextureID is a handle to a 2D texture. The zero value is invalid.
type TextureID uint32

// TexelFormat is the element format of a texture. Both formats are 16 bytes
// per texel.
type TexelFormat int

const (
	RGBAF32 TexelFormat = iota
	RGBAI32
)

// BytesPerTexel is the size of one texel in either format.
const BytesPerTexel = 16

func (f TexelFormat) wgpuFormat() wgpu.TextureFormat {
	switch f {
	case RGBAF32:
		return wgpu.TextureFormatRGBA32Float
	case RGBAI32:
		return wgpu.TextureFormatRGBA32Sint
	default:
		panic(fmt.Sprintf("unhandled texel format %d", int(f)))
	}
}

type texture struct {
	tex    *wgpu.Texture
	view   *wgpu.TextureView
	format TexelFormat
	width  int
	height int
}

func (d *Device) CreateTexture(format TexelFormat, width, height int) TextureID {
	if width <= 0 || height <= 0 || width > d.opts.MaxTextureSize || height > d.opts.MaxTextureSize {
		panic(fmt.Sprintf("device: texture size %dx%d out of range (max %d)", width, height, d.opts.MaxTextureSize))
	}
	tex := d.dev.CreateTexture(&wgpu.TextureDescriptor{
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Format:        format.wgpuFormat(),
	})
	view := tex.CreateView(&wgpu.TextureViewDescriptor{
		Dimension:       wgpu.TextureViewDimension2D,
		Aspect:          wgpu.TextureAspectAll,
		MipLevelCount:   ^uint32(0),
		BaseMipLevel:    0,
		BaseArrayLayer:  0,
		ArrayLayerCount: ^uint32(0),
		Format:          format.wgpuFormat(),
	})

	id := TextureID(d.handle())
	d.textures[id] = &texture{
		tex:    tex,
		view:   view,
		format: format,
		width:  width,
		height: height,
	}
	return id
}

func (d *Device) DeleteTexture(id TextureID) {
	t := d.texture(id)
	t.view.Release()
	t.tex.Release()
	delete(d.textures, id)
	for unit, bound := range d.boundTextures {
		if bound == id {
			delete(d.boundTextures, unit)
		}
	}
}

// UploadTexture uploads rows full rows of texel data, starting at row zero.
// data must hold exactly rows * width texels.
func (d *Device) UploadTexture(id TextureID, rows int, data []byte) {
	t := d.texture(id)
	if rows > t.height {
		panic(fmt.Sprintf("device: uploading %d rows to a texture of height %d", rows, t.height))
	}
	if len(data) != rows*t.width*BytesPerTexel {
		panic(fmt.Sprintf("device: upload of %d bytes does not cover %d rows of width %d", len(data), rows, t.width))
	}
	if rows == 0 {
		return
	}
	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: 0},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(t.width * BytesPerTexel),
			RowsPerImage: uint32(rows),
		},
		&wgpu.Extent3D{
			Width:              uint32(t.width),
			Height:             uint32(rows),
			DepthOrArrayLayers: 1,
		},
	)
	d.stats.TextureBytes += len(data)
}

// BindTexture makes the texture current on the given sampler unit. The
// binding is a CPU-side record; embedders read it back through TextureView
// when building bind groups.
func (d *Device) BindTexture(unit int, id TextureID) {
	d.texture(id)
	d.boundTextures[unit] = id
}

func (d *Device) TextureSize(id TextureID) (width, height int) {
	t := d.texture(id)
	return t.width, t.height
}

// TextureView returns the sampleable view of the texture.
func (d *Device) TextureView(id TextureID) *wgpu.TextureView {
	return d.texture(id).view
}

func (d *Device) texture(id TextureID) *texture {
	t, ok := d.textures[id]
	if !ok {
		panic(fmt.Sprintf("device: use of unknown texture %d", id))
	}
	return t
}
