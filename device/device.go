// Package device wraps a wgpu device behind the buffer, texture, and vertex
// array verbs the staging layer consumes.
//
// The interface is modeled on a GL-style device: VBOs are mutable handles
// whose storage is reallocated in place, VAOs record attribute layout and
// current buffer bindings, and mapping a buffer yields a writable byte slice.
// On top of wgpu those become CPU-side records: mapped writes go to a shadow
// slice that is flushed with Queue.WriteBuffer on unmap, and VAOs hold the
// binding state an embedder reads back when encoding its render passes.
package device

import (
	"fmt"

	"honnef.co/go/wgpu"
)

type Options struct {
	// MaxTextureSize is the largest width or height CreateTexture accepts.
	// Zero means 8192.
	MaxTextureSize int
}

// FrameID identifies one frame of a device. It increments on BeginFrame.
type FrameID uint64

type Device struct {
	dev   *wgpu.Device
	queue *wgpu.Queue
	opts  Options

	pool resourcePool

	nextHandle uint32

	vbos     map[VBOID]*vertexBuffer
	vaos     map[VAOID]*vertexArray
	textures map[TextureID]*texture

	boundVAO      VAOID
	boundVBO      VBOID
	boundTextures map[int]TextureID

	frame   FrameID
	inFrame bool

	stats FrameStats
}

// FrameStats counts device work since the last BeginFrame.
type FrameStats struct {
	BuffersCreated int
	BuffersReused  int
	BytesMapped    int
	BytesFlushed   int
	TextureBytes   int
}

func New(dev *wgpu.Device, queue *wgpu.Queue, opts *Options) *Device {
	d := &Device{
		dev:   dev,
		queue: queue,
		pool: resourcePool{
			bufs: make(map[bufferProperties][]*wgpu.Buffer),
		},
		vbos:          make(map[VBOID]*vertexBuffer),
		vaos:          make(map[VAOID]*vertexArray),
		textures:      make(map[TextureID]*texture),
		boundTextures: make(map[int]TextureID),
	}
	if opts != nil {
		d.opts = *opts
	}
	if d.opts.MaxTextureSize == 0 {
		d.opts.MaxTextureSize = 8192
	}
	return d
}

func (d *Device) handle() uint32 {
	d.nextHandle++
	return d.nextHandle
}

func (d *Device) MaxTextureSize() int {
	return d.opts.MaxTextureSize
}

func (d *Device) BeginFrame() FrameID {
	if d.inFrame {
		panic("device: BeginFrame without EndFrame")
	}
	d.inFrame = true
	d.frame++
	d.stats = FrameStats{}
	return d.frame
}

func (d *Device) EndFrame() {
	if !d.inFrame {
		panic("device: EndFrame without BeginFrame")
	}
	for id, v := range d.vbos {
		if v.mapped {
			panic(fmt.Sprintf("device: EndFrame with VBO %d still mapped", id))
		}
	}
	d.inFrame = false
	d.boundVAO = 0
	d.boundVBO = 0
	clear(d.boundTextures)
}

// Stats returns the counters accumulated since the last BeginFrame.
func (d *Device) Stats() FrameStats {
	return d.stats
}

// Raw returns the underlying wgpu device and queue, for embedders that
// build pipelines and encode passes themselves.
func (d *Device) Raw() (*wgpu.Device, *wgpu.Queue) {
	return d.dev, d.queue
}

// Deinit releases every live resource. Handles become invalid.
func (d *Device) Deinit() {
	for id := range d.vaos {
		d.DeleteVAO(id)
	}
	for id := range d.vbos {
		d.DeleteVBO(id)
	}
	for id := range d.textures {
		d.DeleteTexture(id)
	}
	d.pool.release()
}
