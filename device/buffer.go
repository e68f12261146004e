package device

import (
	"fmt"
	"math"
	"math/bits"

	"honnef.co/go/wgpu"
)

// VBOID is a handle to a vertex buffer. The zero value is invalid.
type VBOID uint32

type vertexBuffer struct {
	buf  *wgpu.Buffer // nil until first allocation
	size int          // logical size of the current allocation
	hint VertexUsageHint

	// shadow backs mapped writes and is flushed on unmap.
	shadow []byte
	mapped bool
}

func (d *Device) CreateVBO() VBOID {
	id := VBOID(d.handle())
	d.vbos[id] = &vertexBuffer{}
	return id
}

func (d *Device) DeleteVBO(id VBOID) {
	v := d.vbo(id)
	if v.mapped {
		panic(fmt.Sprintf("device: deleting mapped VBO %d", id))
	}
	if v.buf != nil {
		d.pool.put(v.buf, v.hint)
	}
	delete(d.vbos, id)
	if d.boundVBO == id {
		d.boundVBO = 0
	}
}

func (d *Device) BindVBO(id VBOID) {
	d.vbo(id)
	d.boundVBO = id
}

// UpdateVBOData allocates fresh storage for the buffer and uploads data into
// it in one shot.
func (d *Device) UpdateVBOData(id VBOID, data []byte, hint VertexUsageHint) {
	v := d.vbo(id)
	if v.mapped {
		panic(fmt.Sprintf("device: updating mapped VBO %d", id))
	}
	d.allocateBuffer(v, len(data), hint)
	if len(data) > 0 {
		d.writeBuffer(v.buf, data)
	}
}

// InitializeMappedVBO allocates size bytes of storage for the buffer and
// returns a writable view of it. The slice is valid until UnmapVBO; the
// buffer must not be drawn from while mapped.
func (d *Device) InitializeMappedVBO(id VBOID, size int, hint VertexUsageHint) []byte {
	v := d.vbo(id)
	if v.mapped {
		panic(fmt.Sprintf("device: VBO %d is already mapped", id))
	}
	if size <= 0 {
		panic(fmt.Sprintf("device: mapping VBO %d with size %d", id, size))
	}
	d.allocateBuffer(v, size, hint)
	if cap(v.shadow) < size {
		v.shadow = make([]byte, size)
	}
	v.shadow = v.shadow[:size]
	clear(v.shadow)
	v.mapped = true
	d.stats.BytesMapped += size
	return v.shadow
}

// UnmapVBO flushes the mapped range to the GPU and invalidates the slice
// returned by InitializeMappedVBO.
func (d *Device) UnmapVBO(id VBOID) {
	v := d.vbo(id)
	if !v.mapped {
		panic(fmt.Sprintf("device: unmapping VBO %d which is not mapped", id))
	}
	d.writeBuffer(v.buf, v.shadow)
	v.mapped = false
}

// VBOSize returns the logical size of the buffer's current allocation.
func (d *Device) VBOSize(id VBOID) int {
	return d.vbo(id).size
}

// VBOBuffer returns the wgpu buffer currently backing the handle, for
// embedders encoding their own passes. The association changes whenever the
// storage is reallocated.
func (d *Device) VBOBuffer(id VBOID) *wgpu.Buffer {
	return d.vbo(id).buf
}

func (d *Device) vbo(id VBOID) *vertexBuffer {
	v, ok := d.vbos[id]
	if !ok {
		panic(fmt.Sprintf("device: use of unknown VBO %d", id))
	}
	return v
}

// allocateBuffer gives v fresh storage of at least size bytes, recycling its
// old storage. Reallocation is skipped when the current storage already has
// the right size class and hint.
func (d *Device) allocateBuffer(v *vertexBuffer, size int, hint VertexUsageHint) {
	v.size = size
	if v.buf != nil {
		if v.hint == hint && v.buf.Size() >= poolSizeClass(uint64(size), sizeClassBits) {
			return
		}
		d.pool.put(v.buf, v.hint)
		v.buf = nil
	}
	v.hint = hint
	var created bool
	v.buf, created = d.pool.get(d.dev, uint64(size), "quilt instances", wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, hint)
	if created {
		d.stats.BuffersCreated++
	} else {
		d.stats.BuffersReused++
	}
}

func (d *Device) writeBuffer(buf *wgpu.Buffer, data []byte) {
	if len(data)%4 != 0 {
		panic(fmt.Sprintf("device: buffer upload of %d bytes is not 4-byte aligned", len(data)))
	}
	d.queue.WriteBuffer(buf, 0, data)
	d.stats.BytesFlushed += len(data)
}

type bufferProperties struct {
	size  uint64
	usage wgpu.BufferUsage
	hint  VertexUsageHint
}

// resourcePool recycles retired wgpu buffers by size class so that per-frame
// reallocation reuses storage instead of churning the allocator.
type resourcePool struct {
	bufs map[bufferProperties][]*wgpu.Buffer
}

const sizeClassBits = 1

func (pool *resourcePool) get(dev *wgpu.Device, size uint64, label string, usage wgpu.BufferUsage, hint VertexUsageHint) (*wgpu.Buffer, bool) {
	roundedSize := poolSizeClass(size, sizeClassBits)
	props := bufferProperties{
		size:  roundedSize,
		usage: usage,
		hint:  hint,
	}
	if bufVec, ok := pool.bufs[props]; ok {
		if len(bufVec) > 0 {
			buf := bufVec[len(bufVec)-1]
			bufVec = bufVec[:len(bufVec)-1]
			pool.bufs[props] = bufVec
			return buf, false
		}
	}
	return dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  roundedSize,
		Usage: usage,
	}), true
}

func (pool *resourcePool) put(buf *wgpu.Buffer, hint VertexUsageHint) {
	props := bufferProperties{
		size:  buf.Size(),
		usage: buf.Usage(),
		hint:  hint,
	}
	pool.bufs[props] = append(pool.bufs[props], buf)
}

func (pool *resourcePool) release() {
	for _, bufs := range pool.bufs {
		for _, buf := range bufs {
			buf.Release()
		}
	}
	clear(pool.bufs)
}

// poolSizeClass rounds x up to the next size class. Each power of two is
// split into 2**numBits classes.
func poolSizeClass(x uint64, numBits uint32) uint64 {
	if x > 1<<numBits {
		a := bits.LeadingZeros64(x - 1)
		b := (x - 1) | (((math.MaxUint64 / 2) >> numBits) >> a)
		return b + 1
	} else {
		return 1 << numBits
	}
}
