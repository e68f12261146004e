package renderer

import (
	"fmt"
	"math"
	"unsafe"

	"honnef.co/go/quilt"
	"honnef.co/go/quilt/device"
	"honnef.co/go/safeish"
)

// VerticesPerInstance is the number of slots an instance expands to when
// instance attributes are duplicated per quad corner instead of stepped by
// an instance divisor.
const VerticesPerInstance = 4

// InstanceBufferIndex identifies one of a pool's chunks within a frame.
type InstanceBufferIndex uint16

// InstanceRange records where baked instances landed: which chunk, and the
// sub-range within it. Start and End count instances, not slots, regardless
// of per-vertex duplication.
type InstanceRange struct {
	BufferIndex InstanceBufferIndex
	Start       int
	End         int

	// Epoch is the pool epoch the range was baked under. Bind returns the
	// current epoch so callers can detect ranges held across a reset.
	Epoch int
}

func (r InstanceRange) Len() int {
	return r.End - r.Start
}

// InstanceList accumulates instances for one draw batch. Baking moves Data
// into a pool chunk and records the resulting range.
type InstanceList[T any] struct {
	Data  []T
	Range InstanceRange
	Baked bool
}

func (l *InstanceList[T]) Push(instance T) {
	l.Data = append(l.Data, instance)
}

// mappedChunk is an in-progress chunk whose VBO is mapped for writing.
type mappedChunk[T any] struct {
	// data spans the full mapped extent of the buffer, one element per slot.
	data []T
	// bufferIndex is the chunk's index into usedChunks.
	bufferIndex InstanceBufferIndex
	// size counts slots written so far. With per-vertex duplication one
	// instance occupies VerticesPerInstance slots.
	size int
}

// InstancePool coalesces small instance batches into shared, chunk sized
// VBOs so that a frame's worth of draw batches does not allocate a buffer
// per batch. Chunks move through three states: mapped for writing, used by
// the current frame, and ready for reuse by a later frame.
type InstancePool[T any] struct {
	chunkSize          int
	mappedChunks       []mappedChunk[T]
	usedChunks         []device.VBOID
	readyChunks        []device.VBOID
	usageHint          device.VertexUsageHint
	duplicatePerVertex bool
	epoch              int
}

// NewInstancePool returns an empty pool. chunkSize is the target slot
// capacity per chunk; zero disables coalescing and gives every batch a
// dedicated upload.
func NewInstancePool[T any](chunkSize int, hint device.VertexUsageHint, duplicatePerVertex bool) InstancePool[T] {
	return InstancePool[T]{
		chunkSize:          chunkSize,
		usageHint:          hint,
		duplicatePerVertex: duplicatePerVertex,
	}
}

// fillInstances writes instances into dst, expanding each instance to
// VerticesPerInstance consecutive slots when duplicate is set.
func fillInstances[T any](dst []T, instances []T, duplicate bool) {
	if duplicate {
		for i, instance := range instances {
			dst[i*VerticesPerInstance+0] = instance
			dst[i*VerticesPerInstance+1] = instance
			dst[i*VerticesPerInstance+2] = instance
			dst[i*VerticesPerInstance+3] = instance
		}
	} else {
		copy(dst, instances)
	}
}

// Add stages instances and returns the range they occupy. Small batches
// coalesce into the first mapped chunk with room; batches of at least
// chunkSize slots get a dedicated buffer that is finalized immediately.
func (pool *InstancePool[T]) Add(dev Device, instances []T) InstanceRange {
	if len(instances) == 0 {
		return InstanceRange{Epoch: pool.epoch}
	}

	repeat := 1
	if pool.duplicatePerVertex {
		repeat = VerticesPerInstance
	}
	extra := len(instances) * repeat

	for i := range pool.mappedChunks {
		mc := &pool.mappedChunks[i]
		if mc.size+extra > pool.chunkSize {
			continue
		}
		fillInstances(mc.data[mc.size:], instances, pool.duplicatePerVertex)
		mc.size += extra
		full := mc.size / repeat
		return InstanceRange{
			BufferIndex: mc.bufferIndex,
			Start:       full - len(instances),
			End:         full,
			Epoch:       pool.epoch,
		}
	}

	var buffer device.VBOID
	if n := len(pool.readyChunks); n != 0 {
		buffer = pool.readyChunks[n-1]
		pool.readyChunks = pool.readyChunks[:n-1]
	} else {
		buffer = dev.CreateVBO()
	}

	if len(pool.usedChunks) > math.MaxUint16 {
		panic(fmt.Sprintf("out of instance buffer indices: %d chunks in use", len(pool.usedChunks)))
	}
	index := InstanceBufferIndex(len(pool.usedChunks))
	pool.usedChunks = append(pool.usedChunks, buffer)

	if pool.chunkSize <= extra && !pool.duplicatePerVertex {
		dev.UpdateVBOData(buffer, safeish.SliceCast[[]byte](instances), pool.usageHint)
	} else {
		slots := max(pool.chunkSize, extra)
		elemSize := int(unsafe.Sizeof(*new(T)))
		quilt.Logger().Debug("mapping instance chunk", "buffer", buffer, "slots", slots)
		data := safeish.SliceCast[[]T](dev.InitializeMappedVBO(buffer, slots*elemSize, pool.usageHint))
		fillInstances(data, instances, pool.duplicatePerVertex)
		if pool.chunkSize <= extra {
			quilt.Logger().Debug("unmapping instance chunk", "buffer", buffer, "slots", extra)
			dev.UnmapVBO(buffer)
		} else {
			pool.mappedChunks = append(pool.mappedChunks, mappedChunk[T]{
				data:        data,
				bufferIndex: index,
				size:        extra,
			})
		}
	}

	return InstanceRange{
		BufferIndex: index,
		Start:       0,
		End:         len(instances),
		Epoch:       pool.epoch,
	}
}

// Finish unmaps every mapped chunk. It must run after the last Add of a
// frame and before any chunk is drawn from.
func (pool *InstancePool[T]) Finish(dev Device) {
	for _, mc := range pool.mappedChunks {
		buffer := pool.usedChunks[mc.bufferIndex]
		dev.BindVBO(buffer)
		quilt.Logger().Debug("unmapping instance chunk", "buffer", buffer, "slots", mc.size)
		dev.UnmapVBO(buffer)
	}
	pool.mappedChunks = pool.mappedChunks[:0]
}

// Reset recycles all used chunks and advances the epoch, invalidating every
// range baked before it. The pool must have no mapped chunks.
func (pool *InstancePool[T]) Reset() {
	if len(pool.mappedChunks) != 0 {
		panic(fmt.Sprintf("resetting instance pool with %d chunks still mapped", len(pool.mappedChunks)))
	}
	pool.readyChunks = append(pool.readyChunks, pool.usedChunks...)
	pool.usedChunks = pool.usedChunks[:0]
	pool.epoch++
}

// Epoch returns the current pool epoch. It advances on every Reset.
func (pool *InstancePool[T]) Epoch() int {
	return pool.epoch
}

// Deinit returns all buffers to the device. The pool is unusable afterwards.
func (pool *InstancePool[T]) Deinit(dev Device) {
	pool.Finish(dev)
	pool.Reset()
	for _, buffer := range pool.readyChunks {
		dev.DeleteVBO(buffer)
	}
	pool.readyChunks = nil
}
