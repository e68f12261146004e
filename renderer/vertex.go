package renderer

import (
	"fmt"
	"math"
	"unsafe"

	"honnef.co/go/quilt"
	"honnef.co/go/quilt/device"
	"honnef.co/go/safeish"
)

// VertexArrayKind selects a vertex layout and the shader family that
// consumes it.
type VertexArrayKind int

const (
	VertexArrayPrimitive VertexArrayKind = iota
	VertexArrayBlur
	VertexArrayClipImage
	VertexArrayClipRect
	VertexArrayClipBoxShadow
	VertexArrayVectorStencil
	VertexArrayVectorCover
	VertexArrayBorder
	VertexArrayScale
	VertexArrayLineDecoration
	VertexArrayGradient
	VertexArrayResolve
	VertexArraySvgFilter
	VertexArrayComposite
	VertexArrayClear
)

func (kind VertexArrayKind) String() string {
	switch kind {
	case VertexArrayPrimitive:
		return "Primitive"
	case VertexArrayBlur:
		return "Blur"
	case VertexArrayClipImage:
		return "ClipImage"
	case VertexArrayClipRect:
		return "ClipRect"
	case VertexArrayClipBoxShadow:
		return "ClipBoxShadow"
	case VertexArrayVectorStencil:
		return "VectorStencil"
	case VertexArrayVectorCover:
		return "VectorCover"
	case VertexArrayBorder:
		return "Border"
	case VertexArrayScale:
		return "Scale"
	case VertexArrayLineDecoration:
		return "LineDecoration"
	case VertexArrayGradient:
		return "Gradient"
	case VertexArrayResolve:
		return "Resolve"
	case VertexArraySvgFilter:
		return "SvgFilter"
	case VertexArrayComposite:
		return "Composite"
	case VertexArrayClear:
		return "Clear"
	default:
		return fmt.Sprintf("VertexArrayKind(%d)", int(kind))
	}
}

// QuadIndices splits the unit quad into two triangles.
var QuadIndices = [6]uint16{0, 1, 2, 2, 1, 3}

// QuadVertices are the quad corner positions fed to aPosition, stored as
// bytes that normalize to the 0..1 range.
var QuadVertices = [VerticesPerInstance][2]uint8{{0, 0}, {0xFF, 0}, {0, 0xFF}, {0xFF, 0xFF}}

// VertexContext pairs a VAO with the instance pool feeding its instance
// stream.
type VertexContext[T any] struct {
	vao                   device.VAOID
	instanceVBO           device.VBOID
	pool                  InstancePool[T]
	currentInstanceBuffer device.VBOID
	descriptor            *device.VertexDescriptor

	// uploadedEpoch is the pool epoch of the last direct upload, or -1.
	// Baking and direct uploads must not mix within one frame.
	uploadedEpoch int
}

// NewVertexContext derives a VAO that shares base's main vertex and index
// streams but owns its instance stream and pool.
func NewVertexContext[T any](dev Device, descriptor *device.VertexDescriptor, base device.VAOID, hint device.VertexUsageHint) VertexContext[T] {
	instanced := dev.VAOInstanceDivisor(base) != 0
	vao := dev.CreateVAOWithNewInstances(descriptor, base)
	instanceVBO := dev.VAOInstanceVBO(vao)
	return VertexContext[T]{
		vao:                   vao,
		instanceVBO:           instanceVBO,
		pool:                  NewInstancePool[T](0x100, hint, !instanced),
		currentInstanceBuffer: instanceVBO,
		descriptor:            descriptor,
		uploadedEpoch:         -1,
	}
}

// Deinit releases the pool's buffers and the VAO.
func (vc *VertexContext[T]) Deinit(dev Device) {
	vc.pool.Deinit(dev)
	dev.DeleteVAO(vc.vao)
}

// Ref returns a type erased handle for binding and uploading. The context
// must have no mapped chunks; run FinishPopulatingInstances first.
func (vc *VertexContext[T]) Ref() VertexContextRef {
	if n := len(vc.pool.mappedChunks); n != 0 {
		panic(fmt.Sprintf("taking a vertex context ref with %d chunks still mapped", n))
	}
	return VertexContextRef{
		vao:                   vc.vao,
		instanceVBO:           vc.instanceVBO,
		instanceBuffers:       vc.pool.usedChunks,
		currentInstanceBuffer: &vc.currentInstanceBuffer,
		descriptor:            vc.descriptor,
		duplicatePerVertex:    vc.pool.duplicatePerVertex,
		usageHint:             vc.pool.usageHint,
		epoch:                 vc.pool.epoch,
		uploadedEpoch:         &vc.uploadedEpoch,
	}
}

// BakeInstances stages every non-empty list into the pool, records the
// resulting range on the list, and clears its CPU-side data.
func (vc *VertexContext[T]) BakeInstances(dev Device, lists []*InstanceList[T]) {
	for _, list := range lists {
		if len(list.Data) == 0 {
			continue
		}
		if vc.uploadedEpoch == vc.pool.epoch {
			panic("cannot bake instances into a context after a direct upload this frame")
		}
		list.Range = vc.pool.Add(dev, list.Data)
		list.Baked = true
		list.Data = list.Data[:0]
	}
}

// VertexContextRef is a type erased view of a VertexContext, valid until
// the next bake or reset of the underlying pool.
type VertexContextRef struct {
	vao                   device.VAOID
	instanceVBO           device.VBOID
	instanceBuffers       []device.VBOID
	currentInstanceBuffer *device.VBOID
	descriptor            *device.VertexDescriptor
	duplicatePerVertex    bool
	usageHint             device.VertexUsageHint
	epoch                 int
	uploadedEpoch         *int
}

func (ref VertexContextRef) bindImpl(dev Device, buffer device.VBOID) {
	dev.BindVAO(ref.vao)
	if *ref.currentInstanceBuffer != buffer {
		*ref.currentInstanceBuffer = buffer
		dev.SwitchInstanceBuffer(ref.vao, buffer, 0)
	} else {
		dev.BindVBO(buffer)
	}
}

// Bind makes the pool chunk at index the VAO's instance stream and returns
// the current pool epoch, for comparison against InstanceRange.Epoch.
func (ref VertexContextRef) Bind(dev Device, index InstanceBufferIndex) int {
	buffer := ref.instanceBuffers[index]
	ref.bindImpl(dev, buffer)
	return ref.epoch
}

// BindGeneral binds the VAO's own instance VBO, the buffer
// UploadInstanceData writes to.
func (ref VertexContextRef) BindGeneral(dev Device) {
	ref.bindImpl(dev, ref.instanceVBO)
}

// UploadInstanceData replaces the contents of the context's own instance
// VBO, bypassing the pool. The VAO's own buffer must be current, not a
// switched-in pool chunk.
func UploadInstanceData[T any](ref VertexContextRef, dev Device, instances []T) {
	elemSize := int(unsafe.Sizeof(*new(T)))
	if stride := ref.descriptor.InstanceStride(); stride != elemSize {
		panic(fmt.Sprintf("instance stride %d does not match element size %d", stride, elemSize))
	}
	if *ref.currentInstanceBuffer != ref.instanceVBO {
		panic("uploading instance data while a pool chunk is bound")
	}
	if len(instances) == 0 {
		return
	}
	if len(ref.instanceBuffers) != 0 {
		panic("cannot upload instance data directly after baking into the context this frame")
	}
	*ref.uploadedEpoch = ref.epoch

	if ref.duplicatePerVertex {
		slots := len(instances) * VerticesPerInstance
		quilt.Logger().Debug("mapping instance buffer", "buffer", ref.instanceVBO, "slots", slots)
		data := safeish.SliceCast[[]T](dev.InitializeMappedVBO(ref.instanceVBO, slots*elemSize, ref.usageHint))
		fillInstances(data, instances, true)
		quilt.Logger().Debug("unmapping instance buffer", "buffer", ref.instanceVBO, "slots", slots)
		dev.UnmapVBO(ref.instanceVBO)
	} else {
		dev.UpdateVBOData(ref.instanceVBO, safeish.SliceCast[[]byte](instances), ref.usageHint)
	}
}

// VertexContextHub owns one vertex context per shader family. All contexts
// share the quad vertex and index streams of the primitive VAO.
type VertexContextHub struct {
	Prim          VertexContext[PrimitiveInstanceData]
	Blur          VertexContext[BlurInstance]
	ClipRect      VertexContext[ClipMaskInstanceRect]
	ClipBoxShadow VertexContext[ClipMaskInstanceBoxShadow]
	ClipImage     VertexContext[ClipMaskInstanceImage]
	Border        VertexContext[BorderInstance]
	Line          VertexContext[LineDecorationJob]
	Scale         VertexContext[ScalingInstance]
	Gradient      VertexContext[GradientJob]
	resolve       VertexContext[ResolveInstanceData] // pool unused, resolve uploads directly
	SvgFilter     VertexContext[SvgFilterInstance]
	Composite     VertexContext[CompositeInstance]
	Clear         VertexContext[ClearInstance]
}

// NewVertexContextHub creates the contexts for every shader family.
//
// indexedQuads selects the geometry mode. Zero means true instancing: one
// quad is drawn per instance record using an instance divisor. A positive
// count means instance attributes are duplicated per quad corner and quads
// expand through the index stream, with at most indexedQuads quads
// addressable per draw.
func NewVertexContextHub(dev Device, indexedQuads int, hint device.VertexUsageHint) *VertexContextHub {
	instanceDivisor := uint32(1)
	if indexedQuads != 0 {
		instanceDivisor = 0
	}
	primVAO := dev.CreateVAO(&DescPrimInstances, instanceDivisor)

	dev.BindVAO(primVAO)
	if indexedQuads != 0 {
		if indexedQuads >= math.MaxUint16 {
			panic(fmt.Sprintf("%d quads cannot be addressed with 16 bit indices", indexedQuads))
		}
		indices := make([]uint16, 0, indexedQuads*len(QuadIndices))
		for instance := range indexedQuads {
			for _, index := range QuadIndices {
				indices = append(indices, uint16(instance)*VerticesPerInstance+index)
			}
		}
		dev.UpdateVAOIndices(primVAO, indices, device.Static)
		vertices := make([][2]uint8, 0, indexedQuads*VerticesPerInstance)
		for range indexedQuads {
			vertices = append(vertices, QuadVertices[:]...)
		}
		dev.UpdateVAOMainVertices(primVAO, safeish.SliceCast[[]byte](vertices), device.Static)
	} else {
		dev.UpdateVAOIndices(primVAO, QuadIndices[:], device.Static)
		dev.UpdateVAOMainVertices(primVAO, safeish.SliceCast[[]byte](QuadVertices[:]), device.Static)
	}

	primChunkSize := 0
	if indexedQuads != 0 {
		primChunkSize = indexedQuads / 2
	}
	primVBO := dev.VAOInstanceVBO(primVAO)

	return &VertexContextHub{
		Prim: VertexContext[PrimitiveInstanceData]{
			vao:                   primVAO,
			instanceVBO:           primVBO,
			pool:                  NewInstancePool[PrimitiveInstanceData](primChunkSize, hint, indexedQuads != 0),
			currentInstanceBuffer: primVBO,
			descriptor:            &DescPrimInstances,
			uploadedEpoch:         -1,
		},
		Blur:          NewVertexContext[BlurInstance](dev, &DescBlur, primVAO, hint),
		ClipRect:      NewVertexContext[ClipMaskInstanceRect](dev, &DescClipRect, primVAO, hint),
		ClipBoxShadow: NewVertexContext[ClipMaskInstanceBoxShadow](dev, &DescClipBoxShadow, primVAO, hint),
		ClipImage:     NewVertexContext[ClipMaskInstanceImage](dev, &DescClipImage, primVAO, hint),
		Border:        NewVertexContext[BorderInstance](dev, &DescBorder, primVAO, hint),
		Line:          NewVertexContext[LineDecorationJob](dev, &DescLine, primVAO, hint),
		Scale:         NewVertexContext[ScalingInstance](dev, &DescScale, primVAO, hint),
		Gradient:      NewVertexContext[GradientJob](dev, &DescGradient, primVAO, hint),
		resolve:       NewVertexContext[ResolveInstanceData](dev, &DescResolve, primVAO, hint),
		SvgFilter:     NewVertexContext[SvgFilterInstance](dev, &DescSvgFilter, primVAO, hint),
		Composite:     NewVertexContext[CompositeInstance](dev, &DescComposite, primVAO, hint),
		Clear:         NewVertexContext[ClearInstance](dev, &DescClear, primVAO, hint),
	}
}

// Deinit releases every context. The primitive context goes first so the
// shared quad streams are returned exactly once.
func (hub *VertexContextHub) Deinit(dev Device) {
	hub.Prim.Deinit(dev)
	hub.resolve.Deinit(dev)
	hub.ClipRect.Deinit(dev)
	hub.ClipBoxShadow.Deinit(dev)
	hub.ClipImage.Deinit(dev)
	hub.Gradient.Deinit(dev)
	hub.Blur.Deinit(dev)
	hub.Line.Deinit(dev)
	hub.Border.Deinit(dev)
	hub.Scale.Deinit(dev)
	hub.SvgFilter.Deinit(dev)
	hub.Composite.Deinit(dev)
	hub.Clear.Deinit(dev)
}

// Get returns a ref for the context of kind. Vector stencil and cover
// draws manage their own vertex state and have no context here.
func (hub *VertexContextHub) Get(kind VertexArrayKind) VertexContextRef {
	switch kind {
	case VertexArrayPrimitive:
		return hub.Prim.Ref()
	case VertexArrayClipImage:
		return hub.ClipImage.Ref()
	case VertexArrayClipRect:
		return hub.ClipRect.Ref()
	case VertexArrayClipBoxShadow:
		return hub.ClipBoxShadow.Ref()
	case VertexArrayBlur:
		return hub.Blur.Ref()
	case VertexArrayVectorStencil, VertexArrayVectorCover:
		panic(fmt.Sprintf("no vertex context for %s", kind))
	case VertexArrayBorder:
		return hub.Border.Ref()
	case VertexArrayScale:
		return hub.Scale.Ref()
	case VertexArrayLineDecoration:
		return hub.Line.Ref()
	case VertexArrayGradient:
		return hub.Gradient.Ref()
	case VertexArrayResolve:
		return hub.resolve.Ref()
	case VertexArraySvgFilter:
		return hub.SvgFilter.Ref()
	case VertexArrayComposite:
		return hub.Composite.Ref()
	case VertexArrayClear:
		return hub.Clear.Ref()
	default:
		panic(fmt.Sprintf("unknown vertex array kind %d", int(kind)))
	}
}

// ResetInstancePools recycles every pool's chunks and advances their
// epochs, invalidating all ranges baked this frame.
func (hub *VertexContextHub) ResetInstancePools() {
	hub.Prim.pool.Reset()
	hub.resolve.pool.Reset()
	hub.ClipRect.pool.Reset()
	hub.ClipBoxShadow.pool.Reset()
	hub.ClipImage.pool.Reset()
	hub.Gradient.pool.Reset()
	hub.Blur.pool.Reset()
	hub.Line.pool.Reset()
	hub.Border.pool.Reset()
	hub.Scale.pool.Reset()
	hub.SvgFilter.pool.Reset()
	hub.Composite.pool.Reset()
	hub.Clear.pool.Reset()
}

// FinishPopulatingInstances unmaps every pool's mapped chunks. It must run
// after the frame's last bake and before anything is drawn.
func (hub *VertexContextHub) FinishPopulatingInstances(dev Device) {
	hub.Prim.pool.Finish(dev)
	hub.resolve.pool.Finish(dev)
	hub.ClipRect.pool.Finish(dev)
	hub.ClipBoxShadow.pool.Finish(dev)
	hub.ClipImage.pool.Finish(dev)
	hub.Gradient.pool.Finish(dev)
	hub.Blur.pool.Finish(dev)
	hub.Line.pool.Finish(dev)
	hub.Border.pool.Finish(dev)
	hub.Scale.pool.Finish(dev)
	hub.SvgFilter.pool.Finish(dev)
	hub.Composite.pool.Finish(dev)
	hub.Clear.pool.Finish(dev)
}
