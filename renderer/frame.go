package renderer

import (
	"fmt"

	"honnef.co/go/quilt"
	"honnef.co/go/quilt/device"
	"honnef.co/go/quilt/mem"
	"honnef.co/go/quilt/profiler"
)

// Frame holds the structured tables staged into data textures each frame.
// Batch producers append to the tables while building draw batches, then
// the whole frame is staged at once.
type Frame struct {
	PrimHeadersF []PrimitiveHeaderF
	PrimHeadersI []PrimitiveHeaderI
	Transforms   []TransformData
	RenderTasks  []RenderTaskData
}

// Reset clears the tables, keeping their capacity for the next frame.
func (f *Frame) Reset() {
	f.PrimHeadersF = f.PrimHeadersF[:0]
	f.PrimHeadersI = f.PrimHeadersI[:0]
	f.Transforms = f.Transforms[:0]
	f.RenderTasks = f.RenderTasks[:0]
}

// AddPrimitiveHeader appends both halves of a primitive header and returns
// their shared index. The halves live in separate textures but always line
// up slot for slot.
func (f *Frame) AddPrimitiveHeader(fh PrimitiveHeaderF, ih PrimitiveHeaderI) int {
	f.PrimHeadersF = append(f.PrimHeadersF, fh)
	f.PrimHeadersI = append(f.PrimHeadersI, ih)
	return len(f.PrimHeadersF) - 1
}

// AddTransform appends a palette entry and returns its id.
func (f *Frame) AddTransform(td TransformData) TransformPaletteID {
	f.Transforms = append(f.Transforms, td)
	return TransformPaletteID(len(f.Transforms) - 1)
}

// AddRenderTask appends a task slot and returns its address.
func (f *Frame) AddRenderTask(data RenderTaskData) RenderTaskAddress {
	f.RenderTasks = append(f.RenderTasks, data)
	return RenderTaskAddress(len(f.RenderTasks) - 1)
}

type frameState int

const (
	stateIdle frameState = iota
	stateStaging
	stateDrawing
)

// Options configure a Renderer.
type Options struct {
	// IndexedQuads selects the duplicated-attribute geometry mode, sized
	// for this many quads per draw. Zero selects hardware instancing.
	IndexedQuads int
}

// Renderer sequences per-frame staging: begin, bake batches and stage
// tables, finish, draw, end. Calls outside that order panic.
type Renderer struct {
	dev      Device
	hub      *VertexContextHub
	textures *VertexDataTextures
	arena    *mem.Arena
	state    frameState
}

func New(dev Device, opts *Options) *Renderer {
	if opts == nil {
		opts = &Options{}
	}
	return &Renderer{
		dev:      dev,
		hub:      NewVertexContextHub(dev, opts.IndexedQuads, device.Stream),
		textures: NewVertexDataTextures(),
		arena:    mem.NewArena(),
	}
}

// Hub exposes the per-family vertex contexts to batch producers.
func (r *Renderer) Hub() *VertexContextHub {
	return r.hub
}

// Textures exposes the staged data textures, for embedders building bind
// groups.
func (r *Renderer) Textures() *VertexDataTextures {
	return r.textures
}

// Arena is scratch memory for building a frame's batches. It is reset on
// BeginFrame, so nothing allocated from it may outlive the frame.
func (r *Renderer) Arena() *mem.Arena {
	return r.arena
}

// BeginFrame opens a frame for staging.
func (r *Renderer) BeginFrame(pgroup profiler.ProfilerGroup) device.FrameID {
	pgroup = pgroup.Start("BeginFrame")
	defer pgroup.End()

	if r.state != stateIdle {
		panic("beginning a frame while the previous one is still open")
	}
	r.state = stateStaging
	r.arena.Reset()
	return r.dev.BeginFrame()
}

// StageFrame uploads the frame's tables into the data textures and binds
// them to their sampler units. The padded copies go through the frame
// arena.
func (r *Renderer) StageFrame(frame *Frame, pgroup profiler.ProfilerGroup) {
	pgroup = pgroup.Start("StageFrame")
	defer pgroup.End()

	if r.state != stateStaging {
		panic("staging a frame outside the staging phase")
	}
	r.textures.Update(r.dev, r.arena, frame)
}

// FinishStaging unmaps every pool chunk. After it returns the frame's
// batches may be drawn; no further staging is allowed until the next
// frame.
func (r *Renderer) FinishStaging(pgroup profiler.ProfilerGroup) {
	pgroup = pgroup.Start("FinishStaging")
	defer pgroup.End()

	if r.state != stateStaging {
		panic("finishing staging outside the staging phase")
	}
	r.hub.FinishPopulatingInstances(r.dev)
	r.state = stateDrawing
}

// EndFrame recycles the pools, invalidating this frame's instance ranges,
// and closes the device frame.
func (r *Renderer) EndFrame(pgroup profiler.ProfilerGroup) {
	pgroup = pgroup.Start("EndFrame")
	defer pgroup.End()

	if r.state != stateDrawing {
		panic("ending a frame that has not finished staging")
	}
	r.hub.ResetInstancePools()
	r.dev.EndFrame()
	stats := r.dev.Stats()
	quilt.Logger().Debug("frame staged",
		"buffersCreated", stats.BuffersCreated,
		"buffersReused", stats.BuffersReused,
		"bytesMapped", stats.BytesMapped,
		"bytesFlushed", stats.BytesFlushed,
		"textureBytes", stats.TextureBytes)
	r.state = stateIdle
}

// Deinit releases the data textures and every vertex context. The device
// itself stays with its owner.
func (r *Renderer) Deinit() {
	r.textures.Deinit(r.dev)
	r.hub.Deinit(r.dev)
}

// StageBatch bakes lists into the context's pool during the staging phase.
func StageBatch[T any](r *Renderer, vc *VertexContext[T], lists ...*InstanceList[T]) {
	if r.state != stateStaging {
		panic("staging a batch outside the staging phase")
	}
	vc.BakeInstances(r.dev, lists)
}

// DrawBatch binds the chunk a baked list landed in and calls draw with the
// first instance and instance count of the list's range. Lists that staged
// nothing are skipped. The caller is responsible for pairing the list with
// the kind it was baked under.
func DrawBatch[T any](r *Renderer, kind VertexArrayKind, list *InstanceList[T], draw func(first, count int)) {
	if r.state != stateDrawing {
		panic("drawing a batch before staging finished")
	}
	if !list.Baked || list.Range.Len() == 0 {
		return
	}
	ref := r.hub.Get(kind)
	epoch := ref.Bind(r.dev, list.Range.BufferIndex)
	if list.Range.Epoch != epoch {
		panic(fmt.Sprintf("stale instance range: baked under epoch %d, pool epoch is %d", list.Range.Epoch, epoch))
	}
	draw(list.Range.Start, list.Range.Len())
}
