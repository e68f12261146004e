package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/quilt/mem"
	"honnef.co/go/quilt/profiler"
)

func nopGroup() profiler.ProfilerGroup {
	return profiler.NewNopProfiler().Start(0)
}

func TestRendererFrameFlow(t *testing.T) {
	dev := newFakeDevice()
	r := New(dev, nil)
	pg := nopGroup()

	r.BeginFrame(pg)
	assert.True(t, dev.inFrame)

	list := &InstanceList[BlurInstance]{}
	list.Push(blur(1))
	list.Push(blur(2))
	StageBatch(r, &r.Hub().Blur, list)
	require.True(t, list.Baked)

	frame := &Frame{}
	frame.AddPrimitiveHeader(PrimitiveHeaderF{}, PrimitiveHeaderI{})
	frame.AddTransform(TransformData{})
	frame.AddRenderTask(RenderTaskData{})
	r.StageFrame(frame, pg)
	r.FinishStaging(pg)

	var first, count int
	calls := 0
	DrawBatch(r, VertexArrayBlur, list, func(f, c int) {
		calls++
		first, count = f, c
	})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, first)
	assert.Equal(t, 2, count)

	r.EndFrame(pg)
	assert.False(t, dev.inFrame)

	// The next frame must not draw ranges baked under the previous one.
	r.BeginFrame(pg)
	fresh := &InstanceList[BlurInstance]{}
	fresh.Push(blur(3))
	StageBatch(r, &r.Hub().Blur, fresh)
	r.FinishStaging(pg)
	assert.Panics(t, func() {
		DrawBatch(r, VertexArrayBlur, list, func(f, c int) {})
	})
	DrawBatch(r, VertexArrayBlur, fresh, func(f, c int) {
		assert.Equal(t, 1, c)
	})
	r.EndFrame(pg)

	r.Deinit()
	assert.Empty(t, dev.vaos)
	assert.Empty(t, dev.vbos)
	assert.Empty(t, dev.textures)
}

func TestRendererProfilesFrame(t *testing.T) {
	dev := newFakeDevice()
	r := New(dev, nil)

	prof := profiler.NewProfiler()
	fg := prof.Start(1)
	r.BeginFrame(fg)
	r.StageFrame(&Frame{}, fg)
	r.FinishStaging(fg)
	r.EndFrame(fg)
	fg.End()

	results := prof.Collect()
	require.Len(t, results, 1)
	assert.Equal(t, uint64(1), results[0].Tag)
	labels := make([]string, len(results[0].Children))
	for i, c := range results[0].Children {
		labels[i] = c.Label
	}
	assert.Equal(t, []string{"BeginFrame", "StageFrame", "FinishStaging", "EndFrame"}, labels)
}

func TestRendererOrderPanics(t *testing.T) {
	dev := newFakeDevice()
	r := New(dev, nil)
	pg := nopGroup()
	list := &InstanceList[BlurInstance]{}
	list.Push(blur(1))

	assert.Panics(t, func() { r.StageFrame(&Frame{}, pg) })
	assert.Panics(t, func() { r.FinishStaging(pg) })
	assert.Panics(t, func() { r.EndFrame(pg) })
	assert.Panics(t, func() { StageBatch(r, &r.Hub().Blur, list) })
	assert.Panics(t, func() { DrawBatch(r, VertexArrayBlur, list, func(f, c int) {}) })

	r.BeginFrame(pg)
	assert.Panics(t, func() { r.BeginFrame(pg) })
	assert.Panics(t, func() { r.EndFrame(pg) })
	assert.Panics(t, func() { DrawBatch(r, VertexArrayBlur, list, func(f, c int) {}) })

	r.FinishStaging(pg)
	assert.Panics(t, func() { StageBatch(r, &r.Hub().Blur, list) })
	assert.Panics(t, func() { r.StageFrame(&Frame{}, pg) })
	assert.Panics(t, func() { r.FinishStaging(pg) })
	assert.Panics(t, func() { r.BeginFrame(pg) })

	r.EndFrame(pg)
}

func TestDrawBatchSkipsUnstagedLists(t *testing.T) {
	dev := newFakeDevice()
	r := New(dev, nil)
	pg := nopGroup()

	r.BeginFrame(pg)
	never := &InstanceList[BlurInstance]{}
	empty := &InstanceList[BlurInstance]{}
	StageBatch(r, &r.Hub().Blur, empty)
	r.FinishStaging(pg)

	DrawBatch(r, VertexArrayBlur, never, func(f, c int) {
		t.Error("drew a list that was never staged")
	})
	DrawBatch(r, VertexArrayBlur, empty, func(f, c int) {
		t.Error("drew a list that staged nothing")
	})
	r.EndFrame(pg)
}

func TestRendererFrameReuse(t *testing.T) {
	dev := newFakeDevice()
	r := New(dev, nil)
	pg := nopGroup()

	frame := &Frame{}
	for range 3 {
		r.BeginFrame(pg)
		frame.Reset()
		frame.AddRenderTask(RenderTaskData{})
		list := &InstanceList[BlurInstance]{}
		list.Push(blur(1))
		StageBatch(r, &r.Hub().Blur, list)
		r.StageFrame(frame, pg)
		r.FinishStaging(pg)
		DrawBatch(r, VertexArrayBlur, list, func(f, c int) {})
		r.EndFrame(pg)
	}

	// One chunk serves all three frames once the pool warms up, and the
	// table textures are created exactly once.
	assert.Equal(t, 1, len(r.Hub().Blur.pool.readyChunks))
	assert.Equal(t, 4, dev.textureCreates)
	assert.Len(t, frame.RenderTasks, 1)
}

func TestRendererArena(t *testing.T) {
	dev := newFakeDevice()
	r := New(dev, nil)
	pg := nopGroup()

	r.BeginFrame(pg)
	scratch := mem.NewSlice[[]BlurInstance](r.Arena(), 0, 4)
	scratch = mem.Append(r.Arena(), scratch, blur(1), blur(2))
	assert.Len(t, scratch, 2)
	r.FinishStaging(pg)
	r.EndFrame(pg)

	// BeginFrame recycles the arena for the next frame's scratch data.
	r.BeginFrame(pg)
	again := mem.NewSlice[[]BlurInstance](r.Arena(), 0, 4)
	assert.NotNil(t, again)
	r.FinishStaging(pg)
	r.EndFrame(pg)
}

func TestRendererIndexedQuadsOption(t *testing.T) {
	dev := newFakeDevice()
	r := New(dev, &Options{IndexedQuads: 512})
	pg := nopGroup()

	assert.True(t, r.Hub().Prim.pool.duplicatePerVertex)
	assert.Equal(t, 256, r.Hub().Prim.pool.chunkSize)

	r.BeginFrame(pg)
	list := &InstanceList[PrimitiveInstanceData]{}
	list.Push(prim(7))
	StageBatch(r, &r.Hub().Prim, list)
	r.FinishStaging(pg)
	DrawBatch(r, VertexArrayPrimitive, list, func(f, c int) {
		assert.Equal(t, 0, f)
		assert.Equal(t, 1, c)
	})
	r.EndFrame(pg)
}
