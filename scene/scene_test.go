package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/curve"
	"honnef.co/go/quilt/gfx"
)

func ptr[T any](v T) *T { return &v }

func item(kind ItemKind) Item {
	return Item{Kind: kind, BackfaceVisible: true}
}

func TestLoadDocument(t *testing.T) {
	const doc = `
root:
  bounds: [0, 0, 1024, 768]
  transform:
    style: preserve-3d
    modifiers:
      - translate: [10, 20.5]
      - rotate:
          axis: z
          degrees: 45
          origin: [512, 384]
  perspective:
    simple:
      distance: 500
      origin: [100, 100]
  clip_node:
    specific: 4
  reference_frame_id: 7
  glyph_raster_space:
    local: 2
  scroll_offset: [0, 120]
  mix_blend_mode: multiply
  filters:
    - blur: 4
    - opacity: 0.5
  items:
    - kind: rect
    - kind:
        clear-rect:
          bounds: [8, 8, 16, 16]
      backface_visible: false
      tag: [1, 2]
    - kind:
        stacking-context:
          items:
            - kind: pop-all-shadows
      clip_and_scroll:
        both:
          clip:
            specific: 9
          scroll: root-scroll-node
`
	got, err := Load([]byte(doc))
	require.NoError(t, err)

	expected := Document{
		RootPipeline: {
			Bounds: &LayoutRect{Width: 1024, Height: 768},
			Transform: &ComplexTransform{
				Style: Preserve3D,
				Modifiers: []Transform{
					TransformTranslate{X: 10, Y: 20.5},
					TransformRotate{Axis: AxisZ, Degrees: 45, Origin: curve.Point{X: 512, Y: 384}},
				},
			},
			Perspective:      PerspectiveSimple{Distance: 500, Origin: &curve.Point{X: 100, Y: 100}},
			ClipNode:         SpecificClip(4),
			ReferenceFrameID: ptr(uint64(7)),
			GlyphRasterSpace: GlyphRasterSpace{Local: true, Scale: 2},
			ScrollOffset:     &curve.Point{X: 0, Y: 120},
			MixBlendMode:     gfx.MixMultiply,
			Filters: []Filter{
				{Kind: FilterBlur, Value: 4},
				{Kind: FilterOpacity, Value: 0.5},
			},
			Items: []Item{
				item(RectItem{}),
				{
					Kind: ClearRectItem{Bounds: LayoutRect{Origin: curve.Point{X: 8, Y: 8}, Width: 16, Height: 16}},
					Tag:  ptr([2]int64{1, 2}),
				},
				{
					Kind: StackingContextItem{Context: StackingContext{
						Items: []Item{item(PopAllShadowsItem{})},
					}},
					ClipAndScroll:   SeparateClipScroll{Clip: SpecificClip(9), Scroll: RootScrollNode{}},
					BackfaceVisible: true,
				},
			},
		},
	}
	assert.Equal(t, expected, got)
}

func TestLoadDefaults(t *testing.T) {
	const doc = `
root:
  items:
    - kind: rect
`
	got, err := Load([]byte(doc))
	require.NoError(t, err)
	require.Len(t, got, 1)

	sc := got[RootPipeline]
	assert.Nil(t, sc.Bounds)
	assert.Nil(t, sc.Transform)
	assert.Nil(t, sc.Perspective)
	assert.Nil(t, sc.ClipNode)
	assert.Nil(t, sc.ReferenceFrameID)
	assert.Equal(t, GlyphRasterSpace{}, sc.GlyphRasterSpace)
	assert.Nil(t, sc.ScrollOffset)
	assert.Equal(t, gfx.MixNormal, sc.MixBlendMode)
	assert.Empty(t, sc.Filters)

	require.Len(t, sc.Items, 1)
	it := sc.Items[0]
	assert.Equal(t, RectItem{}, it.Kind)
	assert.Nil(t, it.ClipAndScroll)
	assert.Nil(t, it.ComplexClip)
	assert.Nil(t, it.ClipRect)
	assert.True(t, it.BackfaceVisible)
	assert.Nil(t, it.Tag)
}

func TestLoadPipelineKeys(t *testing.T) {
	// Distinct [namespace, id] keys must not be mistaken for one another.
	const doc = `
root:
  items: []
[4, 2]:
  items:
    - kind: line
[4, 3]:
  items: []
`
	got, err := Load([]byte(doc))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Contains(t, got, RootPipeline)
	assert.Contains(t, got, Pipeline(4, 2))
	assert.Contains(t, got, Pipeline(4, 3))
	assert.Empty(t, got[RootPipeline].Items)
	assert.Equal(t, LineItem{}, got[Pipeline(4, 2)].Items[0].Kind)
}

func TestTransformModifierForms(t *testing.T) {
	const doc = `
root:
  transform:
    style: flat
    modifiers:
      - matrix: [1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1]
      - translate: [5, -3]
      - rotate:
          axis: x
          degrees: 90
          origin: [10, 10]
      - scale:
          value: 2
      - scale:
          axis: y
          value: 0.5
      - skew:
          axis: z
          value: 10
      - perspective:
          distance: 800
  items: []
`
	got, err := Load([]byte(doc))
	require.NoError(t, err)

	tf := got[RootPipeline].Transform
	require.NotNil(t, tf)
	assert.Equal(t, Flat, tf.Style)
	assert.Equal(t, []Transform{
		TransformMatrix{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
		TransformTranslate{X: 5, Y: -3},
		TransformRotate{Axis: AxisX, Degrees: 90, Origin: curve.Point{X: 10, Y: 10}},
		TransformScale{Value: 2},
		TransformScale{Axis: ptr(AxisY), Value: 0.5},
		TransformSkew{Axis: AxisZ, Value: 10},
		TransformPerspective{Distance: 800},
	}, tf.Modifiers)
}

func TestGlyphRasterSpaceForms(t *testing.T) {
	got, err := Load([]byte("root:\n  glyph_raster_space: screen\n  items: []\n"))
	require.NoError(t, err)
	assert.Equal(t, GlyphRasterSpace{}, got[RootPipeline].GlyphRasterSpace)

	got, err = Load([]byte("root:\n  glyph_raster_space:\n    local: 2.5\n  items: []\n"))
	require.NoError(t, err)
	assert.Equal(t, GlyphRasterSpace{Local: true, Scale: 2.5}, got[RootPipeline].GlyphRasterSpace)
}

func TestLoadAliases(t *testing.T) {
	const doc = `
root:
  items:
    - kind: rect
      complex_clip: &clip
        rect: [0, 0, 32, 32]
        radius:
          uniform: 4
      clip_and_scroll: &cs
        same: root-scroll-node
    - kind: line
      complex_clip: *clip
      clip_and_scroll: *cs
`
	got, err := Load([]byte(doc))
	require.NoError(t, err)

	items := got[RootPipeline].Items
	require.Len(t, items, 2)
	want := &ComplexClip{
		Rect:   LayoutRect{Width: 32, Height: 32},
		Radius: UniformRadius(4),
	}
	assert.Equal(t, want, items[0].ComplexClip)
	assert.Equal(t, want, items[1].ComplexClip)
	assert.Equal(t, SameClipScroll{Node: RootScrollNode{}}, items[1].ClipAndScroll)
}

func TestSceneRoundTrip(t *testing.T) {
	doc := Document{
		RootPipeline: {
			Bounds: &LayoutRect{Origin: curve.Point{X: 10, Y: 20}, Width: 300, Height: 200},
			Transform: &ComplexTransform{
				Style: Flat,
				Modifiers: []Transform{
					TransformMatrix{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
					TransformTranslate{X: -4, Y: 2},
					TransformScale{Axis: ptr(AxisX), Value: 1.5},
					TransformSkew{Axis: AxisY, Value: 30},
					TransformPerspective{Distance: 650},
				},
			},
			Perspective:      PerspectiveMatrix{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
			ClipNode:         RootReferenceFrame{},
			ReferenceFrameID: ptr(uint64(12)),
			GlyphRasterSpace: GlyphRasterSpace{Local: true, Scale: 1.25},
			ScrollOffset:     &curve.Point{X: 0, Y: -40},
			MixBlendMode:     gfx.MixScreen,
			Filters: []Filter{
				{Kind: FilterHueRotate, Value: 90},
				{Kind: FilterSepia, Value: 1},
			},
			Items: []Item{
				item(BorderItem{}),
				item(GradientItem{}),
				item(RadialGradientItem{}),
				item(BoxShadowItem{}),
				item(IframeItem{}),
				item(ImageItem{}),
				item(YuvImageItem{}),
				item(TextItem{}),
				item(ScrollFrameItem{}),
				item(StickyFrameItem{}),
				item(ClipItem{}),
				item(ClipChainItem{}),
				item(LineItem{}),
				{
					Kind: ClearRectItem{Bounds: LayoutRect{Width: 64, Height: 64}},
					Tag:  ptr([2]int64{3, -7}),
				},
				{
					Kind: StackingContextItem{Context: StackingContext{
						Perspective: PerspectiveSimple{Distance: 400, Origin: &curve.Point{X: 5, Y: 5}},
						Items:       []Item{item(PopAllShadowsItem{})},
					}},
					ClipAndScroll:   SameClipScroll{Node: RootScrollNode{}},
					BackfaceVisible: true,
				},
				{
					Kind:          RectItem{},
					ClipAndScroll: SeparateClipScroll{Clip: SpecificClip(3), Scroll: SpecificClip(8)},
					ComplexClip: &ComplexClip{
						Rect:   LayoutRect{Origin: curve.Point{X: 1, Y: 1}, Width: 30, Height: 30},
						Radius: CustomRadius{TopLeft: 2, BottomRight: 8},
						Mode:   ClipOut,
					},
					ClipRect:        &LayoutRect{Width: 400, Height: 400},
					BackfaceVisible: true,
				},
			},
		},
		Pipeline(3, 9): {
			MixBlendMode: gfx.MixColorDodge,
			Items: []Item{{
				Kind: RectItem{},
				ComplexClip: &ComplexClip{
					Rect:   LayoutRect{Width: 10, Height: 10},
					Radius: UniformRadius(3),
				},
				BackfaceVisible: true,
			}},
		},
	}

	data, err := Save(doc)
	require.NoError(t, err)
	reloaded, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, doc, reloaded)
}

func TestSaveOmitsDefaults(t *testing.T) {
	doc := Document{
		RootPipeline: {Items: []Item{item(RectItem{})}},
	}
	data, err := Save(doc)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "root:")
	assert.Contains(t, out, "kind: rect")
	assert.NotContains(t, out, "backface_visible")
	assert.NotContains(t, out, "mix_blend_mode")
	assert.NotContains(t, out, "perspective")
	assert.NotContains(t, out, "glyph_raster_space")
	assert.NotContains(t, out, "bounds")
	assert.NotContains(t, out, "filters")

	doc[RootPipeline] = StackingContext{
		MixBlendMode: gfx.MixMultiply,
		Items:        []Item{{Kind: RectItem{}, BackfaceVisible: false}},
	}
	data, err = Save(doc)
	require.NoError(t, err)

	out = string(data)
	assert.Contains(t, out, "mix_blend_mode: multiply")
	assert.Contains(t, out, "backface_visible: false")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown pipeline", "other:\n  items: []\n", `unknown pipeline "other"`},
		{"bad pipeline pair", "[1, 2, 3]:\n  items: []\n", "[namespace, id] pair"},
		{"missing items", "root:\n  bounds: [0, 0, 1, 1]\n", "stacking context has no items"},
		{"unknown field", "root:\n  color: red\n  items: []\n", `line 2: unknown field "color"`},
		{
			"duplicate field",
			"root:\n  bounds: [0, 0, 1, 1]\n  bounds: [0, 0, 2, 2]\n  items: []\n",
			`line 3: duplicate key "bounds"`,
		},
		{
			"duplicate item field",
			"root:\n  items:\n    - kind: rect\n      kind: line\n",
			`line 4: duplicate key "kind"`,
		},
		{"duplicate pipeline", "root:\n  items: []\nroot:\n  items: []\n", "line 3: duplicate pipeline root"},
		{
			"duplicate pair pipeline",
			"[4, 2]:\n  items: []\n[4, 2]:\n  items: []\n",
			"line 3: duplicate pipeline [4, 2]",
		},
		{"item without kind", "root:\n  items:\n    - clip_rect: [0, 0, 1, 1]\n", "item has no kind"},
		{"unknown item kind", "root:\n  items:\n    - kind: blob\n", `unknown item kind "blob"`},
		{"short rect", "root:\n  bounds: [1, 2, 3]\n  items: []\n", "expected 4 numbers, got 3"},
		{"unknown mix", "root:\n  mix_blend_mode: plus-lighter\n  items: []\n", `unknown mix-blend-mode "plus-lighter"`},
		{"unknown perspective", "root:\n  perspective: fisheye\n  items: []\n", `unknown perspective "fisheye"`},
		{
			"unknown transform",
			"root:\n  transform:\n    style: flat\n    modifiers:\n      - spin: 1\n  items: []\n",
			`unknown transform "spin"`,
		},
		{
			"unknown axis",
			"root:\n  transform:\n    style: flat\n    modifiers:\n      - rotate:\n          axis: w\n  items: []\n",
			`unknown axis "w"`,
		},
		{
			"unknown filter",
			"root:\n  filters:\n    - posterize: 1\n  items: []\n",
			`unknown filter "posterize"`,
		},
		{
			"unknown clip node",
			"root:\n  clip_node: everything\n  items: []\n",
			`unknown clip node "everything"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
