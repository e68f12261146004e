// Package scene reads and writes the YAML scene documents that drive
// the compositor in tests. A document maps pipelines to stacking
// context trees; the schema mirrors the display list the compositor
// consumes, with tagged unions for transforms, clips and item kinds.
package scene

import (
	"fmt"

	"gopkg.in/yaml.v3"
	"honnef.co/go/curve"
	"honnef.co/go/quilt/gfx"
)

// Document maps each pipeline to the root of its stacking context
// tree.
type Document map[PipelineID]StackingContext

// UnmarshalYAML decodes the pipeline table by hand. Sequence-formed
// pipeline keys all look alike to the yaml decoder's own duplicate
// check, so duplicates are detected on the decoded ids instead.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	node = deref(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	doc := make(Document, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i]
		var pipeline PipelineID
		if err := key.Decode(&pipeline); err != nil {
			return err
		}
		if _, dup := doc[pipeline]; dup {
			return fmt.Errorf("line %d: duplicate pipeline %s", key.Line, pipeline)
		}
		var sc StackingContext
		if err := node.Content[i+1].Decode(&sc); err != nil {
			return err
		}
		doc[pipeline] = sc
	}
	*d = doc
	return nil
}

// PipelineID identifies one content pipeline. It is written either as
// the scalar "root" or as a [namespace, id] pair.
type PipelineID struct {
	Root      bool
	Namespace uint32
	ID        uint32
}

// RootPipeline identifies the pipeline that owns the top of the scene.
var RootPipeline = PipelineID{Root: true}

func Pipeline(namespace, id uint32) PipelineID {
	return PipelineID{Namespace: namespace, ID: id}
}

func (p *PipelineID) UnmarshalYAML(node *yaml.Node) error {
	node = deref(node)
	if node.Kind == yaml.ScalarNode {
		if node.Value != "root" {
			return fmt.Errorf("line %d: unknown pipeline %q", node.Line, node.Value)
		}
		*p = RootPipeline
		return nil
	}
	var ids []uint32
	if err := node.Decode(&ids); err != nil {
		return err
	}
	if len(ids) != 2 {
		return fmt.Errorf("line %d: a pipeline is \"root\" or a [namespace, id] pair", node.Line)
	}
	*p = PipelineID{Namespace: ids[0], ID: ids[1]}
	return nil
}

func (p PipelineID) MarshalYAML() (any, error) {
	if p.Root {
		return scalarNode("root"), nil
	}
	return &yaml.Node{
		Kind:    yaml.SequenceNode,
		Style:   yaml.FlowStyle,
		Content: []*yaml.Node{uintNode(uint64(p.Namespace)), uintNode(uint64(p.ID))},
	}, nil
}

func (p PipelineID) String() string {
	if p.Root {
		return "root"
	}
	return fmt.Sprintf("[%d, %d]", p.Namespace, p.ID)
}

// GlyphRasterSpace selects the space glyphs are rasterized in. The
// zero value rasterizes in screen space; Local rasterizes in local
// space at the given scale.
type GlyphRasterSpace struct {
	Local bool
	Scale float32
}

func (g *GlyphRasterSpace) UnmarshalYAML(node *yaml.Node) error {
	node = deref(node)
	if node.Kind == yaml.ScalarNode {
		if node.Value != "screen" {
			return fmt.Errorf("line %d: unknown glyph raster space %q", node.Line, node.Value)
		}
		*g = GlyphRasterSpace{}
		return nil
	}
	key, value, err := singleKey(node)
	if err != nil {
		return err
	}
	if key != "local" {
		return fmt.Errorf("line %d: unknown glyph raster space %q", node.Line, key)
	}
	g.Local = true
	return value.Decode(&g.Scale)
}

func (g GlyphRasterSpace) MarshalYAML() (any, error) { return g.node(), nil }

func (g GlyphRasterSpace) node() *yaml.Node {
	if !g.Local {
		return scalarNode("screen")
	}
	return singleKeyMap("local", float32Node(g.Scale))
}

// FilterKind enumerates the CSS filter functions a stacking context
// can apply.
type FilterKind int

const (
	FilterBlur FilterKind = iota
	FilterBrightness
	FilterContrast
	FilterGrayscale
	FilterHueRotate
	FilterInvert
	FilterOpacity
	FilterSaturate
	FilterSepia
)

var filterNames = [...]string{
	FilterBlur:       "blur",
	FilterBrightness: "brightness",
	FilterContrast:   "contrast",
	FilterGrayscale:  "grayscale",
	FilterHueRotate:  "hue-rotate",
	FilterInvert:     "invert",
	FilterOpacity:    "opacity",
	FilterSaturate:   "saturate",
	FilterSepia:      "sepia",
}

func (k FilterKind) String() string {
	if int(k) < len(filterNames) {
		return filterNames[k]
	}
	return fmt.Sprintf("FilterKind(%d)", int(k))
}

func parseFilterKind(s string) (FilterKind, bool) {
	for k, name := range filterNames {
		if name == s {
			return FilterKind(k), true
		}
	}
	return 0, false
}

// Filter is one entry in a stacking context's filter chain, written as
// {name: value}.
type Filter struct {
	Kind  FilterKind
	Value float32
}

func (f *Filter) UnmarshalYAML(node *yaml.Node) error {
	key, value, err := singleKey(node)
	if err != nil {
		return err
	}
	kind, ok := parseFilterKind(key)
	if !ok {
		return fmt.Errorf("line %d: unknown filter %q", node.Line, key)
	}
	f.Kind = kind
	return value.Decode(&f.Value)
}

func (f Filter) MarshalYAML() (any, error) { return f.node(), nil }

func (f Filter) node() *yaml.Node {
	return singleKeyMap(f.Kind.String(), float32Node(f.Value))
}

// StackingContext is one node of the scene tree. All fields except
// Items are optional in the document and keep their zero values when
// absent.
type StackingContext struct {
	Bounds           *LayoutRect
	Transform        *ComplexTransform
	Perspective      Perspective
	ClipNode         ClipID
	ReferenceFrameID *uint64
	GlyphRasterSpace GlyphRasterSpace
	ScrollOffset     *curve.Point
	MixBlendMode     gfx.Mix
	Filters          []Filter
	Items            []Item
}

func (sc *StackingContext) UnmarshalYAML(node *yaml.Node) error {
	seenItems := false
	err := decodeMapping(node, func(key string, value *yaml.Node) error {
		switch key {
		case "bounds":
			sc.Bounds = new(LayoutRect)
			return value.Decode(sc.Bounds)
		case "transform":
			sc.Transform = new(ComplexTransform)
			return value.Decode(sc.Transform)
		case "perspective":
			p, err := decodePerspective(value)
			if err != nil {
				return err
			}
			sc.Perspective = p
			return nil
		case "clip_node":
			id, err := decodeClipID(value)
			if err != nil {
				return err
			}
			sc.ClipNode = id
			return nil
		case "reference_frame_id":
			sc.ReferenceFrameID = new(uint64)
			return value.Decode(sc.ReferenceFrameID)
		case "glyph_raster_space":
			return value.Decode(&sc.GlyphRasterSpace)
		case "scroll_offset":
			p, err := decodePoint(value)
			if err != nil {
				return err
			}
			sc.ScrollOffset = &p
			return nil
		case "mix_blend_mode":
			var name string
			if err := value.Decode(&name); err != nil {
				return err
			}
			mix, ok := gfx.ParseMix(name)
			if !ok {
				return fmt.Errorf("line %d: unknown mix-blend-mode %q", value.Line, name)
			}
			sc.MixBlendMode = mix
			return nil
		case "filters":
			return value.Decode(&sc.Filters)
		case "items":
			seenItems = true
			return value.Decode(&sc.Items)
		default:
			return errUnknownField
		}
	})
	if err != nil {
		return err
	}
	if !seenItems {
		return fmt.Errorf("line %d: stacking context has no items", node.Line)
	}
	return nil
}

func (sc StackingContext) MarshalYAML() (any, error) { return sc.node(), nil }

func (sc StackingContext) node() *yaml.Node {
	var content []*yaml.Node
	if sc.Bounds != nil {
		content = append(content, scalarNode("bounds"), sc.Bounds.node())
	}
	if sc.Transform != nil {
		content = append(content, scalarNode("transform"), sc.Transform.node())
	}
	if sc.Perspective != nil {
		content = append(content, scalarNode("perspective"), encodePerspective(sc.Perspective))
	}
	if sc.ClipNode != nil {
		content = append(content, scalarNode("clip_node"), encodeClipID(sc.ClipNode))
	}
	if sc.ReferenceFrameID != nil {
		content = append(content, scalarNode("reference_frame_id"), uintNode(*sc.ReferenceFrameID))
	}
	if sc.GlyphRasterSpace.Local {
		content = append(content, scalarNode("glyph_raster_space"), sc.GlyphRasterSpace.node())
	}
	if sc.ScrollOffset != nil {
		content = append(content, scalarNode("scroll_offset"), encodePoint(*sc.ScrollOffset))
	}
	if sc.MixBlendMode != gfx.MixNormal {
		content = append(content, scalarNode("mix_blend_mode"), scalarNode(sc.MixBlendMode.String()))
	}
	if len(sc.Filters) != 0 {
		filters := &yaml.Node{Kind: yaml.SequenceNode}
		for _, f := range sc.Filters {
			filters.Content = append(filters.Content, f.node())
		}
		content = append(content, scalarNode("filters"), filters)
	}
	items := &yaml.Node{Kind: yaml.SequenceNode}
	for _, it := range sc.Items {
		items.Content = append(items.Content, it.node())
	}
	content = append(content, scalarNode("items"), items)
	return &yaml.Node{Kind: yaml.MappingNode, Content: content}
}

// Load parses a YAML scene document.
func Load(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("loading scene: %w", err)
	}
	return doc, nil
}

// Save serializes a document to YAML. Fields holding their defaults
// are omitted; Load accepts both forms.
func Save(doc Document) ([]byte, error) {
	return yaml.Marshal(doc)
}
