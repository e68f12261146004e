package scene

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ClipID names a clip or scroll node established earlier in the tree.
type ClipID interface {
	isClipID()
}

type SpecificClip uint64

type RootReferenceFrame struct{}

type RootScrollNode struct{}

func (SpecificClip) isClipID()       {}
func (RootReferenceFrame) isClipID() {}
func (RootScrollNode) isClipID()     {}

func decodeClipID(node *yaml.Node) (ClipID, error) {
	node = deref(node)
	if node.Kind == yaml.ScalarNode {
		switch node.Value {
		case "root-reference-frame":
			return RootReferenceFrame{}, nil
		case "root-scroll-node":
			return RootScrollNode{}, nil
		}
		return nil, fmt.Errorf("line %d: unknown clip node %q", node.Line, node.Value)
	}
	key, value, err := singleKey(node)
	if err != nil {
		return nil, err
	}
	if key != "specific" {
		return nil, fmt.Errorf("line %d: unknown clip node %q", node.Line, key)
	}
	var id uint64
	if err := value.Decode(&id); err != nil {
		return nil, err
	}
	return SpecificClip(id), nil
}

func encodeClipID(id ClipID) *yaml.Node {
	switch id := id.(type) {
	case SpecificClip:
		return singleKeyMap("specific", uintNode(uint64(id)))
	case RootReferenceFrame:
		return scalarNode("root-reference-frame")
	case RootScrollNode:
		return scalarNode("root-scroll-node")
	default:
		panic(fmt.Sprintf("unhandled type %T", id))
	}
}

// ClipAndScroll assigns an item to a clip node and a scroll node. A nil
// ClipAndScroll inherits both from the surrounding context.
type ClipAndScroll interface {
	isClipAndScroll()
}

// SameClipScroll clips and scrolls with the same node.
type SameClipScroll struct {
	Node ClipID
}

type SeparateClipScroll struct {
	Clip   ClipID
	Scroll ClipID
}

func (SameClipScroll) isClipAndScroll()     {}
func (SeparateClipScroll) isClipAndScroll() {}

func decodeClipAndScroll(node *yaml.Node) (ClipAndScroll, error) {
	node = deref(node)
	if node.Kind == yaml.ScalarNode {
		if node.Value != "none" {
			return nil, fmt.Errorf("line %d: unknown clip-and-scroll %q", node.Line, node.Value)
		}
		return nil, nil
	}
	key, value, err := singleKey(node)
	if err != nil {
		return nil, err
	}
	switch key {
	case "same":
		id, err := decodeClipID(value)
		if err != nil {
			return nil, err
		}
		return SameClipScroll{Node: id}, nil
	case "both":
		var cs SeparateClipScroll
		err := decodeMapping(value, func(key string, value *yaml.Node) error {
			switch key {
			case "clip":
				id, err := decodeClipID(value)
				if err != nil {
					return err
				}
				cs.Clip = id
				return nil
			case "scroll":
				id, err := decodeClipID(value)
				if err != nil {
					return err
				}
				cs.Scroll = id
				return nil
			default:
				return errUnknownField
			}
		})
		return cs, err
	default:
		return nil, fmt.Errorf("line %d: unknown clip-and-scroll %q", node.Line, key)
	}
}

func encodeClipAndScroll(cs ClipAndScroll) *yaml.Node {
	switch cs := cs.(type) {
	case SameClipScroll:
		return singleKeyMap("same", encodeClipID(cs.Node))
	case SeparateClipScroll:
		return singleKeyMap("both", mappingNode(
			scalarNode("clip"), encodeClipID(cs.Clip),
			scalarNode("scroll"), encodeClipID(cs.Scroll),
		))
	default:
		panic(fmt.Sprintf("unhandled type %T", cs))
	}
}

// BorderRadius rounds the corners of a clip rectangle. A nil
// BorderRadius leaves them square.
type BorderRadius interface {
	isBorderRadius()
}

type UniformRadius float32

type CustomRadius struct {
	TopLeft     float32
	TopRight    float32
	BottomLeft  float32
	BottomRight float32
}

func (UniformRadius) isBorderRadius() {}
func (CustomRadius) isBorderRadius()  {}

func decodeBorderRadius(node *yaml.Node) (BorderRadius, error) {
	node = deref(node)
	if node.Kind == yaml.ScalarNode {
		if node.Value != "zero" {
			return nil, fmt.Errorf("line %d: unknown border radius %q", node.Line, node.Value)
		}
		return nil, nil
	}
	key, value, err := singleKey(node)
	if err != nil {
		return nil, err
	}
	switch key {
	case "uniform":
		var r float32
		if err := value.Decode(&r); err != nil {
			return nil, err
		}
		return UniformRadius(r), nil
	case "custom":
		var r CustomRadius
		err := decodeMapping(value, func(key string, value *yaml.Node) error {
			switch key {
			case "top_left":
				return value.Decode(&r.TopLeft)
			case "top_right":
				return value.Decode(&r.TopRight)
			case "bottom_left":
				return value.Decode(&r.BottomLeft)
			case "bottom_right":
				return value.Decode(&r.BottomRight)
			default:
				return errUnknownField
			}
		})
		return r, err
	default:
		return nil, fmt.Errorf("line %d: unknown border radius %q", node.Line, key)
	}
}

func encodeBorderRadius(r BorderRadius) *yaml.Node {
	switch r := r.(type) {
	case UniformRadius:
		return singleKeyMap("uniform", float32Node(float32(r)))
	case CustomRadius:
		return singleKeyMap("custom", mappingNode(
			scalarNode("top_left"), float32Node(r.TopLeft),
			scalarNode("top_right"), float32Node(r.TopRight),
			scalarNode("bottom_left"), float32Node(r.BottomLeft),
			scalarNode("bottom_right"), float32Node(r.BottomRight),
		))
	default:
		panic(fmt.Sprintf("unhandled type %T", r))
	}
}

// ClipMode selects which side of a complex clip is kept.
type ClipMode int

const (
	Clip ClipMode = iota
	ClipOut
)

func (m ClipMode) String() string {
	switch m {
	case Clip:
		return "clip"
	case ClipOut:
		return "clip-out"
	default:
		return fmt.Sprintf("ClipMode(%d)", int(m))
	}
}

func (m *ClipMode) UnmarshalYAML(node *yaml.Node) error {
	node = deref(node)
	switch node.Value {
	case "clip":
		*m = Clip
	case "clip-out":
		*m = ClipOut
	default:
		return fmt.Errorf("line %d: unknown clip mode %q", node.Line, node.Value)
	}
	return nil
}

func (m ClipMode) MarshalYAML() (any, error) { return m.String(), nil }

// ComplexClip is a rounded rectangle clip applied to a single item.
type ComplexClip struct {
	Rect   LayoutRect
	Radius BorderRadius
	Mode   ClipMode
}

func (c *ComplexClip) UnmarshalYAML(node *yaml.Node) error {
	return decodeMapping(node, func(key string, value *yaml.Node) error {
		switch key {
		case "rect":
			return value.Decode(&c.Rect)
		case "radius":
			r, err := decodeBorderRadius(value)
			if err != nil {
				return err
			}
			c.Radius = r
			return nil
		case "clip_mode":
			return value.Decode(&c.Mode)
		default:
			return errUnknownField
		}
	})
}

func (c ComplexClip) MarshalYAML() (any, error) { return c.node(), nil }

func (c ComplexClip) node() *yaml.Node {
	content := []*yaml.Node{scalarNode("rect"), c.Rect.node()}
	if c.Radius != nil {
		content = append(content, scalarNode("radius"), encodeBorderRadius(c.Radius))
	}
	if c.Mode != Clip {
		content = append(content, scalarNode("clip_mode"), scalarNode(c.Mode.String()))
	}
	return &yaml.Node{Kind: yaml.MappingNode, Content: content}
}

// ItemKind is the payload of a display item.
type ItemKind interface {
	isItemKind()
}

type RectItem struct{}

type ClearRectItem struct {
	Bounds LayoutRect
}

type LineItem struct{}

type ImageItem struct{}

type YuvImageItem struct{}

type TextItem struct{}

type ScrollFrameItem struct{}

type StickyFrameItem struct{}

type ClipItem struct{}

type ClipChainItem struct{}

type BorderItem struct{}

type GradientItem struct{}

type RadialGradientItem struct{}

type BoxShadowItem struct{}

type IframeItem struct{}

type StackingContextItem struct {
	Context StackingContext
}

type PopAllShadowsItem struct{}

func (RectItem) isItemKind()            {}
func (ClearRectItem) isItemKind()       {}
func (LineItem) isItemKind()            {}
func (ImageItem) isItemKind()           {}
func (YuvImageItem) isItemKind()        {}
func (TextItem) isItemKind()            {}
func (ScrollFrameItem) isItemKind()     {}
func (StickyFrameItem) isItemKind()     {}
func (ClipItem) isItemKind()            {}
func (ClipChainItem) isItemKind()       {}
func (BorderItem) isItemKind()          {}
func (GradientItem) isItemKind()        {}
func (RadialGradientItem) isItemKind()  {}
func (BoxShadowItem) isItemKind()       {}
func (IframeItem) isItemKind()          {}
func (StackingContextItem) isItemKind() {}
func (PopAllShadowsItem) isItemKind()   {}

func decodeItemKind(node *yaml.Node) (ItemKind, error) {
	node = deref(node)
	if node.Kind == yaml.ScalarNode {
		switch node.Value {
		case "rect":
			return RectItem{}, nil
		case "line":
			return LineItem{}, nil
		case "image":
			return ImageItem{}, nil
		case "yuv-image":
			return YuvImageItem{}, nil
		case "text":
			return TextItem{}, nil
		case "scroll-frame":
			return ScrollFrameItem{}, nil
		case "sticky-frame":
			return StickyFrameItem{}, nil
		case "clip":
			return ClipItem{}, nil
		case "clip-chain":
			return ClipChainItem{}, nil
		case "border":
			return BorderItem{}, nil
		case "gradient":
			return GradientItem{}, nil
		case "radial-gradient":
			return RadialGradientItem{}, nil
		case "box-shadow":
			return BoxShadowItem{}, nil
		case "iframe":
			return IframeItem{}, nil
		case "pop-all-shadows":
			return PopAllShadowsItem{}, nil
		}
		return nil, fmt.Errorf("line %d: unknown item kind %q", node.Line, node.Value)
	}
	key, value, err := singleKey(node)
	if err != nil {
		return nil, err
	}
	switch key {
	case "clear-rect":
		var item ClearRectItem
		err := decodeMapping(value, func(key string, value *yaml.Node) error {
			switch key {
			case "bounds":
				return value.Decode(&item.Bounds)
			default:
				return errUnknownField
			}
		})
		return item, err
	case "stacking-context":
		var item StackingContextItem
		if err := value.Decode(&item.Context); err != nil {
			return nil, err
		}
		return item, nil
	default:
		return nil, fmt.Errorf("line %d: unknown item kind %q", node.Line, key)
	}
}

func encodeItemKind(kind ItemKind) *yaml.Node {
	switch kind := kind.(type) {
	case RectItem:
		return scalarNode("rect")
	case ClearRectItem:
		return singleKeyMap("clear-rect", mappingNode(
			scalarNode("bounds"), kind.Bounds.node(),
		))
	case LineItem:
		return scalarNode("line")
	case ImageItem:
		return scalarNode("image")
	case YuvImageItem:
		return scalarNode("yuv-image")
	case TextItem:
		return scalarNode("text")
	case ScrollFrameItem:
		return scalarNode("scroll-frame")
	case StickyFrameItem:
		return scalarNode("sticky-frame")
	case ClipItem:
		return scalarNode("clip")
	case ClipChainItem:
		return scalarNode("clip-chain")
	case BorderItem:
		return scalarNode("border")
	case GradientItem:
		return scalarNode("gradient")
	case RadialGradientItem:
		return scalarNode("radial-gradient")
	case BoxShadowItem:
		return scalarNode("box-shadow")
	case IframeItem:
		return scalarNode("iframe")
	case StackingContextItem:
		return singleKeyMap("stacking-context", kind.Context.node())
	case PopAllShadowsItem:
		return scalarNode("pop-all-shadows")
	default:
		panic(fmt.Sprintf("unhandled type %T", kind))
	}
}

// Item is one display item in a stacking context.
type Item struct {
	Kind          ItemKind
	ClipAndScroll ClipAndScroll
	ComplexClip   *ComplexClip
	ClipRect      *LayoutRect
	// BackfaceVisible defaults to true when absent from the document.
	BackfaceVisible bool
	Tag             *[2]int64
}

func (it *Item) UnmarshalYAML(node *yaml.Node) error {
	it.BackfaceVisible = true
	err := decodeMapping(node, func(key string, value *yaml.Node) error {
		switch key {
		case "kind":
			kind, err := decodeItemKind(value)
			if err != nil {
				return err
			}
			it.Kind = kind
			return nil
		case "clip_and_scroll":
			cs, err := decodeClipAndScroll(value)
			if err != nil {
				return err
			}
			it.ClipAndScroll = cs
			return nil
		case "complex_clip":
			it.ComplexClip = new(ComplexClip)
			return value.Decode(it.ComplexClip)
		case "clip_rect":
			it.ClipRect = new(LayoutRect)
			return value.Decode(it.ClipRect)
		case "backface_visible":
			return value.Decode(&it.BackfaceVisible)
		case "tag":
			it.Tag = new([2]int64)
			return value.Decode(it.Tag)
		default:
			return errUnknownField
		}
	})
	if err != nil {
		return err
	}
	if it.Kind == nil {
		return fmt.Errorf("line %d: item has no kind", node.Line)
	}
	return nil
}

func (it Item) MarshalYAML() (any, error) { return it.node(), nil }

func (it Item) node() *yaml.Node {
	content := []*yaml.Node{scalarNode("kind"), encodeItemKind(it.Kind)}
	if it.ClipAndScroll != nil {
		content = append(content, scalarNode("clip_and_scroll"), encodeClipAndScroll(it.ClipAndScroll))
	}
	if it.ComplexClip != nil {
		content = append(content, scalarNode("complex_clip"), it.ComplexClip.node())
	}
	if it.ClipRect != nil {
		content = append(content, scalarNode("clip_rect"), it.ClipRect.node())
	}
	if !it.BackfaceVisible {
		content = append(content, scalarNode("backface_visible"), scalarNode("false"))
	}
	if it.Tag != nil {
		content = append(content, scalarNode("tag"), intSeq(it.Tag[0], it.Tag[1]))
	}
	return &yaml.Node{Kind: yaml.MappingNode, Content: content}
}
