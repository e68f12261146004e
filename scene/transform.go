package scene

import (
	"fmt"

	"gopkg.in/yaml.v3"
	"honnef.co/go/curve"
)

// TransformStyle determines whether a stacking context's children are
// flattened into its plane or kept in 3D space.
type TransformStyle int

const (
	Flat TransformStyle = iota
	Preserve3D
)

func (s TransformStyle) String() string {
	switch s {
	case Flat:
		return "flat"
	case Preserve3D:
		return "preserve-3d"
	default:
		return fmt.Sprintf("TransformStyle(%d)", int(s))
	}
}

func (s *TransformStyle) UnmarshalYAML(node *yaml.Node) error {
	node = deref(node)
	switch node.Value {
	case "flat":
		*s = Flat
	case "preserve-3d":
		*s = Preserve3D
	default:
		return fmt.Errorf("line %d: unknown transform style %q", node.Line, node.Value)
	}
	return nil
}

func (s TransformStyle) MarshalYAML() (any, error) { return s.String(), nil }

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

func (a *Axis) UnmarshalYAML(node *yaml.Node) error {
	node = deref(node)
	switch node.Value {
	case "x":
		*a = AxisX
	case "y":
		*a = AxisY
	case "z":
		*a = AxisZ
	default:
		return fmt.Errorf("line %d: unknown axis %q", node.Line, node.Value)
	}
	return nil
}

func (a Axis) MarshalYAML() (any, error) { return a.String(), nil }

// LayoutTransform is a row-major 4x4 matrix, written as a sequence of
// 16 numbers.
type LayoutTransform [16]float32

func (m *LayoutTransform) UnmarshalYAML(node *yaml.Node) error {
	vals, err := floatValues(node, len(m))
	if err != nil {
		return err
	}
	for i, v := range vals {
		m[i] = float32(v)
	}
	return nil
}

func (m LayoutTransform) MarshalYAML() (any, error) { return m.node(), nil }

func (m LayoutTransform) node() *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range m {
		n.Content = append(n.Content, float32Node(v))
	}
	return n
}

// ComplexTransform is a transform expressed as an ordered list of
// modifiers, applied left to right.
type ComplexTransform struct {
	Style     TransformStyle
	Modifiers []Transform
}

func (ct *ComplexTransform) UnmarshalYAML(node *yaml.Node) error {
	return decodeMapping(node, func(key string, value *yaml.Node) error {
		switch key {
		case "style":
			return value.Decode(&ct.Style)
		case "modifiers":
			value = deref(value)
			if value.Kind != yaml.SequenceNode {
				return fmt.Errorf("line %d: expected a sequence of transforms", value.Line)
			}
			for _, mod := range value.Content {
				t, err := decodeTransform(mod)
				if err != nil {
					return err
				}
				ct.Modifiers = append(ct.Modifiers, t)
			}
			return nil
		default:
			return errUnknownField
		}
	})
}

func (ct ComplexTransform) MarshalYAML() (any, error) { return ct.node(), nil }

func (ct ComplexTransform) node() *yaml.Node {
	mods := &yaml.Node{Kind: yaml.SequenceNode}
	for _, mod := range ct.Modifiers {
		mods.Content = append(mods.Content, encodeTransform(mod))
	}
	return mappingNode(
		scalarNode("style"), scalarNode(ct.Style.String()),
		scalarNode("modifiers"), mods,
	)
}

// Transform is a single transform modifier.
type Transform interface {
	isTransform()
}

type TransformMatrix LayoutTransform

type TransformTranslate struct {
	X, Y float64
}

type TransformRotate struct {
	Axis    Axis
	Degrees float32
	Origin  curve.Point
}

// TransformScale scales along one axis, or uniformly when Axis is nil.
type TransformScale struct {
	Axis  *Axis
	Value float32
}

type TransformSkew struct {
	Axis  Axis
	Value float32
}

type TransformPerspective struct {
	Distance float32
}

func (TransformMatrix) isTransform()      {}
func (TransformTranslate) isTransform()   {}
func (TransformRotate) isTransform()      {}
func (TransformScale) isTransform()       {}
func (TransformSkew) isTransform()        {}
func (TransformPerspective) isTransform() {}

func decodeTransform(node *yaml.Node) (Transform, error) {
	key, value, err := singleKey(node)
	if err != nil {
		return nil, err
	}
	switch key {
	case "matrix":
		var m LayoutTransform
		if err := value.Decode(&m); err != nil {
			return nil, err
		}
		return TransformMatrix(m), nil
	case "translate":
		vals, err := floatValues(value, 2)
		if err != nil {
			return nil, err
		}
		return TransformTranslate{X: vals[0], Y: vals[1]}, nil
	case "rotate":
		var t TransformRotate
		err := decodeMapping(value, func(key string, value *yaml.Node) error {
			switch key {
			case "axis":
				return value.Decode(&t.Axis)
			case "degrees":
				return value.Decode(&t.Degrees)
			case "origin":
				p, err := decodePoint(value)
				if err != nil {
					return err
				}
				t.Origin = p
				return nil
			default:
				return errUnknownField
			}
		})
		return t, err
	case "scale":
		var t TransformScale
		err := decodeMapping(value, func(key string, value *yaml.Node) error {
			switch key {
			case "axis":
				t.Axis = new(Axis)
				return value.Decode(t.Axis)
			case "value":
				return value.Decode(&t.Value)
			default:
				return errUnknownField
			}
		})
		return t, err
	case "skew":
		var t TransformSkew
		err := decodeMapping(value, func(key string, value *yaml.Node) error {
			switch key {
			case "axis":
				return value.Decode(&t.Axis)
			case "value":
				return value.Decode(&t.Value)
			default:
				return errUnknownField
			}
		})
		return t, err
	case "perspective":
		var t TransformPerspective
		err := decodeMapping(value, func(key string, value *yaml.Node) error {
			switch key {
			case "distance":
				return value.Decode(&t.Distance)
			default:
				return errUnknownField
			}
		})
		return t, err
	default:
		return nil, fmt.Errorf("line %d: unknown transform %q", node.Line, key)
	}
}

func encodeTransform(t Transform) *yaml.Node {
	switch t := t.(type) {
	case TransformMatrix:
		return singleKeyMap("matrix", LayoutTransform(t).node())
	case TransformTranslate:
		return singleKeyMap("translate", floatSeq(t.X, t.Y))
	case TransformRotate:
		return singleKeyMap("rotate", mappingNode(
			scalarNode("axis"), scalarNode(t.Axis.String()),
			scalarNode("degrees"), float32Node(t.Degrees),
			scalarNode("origin"), encodePoint(t.Origin),
		))
	case TransformScale:
		var content []*yaml.Node
		if t.Axis != nil {
			content = append(content, scalarNode("axis"), scalarNode(t.Axis.String()))
		}
		content = append(content, scalarNode("value"), float32Node(t.Value))
		return singleKeyMap("scale", &yaml.Node{Kind: yaml.MappingNode, Content: content})
	case TransformSkew:
		return singleKeyMap("skew", mappingNode(
			scalarNode("axis"), scalarNode(t.Axis.String()),
			scalarNode("value"), float32Node(t.Value),
		))
	case TransformPerspective:
		return singleKeyMap("perspective", mappingNode(
			scalarNode("distance"), float32Node(t.Distance),
		))
	default:
		panic(fmt.Sprintf("unhandled type %T", t))
	}
}

// Perspective applies a perspective projection to a stacking context's
// children. A nil Perspective applies none.
type Perspective interface {
	isPerspective()
}

type PerspectiveMatrix LayoutTransform

type PerspectiveSimple struct {
	Distance float32
	Origin   *curve.Point
}

func (PerspectiveMatrix) isPerspective() {}
func (PerspectiveSimple) isPerspective() {}

func decodePerspective(node *yaml.Node) (Perspective, error) {
	node = deref(node)
	if node.Kind == yaml.ScalarNode {
		if node.Value != "none" {
			return nil, fmt.Errorf("line %d: unknown perspective %q", node.Line, node.Value)
		}
		return nil, nil
	}
	key, value, err := singleKey(node)
	if err != nil {
		return nil, err
	}
	switch key {
	case "matrix":
		var m LayoutTransform
		if err := value.Decode(&m); err != nil {
			return nil, err
		}
		return PerspectiveMatrix(m), nil
	case "simple":
		var p PerspectiveSimple
		err := decodeMapping(value, func(key string, value *yaml.Node) error {
			switch key {
			case "distance":
				return value.Decode(&p.Distance)
			case "origin":
				o, err := decodePoint(value)
				if err != nil {
					return err
				}
				p.Origin = &o
				return nil
			default:
				return errUnknownField
			}
		})
		return p, err
	default:
		return nil, fmt.Errorf("line %d: unknown perspective %q", node.Line, key)
	}
}

func encodePerspective(p Perspective) *yaml.Node {
	switch p := p.(type) {
	case PerspectiveMatrix:
		return singleKeyMap("matrix", LayoutTransform(p).node())
	case PerspectiveSimple:
		content := []*yaml.Node{scalarNode("distance"), float32Node(p.Distance)}
		if p.Origin != nil {
			content = append(content, scalarNode("origin"), encodePoint(*p.Origin))
		}
		return singleKeyMap("simple", &yaml.Node{Kind: yaml.MappingNode, Content: content})
	default:
		panic(fmt.Sprintf("unhandled type %T", p))
	}
}
