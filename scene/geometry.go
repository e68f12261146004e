package scene

import (
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
	"honnef.co/go/curve"
)

// LayoutRect is an axis-aligned rectangle in layout space, written as
// [x, y, width, height].
type LayoutRect struct {
	Origin curve.Point
	Width  float64
	Height float64
}

func (r *LayoutRect) UnmarshalYAML(node *yaml.Node) error {
	vals, err := floatValues(node, 4)
	if err != nil {
		return err
	}
	*r = LayoutRect{
		Origin: curve.Point{X: vals[0], Y: vals[1]},
		Width:  vals[2],
		Height: vals[3],
	}
	return nil
}

func (r LayoutRect) MarshalYAML() (any, error) { return r.node(), nil }

func (r LayoutRect) node() *yaml.Node {
	return floatSeq(r.Origin.X, r.Origin.Y, r.Width, r.Height)
}

func decodePoint(node *yaml.Node) (curve.Point, error) {
	vals, err := floatValues(node, 2)
	if err != nil {
		return curve.Point{}, err
	}
	return curve.Point{X: vals[0], Y: vals[1]}, nil
}

func encodePoint(p curve.Point) *yaml.Node {
	return floatSeq(p.X, p.Y)
}

// errUnknownField is returned by field callbacks so that decodeMapping
// can report the offending key with its line number.
var errUnknownField = errors.New("unknown field")

// deref follows alias nodes to the node they anchor.
func deref(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

// decodeMapping walks the key/value pairs of a mapping node, calling
// field once per pair. Duplicate keys are an error; walking the node tree
// ourselves bypasses the rejection the yaml decoder would do.
func decodeMapping(node *yaml.Node, field func(key string, value *yaml.Node) error) error {
	node = deref(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i]
		if seen[key.Value] {
			return fmt.Errorf("line %d: duplicate key %q", key.Line, key.Value)
		}
		seen[key.Value] = true
		if err := field(key.Value, node.Content[i+1]); err != nil {
			if err == errUnknownField {
				return fmt.Errorf("line %d: unknown field %q", key.Line, key.Value)
			}
			return err
		}
	}
	return nil
}

// singleKey unwraps a mapping of exactly one key/value pair, the form
// tagged unions use for variants that carry a payload.
func singleKey(node *yaml.Node) (string, *yaml.Node, error) {
	node = deref(node)
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return "", nil, fmt.Errorf("line %d: expected a mapping with a single key", node.Line)
	}
	return node.Content[0].Value, node.Content[1], nil
}

func singleKeyMap(key string, value *yaml.Node) *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{scalarNode(key), value},
	}
}

func mappingNode(pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: pairs}
}

func scalarNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: s}
}

func floatNode(v float64) *yaml.Node {
	return scalarNode(strconv.FormatFloat(v, 'g', -1, 64))
}

func float32Node(v float32) *yaml.Node {
	return scalarNode(strconv.FormatFloat(float64(v), 'g', -1, 32))
}

func uintNode(v uint64) *yaml.Node {
	return scalarNode(strconv.FormatUint(v, 10))
}

func floatSeq(vals ...float64) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range vals {
		n.Content = append(n.Content, floatNode(v))
	}
	return n
}

func intSeq(vals ...int64) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range vals {
		n.Content = append(n.Content, scalarNode(strconv.FormatInt(v, 10)))
	}
	return n
}

// floatValues decodes a sequence of exactly want numbers.
func floatValues(node *yaml.Node, want int) ([]float64, error) {
	var vals []float64
	if err := node.Decode(&vals); err != nil {
		return nil, err
	}
	if len(vals) != want {
		return nil, fmt.Errorf("line %d: expected %d numbers, got %d", node.Line, want, len(vals))
	}
	return vals, nil
}
