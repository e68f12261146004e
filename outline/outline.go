// Package outline turns straight-edge outline commands into 8-bit
// coverage bitmaps for the vector stencil pipeline.
//
// Outlines are baked once into flattened contours and drawn any number of
// times at different target sizes. All contours are closed when drawn: a
// contour is terminated either by an explicit ClosePath or by the MoveTo
// that starts the next one.
package outline

import (
	"iter"

	"honnef.co/go/curve"
)

// Command is one step of an outline.
type Command interface {
	isCommand()
}

// MoveTo starts a new contour at P, terminating the previous one.
type MoveTo struct {
	P curve.Point
}

// LineTo extends the current contour with a straight edge to P.
type LineTo struct {
	P curve.Point
}

// ClosePath terminates the current contour, joining it back to its first
// point.
type ClosePath struct{}

func (MoveTo) isCommand()    {}
func (LineTo) isCommand()    {}
func (ClosePath) isCommand() {}

// Outline is a sequence of commands describing zero or more closed
// contours.
type Outline struct {
	Commands []Command
}

func (o *Outline) MoveTo(p curve.Point) {
	o.Commands = append(o.Commands, MoveTo{p})
}

func (o *Outline) LineTo(p curve.Point) {
	o.Commands = append(o.Commands, LineTo{p})
}

func (o *Outline) ClosePath() {
	o.Commands = append(o.Commands, ClosePath{})
}

// Counts returns upper bounds on the points and contour slots of the
// baked form. A LineTo accounts for two points because the first edge of
// a contour also emits the pending move point.
func (o *Outline) Counts() (points, contours int) {
	for _, cmd := range o.Commands {
		switch cmd.(type) {
		case MoveTo:
		case ClosePath:
			points++
			contours++
		case LineTo:
			points += 2
			contours++
		}
	}
	return points, contours
}

// PathElements yields the outline's commands as path elements, the way
// shapes from honnef.co/go/curve do. The tolerance is ignored since
// every edge is already a line.
func (o *Outline) PathElements(tolerance float64) iter.Seq[curve.PathElement] {
	return func(yield func(curve.PathElement) bool) {
		for _, cmd := range o.Commands {
			var el curve.PathElement
			switch cmd := cmd.(type) {
			case MoveTo:
				el = curve.PathElement{Kind: curve.MoveToKind, P0: cmd.P}
			case LineTo:
				el = curve.PathElement{Kind: curve.LineToKind, P0: cmd.P}
			case ClosePath:
				el = curve.PathElement{Kind: curve.ClosePathKind}
			}
			if !yield(el) {
				return
			}
		}
	}
}
