package outline

import (
	"image"
	"math"

	"golang.org/x/image/vector"
	"honnef.co/go/curve"
	"honnef.co/go/quilt/renderer"
)

// Picture is an 8-bit coverage bitmap, one byte per pixel, rows top to
// bottom.
type Picture struct {
	Pix    []uint8
	Width  int
	Height int
}

// Row returns the coverage values of row y.
func (p *Picture) Row(y int) []uint8 {
	return p.Pix[y*p.Width : (y+1)*p.Width]
}

// Baked is an outline prepared for rasterization: flattened closed
// contours and their pixel bounds.
type Baked struct {
	contours [][]curve.Point
	bounds   image.Rectangle
}

// Bounds returns the smallest pixel rectangle covering every contour
// point. It is zero for an empty outline.
func (b *Baked) Bounds() image.Rectangle {
	return b.bounds
}

// Empty reports whether the baked outline has no contours.
func (b *Baked) Empty() bool {
	return len(b.contours) == 0
}

// Renderer bakes outlines and rasterizes them into coverage bitmaps. The
// rasterizer state is reused across draws; a Renderer must not be shared
// between goroutines.
type Renderer struct {
	ras vector.Rasterizer
}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Bake flattens the outline's commands into closed contours. Ending the
// command stream inside an open contour is a programming error.
//
// The pen starts at the origin, so a LineTo with no preceding MoveTo
// opens a contour at (0,0). Contours with fewer than two points are
// dropped.
func (r *Renderer) Bake(o *Outline) Baked {
	npoints, ncontours := o.Counts()
	// Counts are upper bounds, so sub-slices of the slab stay valid as it
	// fills.
	slab := make([]curve.Point, 0, npoints)
	contours := make([][]curve.Point, 0, ncontours)

	var (
		inContour bool
		start     int
		cur       curve.Point
	)
	finish := func() {
		if len(slab)-start >= 2 {
			contours = append(contours, slab[start:len(slab):len(slab)])
		}
		start = len(slab)
		inContour = false
	}
	for _, cmd := range o.Commands {
		switch cmd := cmd.(type) {
		case MoveTo:
			if inContour {
				finish()
			}
			cur = cmd.P
		case LineTo:
			if !inContour {
				slab = append(slab, cur)
				inContour = true
			}
			slab = append(slab, cmd.P)
			cur = cmd.P
		case ClosePath:
			if inContour {
				finish()
			}
		}
	}
	if inContour {
		panic("outline ends inside an open contour")
	}

	var bounds image.Rectangle
	if len(slab) != 0 {
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, p := range slab {
			minX = min(minX, p.X)
			minY = min(minY, p.Y)
			maxX = max(maxX, p.X)
			maxY = max(maxY, p.Y)
		}
		bounds = image.Rect(
			int(math.Floor(minX)), int(math.Floor(minY)),
			int(math.Ceil(maxX)), int(math.Ceil(maxY)),
		)
	}

	return Baked{contours: contours, bounds: bounds}
}

// Draw rasterizes the baked outline into a width by height coverage
// bitmap. Coordinates are in pixel space with no implicit translation;
// geometry outside the target is clipped, not scaled. Contours fill with
// antialiased edges, 0xFF meaning fully covered.
func (r *Renderer) Draw(baked *Baked, width, height int) *Picture {
	if width <= 0 || height <= 0 {
		return &Picture{}
	}
	pic := &Picture{
		Pix:    make([]uint8, width*height),
		Width:  width,
		Height: height,
	}
	if baked.Empty() {
		return pic
	}

	r.ras.Reset(width, height)
	for _, contour := range baked.contours {
		r.ras.MoveTo(float32(contour[0].X), float32(contour[0].Y))
		for _, p := range contour[1:] {
			r.ras.LineTo(float32(p.X), float32(p.Y))
		}
		r.ras.ClosePath()
	}
	dst := &image.Alpha{
		Pix:    pic.Pix,
		Stride: width,
		Rect:   image.Rect(0, 0, width, height),
	}
	r.ras.Draw(dst, dst.Rect, image.Opaque, image.Point{})
	return pic
}

// StencilSegments expands a baked outline into one stencil instance per
// contour edge, including each contour's closing edge, tagged with
// pathID.
func StencilSegments(baked *Baked, pathID uint16) []renderer.VectorStencilInstance {
	total := 0
	for _, contour := range baked.contours {
		total += len(contour)
	}
	segments := make([]renderer.VectorStencilInstance, 0, total)
	for _, contour := range baked.contours {
		for i, from := range contour {
			to := contour[(i+1)%len(contour)]
			normal := edgeNormal(from, to)
			segments = append(segments, renderer.VectorStencilInstance{
				FromPosition: [2]float32{float32(from.X), float32(from.Y)},
				CtrlPosition: [2]float32{float32((from.X + to.X) / 2), float32((from.Y + to.Y) / 2)},
				ToPosition:   [2]float32{float32(to.X), float32(to.Y)},
				FromNormal:   normal,
				CtrlNormal:   normal,
				ToNormal:     normal,
				PathID:       pathID,
			})
		}
	}
	return segments
}

// CoverInstanceFor builds the cover instance that copies a stenciled
// outline from origin in the stencil area onto its bounds in the target.
func CoverInstanceFor(baked *Baked, origin image.Point) renderer.VectorCoverInstance {
	b := baked.Bounds()
	return renderer.VectorCoverInstance{
		TargetRect: [4]int32{
			int32(b.Min.X), int32(b.Min.Y),
			int32(b.Dx()), int32(b.Dy()),
		},
		StencilOrigin: [2]int32{int32(origin.X), int32(origin.Y)},
	}
}

func edgeNormal(from, to curve.Point) [2]float32 {
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return [2]float32{}
	}
	return [2]float32{float32(dy / length), float32(-dx / length)}
}
