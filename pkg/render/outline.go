package render

import (
	"image"
	"math"

	"golang.org/x/image/vector"

	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"
)

// curveSteps is the number of line segments a stroked Bézier curve is flattened into
const curveSteps = 16

type segOp int

const (
	segMove segOp = iota
	segLine
	segQuad
	segCube
	segClose
)

type segment struct {
	op  segOp
	pts [3]pdf.Point
}

// outline is a device space path waiting to be rasterized
type outline struct {
	segs []segment

	hasBounds              bool
	minX, minY, maxX, maxY float64
}

func (o *outline) empty() bool {
	return !o.hasBounds
}

func (o *outline) add(op segOp, pts ...pdf.Point) {
	s := segment{op: op}
	for _, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return
		}
	}
	for i, p := range pts {
		s.pts[i] = p
		if !o.hasBounds {
			o.minX, o.maxX, o.minY, o.maxY = p.X, p.X, p.Y, p.Y
			o.hasBounds = true
			continue
		}
		o.minX = math.Min(o.minX, p.X)
		o.minY = math.Min(o.minY, p.Y)
		o.maxX = math.Max(o.maxX, p.X)
		o.maxY = math.Max(o.maxY, p.Y)
	}
	o.segs = append(o.segs, s)
}

// bounds returns the pixel rectangle covering the outline
func (o *outline) bounds() image.Rectangle {
	clampInt := func(v float64) int {
		return int(math.Max(-1<<30, math.Min(1<<30, v)))
	}
	return image.Rect(
		clampInt(math.Floor(o.minX)), clampInt(math.Floor(o.minY)),
		clampInt(math.Ceil(o.maxX)), clampInt(math.Ceil(o.maxY)),
	)
}

// replay feeds the outline to z, translated by (-dx, -dy)
func (o *outline) replay(z *vector.Rasterizer, dx, dy float32) {
	pt := func(p pdf.Point) (float32, float32) {
		return float32(p.X) - dx, float32(p.Y) - dy
	}
	open := false
	for _, s := range o.segs {
		switch s.op {
		case segMove:
			if open {
				z.ClosePath()
			}
			z.MoveTo(pt(s.pts[0]))
			open = true
		case segLine:
			x, y := pt(s.pts[0])
			z.LineTo(x, y)
		case segQuad:
			bx, by := pt(s.pts[0])
			cx, cy := pt(s.pts[1])
			z.QuadTo(bx, by, cx, cy)
		case segCube:
			bx, by := pt(s.pts[0])
			cx, cy := pt(s.pts[1])
			ex, ey := pt(s.pts[2])
			z.CubeTo(bx, by, cx, cy, ex, ey)
		case segClose:
			if open {
				z.ClosePath()
				open = false
			}
		}
	}
	if open {
		z.ClosePath()
	}
}

func transform(ctm pdf.Matrix, p pdf.Point) pdf.Point {
	x, y := ctm.Transform(p.X, p.Y)
	return pdf.Point{X: x, Y: y}
}

// addPath appends a user space path mapped through ctm
func (o *outline) addPath(path pdf.Path, ctm pdf.Matrix) {
	started := false
	for _, el := range path {
		switch el.Op {
		case pdf.PathMoveTo:
			if len(el.Points) < 1 {
				continue
			}
			o.add(segMove, transform(ctm, el.Points[0]))
			started = true
		case pdf.PathLineTo:
			if len(el.Points) < 1 || !started {
				continue
			}
			o.add(segLine, transform(ctm, el.Points[0]))
		case pdf.PathCurveTo:
			if len(el.Points) < 3 || !started {
				continue
			}
			o.add(segCube, transform(ctm, el.Points[0]), transform(ctm, el.Points[1]), transform(ctm, el.Points[2]))
		case pdf.PathClose:
			o.add(segClose)
		}
	}
}

// addStroke appends one quad per (flattened) segment of path, each half wide on both sides
func (o *outline) addStroke(path pdf.Path, ctm pdf.Matrix, half float64) {
	var start, cur pdf.Point
	started := false

	line := func(a, b pdf.Point) {
		vx, vy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(vx, vy)
		if l == 0 {
			return
		}
		nx, ny := -vy/l*half, vx/l*half
		o.add(segMove, pdf.Point{X: a.X + nx, Y: a.Y + ny})
		o.add(segLine, pdf.Point{X: b.X + nx, Y: b.Y + ny})
		o.add(segLine, pdf.Point{X: b.X - nx, Y: b.Y - ny})
		o.add(segLine, pdf.Point{X: a.X - nx, Y: a.Y - ny})
		o.add(segClose)
	}

	for _, el := range path {
		switch el.Op {
		case pdf.PathMoveTo:
			if len(el.Points) < 1 {
				continue
			}
			cur = transform(ctm, el.Points[0])
			start = cur
			started = true
		case pdf.PathLineTo:
			if len(el.Points) < 1 || !started {
				continue
			}
			next := transform(ctm, el.Points[0])
			line(cur, next)
			cur = next
		case pdf.PathCurveTo:
			if len(el.Points) < 3 || !started {
				continue
			}
			c1, c2 := transform(ctm, el.Points[0]), transform(ctm, el.Points[1])
			end := transform(ctm, el.Points[2])
			prev := cur
			for i := 1; i <= curveSteps; i++ {
				p := cubicAt(cur, c1, c2, end, float64(i)/curveSteps)
				line(prev, p)
				prev = p
			}
			cur = end
		case pdf.PathClose:
			if started {
				line(cur, start)
				cur = start
			}
		}
	}
}

func cubicAt(p0, p1, p2, p3 pdf.Point, t float64) pdf.Point {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return pdf.Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
