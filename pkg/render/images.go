package render

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/pyhub-apps/pdfassets-golang/pkg/pdf"
)

// drawImage maps src onto the unit square transformed by ctm.
// Image row 0 is the top of the square, at v = 1.
func drawImage(dst *image.RGBA, src image.Image, ctm pdf.Matrix) {
	b := src.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w == 0 || h == 0 {
		return
	}
	if det := ctm.A*ctm.D - ctm.B*ctm.C; math.Abs(det) < 1e-9 {
		return
	}

	// (sx, sy) -> (u, v) = (sx/w, 1 - sy/h) -> ctm
	aff := f64.Aff3{
		ctm.A / w, -ctm.C / h, ctm.C + ctm.E,
		ctm.B / w, -ctm.D / h, ctm.D + ctm.F,
	}
	// the source origin is b.Min, not (0, 0)
	aff[2] -= aff[0]*float64(b.Min.X) + aff[1]*float64(b.Min.Y)
	aff[5] -= aff[3]*float64(b.Min.X) + aff[4]*float64(b.Min.Y)

	xdraw.BiLinear.Transform(dst, aff, src, b, xdraw.Over, nil)
}
