package pcell

import (
	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/tech"
)

// sealMetals lists the metal layers the ring stacks through, bottom
// up. Via layers sit between consecutive entries.
var sealMetals = []string{
	"Metal1", "Metal2", "Metal3", "Metal4", "Metal5", "TopMetal1", "TopMetal2",
}

var sealVias = []string{
	"Via1", "Via2", "Via3", "Via4", "TopVia1", "TopVia2",
}

// synthSealring lays out a die seal ring: a closed rectangular
// annulus repeated on every metal layer, via arrays along each edge
// stitching the layers together, and the EdgeSeal recognition frame.
// The annulus is emitted as four frame rectangles derived from the
// inner opening and its ring-width outset.
func synthSealring(pdk *tech.Tech, spec *device.Spec) (*layout.Cell, error) {
	r := pdk.Rules
	vs := r.Dist("sealring.via.size")
	vp := r.Dist("sealring.via.pitch")

	W := spec.Dim("width")
	H := spec.Dim("height")
	rw := spec.Dim("ring_width")
	if vs > rw {
		return nil, &DesignRuleViolation{
			Kind:   device.Sealring,
			Rule:   "sealring.via.size",
			Detail: "ring narrower than the stitching via",
		}
	}

	b := newBuilder(pdk, CellName(spec), spec)

	hw := pdk.Snap.Snap(W / 2)
	hh := pdk.Snap.Snap(H / 2)
	inner := geom.NewRect(-hw, -hh, W-hw, H-hh)
	outer := inner.Inset(-rw)

	for _, layer := range sealMetals {
		emitFrame(b, layer, inner, outer)
	}

	// Stitching vias centered on the ring midline along every edge.
	nx := int((W + rw - vs) / vp)
	ny := int((H + rw - vs) / vp)
	half := pdk.Snap.Snap(vs / 2)
	yTop := inner.Y2 + rw/2
	yBot := inner.Y1 - rw/2
	xLeft := inner.X1 - rw/2
	xRight := inner.X2 + rw/2
	for _, layer := range sealVias {
		for i := 0; i < nx; i++ {
			cx := xLeft + half + geom.Coord(i)*vp
			b.rect(layer, cx-half, yTop-half, cx+half, yTop+half)
			b.rect(layer, cx-half, yBot-half, cx+half, yBot+half)
		}
		for i := 0; i < ny; i++ {
			cy := yBot + half + geom.Coord(i)*vp
			b.rect(layer, xLeft-half, cy-half, xLeft+half, cy+half)
			b.rect(layer, xRight-half, cy-half, xRight+half, cy+half)
		}
	}

	// Recognition frame straddling the ring.
	const sealMargin = 500
	emitFrame(b, "EdgeSeal", inner.Inset(sealMargin), outer.Inset(-sealMargin))

	return b.finish()
}

// emitFrame draws the annulus between inner and outer as four
// rectangles: full-height sides plus top and bottom spans between
// them.
func emitFrame(b *builder, layer string, inner, outer geom.Rect) {
	b.rect(layer, outer.X1, outer.Y1, inner.X1, outer.Y2)
	b.rect(layer, inner.X2, outer.Y1, outer.X2, outer.Y2)
	b.rect(layer, inner.X1, outer.Y1, inner.X2, inner.Y1)
	b.rect(layer, inner.X1, inner.Y2, inner.X2, outer.Y2)
}
