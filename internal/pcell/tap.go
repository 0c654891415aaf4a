package pcell

import (
	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/tech"
)

func synthPtap(pdk *tech.Tech, spec *device.Spec) (*layout.Cell, error) {
	return tapCore(pdk, spec, false)
}

func synthNtap(pdk *tech.Tech, spec *device.Spec) (*layout.Cell, error) {
	return tapCore(pdk, spec, true)
}

// tapCore lays out a substrate (or well) tap: an active rectangle
// centered on the origin, the implant and recognition markers, a
// rows-by-cols contact grid centered in the active, and the Metal1
// strap over the contacts. The n-flavor adds the NWell.
func tapCore(pdk *tech.Tech, spec *device.Spec, isN bool) (*layout.Cell, error) {
	r := pdk.Rules
	contSize := r.Dist("cont.size")
	contSpacing := r.Dist("cont.spacing")
	sdEnc := r.Dist("tap.enc.sd")
	mEnc := r.Dist("tap.m1.enc")

	L := spec.Dim("length")
	W := spec.Dim("width")
	rows := spec.Count("rows")
	cols := spec.Count("cols")

	pitch := contSize + contSpacing
	arrW := geom.Coord(cols)*contSize + geom.Coord(cols-1)*contSpacing
	arrH := geom.Coord(rows)*contSize + geom.Coord(rows-1)*contSpacing
	if arrW > L || arrH > W {
		return nil, &DesignRuleViolation{
			Kind:   spec.Kind(),
			Rule:   "cont.spacing",
			Detail: "contact grid does not fit inside the active region",
		}
	}

	b := newBuilder(pdk, CellName(spec), spec)

	hl := pdk.Snap.Snap(L / 2)
	hw := pdk.Snap.Snap(W / 2)
	active := geom.NewRect(-hl, -hw, L-hl, W-hw)
	b.rectR("Activ", active)

	if isN {
		b.rectR("NWell", active.Inset(-r.Dist("tap.nwell.enc")))
		b.rectR("nSD", active.Inset(-sdEnc))
		b.rectR("Ntap", active)
	} else {
		b.rectR("pSD", active.Inset(-sdEnc))
		b.rectR("Ptap", active)
	}

	// Contact grid centered in the active region.
	ax := pdk.Snap.Snap(active.X1 + (L-arrW)/2)
	ay := pdk.Snap.Snap(active.Y1 + (W-arrH)/2)
	for i := 0; i < cols; i++ {
		for j := 0; j < rows; j++ {
			x := ax + geom.Coord(i)*pitch
			y := ay + geom.Coord(j)*pitch
			b.rect("Cont", x, y, x+contSize, y+contSize)
		}
	}

	strap := geom.NewRect(ax, ay, ax+arrW, ay+arrH).Inset(-mEnc)
	b.rectR("Metal1", strap)
	b.rectR("Metal1.pin", strap)
	b.port("TAP", "Metal1.pin", strap, sideLeft)

	return b.finish()
}
