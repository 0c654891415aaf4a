package pcell

import (
	"fmt"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/tech"
)

func synthRsil(pdk *tech.Tech, spec *device.Spec) (*layout.Cell, error) {
	return resCore(pdk, spec)
}

func synthRppd(pdk *tech.Tech, spec *device.Spec) (*layout.Cell, error) {
	return resCore(pdk, spec)
}

func synthRhigh(pdk *tech.Tech, spec *device.Spec) (*layout.Cell, error) {
	return resCore(pdk, spec)
}

// resCore lays out a poly resistor: the body stripe, end extensions
// carrying the contact heads, Metal1 terminals, and the flavor marker.
// The body is centered on the origin. The three flavors differ only in
// end extension, marker layers and the isolation well.
func resCore(pdk *tech.Tech, spec *device.Spec) (*layout.Cell, error) {
	r := pdk.Rules
	kind := spec.Kind()
	hi := kind == device.Rhigh

	ext := r.Dist("res.end.ext")
	mark := r.Dist("res.mark.margin")
	if hi {
		ext = r.Dist("res.end.ext.hi")
		mark = r.Dist("res.mark.margin.hi")
	}
	contSize := r.Dist("cont.size")
	contSpacing := r.Dist("cont.spacing")
	contEnc := r.Dist("res.cont.enc")
	mEnc := r.Dist("res.m1.enc")

	L := spec.Dim("length")
	W := spec.Dim("width")
	if W < contSize+2*contEnc {
		return nil, &DesignRuleViolation{
			Kind:   kind,
			Rule:   "res.cont.enc",
			Detail: "body too narrow to enclose a contact at the ends",
		}
	}

	b := newBuilder(pdk, CellName(spec), spec)

	// Body centered on the origin; halving an odd-grid extent snaps,
	// so the full length and width are preserved exactly.
	hl := pdk.Snap.Snap(L / 2)
	hw := pdk.Snap.Snap(W / 2)
	body := geom.NewRect(-hl, -hw, L-hl, W-hw)
	b.rectR("GatPoly", body)

	// End extensions.
	left := geom.NewRect(body.X1-ext, body.Y1, body.X1, body.Y2)
	right := geom.NewRect(body.X2, body.Y1, body.X2+ext, body.Y2)
	b.rectR("GatPoly", left)
	b.rectR("GatPoly", right)

	// Flavor markers and isolation.
	silMargin := r.Dist("res.sil.margin")
	switch kind {
	case device.Rsil:
		b.rectR("Rsil", body.Inset(-silMargin))
	case device.Rppd:
		psdMargin := r.Dist("res.psd.margin")
		b.rect("pSD", body.X1-ext, body.Y1-psdMargin, body.X2+ext, body.Y2+psdMargin)
		b.rectR("Rppd", body)
	case device.Rhigh:
		iso := r.Dist("res.nwell.iso")
		b.rect("NWell", body.X1-ext-iso, body.Y1-iso, body.X2+ext+iso, body.Y2+iso)
		b.rectR("Rhigh", body.Inset(-silMargin))
	}

	// Contacts in the end extensions: one centered column per end, two
	// columns for the high-resistance flavor.
	nContY := int((W-contSize)/(contSize+contSpacing)) + 1
	pitch := contSize + contSpacing
	nCols := 1
	if hi {
		nCols = 2
	}
	for k := 0; k < nCols; k++ {
		var xLeft, xRight geom.Coord
		if hi {
			xOff := geom.Coord(k) * pitch
			xLeft = body.X1 - ext + contEnc + xOff
			xRight = body.X2 + ext - contEnc - contSize - xOff
		} else {
			xLeft = pdk.Snap.Snap(body.X1 - ext/2 - contSize/2)
			xRight = pdk.Snap.Snap(body.X2 + ext/2 - contSize/2)
		}
		for i := 0; i < nContY; i++ {
			y := body.Y1 + contEnc + geom.Coord(i)*pitch
			b.rect("Cont", xLeft, y, xLeft+contSize, y+contSize)
			b.rect("Cont", xRight, y, xRight+contSize, y+contSize)
		}
	}

	// Metal1 terminal heads over the end extensions.
	headL := geom.NewRect(body.X1-ext-mEnc, body.Y1-mEnc, body.X1+mEnc, body.Y2+mEnc)
	headR := geom.NewRect(body.X2-mEnc, body.Y1-mEnc, body.X2+ext+mEnc, body.Y2+mEnc)
	b.rectR("Metal1", headL)
	b.rectR("Metal1", headR)
	b.rectR("Metal1.pin", headL)
	b.rectR("Metal1.pin", headR)
	b.port("P1", "Metal1.pin", headL, sideLeft)
	b.port("P2", "Metal1.pin", headR, sideRight)

	// Recognition marker covering body plus ends.
	b.rect("ResistorMark", body.X1-ext-mark, body.Y1-mark, body.X2+ext+mark, body.Y2+mark)

	cell, err := b.finish()
	if err != nil {
		return nil, err
	}
	sheet := r.Elec("sheet." + string(kind))
	squares := float64(L) / float64(W)
	cell.Settings["squares"] = fmt.Sprintf("%.3f", squares)
	cell.Settings["resistance"] = fmt.Sprintf("%.1f", squares*sheet)
	return cell, nil
}
