package pcell

import (
	"fmt"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/tech"
)

// synthCmim lays out a MIM capacitor: the dielectric rectangle with
// its lower-left corner at the origin, the Metal5 bottom plate grown
// around it, and a TopMetal1 top plate sized by the Vmim via array.
// The via grid grows while the resulting top plate still fits the
// dielectric plus the allowed slack, so the top plate area tracks the
// requested capacitor area in quantized steps.
func synthCmim(pdk *tech.Tech, spec *device.Spec) (*layout.Cell, error) {
	r := pdk.Rules
	via := r.Dist("mim.via.size")
	spacing := 2 * via
	ext := via
	botEnc := r.Dist("mim.bot.enc")
	slack := r.Dist("mim.top.slack")

	W := spec.Dim("width")
	L := spec.Dim("length")

	b := newBuilder(pdk, CellName(spec), spec)

	b.rect("MIM", 0, 0, W, L)
	bottom := geom.NewRect(-botEnc, -botEnc, W+botEnc, L+botEnc)
	b.rectR("Metal5", bottom)

	// Largest via grid whose top plate stays within the slack.
	nx, ny := 1, 1
	for 3*geom.Coord(nx)*via+3*via < W+slack {
		nx++
	}
	for 3*geom.Coord(ny)*via+3*via < L+slack {
		ny++
	}
	topW := 3 * geom.Coord(nx) * via
	topL := 3 * geom.Coord(ny) * via

	x0 := pdk.Snap.Snap((W - topW) / 2)
	y0 := pdk.Snap.Snap((L - topL) / 2)
	if x0 < bottom.X1 || y0 < bottom.Y1 {
		return nil, &DesignRuleViolation{
			Kind:   device.Cmim,
			Rule:   "mim.bot.enc",
			Detail: "top plate exceeds the bottom plate",
		}
	}

	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			x := x0 + ext + geom.Coord(i)*(via+spacing)
			y := y0 + ext + geom.Coord(j)*(via+spacing)
			b.rect("Vmim", x, y, x+via, y+via)
		}
	}

	top := geom.NewRect(x0, y0, x0+topW, y0+topL)
	b.rectR("TopMetal1", top)

	b.rectR("Metal5.pin", bottom)
	b.rectR("TopMetal1.pin", top)
	b.port("BP", "Metal5.pin", bottom, sideLeft)
	b.port("TP", "TopMetal1.pin", top, sideTop)

	cell, err := b.finish()
	if err != nil {
		return nil, err
	}
	areaUm2 := W.Microns() * L.Microns()
	cell.Settings["capacitance_fF"] = fmt.Sprintf("%.3f", areaUm2*r.Elec("cap.mim"))
	return cell, nil
}
