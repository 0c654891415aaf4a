package pcell

import (
	"math"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/tech"
)

func synthNMOS(pdk *tech.Tech, spec *device.Spec) (*layout.Cell, error) {
	return mosCore(pdk, spec, false, false)
}

func synthPMOS(pdk *tech.Tech, spec *device.Spec) (*layout.Cell, error) {
	return mosCore(pdk, spec, true, false)
}

func synthNMOSHV(pdk *tech.Tech, spec *device.Spec) (*layout.Cell, error) {
	return mosCore(pdk, spec, false, true)
}

func synthPMOSHV(pdk *tech.Tech, spec *device.Spec) (*layout.Cell, error) {
	return mosCore(pdk, spec, true, true)
}

// mosCore lays out a multi-finger MOS transistor left to right: source
// contact column, then per finger a gate stripe and the next
// source/drain column. The total channel width is split evenly over
// the fingers. Below the minimum contactable active width the whole
// diffusion shifts up by diffoffset so the single contact still lands
// inside active.
func mosCore(pdk *tech.Tech, spec *device.Spec, isPMOS, isHV bool) (*layout.Cell, error) {
	r := pdk.Rules
	contSize := r.Dist("cont.size")
	contDist := r.Dist("cont.spacing")
	contActivOver := r.Dist("cont.enc.activ")
	contMetalOver := r.Dist("m1.enc.cont")
	gatpolyActivOver := r.Dist("gatpoly.over.activ")
	gatpolyContDist := r.Dist("cont.dist.gate")
	smallwContDist := contActivOver + r.Dist("gate.dist.smallw")
	contActMin := 2*contActivOver + contSize

	endcap := r.Dist("m1.endcap")
	if endcap < contMetalOver {
		endcap = contMetalOver
	}

	ng := spec.Count("nf")
	gateLen := spec.Dim("length")
	w := pdk.Snap.Snap(geom.Coord(math.Round(float64(spec.Dim("width")) / float64(ng))))
	if w <= 0 {
		return nil, &DesignRuleViolation{
			Kind:   spec.Kind(),
			Rule:   "cont.enc.activ",
			Detail: "per-finger width collapses to zero after splitting over fingers",
		}
	}

	// Metal1 columns on either side of a gate must clear the metal
	// spacing rule; the rule table guarantees this for the minimum
	// gate length, so a failure here means inconsistent rule data.
	if gap := 2*gatpolyContDist + gateLen - 2*contMetalOver; gap < r.Dist("m1.min.space") {
		return nil, &DesignRuleViolation{
			Kind:   spec.Kind(),
			Rule:   "m1.min.space",
			Detail: "source/drain metal columns closer than the minimum metal spacing",
		}
	}

	if w < contActMin {
		gatpolyContDist = smallwContDist
	}
	var diffoffset geom.Coord
	if w < contActMin {
		diffoffset = pdk.Snap.Snap((contActMin - w) / 2)
	}

	distc := contSize + contDist
	var ncont geom.Coord
	if isPMOS {
		ncont = (w - 2*contActivOver - 2*endcap + contDist) / distc
	} else {
		ncont = (w - 2*contActivOver + contDist) / distc
	}
	if ncont <= 0 {
		ncont = 1
	}
	diffContOffset := pdk.Snap.Snap((w - 2*contActivOver - ncont*contSize - (ncont-1)*contDist) / 2)

	b := newBuilder(pdk, CellName(spec), spec)

	const (
		xdiffBeg geom.Coord = 0
		ydiffBeg geom.Coord = 0
	)
	ydiffEnd := w

	// Source contact column.
	xcontBeg := xdiffBeg + contActivOver
	ycontBeg := ydiffBeg + contActivOver
	ycontCnt := ycontBeg + diffoffset + diffContOffset
	xcontEnd := xcontBeg + contSize

	// Metal1 vertical extents are shared by every S/D column.
	yMet1 := ycontCnt - endcap
	yMet2 := ycontCnt + contSize + (ncont-1)*distc + endcap
	if y := ydiffBeg + diffoffset; y < yMet1 {
		yMet1 = y
	}
	if y := ydiffEnd + diffoffset; y > yMet2 {
		yMet2 = y
	}

	srcMetal := geom.NewRect(xcontBeg-contMetalOver, yMet1, xcontEnd+contMetalOver, yMet2)
	b.rectR("Metal1", srcMetal)
	b.contactArray("Cont",
		geom.NewRect(xcontBeg, ydiffBeg, xcontEnd, ydiffEnd+2*diffoffset),
		0, contActivOver, contSize, contDist)
	b.rectR("Metal1.pin", srcMetal)
	b.port("S", "Metal1.pin", srcMetal, sideLeft)
	b.rect("Activ",
		xcontBeg-contActivOver, ycontBeg-contActivOver,
		xcontEnd+contActivOver, ycontBeg+contSize+contActivOver)

	// Gate fingers and the S/D columns after each one.
	ypolyBeg := ydiffBeg - gatpolyActivOver
	ypolyEnd := ydiffEnd + gatpolyActivOver
	var lastDiffCol geom.Rect
	for i := 1; i <= ng; i++ {
		xpolyBeg := xcontEnd + gatpolyContDist
		xpolyEnd := xpolyBeg + gateLen

		gate := geom.NewRect(xpolyBeg, ypolyBeg+diffoffset, xpolyEnd, ypolyEnd+diffoffset)
		b.rectR("GatPoly", gate)
		b.rectR("HeatTrans", gate)
		if i == 1 {
			b.rectR("GatPoly.pin", gate)
			b.port("G", "GatPoly.pin", gate, sideBottom)
		}

		xcontBeg = xpolyEnd + gatpolyContDist
		xcontEnd = xcontBeg + contSize

		drainMetal := geom.NewRect(xcontBeg-contMetalOver, yMet1, xcontEnd+contMetalOver, yMet2)
		b.rectR("Metal1", drainMetal)
		b.contactArray("Cont",
			geom.NewRect(xcontBeg, ydiffBeg, xcontEnd, ydiffEnd+2*diffoffset),
			0, contActivOver, contSize, contDist)
		if i == 1 {
			b.rectR("Metal1.pin", drainMetal)
			b.port("D", "Metal1.pin", drainMetal, sideRight)
		}

		lastDiffCol = geom.NewRect(
			xcontBeg-contActivOver, ycontBeg-contActivOver,
			xcontEnd+contActivOver, ycontBeg+contSize+contActivOver)
		b.rectR("Activ", lastDiffCol)
	}

	// Spanning diffusion covering all fingers.
	xdiffEnd := xcontEnd + contActivOver
	b.rect("Activ", xdiffBeg, ydiffBeg+diffoffset, xdiffEnd, ydiffEnd+diffoffset)

	if isPMOS {
		psdActivOver := r.Dist("psd.over.activ")
		psdGateOver := r.Dist("psd.over.gate.lv")
		nwellOver := r.Dist("nwell.over.activ.lv")
		if isHV {
			psdGateOver = r.Dist("psd.over.gate.hv")
			nwellOver = r.Dist("nwell.over.activ.hv")
		}

		b.rect("pSD",
			xdiffBeg-psdActivOver, ypolyBeg-psdGateOver+gatpolyActivOver+diffoffset,
			xdiffEnd+psdActivOver, ypolyEnd+psdGateOver-gatpolyActivOver+diffoffset)

		// NWell grows symmetrically when the active is narrower than
		// the contactable minimum, so the well never undershoots its
		// own minimum width.
		nwellOffset := pdk.Snap.Snap((contActMin - w) / 2)
		if nwellOffset < 0 {
			nwellOffset = 0
		}
		b.rect("NWell",
			xdiffBeg-nwellOver, ydiffBeg-nwellOver+diffoffset-nwellOffset,
			xdiffEnd+nwellOver, ydiffEnd+nwellOver+diffoffset+nwellOffset)

		// Bulk marker over the last S/D column.
		b.rectR("Substrate", lastDiffCol)
	}

	if isHV {
		tgoGat := r.Dist("tgo.over.gatpoly")
		tgoAct := r.Dist("tgo.over.activ")
		x1 := xdiffBeg - tgoAct
		x2 := xdiffEnd + tgoAct
		y1 := ydiffBeg - gatpolyActivOver - tgoGat
		y2 := ydiffEnd + gatpolyActivOver + tgoGat
		if isPMOS {
			// Thick oxide must cover the NWell when the well sticks
			// out past the standard oxide enclosure.
			nwellOver := r.Dist("nwell.over.activ.hv")
			nwellOffset := pdk.Snap.Snap((contActMin - w) / 2)
			if nwellOffset < 0 {
				nwellOffset = 0
			}
			if nwellOver > tgoAct {
				x1 = xdiffBeg - nwellOver
				x2 = xdiffEnd + nwellOver
			}
			if nwellOver+diffoffset-nwellOffset > gatpolyActivOver-tgoGat {
				y1 = ydiffBeg - nwellOver + diffoffset - nwellOffset
				y2 = ydiffEnd + nwellOver + diffoffset + nwellOffset
			}
		}
		b.rect("ThickGateOx", x1, y1, x2, y2)
	}

	return b.finish()
}
