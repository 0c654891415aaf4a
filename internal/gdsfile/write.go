package gdsfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/tech"
)

// Library units: coordinates are dbu, the user unit is 1e-3 um per
// dbu and the database unit is 1e-9 m.
const (
	userUnit  = 1e-3
	meterUnit = 1e-9
)

type recordWriter struct {
	w   *bufio.Writer
	err error
}

func (rw *recordWriter) record(kind uint16, data []byte) {
	if rw.err != nil {
		return
	}
	if len(data)%2 != 0 {
		// GDSII records are word-aligned; strings pad with NUL.
		data = append(data, 0)
	}
	var hdr [4]byte
	binary.BigEndian.PutUint16(hdr[0:2], uint16(len(data)+4))
	binary.BigEndian.PutUint16(hdr[2:4], kind)
	if _, err := rw.w.Write(hdr[:]); err != nil {
		rw.err = err
		return
	}
	if _, err := rw.w.Write(data); err != nil {
		rw.err = err
	}
}

func (rw *recordWriter) shorts(kind uint16, vals ...int16) {
	data := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint16(data[2*i:], uint16(v))
	}
	rw.record(kind, data)
}

func (rw *recordWriter) str(kind uint16, s string) {
	rw.record(kind, []byte(s))
}

func timestamp(t time.Time) []int16 {
	return []int16{
		int16(t.Year()), int16(t.Month()), int16(t.Day()),
		int16(t.Hour()), int16(t.Minute()), int16(t.Second()),
	}
}

// Write streams cells as one flat GDSII library. Polygons become
// BOUNDARY elements; ports become TEXT labels on their pin layer.
// The stack maps logical layer names to physical layer/datatype pairs.
func Write(w io.Writer, libName string, stack *tech.Stack, cells ...*layout.Cell) error {
	rw := &recordWriter{w: bufio.NewWriter(w)}
	now := timestamp(time.Unix(0, 0).UTC()) // fixed time keeps output byte-stable

	rw.shorts(recHeader, gdsVersion)
	rw.shorts(recBgnLib, append(now, now...)...)
	rw.str(recLibName, libName)

	var units []byte
	u := encodeReal8(userUnit)
	m := encodeReal8(meterUnit)
	units = append(units, u[:]...)
	units = append(units, m[:]...)
	rw.record(recUnits, units)

	for _, cell := range cells {
		if err := writeCell(rw, stack, cell, now); err != nil {
			return err
		}
	}
	rw.record(recEndLib, nil)
	if rw.err != nil {
		return fmt.Errorf("write gds: %w", rw.err)
	}
	return rw.w.Flush()
}

func writeCell(rw *recordWriter, stack *tech.Stack, cell *layout.Cell, now []int16) error {
	rw.shorts(recBgnStr, append(now, now...)...)
	rw.str(recStrName, cell.Name)

	for _, layer := range cell.Layers() {
		ref, err := stack.Resolve(layer)
		if err != nil {
			return err
		}
		for _, poly := range cell.Polygons[layer] {
			rw.record(recBoundary, nil)
			rw.shorts(recLayer, int16(ref.Layer))
			rw.shorts(recDatatype, int16(ref.Datatype))

			// Closed outline: the first vertex repeats at the end.
			data := make([]byte, 8*(len(poly)+1))
			for i, pt := range poly {
				binary.BigEndian.PutUint32(data[8*i:], uint32(int32(pt.X)))
				binary.BigEndian.PutUint32(data[8*i+4:], uint32(int32(pt.Y)))
			}
			binary.BigEndian.PutUint32(data[8*len(poly):], uint32(int32(poly[0].X)))
			binary.BigEndian.PutUint32(data[8*len(poly)+4:], uint32(int32(poly[0].Y)))
			rw.record(recXY, data)
			rw.record(recEndEl, nil)
		}
	}

	for _, port := range cell.Ports {
		rw.record(recText, nil)
		rw.shorts(recLayer, int16(port.Layer.Layer))
		rw.shorts(recTextType, int16(port.Layer.Datatype))
		var data [8]byte
		binary.BigEndian.PutUint32(data[0:], uint32(int32(port.Position.X)))
		binary.BigEndian.PutUint32(data[4:], uint32(int32(port.Position.Y)))
		rw.record(recXY, data[:])
		rw.str(recString, port.Name)
		rw.record(recEndEl, nil)
	}

	rw.record(recEndStr, nil)
	return nil
}

// WriteFile writes cells to a .gds file.
func WriteFile(path, libName string, stack *tech.Stack, cells ...*layout.Cell) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, libName, stack, cells...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
