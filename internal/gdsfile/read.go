package gdsfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/tech"
)

// Library is a parsed GDSII stream.
type Library struct {
	Name      string
	UserUnit  float64
	MeterUnit float64
	Cells     []*layout.Cell
}

type record struct {
	kind uint16
	data []byte
}

func readRecord(r *bufio.Reader) (record, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return record{}, err
	}
	size := int(binary.BigEndian.Uint16(hdr[0:2]))
	kind := binary.BigEndian.Uint16(hdr[2:4])
	if size < 4 {
		return record{}, fmt.Errorf("gds: record size %d below header size", size)
	}
	data := make([]byte, size-4)
	if _, err := io.ReadFull(r, data); err != nil {
		return record{}, fmt.Errorf("gds: truncated record %04x: %w", kind, err)
	}
	return record{kind: kind, data: data}, nil
}

func trimNul(b []byte) string {
	if n := len(b); n > 0 && b[n-1] == 0 {
		b = b[:n-1]
	}
	return string(b)
}

// Read parses a GDSII stream back into cells. Physical layer pairs
// resolve through the stack; a pair the stack does not know fails
// with an UnknownLayerError rather than silently dropping geometry.
func Read(r io.Reader, stack *tech.Stack) (*Library, error) {
	br := bufio.NewReader(r)
	lib := &Library{}

	var cell *layout.Cell
	var elem struct {
		isText bool
		active bool
		layer  int
		dtype  int
		points []geom.Point
		label  string
	}

	for {
		rec, err := readRecord(br)
		if errors.Is(err, io.EOF) {
			return nil, errors.New("gds: stream ends without ENDLIB")
		}
		if err != nil {
			return nil, err
		}

		switch rec.kind {
		case recHeader, recBgnLib, recBgnStr:
			// Versions and timestamps are not carried over.
		case recLibName:
			lib.Name = trimNul(rec.data)
		case recUnits:
			if len(rec.data) != 16 {
				return nil, fmt.Errorf("gds: UNITS record has %d bytes", len(rec.data))
			}
			var u, m [8]byte
			copy(u[:], rec.data[0:8])
			copy(m[:], rec.data[8:16])
			lib.UserUnit = decodeReal8(u)
			lib.MeterUnit = decodeReal8(m)
			if math.Abs(lib.MeterUnit-meterUnit) > meterUnit*1e-6 {
				return nil, fmt.Errorf("gds: database unit %g m, want %g m", lib.MeterUnit, meterUnit)
			}
		case recStrName:
			cell = &layout.Cell{
				Name:     trimNul(rec.data),
				Polygons: make(map[string][]geom.Polygon),
				Settings: make(map[string]string),
			}
		case recBoundary:
			elem.active = true
			elem.isText = false
			elem.points = nil
		case recText:
			elem.active = true
			elem.isText = true
			elem.points = nil
			elem.label = ""
		case recLayer:
			elem.layer = int(int16(binary.BigEndian.Uint16(rec.data)))
		case recDatatype, recTextType:
			elem.dtype = int(int16(binary.BigEndian.Uint16(rec.data)))
		case recString:
			elem.label = trimNul(rec.data)
		case recXY:
			n := len(rec.data) / 8
			pts := make([]geom.Point, 0, n)
			for i := 0; i < n; i++ {
				x := int32(binary.BigEndian.Uint32(rec.data[8*i:]))
				y := int32(binary.BigEndian.Uint32(rec.data[8*i+4:]))
				pts = append(pts, geom.Point{X: geom.Coord(x), Y: geom.Coord(y)})
			}
			elem.points = pts
		case recEndEl:
			if !elem.active || cell == nil {
				return nil, errors.New("gds: element outside structure")
			}
			ref, ok := stack.ByPhysical(elem.layer, elem.dtype)
			if !ok {
				return nil, &tech.UnknownLayerError{Name: fmt.Sprintf("%d/%d", elem.layer, elem.dtype)}
			}
			if elem.isText {
				if len(elem.points) != 1 {
					return nil, fmt.Errorf("gds: TEXT with %d points", len(elem.points))
				}
				cell.Ports = append(cell.Ports, layout.Port{
					Name:     elem.label,
					Layer:    ref,
					Position: elem.points[0],
					Type:     "electrical",
				})
			} else {
				pts := elem.points
				// Drop the repeated closing vertex.
				if n := len(pts); n > 1 && pts[0] == pts[n-1] {
					pts = pts[:n-1]
				}
				if len(pts) < 3 {
					return nil, fmt.Errorf("gds: boundary with %d distinct points", len(pts))
				}
				cell.Polygons[ref.Name] = append(cell.Polygons[ref.Name], geom.Polygon(pts))
			}
			elem.active = false
		case recEndStr:
			if cell == nil {
				return nil, errors.New("gds: ENDSTR outside structure")
			}
			lib.Cells = append(lib.Cells, cell)
			cell = nil
		case recEndLib:
			return lib, nil
		default:
			// Records outside the flat subset (SREF, PATH, properties)
			// are not expected from our own writer.
			return nil, fmt.Errorf("gds: unsupported record %04x", rec.kind)
		}
	}
}

// ReadFile parses a .gds file.
func ReadFile(path string, stack *tech.Stack) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	lib, err := Read(f, stack)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}
