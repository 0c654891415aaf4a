package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/tech"
)

// MarshalCanonical serializes a Cell to canonical JSON: object keys
// sorted, strings NFC-normalized and not HTML-escaped, coordinates as
// plain integers, no floats anywhere. Byte-identical output for
// geometrically identical cells is what makes snapshot diffs and
// golden-file comparison meaningful.
func MarshalCanonical(c *Cell) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeKey(&buf, "key")
	if err := writeString(&buf, c.Key); err != nil {
		return nil, err
	}

	buf.WriteByte(',')
	writeKey(&buf, "kind")
	if err := writeString(&buf, string(c.Kind)); err != nil {
		return nil, err
	}

	buf.WriteByte(',')
	writeKey(&buf, "name")
	if err := writeString(&buf, c.Name); err != nil {
		return nil, err
	}

	buf.WriteByte(',')
	writeKey(&buf, "polygons")
	buf.WriteByte('{')
	for i, layer := range c.Layers() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, layer); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		writePolys(&buf, c.Polygons[layer])
	}
	buf.WriteByte('}')

	buf.WriteByte(',')
	writeKey(&buf, "ports")
	if err := writePorts(&buf, c.Ports); err != nil {
		return nil, err
	}

	buf.WriteByte(',')
	writeKey(&buf, "settings")
	if err := writeSettings(&buf, c.Settings); err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) {
	buf.WriteByte('"')
	buf.WriteString(key)
	buf.WriteString(`":`)
}

// writeString encodes an NFC-normalized JSON string without HTML
// escaping, following the canonical-JSON discipline used for hashing.
func writeString(buf *bytes.Buffer, s string) error {
	var sb bytes.Buffer
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return fmt.Errorf("encode string %q: %w", s, err)
	}
	b := sb.Bytes()
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	buf.Write(b)
	return nil
}

func writePolys(buf *bytes.Buffer, polys []geom.Polygon) {
	buf.WriteByte('[')
	for i, p := range polys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		for j, pt := range p {
			if j > 0 {
				buf.WriteByte(',')
			}
			fmt.Fprintf(buf, "[%d,%d]", pt.X, pt.Y)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte(']')
}

func writePorts(buf *bytes.Buffer, ports []Port) error {
	sorted := make([]Port, len(ports))
	copy(sorted, ports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	buf.WriteByte('[')
	for i, p := range sorted {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		writeKey(buf, "layer")
		if err := writeString(buf, p.Layer.Name); err != nil {
			return err
		}
		buf.WriteByte(',')
		writeKey(buf, "name")
		if err := writeString(buf, p.Name); err != nil {
			return err
		}
		buf.WriteByte(',')
		writeKey(buf, "orientation")
		fmt.Fprintf(buf, "%d", p.Orientation)
		buf.WriteByte(',')
		writeKey(buf, "position")
		fmt.Fprintf(buf, "[%d,%d]", p.Position.X, p.Position.Y)
		buf.WriteByte(',')
		writeKey(buf, "type")
		if err := writeString(buf, p.Type); err != nil {
			return err
		}
		buf.WriteByte(',')
		writeKey(buf, "width")
		fmt.Fprintf(buf, "%d", p.Width)
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return nil
}

func writeSettings(buf *bytes.Buffer, settings map[string]string) error {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeString(buf, settings[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// cellDoc mirrors the canonical form for reading snapshots back.
type cellDoc struct {
	Key      string                  `json:"key"`
	Kind     string                  `json:"kind"`
	Name     string                  `json:"name"`
	Polygons map[string][][][2]int64 `json:"polygons"`
	Ports    []portDoc               `json:"ports"`
	Settings map[string]string       `json:"settings"`
}

type portDoc struct {
	Layer       string   `json:"layer"`
	Name        string   `json:"name"`
	Orientation int      `json:"orientation"`
	Position    [2]int64 `json:"position"`
	Type        string   `json:"type"`
	Width       int64    `json:"width"`
}

// UnmarshalCell parses a canonical cell document. Port layers are
// re-resolved against the stack so a snapshot written under a
// different layer map cannot silently alias.
func UnmarshalCell(data []byte, stack *tech.Stack) (*Cell, error) {
	var doc cellDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse cell document: %w", err)
	}

	c := &Cell{
		Name:     doc.Name,
		Kind:     device.Kind(doc.Kind),
		Key:      doc.Key,
		Polygons: make(map[string][]geom.Polygon, len(doc.Polygons)),
		Settings: doc.Settings,
	}
	for layer, polys := range doc.Polygons {
		if _, err := stack.Resolve(layer); err != nil {
			return nil, err
		}
		out := make([]geom.Polygon, len(polys))
		for i, p := range polys {
			poly := make(geom.Polygon, len(p))
			for j, pt := range p {
				poly[j] = geom.Point{X: geom.Coord(pt[0]), Y: geom.Coord(pt[1])}
			}
			out[i] = poly
		}
		c.Polygons[layer] = out
	}
	for _, p := range doc.Ports {
		ref, err := stack.Resolve(p.Layer)
		if err != nil {
			return nil, err
		}
		c.Ports = append(c.Ports, Port{
			Name:        p.Name,
			Layer:       ref,
			Position:    geom.Point{X: geom.Coord(p.Position[0]), Y: geom.Coord(p.Position[1])},
			Orientation: p.Orientation,
			Width:       geom.Coord(p.Width),
			Type:        p.Type,
		})
	}
	return c, nil
}
