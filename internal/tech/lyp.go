package tech

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// KLayout .lyp layer-properties XML. Each <properties> entry carries a
// "Name.purpose" display name and a "layer/datatype@view" source string.
type lypFile struct {
	XMLName    xml.Name  `xml:"layer-properties"`
	Properties []lypProp `xml:"properties"`
}

type lypProp struct {
	Name      string `xml:"name"`
	Source    string `xml:"source"`
	FillColor string `xml:"fill-color"`
}

// ParseLYP reads a KLayout layer-properties file into a Stack.
//
// Only the "drawing" and "pin" purposes are registered: "Activ.drawing"
// becomes the logical layer "Activ", while pin sublayers keep their
// suffix ("Metal1.pin"). Other purposes (text, label, blockage) carry
// no device geometry and are skipped.
func ParseLYP(r io.Reader) (*Stack, error) {
	var f lypFile
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode layer properties: %w", err)
	}

	s := &Stack{
		byName: make(map[string]LayerRef, len(f.Properties)),
		byPhys: make(map[[2]int]string, len(f.Properties)),
		colors: make(map[string]string, len(f.Properties)),
	}
	for _, p := range f.Properties {
		logical, ok := logicalName(p.Name)
		if !ok {
			continue
		}
		layer, datatype, err := parseSource(p.Source)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", p.Name, err)
		}
		if err := s.add(LayerRef{Name: logical, Layer: layer, Datatype: datatype}); err != nil {
			return nil, err
		}
		if p.FillColor != "" {
			s.colors[logical] = p.FillColor
		}
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("layer properties contain no drawing or pin layers")
	}
	return s, nil
}

// logicalName maps a "Name.purpose" display name to the logical layer
// name used throughout the PDK.
func logicalName(display string) (string, bool) {
	i := strings.LastIndex(display, ".")
	if i <= 0 {
		return "", false
	}
	base, purpose := display[:i], display[i+1:]
	switch purpose {
	case "drawing":
		return base, true
	case "pin":
		return base + ".pin", true
	default:
		return "", false
	}
}

// parseSource parses a KLayout source spec of the form "8/0@1".
func parseSource(src string) (layer, datatype int, err error) {
	if i := strings.IndexByte(src, '@'); i >= 0 {
		src = src[:i]
	}
	if _, err := fmt.Sscanf(src, "%d/%d", &layer, &datatype); err != nil {
		return 0, 0, fmt.Errorf("malformed source %q: %w", src, err)
	}
	return layer, datatype, nil
}
