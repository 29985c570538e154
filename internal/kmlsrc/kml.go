// Package kmlsrc adapts KML documents into the internal contour and
// polygon types, plus a handful of read-only XML diagnostic probes
// (probe.go) used to inspect an unfamiliar KML schema before writing a
// real extraction path. Everything is built on encoding/xml.Decoder's
// token loop in push-parser style.
package kmlsrc

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/codybloemhard/geolod/internal/coord"
	"github.com/codybloemhard/geolod/internal/geom"
	"github.com/codybloemhard/geolod/internal/issuelog"
)

// heightClampStep is a fixed KML-reader policy: every parsed elevation
// is rounded to the nearest multiple of this many metres before a
// ShapeZ is built.
const heightClampStep = 5.0

func clampHeight(z float64) float64 {
	return clampRound(z/heightClampStep) * heightClampStep
}

func clampRound(x float64) float64 {
	if x < 0 {
		return -float64(int64(-x + 0.5))
	}
	return float64(int64(x + 0.5))
}

// StyleRegistry assigns a sequential style id to every distinct KML
// styleUrl string it sees, so the same style referenced by multiple
// Placemarks collapses to one id. One registry spans all input files
// of a geomerge run.
type StyleRegistry struct {
	ids    map[string]uint64
	colors [][4]uint8
}

// NewStyleRegistry creates an empty registry.
func NewStyleRegistry() *StyleRegistry {
	return &StyleRegistry{ids: make(map[string]uint64)}
}

// Colors returns the accumulated (outline_or_width, r, g, b) tuples in
// id order, the payload of the styles output file.
func (r *StyleRegistry) Colors() [][4]uint8 { return r.colors }

func (r *StyleRegistry) idFor(url string, color [4]uint8) uint64 {
	if id, ok := r.ids[url]; ok {
		return id
	}
	id := uint64(len(r.colors))
	r.ids[url] = id
	r.colors = append(r.colors, color)
	return id
}

// styleDef is one parsed KML <Style>: a PolyStyle/LineStyle color plus
// an outline flag or line width, matching the styles file's
// outline_or_width byte.
type styleDef struct {
	outlineOrWidth uint8
	color          [4]uint8
}

// ExtractPolygons parses every Placemark/Polygon in a KML document into
// a styled PolygonZ, registering styles in reg. A Placemark without a
// styleUrl logs MissingStyleId; a styleUrl resolving to the empty string
// logs EmptyStyleId; both still emit the polygon, under the registry id
// of the empty style key, whose style tuple is all zeros.
func ExtractPolygons(r io.Reader, reg *StyleRegistry, logger *issuelog.Logger) ([]*geom.PolygonZ[float64], error) {
	dec := xml.NewDecoder(r)
	styles := make(map[string]styleDef)

	var out []*geom.PolygonZ[float64]
	var curStyleID string
	var curStyleURL string
	var haveStyleURL bool
	var poly *geom.PolygonZ[float64]
	var ring []geom.Point3[float64]
	var inOuter, inInner, inCoords bool
	var curStyleDef styleDef
	var parsingStyle bool
	var inColor, inWidth bool

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("kmlsrc: parse error: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch localName(el.Name.Local) {
			case "Style":
				parsingStyle = true
				curStyleDef = styleDef{}
				curStyleID = attrValue(el, "id")
			case "color":
				inColor = parsingStyle
			case "width":
				inWidth = parsingStyle
			case "Placemark":
				haveStyleURL = false
				curStyleURL = ""
			case "styleUrl":
				haveStyleURL = true
			case "Polygon":
				poly = &geom.PolygonZ[float64]{}
			case "outerBoundaryIs":
				inOuter = true
			case "innerBoundaryIs":
				inInner = true
			case "LinearRing":
				ring = nil
			case "coordinates":
				inCoords = true
			}
		case xml.EndElement:
			switch localName(el.Name.Local) {
			case "Style":
				if curStyleID != "" {
					styles[curStyleID] = curStyleDef
				}
				parsingStyle = false
				inColor, inWidth = false, false
			case "color":
				inColor = false
			case "width":
				inWidth = false
			case "LinearRing":
				if inOuter {
					poly.Outers = append(poly.Outers, geom.Ring[float64](ring))
				} else if inInner {
					poly.Inners = append(poly.Inners, geom.Ring[float64](ring))
				}
			case "outerBoundaryIs":
				inOuter = false
			case "innerBoundaryIs":
				inInner = false
			case "coordinates":
				inCoords = false
			case "Polygon":
				if poly != nil && len(poly.Outers) > 0 {
					poly.StretchBB()
					var def styleDef
					if haveStyleURL {
						name := strings.TrimPrefix(curStyleURL, "#")
						if name == "" {
							logger.Log(issuelog.EmptyStyleId)
						} else if d, ok := styles[name]; ok {
							def = d
						}
					} else {
						logger.Log(issuelog.MissingStyleId)
					}
					styleKey := curStyleURL
					if !haveStyleURL {
						styleKey = ""
					}
					poly.Style = reg.idFor(styleKey, [4]uint8{def.outlineOrWidth, def.color[1], def.color[2], def.color[3]})
					out = append(out, poly)
				}
				poly = nil
			}
		case xml.CharData:
			text := strings.TrimSpace(string(el))
			if text == "" {
				continue
			}
			if inColor {
				curStyleDef.color = parseKMLColor(text)
			} else if inWidth {
				if w, err := strconv.ParseFloat(text, 64); err == nil {
					curStyleDef.outlineOrWidth = uint8(w)
				}
			} else if inCoords {
				ring = append(ring, parseCoordTriples(text)...)
			} else if haveStyleURL && curStyleURL == "" {
				curStyleURL = text
			}
		}
	}
	return out, nil
}

// ExtractContours parses the text of every <coordinates> element in a
// KML document (whatever geometry encloses it) into a ShapeZ, projecting lon/lat to UTM metres via DegreeToUTM and
// clamping elevation to the nearest multiple of 5. A coordinate list whose
// points do not share one clamped elevation logs
// TwoPlusZInHeightline and is dropped.
func ExtractContours(r io.Reader, logger *issuelog.Logger) ([]*geom.ShapeZ[float64], error) {
	dec := xml.NewDecoder(r)
	var out []*geom.ShapeZ[float64]
	var inCoords bool

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("kmlsrc: parse error: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if localName(el.Name.Local) == "coordinates" {
				inCoords = true
			}
		case xml.EndElement:
			if localName(el.Name.Local) == "coordinates" {
				inCoords = false
			}
		case xml.CharData:
			if !inCoords {
				continue
			}
			text := strings.TrimSpace(string(el))
			if text == "" {
				continue
			}
			s, ok := contourFromLonLatAlt(text, logger)
			if ok {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func contourFromLonLatAlt(text string, logger *issuelog.Logger) (*geom.ShapeZ[float64], bool) {
	var points []geom.Point2[float64]
	var z float64
	first := true
	for _, tuple := range strings.Fields(text) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(parts[0], 64)
		lat, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		alt := 0.0
		if len(parts) >= 3 {
			if a, err := strconv.ParseFloat(parts[2], 64); err == nil {
				alt = a
			}
		}
		_, _, x, y := coord.DegreeToUTM(lat, lon)
		clamped := clampHeight(alt)
		if first {
			z = clamped
			first = false
		} else if clamped != z {
			logger.Log(issuelog.TwoPlusZInHeightline)
			return nil, false
		}
		points = append(points, geom.Point2[float64]{X: x, Y: y})
	}
	if len(points) == 0 {
		logger.Log(issuelog.EmptyShape)
		return nil, false
	}
	s := &geom.ShapeZ[float64]{Points: points, Z: z}
	s.StretchBB()
	return s, true
}

func parseCoordTriples(text string) []geom.Point3[float64] {
	var out []geom.Point3[float64]
	for _, tuple := range strings.Fields(text) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(parts[0], 64)
		lat, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		_, _, x, y := coord.DegreeToUTM(lat, lon)
		out = append(out, geom.Point3[float64]{X: x, Y: y})
	}
	return out
}

// parseKMLColor parses a KML aabbggrr hex color string into (r, g, b),
// leaving the first output byte 0 (the outline/width slot is set
// separately from a <width> element, not from color).
func parseKMLColor(hex string) [4]uint8 {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 8 {
		return [4]uint8{}
	}
	bb, errB := strconv.ParseUint(hex[2:4], 16, 8)
	gg, errG := strconv.ParseUint(hex[4:6], 16, 8)
	rr, errR := strconv.ParseUint(hex[6:8], 16, 8)
	if errR != nil || errG != nil || errB != nil {
		return [4]uint8{}
	}
	return [4]uint8{0, uint8(rr), uint8(gg), uint8(bb)}
}

func attrValue(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
