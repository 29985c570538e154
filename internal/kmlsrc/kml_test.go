package kmlsrc

import (
	"strings"
	"testing"

	"github.com/codybloemhard/geolod/internal/issuelog"
)

const contourKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Placemark>
      <LineString>
        <coordinates>5.0,52.0,100.0 5.1,52.0,100.0</coordinates>
      </LineString>
    </Placemark>
  </Document>
</kml>`

func TestExtractContoursProjectsAndClamps(t *testing.T) {
	logger := issuelog.New(nil)
	shapes, err := ExtractContours(strings.NewReader(contourKML), logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shapes) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(shapes))
	}
	s := shapes[0]
	if len(s.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(s.Points))
	}
	// 100 is already a multiple of 5, the clamp must not move it.
	if s.Z != 100 {
		t.Fatalf("expected z=100, got %v", s.Z)
	}
	// Projected coordinates are UTM metres, far from raw degrees.
	if s.Points[0].X < 1000 {
		t.Fatalf("expected projected easting, got %v", s.Points[0].X)
	}
}

func TestExtractContoursClampsToFiveMetres(t *testing.T) {
	kml := strings.Replace(contourKML, "100.0 ", "102.0 ", 1)
	kml = strings.Replace(kml, ",100.0<", ",102.0<", 1)
	logger := issuelog.New(nil)
	shapes, err := ExtractContours(strings.NewReader(kml), logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shapes) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(shapes))
	}
	if shapes[0].Z != 100 {
		t.Fatalf("expected 102 clamped to 100, got %v", shapes[0].Z)
	}
}

func TestExtractContoursDropsMixedElevation(t *testing.T) {
	kml := strings.Replace(contourKML, "5.1,52.0,100.0", "5.1,52.0,200.0", 1)
	logger := issuelog.New(nil)
	shapes, err := ExtractContours(strings.NewReader(kml), logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shapes) != 0 {
		t.Fatalf("expected mixed-elevation contour dropped, got %d", len(shapes))
	}
	if logger.Count(issuelog.TwoPlusZInHeightline) != 1 {
		t.Fatalf("expected TwoPlusZInHeightline logged once")
	}
}

const polygonKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Style id="water">
      <LineStyle><color>ff804020</color><width>2</width></LineStyle>
    </Style>
    <Placemark>
      <styleUrl>#water</styleUrl>
      <Polygon>
        <outerBoundaryIs><LinearRing>
          <coordinates>5.0,52.0,0 5.1,52.0,0 5.1,52.1,0 5.0,52.1,0</coordinates>
        </LinearRing></outerBoundaryIs>
        <innerBoundaryIs><LinearRing>
          <coordinates>5.04,52.04,0 5.06,52.04,0 5.05,52.06,0</coordinates>
        </LinearRing></innerBoundaryIs>
      </Polygon>
    </Placemark>
    <Placemark>
      <Polygon>
        <outerBoundaryIs><LinearRing>
          <coordinates>6.0,52.0,0 6.1,52.0,0 6.1,52.1,0</coordinates>
        </LinearRing></outerBoundaryIs>
      </Polygon>
    </Placemark>
  </Document>
</kml>`

func TestExtractPolygonsStylesAndRings(t *testing.T) {
	logger := issuelog.New(nil)
	reg := NewStyleRegistry()
	polys, err := ExtractPolygons(strings.NewReader(polygonKML), reg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(polys) != 2 {
		t.Fatalf("expected 2 polygons, got %d", len(polys))
	}
	if len(polys[0].Outers) != 1 || len(polys[0].Inners) != 1 {
		t.Fatalf("expected 1 outer + 1 inner, got %d/%d", len(polys[0].Outers), len(polys[0].Inners))
	}
	if polys[0].Style == polys[1].Style {
		t.Fatalf("expected distinct style ids, both got %d", polys[0].Style)
	}
	colors := reg.Colors()
	if len(colors) != 2 {
		t.Fatalf("expected 2 registered styles, got %d", len(colors))
	}
	// KML color is aabbggrr: ff804020 means r=0x20, g=0x40, b=0x80.
	styled := colors[polys[0].Style]
	if styled != [4]uint8{2, 0x20, 0x40, 0x80} {
		t.Fatalf("unexpected style tuple: %v", styled)
	}
	if logger.Count(issuelog.MissingStyleId) != 1 {
		t.Fatalf("expected MissingStyleId for the unstyled placemark")
	}
}

func TestPrintTagCount(t *testing.T) {
	var out strings.Builder
	if err := PrintTagCount(strings.NewReader(polygonKML), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Tag: Placemark, count: 2") {
		t.Fatalf("expected Placemark count 2 in output:\n%s", got)
	}
	if !strings.Contains(got, "Tag: coordinates, count: 3") {
		t.Fatalf("expected coordinates count 3 in output:\n%s", got)
	}
}

func TestPrintTagTreeIndents(t *testing.T) {
	var out strings.Builder
	if err := PrintTagTree(strings.NewReader(contourKML), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if lines[0] != "-kml" {
		t.Fatalf("expected root tag first, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  -Document") {
		t.Fatalf("expected indented Document, got %q", lines[1])
	}
}

func TestCheckTagChild(t *testing.T) {
	ok, err := CheckTagChild(strings.NewReader(polygonKML), "Polygon", "outerBoundaryIs")
	if err != nil || !ok {
		t.Fatalf("expected every Polygon to have an outerBoundaryIs child, got %v %v", ok, err)
	}
	ok, err = CheckTagChild(strings.NewReader(polygonKML), "Placemark", "styleUrl")
	if err != nil || ok {
		t.Fatalf("expected a Placemark without styleUrl to fail the check, got %v %v", ok, err)
	}
}

func TestCheckNonemptyTag(t *testing.T) {
	ok, err := CheckNonemptyTag(strings.NewReader(polygonKML), "coordinates")
	if err != nil || !ok {
		t.Fatalf("expected nonempty coordinates, got %v %v", ok, err)
	}
	kml := `<a><b></b><b>x</b></a>`
	ok, err = CheckNonemptyTag(strings.NewReader(kml), "b")
	if err != nil || ok {
		t.Fatalf("expected empty b to fail the check, got %v %v", ok, err)
	}
}
