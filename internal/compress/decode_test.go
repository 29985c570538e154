package compress

import (
	"testing"

	"github.com/codybloemhard/geolod/internal/bufio2"
	"github.com/codybloemhard/geolod/internal/geom"
)

func TestContoursDecodeRoundTrip(t *testing.T) {
	shapes := []*geom.ShapeZ[float64]{
		{Points: []geom.Point2[float64]{{X: 0, Y: 0}, {X: 100, Y: 50}}, Z: 10},
		{Points: []geom.Point2[float64]{{X: 20, Y: 30}}, Z: 15},
	}
	buf, d, err := Contours(shapes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := bufio2.NewReader(buf)
	rd, err := ReadDescriptor(r)
	if err != nil {
		t.Fatalf("reading descriptor: %v", err)
	}
	// Only the serialized header fields survive the round trip; the
	// float offsets and usage fraction are compression-side state.
	if rd.MX != d.MX || rd.MY != d.MY || rd.MZ != d.MZ || rd.Multi != d.Multi || rd.Width != d.Width {
		t.Fatalf("descriptor mismatch: wrote %+v read %+v", d, rd)
	}

	gbb, decoded, err := ReadContourBody[uint8](r)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if len(decoded) != len(shapes) {
		t.Fatalf("expected %d shapes, got %d", len(shapes), len(decoded))
	}
	if gbb.Min.X != 0 || gbb.Min.Y != 0 {
		t.Fatalf("expected origin global box, got %+v", gbb)
	}
	want := CompressContoursTyped[uint8](shapes, d)
	for i := range want {
		if decoded[i].Z != want[i].Z {
			t.Fatalf("shape %d: z mismatch %v vs %v", i, decoded[i].Z, want[i].Z)
		}
		if len(decoded[i].Points) != len(want[i].Points) {
			t.Fatalf("shape %d: point count mismatch", i)
		}
		for j := range want[i].Points {
			if decoded[i].Points[j] != want[i].Points[j] {
				t.Fatalf("shape %d point %d: %+v vs %+v", i, j, decoded[i].Points[j], want[i].Points[j])
			}
		}
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected buffer fully consumed, %d bytes left", r.Remaining())
	}
}

func TestMeshBlobDecodeRoundTrip(t *testing.T) {
	meshes := []*geom.PolyTriangle[float64]{
		{
			Vertices: []geom.Point2[float64]{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}},
			Indices:  []uint16{0, 1, 2},
			Style:    3,
		},
	}
	buf, _, err := Triangles(meshes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := bufio2.NewReader(buf)
	if _, err := ReadDescriptor(r); err != nil {
		t.Fatalf("reading descriptor: %v", err)
	}
	if _, err := ReadBB[uint8](r); err != nil {
		t.Fatalf("reading global box: %v", err)
	}
	decoded, err := ReadMeshes[uint8](r)
	if err != nil {
		t.Fatalf("reading meshes: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Style != 3 {
		t.Fatalf("unexpected decode result: %+v", decoded)
	}
	if len(decoded[0].Vertices) != 3 || len(decoded[0].Indices) != 3 {
		t.Fatalf("unexpected mesh shape: %+v", decoded[0])
	}
}

func TestPolygonsSelectsWidthOverAllRings(t *testing.T) {
	polys := []*geom.PolygonZ[float64]{
		{
			Outers: []geom.Ring[float64]{{
				{X: 0, Y: 0, Z: 0}, {X: 300, Y: 0, Z: 0}, {X: 300, Y: 300, Z: 0},
			}},
			Style: 1,
		},
	}
	polys[0].StretchBB()
	buf, d, err := Polygons(polys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Range 300 exceeds u8, so the width must widen to u16.
	if d.Width.String() != "u16" {
		t.Fatalf("expected u16 target, got %s", d.Width)
	}
	if len(buf) == 0 {
		t.Fatal("expected non-empty buffer")
	}
}
