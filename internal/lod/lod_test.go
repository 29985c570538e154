package lod

import (
	"testing"

	"github.com/codybloemhard/geolod/internal/geom"
)

func TestHeightFilterKeepsMultiples(t *testing.T) {
	shapes := []*geom.ShapeZ[uint32]{
		{Z: 100}, {Z: 150}, {Z: 200}, {Z: 50},
	}
	got := HeightFilter(shapes, 100)
	if len(got) != 2 {
		t.Fatalf("expected 2 shapes, got %d", len(got))
	}
	if got[0].Z != 100 || got[1].Z != 200 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestHeightFilterModulusOneKeepsAll(t *testing.T) {
	shapes := []*geom.ShapeZ[uint32]{{Z: 100}, {Z: 151}}
	if got := HeightFilter(shapes, 1); len(got) != 2 {
		t.Fatalf("expected all shapes kept, got %d", len(got))
	}
}

func TestDecimateKeepsLastPoint(t *testing.T) {
	pts := make([]geom.Point2[uint32], 10)
	for i := range pts {
		pts[i] = geom.Point2[uint32]{X: uint32(i), Y: 0}
	}
	shapes := []*geom.ShapeZ[uint32]{{Points: pts, Z: 0}}
	out := Decimate(shapes, 3)
	last := out[0].Points[len(out[0].Points)-1]
	if last != pts[len(pts)-1] {
		t.Fatalf("expected last point preserved, got %+v", last)
	}
}

func TestDecimateBound(t *testing.T) {
	pts := make([]geom.Point2[uint32], 97)
	for i := range pts {
		pts[i] = geom.Point2[uint32]{X: uint32(i)}
	}
	shapes := []*geom.ShapeZ[uint32]{{Points: pts, Z: 0}}
	n := 10
	out := Decimate(shapes, n)
	if len(out[0].Points) > 97/n+1 {
		t.Fatalf("decimation bound violated: got %d points", len(out[0].Points))
	}
}

// Two contours sharing an endpoint join into one polyline.
func TestMergeJoinsSharedEndpoint(t *testing.T) {
	a := &geom.ShapeZ[uint32]{Points: []geom.Point2[uint32]{{X: 0, Y: 0}, {X: 1, Y: 1}}, Z: 5}
	b := &geom.ShapeZ[uint32]{Points: []geom.Point2[uint32]{{X: 1, Y: 1}, {X: 2, Y: 2}}, Z: 5}
	out := Merge([]*geom.ShapeZ[uint32]{a, b})
	if len(out) != 1 {
		t.Fatalf("expected 1 merged shape, got %d", len(out))
	}
	want := []geom.Point2[uint32]{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}
	got := out[0].Points
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	a := &geom.ShapeZ[uint32]{Points: []geom.Point2[uint32]{{X: 0, Y: 0}, {X: 1, Y: 1}}, Z: 5}
	b := &geom.ShapeZ[uint32]{Points: []geom.Point2[uint32]{{X: 1, Y: 1}, {X: 2, Y: 2}}, Z: 5}
	once := Merge([]*geom.ShapeZ[uint32]{a, b})
	twice := Merge(once)
	if len(once) != len(twice) {
		t.Fatalf("merge not idempotent: %d vs %d shapes", len(once), len(twice))
	}
}

func TestMergeDoesNotCrossDifferentElevations(t *testing.T) {
	a := &geom.ShapeZ[uint32]{Points: []geom.Point2[uint32]{{X: 0, Y: 0}, {X: 1, Y: 1}}, Z: 5}
	b := &geom.ShapeZ[uint32]{Points: []geom.Point2[uint32]{{X: 1, Y: 1}, {X: 2, Y: 2}}, Z: 6}
	out := Merge([]*geom.ShapeZ[uint32]{a, b})
	if len(out) != 2 {
		t.Fatalf("expected shapes at different elevations to stay separate, got %d", len(out))
	}
}
