package polychunk

import (
	"testing"

	"github.com/codybloemhard/geolod/internal/geom"
)

func triMesh(style uint64, verts []geom.Point2[uint16], indices []uint16) *geom.PolyTriangle[uint16] {
	m := &geom.PolyTriangle[uint16]{Vertices: verts, Indices: indices, Style: style}
	m.StretchBB()
	return m
}

func TestCutSingleCellDedup(t *testing.T) {
	// Two triangles sharing an edge, both entirely inside cell (0,0) of
	// a 10x10 grid over a 0..100 bounding box: should collapse to 4
	// unique vertices, not 6.
	verts := []geom.Point2[uint16]{
		{X: 1, Y: 1}, {X: 5, Y: 1}, {X: 5, Y: 5}, {X: 1, Y: 5},
	}
	indices := []uint16{0, 1, 2, 0, 2, 3}
	mesh := triMesh(7, verts, indices)

	gbb := geom.BB[uint16]{Max: geom.Point3[uint16]{X: 100, Y: 100}}
	cells := Cut([]*geom.PolyTriangle[uint16]{mesh}, gbb, 10)

	found := false
	for _, c := range cells {
		if c.CX == 0 && c.CY == 0 {
			found = true
			if c.Mesh == nil {
				t.Fatalf("expected cell (0,0) to have a mesh")
			}
			if len(c.Mesh.Vertices) != 4 {
				t.Fatalf("expected 4 deduped vertices, got %d", len(c.Mesh.Vertices))
			}
			if len(c.Mesh.Indices) != 6 {
				t.Fatalf("expected 6 indices, got %d", len(c.Mesh.Indices))
			}
			if c.Mesh.Style != 7 {
				t.Fatalf("expected style carried through, got %d", c.Mesh.Style)
			}
		}
	}
	if !found {
		t.Fatalf("expected cell (0,0) present in dense output")
	}
}

func TestCutSplitsTriangleAcrossCells(t *testing.T) {
	// A triangle spanning the boundary between cell (0,0) and (1,0) of
	// a 2x2 grid over 0..10 must be inserted into both cells.
	verts := []geom.Point2[uint16]{
		{X: 2, Y: 2}, {X: 8, Y: 2}, {X: 5, Y: 8},
	}
	indices := []uint16{0, 1, 2}
	mesh := triMesh(1, verts, indices)

	gbb := geom.BB[uint16]{Max: geom.Point3[uint16]{X: 10, Y: 10}}
	cells := Cut([]*geom.PolyTriangle[uint16]{mesh}, gbb, 2)

	withMesh := 0
	for _, c := range cells {
		if c.Mesh != nil {
			withMesh++
		}
	}
	if withMesh < 2 {
		t.Fatalf("expected triangle to land in at least 2 cells, got %d", withMesh)
	}
}

func TestCutDenseGridAlwaysFullSize(t *testing.T) {
	gbb := geom.BB[uint16]{Max: geom.Point3[uint16]{X: 10, Y: 10}}
	cells := Cut([]*geom.PolyTriangle[uint16]{}, gbb, 4)
	if len(cells) != 16 {
		t.Fatalf("expected dense 4x4 grid (16 cells), got %d", len(cells))
	}
	for _, c := range cells {
		if c.Mesh != nil {
			t.Fatalf("expected no meshes for empty input")
		}
	}
}

func TestCutFullRangePayloadSingleCell(t *testing.T) {
	// A u8 mesh spanning the entire 0..255 domain with one cut: the
	// cell size must not wrap to 0 in the narrow coordinate type.
	mesh := &geom.PolyTriangle[uint8]{
		Vertices: []geom.Point2[uint8]{{X: 0, Y: 0}, {X: 255, Y: 0}, {X: 255, Y: 255}},
		Indices:  []uint16{0, 1, 2},
	}
	mesh.StretchBB()
	gbb := geom.BB[uint8]{Max: geom.Point3[uint8]{X: 255, Y: 255}}
	cells := Cut([]*geom.PolyTriangle[uint8]{mesh}, gbb, 1)
	if len(cells) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(cells))
	}
	if cells[0].Mesh == nil || len(cells[0].Mesh.Vertices) != 3 {
		t.Fatalf("expected the whole triangle in cell (0,0), got %+v", cells[0].Mesh)
	}
}
