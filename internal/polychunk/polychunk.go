// Package polychunk implements the polygon-mesh chunker: each
// triangulated mesh is distributed into the up-to-three grid cells its
// vertices touch, with per-cell vertex dedup so shared edges across
// triangles in the same cell do not duplicate vertices. The per-cell
// accumulator is a map keyed by cell coordinate holding one growable
// working mesh, looked up once per triangle and mutated in place.
package polychunk

import "github.com/codybloemhard/geolod/internal/geom"

// Cell is one grid cell's accumulated mesh, keyed by grid coordinate.
type Cell[T geom.Numeric] struct {
	CX, CY uint64
	Mesh   *geom.PolyTriangle[T]
}

type cellKey struct{ cx, cy uint64 }

// vertKey dedups vertices within one cell's working mesh; exact
// equality is correct here because every vertex compared already went
// through the same compression descriptor.
type vertKey[T geom.Numeric] struct{ x, y T }

// workingMesh is one cell's in-progress accumulator: a vertex list plus
// a map from vertex value to its local index, so a vertex shared by two
// triangles in the same cell is emitted once.
type workingMesh[T geom.Numeric] struct {
	style    uint64
	vertices []geom.Point2[T]
	indices  []uint16
	seen     map[vertKey[T]]uint16
}

func newWorkingMesh[T geom.Numeric](style uint64) *workingMesh[T] {
	return &workingMesh[T]{style: style, seen: make(map[vertKey[T]]uint16)}
}

func (w *workingMesh[T]) add(p geom.Point2[T]) uint16 {
	k := vertKey[T]{p.X, p.Y}
	if idx, ok := w.seen[k]; ok {
		return idx
	}
	idx := uint16(len(w.vertices))
	w.vertices = append(w.vertices, p)
	w.seen[k] = idx
	return idx
}

// Cut distributes every mesh's triangles into a cuts*cuts grid over
// gbb. gbb must have its Min at the origin, matching the polyline
// chunker's precondition; polychunk has no bounding-box-violation
// issue kind of its own so a non-origin box is simply not checked here
// (the compressor that produced gbb already guarantees it).
func Cut[T geom.Numeric](meshes []*geom.PolyTriangle[T], gbb geom.BB[T], cuts uint64) []Cell[T] {
	// Cell sizes stay in u64 so they cannot wrap to 0 inside T when the
	// compressed range fills the whole target width.
	gx := uint64(gbb.Max.X)
	gy := uint64(gbb.Max.Y)
	csx := gx/cuts + 1
	csy := gy/cuts + 1
	if csx == 0 {
		csx = ^uint64(0)
	}
	if csy == 0 {
		csy = ^uint64(0)
	}

	working := make(map[cellKey]*workingMesh[T])

	for _, mesh := range meshes {
		for i := 0; i+2 < len(mesh.Indices); i += 3 {
			ia, ib, ic := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
			va, vb, vc := mesh.Vertices[ia], mesh.Vertices[ib], mesh.Vertices[ic]

			cells := distinctCells(va, vb, vc, csx, csy)
			for _, ck := range cells {
				wm, ok := working[ck]
				if !ok {
					wm = newWorkingMesh[T](mesh.Style)
					working[ck] = wm
				}
				wm.indices = append(wm.indices, wm.add(va), wm.add(vb), wm.add(vc))
			}
		}
	}

	dense := make([]Cell[T], cuts*cuts)
	for cy := uint64(0); cy < cuts; cy++ {
		for cx := uint64(0); cx < cuts; cx++ {
			idx := cy*cuts + cx
			dense[idx] = Cell[T]{CX: cx, CY: cy}
			wm, ok := working[cellKey{cx, cy}]
			if !ok {
				continue
			}
			m := &geom.PolyTriangle[T]{Vertices: wm.vertices, Indices: wm.indices, Style: wm.style}
			m.StretchBB()
			dense[idx].Mesh = m
		}
	}
	return dense
}

// distinctCells returns the up-to-three distinct cell keys a triangle's
// vertices fall in.
func distinctCells[T geom.Numeric](a, b, c geom.Point2[T], csx, csy uint64) []cellKey {
	keys := make([]cellKey, 0, 3)
	seen := make(map[cellKey]bool, 3)
	for _, v := range [3]geom.Point2[T]{a, b, c} {
		k := cellKey{uint64(v.X) / csx, uint64(v.Y) / csy}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}
