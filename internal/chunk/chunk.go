// Package chunk implements the polyline chunker: a uniform grid cut
// of a compressed shape collection over the global bounding box,
// splitting polylines that cross cell boundaries so each chunk is
// independently renderable. Cells are enumerated dense and row-major,
// empty ones included.
package chunk

import (
	"github.com/codybloemhard/geolod/internal/geom"
	"github.com/codybloemhard/geolod/internal/issuelog"
)

// Cell is one grid cell's assigned shapes, keyed by grid coordinate.
type Cell[T geom.Numeric] struct {
	CX, CY uint64
	Shapes []*geom.ShapeZ[T]
}

type cellKey struct{ cx, cy uint64 }

// Cut partitions shapes into cuts*cuts cells over gbb. gbb.Min must
// be the origin; otherwise the chunker logs NonOriginBoundingbox and
// returns an empty (but still dense) grid. The compressor guarantees
// the precondition by construction of its offsets.
func Cut[T geom.Numeric](shapes []*geom.ShapeZ[T], gbb geom.BB[T], cuts uint64, logger *issuelog.Logger) []Cell[T] {
	dense := make([]Cell[T], cuts*cuts)
	for cy := uint64(0); cy < cuts; cy++ {
		for cx := uint64(0); cx < cuts; cx++ {
			dense[cy*cuts+cx] = Cell[T]{CX: cx, CY: cy}
		}
	}

	var zero T
	if gbb.Min.X != zero || gbb.Min.Y != zero || gbb.Min.Z != zero {
		logger.Log(issuelog.NonOriginBoundingbox)
		return dense
	}

	// Cell sizes are computed and kept in u64: narrowing gx/cuts+1 into
	// T would wrap to 0 whenever the compressed range fills the whole
	// target width (e.g. a u8 payload spanning 0..255 with one cut).
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

	buckets := make(map[cellKey][]*geom.ShapeZ[T])

	emit := func(cx, cy uint64, points []geom.Point2[T], z T) {
		s := &geom.ShapeZ[T]{Points: points, Z: z}
		s.StretchBB()
		k := cellKey{cx, cy}
		buckets[k] = append(buckets[k], s)
	}

	for _, shape := range shapes {
		if len(shape.Points) == 0 {
			logger.Log(issuelog.EmptyShape)
			continue
		}
		if len(shape.Points) == 1 {
			cx, cy := cellOf(shape.Points[0], csx, csy)
			emit(cx, cy, []geom.Point2[T]{shape.Points[0]}, shape.Z)
			continue
		}

		curCX, curCY := cellOf(shape.Points[0], csx, csy)
		curSeg := []geom.Point2[T]{shape.Points[0]}

		for i := 1; i < len(shape.Points); i++ {
			p := shape.Points[i]
			cx, cy := cellOf(p, csx, csy)
			if cx == curCX && cy == curCY {
				curSeg = append(curSeg, p)
				continue
			}
			// Boundary crossed: the next point also belongs to the
			// current segment so the line visually reaches the edge.
			curSeg = append(curSeg, p)
			emit(curCX, curCY, curSeg, shape.Z)

			prev := shape.Points[i-1]
			curSeg = []geom.Point2[T]{prev, p}
			curCX, curCY = cx, cy
		}
		emit(curCX, curCY, curSeg, shape.Z)
	}

	for i := range dense {
		k := cellKey{dense[i].CX, dense[i].CY}
		dense[i].Shapes = buckets[k]
	}
	return dense
}

func cellOf[T geom.Numeric](p geom.Point2[T], csx, csy uint64) (uint64, uint64) {
	return uint64(p.X) / csx, uint64(p.Y) / csy
}
