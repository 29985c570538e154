// Package lod implements the three successive level-of-detail filters
// applied to one chunk's contour set: height-modulus filtering, point
// decimation, and connecting-segment merge.
package lod

import "github.com/codybloemhard/geolod/internal/geom"

// HeightFilter keeps only shapes whose elevation is a multiple of
// modulus. A modulus of 0 or 1 keeps everything (the fine-LOD case).
func HeightFilter[T geom.Numeric](shapes []*geom.ShapeZ[T], modulus uint64) []*geom.ShapeZ[T] {
	if modulus <= 1 {
		out := make([]*geom.ShapeZ[T], len(shapes))
		copy(out, shapes)
		return out
	}
	out := make([]*geom.ShapeZ[T], 0, len(shapes))
	for _, s := range shapes {
		if uint64(s.Z)%modulus == 0 {
			out = append(out, s)
		}
	}
	return out
}

// Decimate applies stride-based point decimation targeting a total
// point budget n across the chunk: stride s = floor(P/n)+1, keeping
// every s-th point of each shape plus its last point (so connecting
// segments can still be merged afterward).
func Decimate[T geom.Numeric](shapes []*geom.ShapeZ[T], n int) []*geom.ShapeZ[T] {
	if n <= 0 {
		n = 1
	}
	total := 0
	for _, s := range shapes {
		total += len(s.Points)
	}
	stride := total/n + 1

	out := make([]*geom.ShapeZ[T], 0, len(shapes))
	for _, s := range shapes {
		ns := &geom.ShapeZ[T]{Points: decimatePoints(s.Points, stride), Z: s.Z}
		ns.StretchBB()
		out = append(out, ns)
	}
	return out
}

func decimatePoints[T geom.Numeric](points []geom.Point2[T], stride int) []geom.Point2[T] {
	if len(points) == 0 {
		return nil
	}
	out := make([]geom.Point2[T], 0, len(points)/stride+2)
	for i := 0; i < len(points); i += stride {
		out = append(out, points[i])
	}
	last := points[len(points)-1]
	if out[len(out)-1] != last {
		out = append(out, last)
	}
	return out
}

// Merge repeatedly pops one shape, scans the remainder for another
// shape at the same elevation sharing a first/last endpoint, and
// merges them (reversing one side as needed, dropping the duplicated
// shared point) until no more merges are possible. O(n^2).
func Merge[T geom.Numeric](shapes []*geom.ShapeZ[T]) []*geom.ShapeZ[T] {
	pool := make([]*geom.ShapeZ[T], len(shapes))
	copy(pool, shapes)

	var result []*geom.ShapeZ[T]
	for len(pool) > 0 {
		cur := pool[0]
		pool = pool[1:]
		for {
			mergedIdx := -1
			var next *geom.ShapeZ[T]
			for i, other := range pool {
				if other.Z != cur.Z {
					continue
				}
				if m, ok := tryMerge(cur, other); ok {
					next = m
					mergedIdx = i
					break
				}
			}
			if mergedIdx < 0 {
				break
			}
			cur = next
			pool = append(pool[:mergedIdx], pool[mergedIdx+1:]...)
		}
		result = append(result, cur)
	}
	return result
}

func tryMerge[T geom.Numeric](a, b *geom.ShapeZ[T]) (*geom.ShapeZ[T], bool) {
	if len(a.Points) == 0 || len(b.Points) == 0 {
		return nil, false
	}
	af, al := a.Points[0], a.Points[len(a.Points)-1]
	bf, bl := b.Points[0], b.Points[len(b.Points)-1]

	var pts []geom.Point2[T]
	switch {
	case al == bf:
		pts = concat(a.Points, b.Points[1:])
	case al == bl:
		pts = concat(a.Points, reversePoints(b.Points)[1:])
	case af == bl:
		pts = concat(b.Points, a.Points[1:])
	case af == bf:
		pts = concat(reversePoints(b.Points), a.Points[1:])
	default:
		return nil, false
	}
	ns := &geom.ShapeZ[T]{Points: pts, Z: a.Z}
	ns.StretchBB()
	return ns, true
}

func concat[T geom.Numeric](a, b []geom.Point2[T]) []geom.Point2[T] {
	out := make([]geom.Point2[T], 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func reversePoints[T geom.Numeric](pts []geom.Point2[T]) []geom.Point2[T] {
	out := make([]geom.Point2[T], len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}
