// Package triangulate implements an ear-clipping triangulator with
// holes: clean -> orientation repair -> outer/inner grouping -> hole
// bridging -> ear clipping with reflex/ear bookkeeping.
//
// The cyclic ring used during ear clipping is a slice-backed arena of
// next/prev indices, so removing an ear only touches its two
// neighbours. Outer-ring containment counting is accelerated with an
// R-tree (github.com/dhconnelly/rtreego) over outer bounding boxes: a
// candidate whose bbox does not contain the query point cannot contain
// it exactly either, so the exact ray-cast test only runs against
// bbox-matching candidates. This changes complexity, not semantics.
package triangulate

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/codybloemhard/geolod/internal/geom"
	"github.com/codybloemhard/geolod/internal/issuelog"
)

// maxMeshVertices caps a merged ring: its vertex count must fit a
// uint16 index, which is what the downstream renderer consumes.
const maxMeshVertices = 1 << 16

// Triangulate runs the full triangulation pipeline over a polygon
// collection, producing one PolyTriangle per outer-plus-holes group.
// Polygons or groups that fail a local constraint are skipped with a
// logged issue; the remaining polygons are still triangulated.
func Triangulate(polys []*geom.PolygonZ[float64], logger *issuelog.Logger) []*geom.PolyTriangle[float64] {
	var out []*geom.PolyTriangle[float64]
	for _, polygon := range clean(polys) {
		style := polygon.Style
		bb := polygon.BB
		fixOrder(polygon)
		groups := groupRings(polygon, logger)

		for _, g := range groups {
			merged := mergeInner(g.outer, g.inners)
			if len(merged) == 0 {
				continue
			}
			merged = dedupRing(merged)
			indices, ok := makeIndices(merged, logger)
			if !ok {
				continue
			}
			verts := make([]geom.Point2[float64], len(merged))
			for i, p := range merged {
				verts[i] = geom.Point2[float64]{X: p.X, Y: p.Y}
			}
			out = append(out, &geom.PolyTriangle[float64]{
				Vertices: verts,
				Indices:  indices,
				Style:    style,
				BB:       bb,
			})
		}
	}
	return out
}

// clean drops empty rings and consecutive duplicate vertices from every
// ring, then re-stretches the polygon's bounding box.
func clean(polys []*geom.PolygonZ[float64]) []*geom.PolygonZ[float64] {
	out := make([]*geom.PolygonZ[float64], 0, len(polys))
	for _, p := range polys {
		np := &geom.PolygonZ[float64]{Style: p.Style}
		for _, o := range p.Outers {
			if len(o) == 0 {
				continue
			}
			np.Outers = append(np.Outers, cleanRing(o))
		}
		for _, in := range p.Inners {
			if len(in) == 0 {
				continue
			}
			np.Inners = append(np.Inners, cleanRing(in))
		}
		np.StretchBB()
		out = append(out, np)
	}
	return out
}

func cleanRing(ring geom.Ring[float64]) geom.Ring[float64] {
	out := make(geom.Ring[float64], 0, len(ring))
	last := ring[0]
	out = append(out, last)
	for _, p := range ring[1:] {
		if p == last {
			continue
		}
		last = p
		out = append(out, p)
	}
	return out
}

// dedupRing removes consecutive duplicates across the merged ring and
// drops a closing vertex equal to the first.
func dedupRing(verts []geom.Point3[float64]) []geom.Point3[float64] {
	if len(verts) == 0 {
		return verts
	}
	out := make([]geom.Point3[float64], 0, len(verts))
	out = append(out, verts[0])
	for _, v := range verts[1:] {
		if v == out[len(out)-1] {
			continue
		}
		out = append(out, v)
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// fixOrder forces every outer ring clockwise and every inner ring
// counter-clockwise, per the signed-area convention the ear clipper
// relies on to tell the two roles apart.
func fixOrder(polygon *geom.PolygonZ[float64]) {
	for i := range polygon.Outers {
		if !isClockwise(polygon.Outers[i]) {
			reverseRing(polygon.Outers[i])
		}
	}
	for i := range polygon.Inners {
		if isClockwise(polygon.Inners[i]) {
			reverseRing(polygon.Inners[i])
		}
	}
}

func reverseRing(r geom.Ring[float64]) {
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
}

func isClockwise(ring geom.Ring[float64]) bool {
	sum := 0.0
	n := len(ring)
	for i, p0 := range ring {
		p1 := ring[(i+1)%n]
		sum += (p1.X - p0.X) * (p1.Y + p0.Y)
	}
	return sum > 0
}

// group pairs one outer ring with the inner rings assigned to it.
type group struct {
	outer  geom.Ring[float64]
	inners []geom.Ring[float64]
}

// outerEntry is the rtree.Spatial wrapper around one outer ring's
// bounding box, used only to accelerate groupRings' containment scan.
type outerEntry struct {
	idx                    int
	minX, minY, maxX, maxY float64
}

func (e *outerEntry) Bounds() rtreego.Rect {
	lengths := []float64{e.maxX - e.minX, e.maxY - e.minY}
	for i, l := range lengths {
		if l <= 0 {
			lengths[i] = 1e-9
		}
	}
	rect, _ := rtreego.NewRect(rtreego.Point{e.minX, e.minY}, lengths)
	return rect
}

// groupRings assigns each inner ring to the outer ring that contains its
// first vertex and is itself contained by the most other outers (the
// innermost enclosing outer). Candidate outers are pre-filtered by an
// R-tree query over outer bounding boxes before the exact ray-cast
// containment test runs.
func groupRings(polygon *geom.PolygonZ[float64], logger *issuelog.Logger) []group {
	n := len(polygon.Outers)
	if n == 0 {
		return nil
	}
	groups := make([]group, n)
	for i, o := range polygon.Outers {
		groups[i] = group{outer: o}
	}

	tree := rtreego.NewTree(2, 2, 5)
	for i, o := range polygon.Outers {
		e := &outerEntry{idx: i}
		e.minX, e.minY = math.MaxFloat64, math.MaxFloat64
		e.maxX, e.maxY = -math.MaxFloat64, -math.MaxFloat64
		for _, p := range o {
			e.minX = math.Min(e.minX, p.X)
			e.minY = math.Min(e.minY, p.Y)
			e.maxX = math.Max(e.maxX, p.X)
			e.maxY = math.Max(e.maxY, p.Y)
		}
		tree.Insert(e)
	}

	inside := make([]int, n)
	for i, o := range polygon.Outers {
		count := 0
		for _, c := range queryPoint(tree, o[0].X, o[0].Y) {
			if c.idx == i {
				continue
			}
			if isInsidePolygon(polygon.Outers[c.idx], o[0]) {
				count++
			}
		}
		inside[i] = count
	}

	for _, inner := range polygon.Inners {
		max := -1
		maxIdx := 0
		for _, c := range queryPoint(tree, inner[0].X, inner[0].Y) {
			if isInsidePolygon(polygon.Outers[c.idx], inner[0]) && inside[c.idx] > max {
				max = inside[c.idx]
				maxIdx = c.idx
			}
		}
		if max == -1 {
			logger.Log(issuelog.InnerNotInside)
			continue
		}
		groups[maxIdx].inners = append(groups[maxIdx].inners, inner)
	}
	return groups
}

func queryPoint(tree *rtreego.Rtree, x, y float64) []*outerEntry {
	const eps = 1e-9
	rect, _ := rtreego.NewRect(rtreego.Point{x - eps, y - eps}, []float64{2 * eps, 2 * eps})
	spatials := tree.SearchIntersect(rect)
	out := make([]*outerEntry, 0, len(spatials))
	for _, s := range spatials {
		out = append(out, s.(*outerEntry))
	}
	return out
}

// isInsidePolygon is an even-odd ray-to-+x test, with a grazing-edge
// exclusion rule that prevents double-counting a ray that passes
// exactly through a shared vertex.
func isInsidePolygon(ring geom.Ring[float64], p geom.Point3[float64]) bool {
	intersects := 0
	n := len(ring)
	for i := 0; i < n; i++ {
		p1 := ring[i]
		p2 := ring[(i+1)%n]
		if p2.Y-p1.Y == 0 {
			continue
		}
		t := (p.Y - p1.Y) / (p2.Y - p1.Y)
		if t < 0 || t > 1 {
			continue
		}
		if (p2.Y-p1.Y < 0 && math.Abs(t-1) < 1e-3) || (p2.Y-p1.Y > 0 && math.Abs(t) < 1e-3) {
			continue
		}
		x := p1.X + t*(p2.X-p1.X)
		if x < p.X {
			continue
		}
		intersects++
	}
	return intersects%2 == 1
}

// mergeInner bridges every inner ring of a group into its outer ring,
// rightmost-x-first, producing one flat ring suitable for ear clipping.
func mergeInner(outer geom.Ring[float64], inners []geom.Ring[float64]) geom.Ring[float64] {
	sorted := make([]geom.Ring[float64], len(inners))
	copy(sorted, inners)
	sort.Slice(sorted, func(i, j int) bool {
		return rightmostX(sorted[i]) > rightmostX(sorted[j])
	})

	cur := append(geom.Ring[float64]{}, outer...)
	for _, inner := range sorted {
		cur = bridgeOne(cur, inner)
	}
	return cur
}

func rightmostX(ring geom.Ring[float64]) float64 {
	m := -math.MaxFloat64
	for _, p := range ring {
		if p.X > m {
			m = p.X
		}
	}
	return m
}

// bridgeOne inserts one inner ring into outer via the zero-width bridge
// edge: shoot a ray from the inner
// ring's rightmost vertex in +x, find the closest outer edge
// intersection, and splice the inner ring in and back out through it.
func bridgeOne(outer, inner geom.Ring[float64]) geom.Ring[float64] {
	rightmostIdx := 0
	rightmost := geom.Point3[float64]{X: -math.MaxFloat64}
	for i, p := range inner {
		if p.X > rightmost.X {
			rightmost = p
			rightmostIdx = i
		}
	}

	var intersect geom.Point3[float64]
	intersectIdx := 0
	bestDis := math.MaxFloat64
	x3, y3 := rightmost.X, rightmost.Y
	n := len(outer)
	for i := 0; i < n; i++ {
		p0 := outer[i]
		p1 := outer[(i+1)%n]
		if p1.Y-p0.Y == 0 {
			continue
		}
		t := (y3 - p0.Y) / (p1.Y - p0.Y)
		if t < 0 || t > 1 {
			continue
		}
		x := p0.X + t*(p1.X-p0.X)
		curDis := x - x3
		if curDis < 0 || curDis >= bestDis {
			continue
		}
		bestDis = curDis
		z := p0.Z + t*(p1.Z-p0.Z)
		intersectIdx = (i + 1) % n
		intersect = geom.Point3[float64]{X: x, Y: y3, Z: z}
	}

	out := make(geom.Ring[float64], 0, len(outer)+len(inner)+2)
	for i, p := range outer {
		if i == intersectIdx {
			out = append(out, intersect)
			k := rightmostIdx
			for step := 0; step < len(inner); step++ {
				out = append(out, inner[k])
				k = (k + 1) % len(inner)
			}
			out = append(out, inner[k])
			out = append(out, intersect)
		}
		out = append(out, p)
	}
	return out
}

// polyNode is one entry in the ear-clipping arena: a slice-backed
// doubly linked list addressed by index (next/prev).
type polyNode struct {
	point       geom.Point3[float64]
	index       uint16
	reflex, ear bool
	next, prev  int
	alive       bool
}

type ringArena struct {
	nodes []polyNode
	count int
}

func newRingArena(vertices []geom.Point3[float64]) *ringArena {
	n := len(vertices)
	nodes := make([]polyNode, n)
	for i, v := range vertices {
		nodes[i] = polyNode{
			point: v,
			index: uint16(i),
			next:  (i + 1) % n,
			prev:  (i - 1 + n) % n,
			alive: true,
		}
	}
	r := &ringArena{nodes: nodes, count: n}
	for i := range r.nodes {
		r.nodes[i].reflex = r.isReflex(i)
	}
	for i := range r.nodes {
		r.nodes[i].ear = !r.nodes[i].reflex && r.isEar(i)
	}
	return r
}

// isReflex tests whether vertex i has a positive cross product of its
// neighbour-bounded edges; the ring is clockwise by construction so a
// positive cross product means reflex.
func (r *ringArena) isReflex(i int) bool {
	a := r.nodes[r.nodes[i].prev].point
	b := r.nodes[i].point
	c := r.nodes[r.nodes[i].next].point
	return (b.X-a.X)*(c.Y-b.Y)-(c.X-b.X)*(b.Y-a.Y) > 0
}

func (r *ringArena) isEar(i int) bool {
	if r.nodes[i].reflex {
		return false
	}
	prevIdx, nextIdx := r.nodes[i].prev, r.nodes[i].next
	p := r.nodes[i].point
	pPrev := r.nodes[prevIdx].point
	pNext := r.nodes[nextIdx].point
	for j := range r.nodes {
		if !r.nodes[j].alive || j == i || j == prevIdx || j == nextIdx {
			continue
		}
		if isInsideTriangle(r.nodes[j].point, pPrev, p, pNext) {
			return false
		}
	}
	return true
}

func (r *ringArena) remove(i int) {
	p, n := r.nodes[i].prev, r.nodes[i].next
	r.nodes[p].next = n
	r.nodes[n].prev = p
	r.nodes[i].alive = false
	r.count--
}

// refresh recomputes the reflex/ear flags of node i; only the two
// neighbours of a removed ear ever need this.
func (r *ringArena) refresh(i int) {
	r.nodes[i].reflex = r.isReflex(i)
	r.nodes[i].ear = !r.nodes[i].reflex && r.isEar(i)
}

// isInsideTriangle is a barycentric point-in-triangle test; a
// point equal to any vertex is never considered inside (this matters
// because hole-bridging introduces exactly-duplicated bridge vertices).
func isInsideTriangle(p, p0, p1, p2 geom.Point3[float64]) bool {
	if p == p0 || p == p1 || p == p2 {
		return false
	}
	denom := (p1.Y-p2.Y)*(p0.X-p2.X) + (p2.X-p1.X)*(p0.Y-p2.Y)
	aa := ((p1.Y-p2.Y)*(p.X-p2.X) + (p2.X-p1.X)*(p.Y-p2.Y)) / denom
	bb := ((p2.Y-p0.Y)*(p.X-p2.X) + (p0.X-p2.X)*(p.Y-p2.Y)) / denom
	cc := 1 - aa - bb
	return aa >= 0 && aa <= 1 && bb >= 0 && bb <= 1 && cc >= 0 && cc <= 1
}

// makeIndices ear-clips the merged ring, emitting three original
// indices per removed ear and the final triangle when three vertices
// remain.
func makeIndices(vertices []geom.Point3[float64], logger *issuelog.Logger) ([]uint16, bool) {
	if len(vertices) < 3 {
		logger.Log(issuelog.PolyNotEnoughVertices)
		return nil, false
	}
	if len(vertices) > maxMeshVertices {
		logger.Log(issuelog.OutOfIndicesBound)
		return nil, false
	}

	r := newRingArena(vertices)
	var indices []uint16
	cur := 0
	step := 0
	for r.count > 3 {
		step++
		if step > len(vertices) {
			logger.Log(issuelog.NoEarsLeft)
			return nil, false
		}
		if !r.nodes[cur].ear {
			cur = r.nodes[cur].next
			continue
		}
		step = 0

		prevIdx, nextIdx := r.nodes[cur].prev, r.nodes[cur].next
		indices = append(indices, r.nodes[prevIdx].index, r.nodes[cur].index, r.nodes[nextIdx].index)

		r.remove(cur)
		r.refresh(prevIdx)
		r.refresh(nextIdx)
		cur = prevIdx
	}

	for i := range r.nodes {
		if r.nodes[i].alive {
			indices = append(indices, r.nodes[i].index)
		}
	}
	return indices, true
}
