// Package geom holds the geometry types shared by every stage of the
// pipeline: points, bounding boxes, and the shape kinds that flow from
// raw input records through compression, chunking and triangulation.
//
// Types are generic over the coordinate representation so the same
// shape definitions serve both the f64 world-coordinate domain and the
// narrow unsigned-integer domains produced by compression. Public APIs
// at file-format boundaries (internal/compress, internal/chunk) pick one
// concrete instantiation per target width rather than exposing the type
// parameter further out.
package geom

// Numeric is the set of coordinate representations a shape can be
// parameterized over: the f64 working domain, and the u8/u16/u32 domains
// produced by compression. u64 is included because axis ranges and
// offsets are always computed in u64 before being narrowed.
type Numeric interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float64
}

// Point2 is a 2D coordinate pair.
type Point2[T Numeric] struct {
	X, Y T
}

// Point3 is a 3D coordinate triple.
type Point3[T Numeric] struct {
	X, Y, Z T
}

// BB is an axis-aligned bounding box over 3D points: Min and Max such
// that Min.k <= p.k <= Max.k on every axis for every contained point.
type BB[T Numeric] struct {
	Min, Max Point3[T]
}

// MinMax exposes the sentinel and pairwise min/max operations a
// bounding box needs over a coordinate type. It is implemented for
// every member of Numeric via the generic helpers below rather than a
// method set, since Go forbids attaching methods to constrained type
// parameters directly.
func minOf[T Numeric](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func maxOf[T Numeric](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func minSentinel[T Numeric]() T {
	var z T
	switch any(z).(type) {
	case uint8:
		return any(^uint8(0)).(T)
	case uint16:
		return any(^uint16(0)).(T)
	case uint32:
		return any(^uint32(0)).(T)
	case uint64:
		return any(^uint64(0)).(T)
	case float64:
		return any(maxFloat64).(T)
	}
	return z
}

func maxSentinel[T Numeric]() T {
	var z T
	switch any(z).(type) {
	case float64:
		return any(-maxFloat64).(T)
	default:
		return z // zero is the minimum for every unsigned type
	}
}

const maxFloat64 = 1.7976931348623157e+308

// StartBox returns the sentinel box (Min=T-max, Max=T-min) used to seed
// a running bounding-box accumulation; stretching it with at least one
// point makes it valid.
func StartBox[T Numeric]() BB[T] {
	mn := minSentinel[T]()
	mx := maxSentinel[T]()
	return BB[T]{
		Min: Point3[T]{mn, mn, mn},
		Max: Point3[T]{mx, mx, mx},
	}
}

// DefaultBox is the all-zero box used only to represent an empty
// collection's bounds.
func DefaultBox[T Numeric]() BB[T] {
	return BB[T]{}
}

// Stretch widens bb in place to include p.
func (bb *BB[T]) Stretch(p Point3[T]) {
	bb.Min.X = minOf(bb.Min.X, p.X)
	bb.Min.Y = minOf(bb.Min.Y, p.Y)
	bb.Min.Z = minOf(bb.Min.Z, p.Z)
	bb.Max.X = maxOf(bb.Max.X, p.X)
	bb.Max.Y = maxOf(bb.Max.Y, p.Y)
	bb.Max.Z = maxOf(bb.Max.Z, p.Z)
}

// Union returns the smallest box containing both bb and other.
func (bb BB[T]) Union(other BB[T]) BB[T] {
	out := bb
	out.Stretch(other.Min)
	out.Stretch(other.Max)
	return out
}

// ContainsXY reports whether the box contains the point (x, y) in its
// xy projection, boundaries included.
func (bb BB[T]) ContainsXY(x, y T) bool {
	return x >= bb.Min.X && x <= bb.Max.X && y >= bb.Min.Y && y <= bb.Max.Y
}

// HasBB is implemented by every shape kind that carries a recomputable
// bounding box.
type HasBB[T Numeric] interface {
	BoundingBox() BB[T]
	SetBoundingBox(BB[T])
}

// PointsLen is implemented by shapes that can report their vertex
// count (used by the index-width and emptiness checks).
type PointsLen interface {
	PointsLen() int
}
