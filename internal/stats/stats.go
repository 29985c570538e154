// Package stats computes per-axis coordinate ranges over a shape
// collection and picks the narrowest integer width, and the multiplier
// within it, that the compressor (internal/compress) then applies to
// every vertex.
package stats

import (
	"fmt"
	"math"

	"github.com/codybloemhard/geolod/internal/geom"
)

// Width is the target integer width chosen for compression, encoded as
// the byte count written to the compression descriptor's tag byte
// ({1, 2, 4, 0}).
type Width uint8

const (
	WidthNone Width = 0
	WidthU8   Width = 1
	WidthU16  Width = 2
	WidthU32  Width = 4
)

func (w Width) String() string {
	switch w {
	case WidthU8:
		return "u8"
	case WidthU16:
		return "u16"
	case WidthU32:
		return "u32"
	default:
		return "none"
	}
}

// Max returns the largest integer representable in w, as the M used by
// the multiplier formula m = floor(M/R).
func (w Width) Max() uint64 {
	switch w {
	case WidthU8:
		return math.MaxUint8
	case WidthU16:
		return math.MaxUint16
	case WidthU32:
		return math.MaxUint32
	default:
		return 0
	}
}

// Ranges holds the per-axis offset and range computed over an input
// shape set. MX/MY/MZ are the truncated u64 offsets written to the
// descriptor header; OX/OY/OZ keep the exact float minimums so the
// compressor can map the minimum vertex to exactly 0 (the chunker
// requires an origin-minimum bounding box). RX/RY/RZ are the float
// ranges rounded up, so a multiplier derived from them can never
// overflow the target width.
type Ranges struct {
	MX, RX     uint64
	MY, RY     uint64
	MZ, RZ     uint64
	OX, OY, OZ float64
}

// Max returns R = max(rx, ry, rz), the value target width selection and
// multiplier selection both key off of.
func (r Ranges) Max() uint64 {
	m := r.RX
	if r.RY > m {
		m = r.RY
	}
	if r.RZ > m {
		m = r.RZ
	}
	return m
}

// axisAcc accumulates one axis's float extent.
type axisAcc struct {
	min, max float64
}

func newAxisAcc() axisAcc {
	return axisAcc{min: math.MaxFloat64, max: -math.MaxFloat64}
}

func (a *axisAcc) add(v float64) {
	if v < a.min {
		a.min = v
	}
	if v > a.max {
		a.max = v
	}
}

// offsetRange derives the (u64 offset, rounded-up range, float offset)
// triple for one axis. The range is taken from the float extent and
// rounded up, never from the truncated offsets, so that
// round((max-min)*multiplier) is guaranteed to fit the target width.
func (a axisAcc) offsetRange() (uint64, uint64, float64) {
	if a.max < a.min {
		return 0, 0, 0
	}
	return uint64(a.min), uint64(math.Ceil(a.max - a.min)), a.min
}

// ComputeRanges computes (xmin, xrange, ymin, yrange, zmin, zrange) over
// a sequence of contours.
func ComputeRanges(shapes []*geom.ShapeZ[float64]) Ranges {
	if len(shapes) == 0 {
		return Ranges{}
	}
	ax, ay, az := newAxisAcc(), newAxisAcc(), newAxisAcc()
	for _, s := range shapes {
		az.add(s.Z)
		for _, p := range s.Points {
			ax.add(p.X)
			ay.add(p.Y)
		}
	}
	var r Ranges
	r.MX, r.RX, r.OX = ax.offsetRange()
	r.MY, r.RY, r.OY = ay.offsetRange()
	r.MZ, r.RZ, r.OZ = az.offsetRange()
	return r
}

// SelectWidth picks the narrowest width for which R < 2^w - 1, or
// WidthNone if even u32 cannot hold it.
func SelectWidth(r uint64) Width {
	switch {
	case r < math.MaxUint8:
		return WidthU8
	case r < math.MaxUint16:
		return WidthU16
	case r < math.MaxUint32:
		return WidthU32
	default:
		return WidthNone
	}
}

// SelectMultiplier picks m = floor(M/R) for the chosen width, and
// reports the usage fraction m*R/M. Fails when the range cannot be
// represented at all, i.e. m would be 0.
func SelectMultiplier(w Width, r uint64) (multiplier uint64, usage float64, err error) {
	m := w.Max()
	if m == 0 {
		// WidthNone: no integer compression, payload stays f64.
		return 1, 1, nil
	}
	if r == 0 {
		// Degenerate single-value axis: any positive multiplier works.
		return 1, 1, nil
	}
	mult := m / r
	if mult < 1 {
		return 0, 0, fmt.Errorf("stats: compression multiplier < 1 for range %d in width %s (pathological range)", r, w)
	}
	usage = float64(mult*r) / float64(m)
	return mult, usage, nil
}

// Descriptor is the full (offset, multiplier, width) triple the
// compressor writes to every output file's header. OX/OY/OZ are the
// exact float offsets the compressor subtracts so the minimum vertex
// lands on compressed 0; the header carries only their truncated u64
// forms, so decoding shifts the world by the sub-unit fraction of the
// minimum, a constant error within the format's lossy budget.
type Descriptor struct {
	MX, MY, MZ uint64
	OX, OY, OZ float64
	Multi      uint64
	Width      Width
	Usage      float64
}

func fromRanges(r Ranges) (Descriptor, error) {
	w := SelectWidth(r.Max())
	mult, usage, err := SelectMultiplier(w, r.Max())
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		MX: r.MX, MY: r.MY, MZ: r.MZ,
		OX: r.OX, OY: r.OY, OZ: r.OZ,
		Multi: mult, Width: w, Usage: usage,
	}, nil
}

// Select runs the full selection: ranges -> width -> multiplier.
func Select(shapes []*geom.ShapeZ[float64]) (Descriptor, error) {
	return fromRanges(ComputeRanges(shapes))
}

// ComputeRangesXY is ComputeRanges' counterpart for flat 2D point sets
// with no elevation axis (used when compressing triangle meshes, whose
// vertices are 2D).
func ComputeRangesXY(points []geom.Point2[float64]) Ranges {
	if len(points) == 0 {
		return Ranges{}
	}
	ax, ay := newAxisAcc(), newAxisAcc()
	for _, p := range points {
		ax.add(p.X)
		ay.add(p.Y)
	}
	var r Ranges
	r.MX, r.RX, r.OX = ax.offsetRange()
	r.MY, r.RY, r.OY = ay.offsetRange()
	return r
}

// SelectXY runs the same selection over a flat point set instead of a
// contour collection.
func SelectXY(points []geom.Point2[float64]) (Descriptor, error) {
	return fromRanges(ComputeRangesXY(points))
}

// ComputeRangesPoints3 computes per-axis ranges over a flat 3D point
// set, used when compressing polygon rings, which carry per-vertex
// elevation unlike contours.
func ComputeRangesPoints3(points []geom.Point3[float64]) Ranges {
	if len(points) == 0 {
		return Ranges{}
	}
	ax, ay, az := newAxisAcc(), newAxisAcc(), newAxisAcc()
	for _, p := range points {
		ax.add(p.X)
		ay.add(p.Y)
		az.add(p.Z)
	}
	var r Ranges
	r.MX, r.RX, r.OX = ax.offsetRange()
	r.MY, r.RY, r.OY = ay.offsetRange()
	r.MZ, r.RZ, r.OZ = az.offsetRange()
	return r
}

// SelectPoints3 runs the same selection over a flat 3D point set.
func SelectPoints3(points []geom.Point3[float64]) (Descriptor, error) {
	return fromRanges(ComputeRangesPoints3(points))
}
