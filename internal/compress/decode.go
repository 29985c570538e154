// decode.go reads back the buffers compress.go writes, mirroring each
// Write/Encode function with a Read counterpart. The chunkify mode is
// the main consumer: it reopens a compressed contour blob, re-cuts it
// into grid cells per LOD level, and rewrites the cells as chunk files.
package compress

import (
	"fmt"

	"github.com/codybloemhard/geolod/internal/bufio2"
	"github.com/codybloemhard/geolod/internal/geom"
	"github.com/codybloemhard/geolod/internal/stats"
)

func readT[T geom.Numeric](r *bufio2.Reader) (T, error) {
	var zero T
	switch any(zero).(type) {
	case uint8:
		v, err := r.U8()
		return T(v), err
	case uint16:
		v, err := r.U16()
		return T(v), err
	case uint32:
		v, err := r.U32()
		return T(v), err
	case uint64:
		v, err := r.U64()
		return T(v), err
	case float64:
		v, err := r.F64()
		return T(v), err
	}
	return zero, fmt.Errorf("compress: unreadable coordinate type")
}

func readP2[T geom.Numeric](r *bufio2.Reader) (geom.Point2[T], error) {
	x, err := readT[T](r)
	if err != nil {
		return geom.Point2[T]{}, err
	}
	y, err := readT[T](r)
	if err != nil {
		return geom.Point2[T]{}, err
	}
	return geom.Point2[T]{X: x, Y: y}, nil
}

func readP3[T geom.Numeric](r *bufio2.Reader) (geom.Point3[T], error) {
	x, err := readT[T](r)
	if err != nil {
		return geom.Point3[T]{}, err
	}
	y, err := readT[T](r)
	if err != nil {
		return geom.Point3[T]{}, err
	}
	z, err := readT[T](r)
	if err != nil {
		return geom.Point3[T]{}, err
	}
	return geom.Point3[T]{X: x, Y: y, Z: z}, nil
}

// ReadBB reads a bounding box written by WriteBB.
func ReadBB[T geom.Numeric](r *bufio2.Reader) (geom.BB[T], error) {
	min, err := readP3[T](r)
	if err != nil {
		return geom.BB[T]{}, err
	}
	max, err := readP3[T](r)
	if err != nil {
		return geom.BB[T]{}, err
	}
	return geom.BB[T]{Min: min, Max: max}, nil
}

// ReadDescriptor reads the (mx,my,mz,multi,width) header written by
// WriteDescriptor. The width byte tells the caller which concrete
// instantiation to decode the rest of the buffer with.
func ReadDescriptor(r *bufio2.Reader) (stats.Descriptor, error) {
	var d stats.Descriptor
	var err error
	if d.MX, err = r.U64(); err != nil {
		return d, err
	}
	if d.MY, err = r.U64(); err != nil {
		return d, err
	}
	if d.MZ, err = r.U64(); err != nil {
		return d, err
	}
	if d.Multi, err = r.U64(); err != nil {
		return d, err
	}
	wb, err := r.U8()
	if err != nil {
		return d, err
	}
	switch wb {
	case uint8(stats.WidthU8), uint8(stats.WidthU16), uint8(stats.WidthU32), uint8(stats.WidthNone):
		d.Width = stats.Width(wb)
	default:
		return d, fmt.Errorf("compress: unknown target width byte %d", wb)
	}
	// The header only carries the truncated u64 offsets; the sub-unit
	// fraction of the original minimum is lost by design.
	d.OX, d.OY, d.OZ = float64(d.MX), float64(d.MY), float64(d.MZ)
	return d, nil
}

// ReadShapes reads a length-prefixed ShapeZ sequence written by
// EncodeShapes.
func ReadShapes[T geom.Numeric](r *bufio2.Reader) ([]*geom.ShapeZ[T], error) {
	n, err := r.Count()
	if err != nil {
		return nil, err
	}
	shapes := make([]*geom.ShapeZ[T], 0, n)
	for i := 0; i < n; i++ {
		z, err := readT[T](r)
		if err != nil {
			return nil, err
		}
		bb, err := ReadBB[T](r)
		if err != nil {
			return nil, err
		}
		np, err := r.Count()
		if err != nil {
			return nil, err
		}
		pts := make([]geom.Point2[T], np)
		for j := 0; j < np; j++ {
			if pts[j], err = readP2[T](r); err != nil {
				return nil, err
			}
		}
		shapes = append(shapes, &geom.ShapeZ[T]{Points: pts, Z: z, BB: bb})
	}
	return shapes, nil
}

// ReadContourBody reads the global bounding box and shape sequence that
// follow a contour blob's descriptor.
func ReadContourBody[T geom.Numeric](r *bufio2.Reader) (geom.BB[T], []*geom.ShapeZ[T], error) {
	gbb, err := ReadBB[T](r)
	if err != nil {
		return geom.BB[T]{}, nil, err
	}
	shapes, err := ReadShapes[T](r)
	if err != nil {
		return geom.BB[T]{}, nil, err
	}
	return gbb, shapes, nil
}

// ReadMeshes reads a length-prefixed PolyTriangle sequence written by
// EncodeMeshes.
func ReadMeshes[T geom.Numeric](r *bufio2.Reader) ([]*geom.PolyTriangle[T], error) {
	n, err := r.Count()
	if err != nil {
		return nil, err
	}
	meshes := make([]*geom.PolyTriangle[T], 0, n)
	for i := 0; i < n; i++ {
		nv, err := r.Count()
		if err != nil {
			return nil, err
		}
		verts := make([]geom.Point2[T], nv)
		for j := 0; j < nv; j++ {
			if verts[j], err = readP2[T](r); err != nil {
				return nil, err
			}
		}
		ni, err := r.Count()
		if err != nil {
			return nil, err
		}
		indices := make([]uint16, ni)
		for j := 0; j < ni; j++ {
			if indices[j], err = r.U16(); err != nil {
				return nil, err
			}
		}
		style, err := r.U64()
		if err != nil {
			return nil, err
		}
		bb, err := ReadBB[T](r)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, &geom.PolyTriangle[T]{Vertices: verts, Indices: indices, Style: style, BB: bb})
	}
	return meshes, nil
}
