// Package compress is the generic compressor driver: it applies a
// stats.Descriptor's (offset, multiplier, width) to every vertex of a
// shape collection and writes a self-describing little-endian buffer
// (via internal/bufio2).
package compress

import (
	"math"

	"github.com/codybloemhard/geolod/internal/bufio2"
	"github.com/codybloemhard/geolod/internal/geom"
	"github.com/codybloemhard/geolod/internal/stats"
)

// writeT appends a single coordinate value of any Numeric
// instantiation in its natural width.
func writeT[T geom.Numeric](w *bufio2.Writer, v T) {
	switch x := any(v).(type) {
	case uint8:
		w.U8(x)
	case uint16:
		w.U16(x)
	case uint32:
		w.U32(x)
	case uint64:
		w.U64(x)
	case float64:
		w.F64(x)
	}
}

func writeP2[T geom.Numeric](w *bufio2.Writer, p geom.Point2[T]) {
	writeT(w, p.X)
	writeT(w, p.Y)
}

func writeP3[T geom.Numeric](w *bufio2.Writer, p geom.Point3[T]) {
	writeT(w, p.X)
	writeT(w, p.Y)
	writeT(w, p.Z)
}

// WriteBB appends a bounding box as two 3D points in T's natural
// width. Exported for the driver's info files.
func WriteBB[T geom.Numeric](w *bufio2.Writer, bb geom.BB[T]) {
	writeP3(w, bb.Min)
	writeP3(w, bb.Max)
}

// compressAxis applies compressed = round((x-offset)*multiplier),
// narrowed to T with an unchecked cast; inputs exceeding the target
// are precluded by construction of the multiplier. The offset is the
// exact float minimum of the axis, so the minimum input compresses to
// exactly 0 and the resulting global bounding box starts at the
// origin, as the chunker requires.
func compressAxis[T geom.Numeric](x float64, offset float64, mult uint64) T {
	v := math.Round((x - offset) * float64(mult))
	return T(uint64(v))
}

// WriteDescriptor writes the (mx,my,mz,multi,width) header common to
// every compressed file.
func WriteDescriptor(w *bufio2.Writer, d stats.Descriptor) {
	w.U64(d.MX)
	w.U64(d.MY)
	w.U64(d.MZ)
	w.U64(d.Multi)
	w.U8(uint8(d.Width))
}

// Contours runs the compressor over a ShapeZ collection: select a
// descriptor, compress every vertex into the chosen width, recompute
// bounding boxes, and write the length-prefixed result. Returns the raw
// buffer and the descriptor chosen (the caller needs it for chunking).
func Contours(shapes []*geom.ShapeZ[float64]) ([]byte, stats.Descriptor, error) {
	d, err := stats.Select(shapes)
	if err != nil {
		return nil, stats.Descriptor{}, err
	}
	w := bufio2.NewWriter()
	WriteDescriptor(w, d)
	switch d.Width {
	case stats.WidthU8:
		writeContoursBody[uint8](w, shapes, d)
	case stats.WidthU16:
		writeContoursBody[uint16](w, shapes, d)
	case stats.WidthU32:
		writeContoursBody[uint32](w, shapes, d)
	default:
		writeContoursBody[float64](w, shapes, d)
	}
	return w.Bytes(), d, nil
}

// CompressContoursTyped is the typed counterpart of Contours, returning
// the compressed shapes themselves rather than an encoded buffer; the
// contour body writer encodes its result.
func CompressContoursTyped[T geom.Numeric](shapes []*geom.ShapeZ[float64], d stats.Descriptor) []*geom.ShapeZ[T] {
	out := make([]*geom.ShapeZ[T], 0, len(shapes))
	for _, s := range shapes {
		var cz T
		if d.Width == stats.WidthNone {
			cz = T(s.Z)
		} else {
			cz = compressAxis[T](s.Z, d.OZ, d.Multi)
		}
		pts := make([]geom.Point2[T], len(s.Points))
		for i, p := range s.Points {
			var cx, cy T
			if d.Width == stats.WidthNone {
				cx, cy = T(p.X), T(p.Y)
			} else {
				cx = compressAxis[T](p.X, d.OX, d.Multi)
				cy = compressAxis[T](p.Y, d.OY, d.Multi)
			}
			pts[i] = geom.Point2[T]{X: cx, Y: cy}
		}
		cs := &geom.ShapeZ[T]{Points: pts, Z: cz}
		cs.StretchBB()
		out = append(out, cs)
	}
	return out
}

func writeContoursBody[T geom.Numeric](w *bufio2.Writer, shapes []*geom.ShapeZ[float64], d stats.Descriptor) {
	compressed := CompressContoursTyped[T](shapes, d)
	gbb := geom.GetGlobalBB[T](compressed)
	WriteBB(w, gbb)
	EncodeShapes(w, compressed)
}

// EncodeShapes appends a length-prefixed ShapeZ sequence in T's
// natural width. Exported for the driver's per-chunk files, which
// frame the same sequence under a (level, cx, cy) header.
func EncodeShapes[T geom.Numeric](w *bufio2.Writer, shapes []*geom.ShapeZ[T]) {
	w.Count(len(shapes))
	for _, s := range shapes {
		writeT(w, s.Z)
		WriteBB(w, s.BB)
		w.Count(len(s.Points))
		for _, p := range s.Points {
			writeP2(w, p)
		}
	}
}

// Triangles runs the compressor over a PolyTriangle mesh collection
// (used by triangulate/geomerge modes): compress 2D vertices only (no
// elevation axis on a mesh), recompute bounding boxes, write the
// length-prefixed result.
func Triangles(meshes []*geom.PolyTriangle[float64]) ([]byte, stats.Descriptor, error) {
	var allVerts []geom.Point2[float64]
	for _, m := range meshes {
		allVerts = append(allVerts, m.Vertices...)
	}
	d, err := stats.SelectXY(allVerts)
	if err != nil {
		return nil, stats.Descriptor{}, err
	}
	w := bufio2.NewWriter()
	WriteDescriptor(w, d)
	switch d.Width {
	case stats.WidthU8:
		writeTrianglesBody[uint8](w, meshes, d)
	case stats.WidthU16:
		writeTrianglesBody[uint16](w, meshes, d)
	case stats.WidthU32:
		writeTrianglesBody[uint32](w, meshes, d)
	default:
		writeTrianglesBody[float64](w, meshes, d)
	}
	return w.Bytes(), d, nil
}

// CompressTrianglesTyped compresses a mesh collection's vertices into
// concrete type T without serializing — used by the geomerge driver,
// which hands the compressed meshes to internal/polychunk.
func CompressTrianglesTyped[T geom.Numeric](meshes []*geom.PolyTriangle[float64], d stats.Descriptor) []*geom.PolyTriangle[T] {
	out := make([]*geom.PolyTriangle[T], 0, len(meshes))
	for _, m := range meshes {
		verts := make([]geom.Point2[T], len(m.Vertices))
		for i, v := range m.Vertices {
			var cx, cy T
			if d.Width == stats.WidthNone {
				cx, cy = T(v.X), T(v.Y)
			} else {
				cx = compressAxis[T](v.X, d.OX, d.Multi)
				cy = compressAxis[T](v.Y, d.OY, d.Multi)
			}
			verts[i] = geom.Point2[T]{X: cx, Y: cy}
		}
		indices := make([]uint16, len(m.Indices))
		copy(indices, m.Indices)
		cm := &geom.PolyTriangle[T]{Vertices: verts, Indices: indices, Style: m.Style}
		cm.StretchBB()
		out = append(out, cm)
	}
	return out
}

func writeTrianglesBody[T geom.Numeric](w *bufio2.Writer, meshes []*geom.PolyTriangle[float64], d stats.Descriptor) {
	compressed := CompressTrianglesTyped[T](meshes, d)
	gbb := geom.GetGlobalBB[T](compressed)
	WriteBB(w, gbb)
	EncodeMeshes(w, compressed)
}

// EncodeMeshes appends a length-prefixed PolyTriangle sequence in T's
// natural width. Exported for the geomerge driver, which frames one
// already-compressed mesh list per polychunk cell under the shared
// descriptor.
func EncodeMeshes[T geom.Numeric](w *bufio2.Writer, meshes []*geom.PolyTriangle[T]) {
	w.Count(len(meshes))
	for _, m := range meshes {
		w.Count(len(m.Vertices))
		for _, v := range m.Vertices {
			writeP2(w, v)
		}
		w.Count(len(m.Indices))
		for _, idx := range m.Indices {
			w.U16(idx)
		}
		w.U64(m.Style)
		WriteBB(w, m.BB)
	}
}

// EncodeMeshBlob writes one self-describing mesh blob under an
// already-selected descriptor: descriptor, global bounding box over the
// meshes, then the mesh sequence. The geomerge mode uses this so every
// polychunk cell file decodes with the same (offset, multiplier, width)
// triple.
func EncodeMeshBlob[T geom.Numeric](d stats.Descriptor, meshes []*geom.PolyTriangle[T]) []byte {
	w := bufio2.NewWriter()
	WriteDescriptor(w, d)
	gbb := geom.GetGlobalBB[T](meshes)
	WriteBB(w, gbb)
	EncodeMeshes(w, meshes)
	return w.Bytes()
}
