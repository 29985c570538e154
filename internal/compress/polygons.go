// polygons.go extends the compressor driver to PolygonZ collections,
// the polygonz mode's payload: unlike contours, polygon rings carry a
// per-vertex elevation, so all three axes are range-scanned.
package compress

import (
	"github.com/codybloemhard/geolod/internal/bufio2"
	"github.com/codybloemhard/geolod/internal/geom"
	"github.com/codybloemhard/geolod/internal/stats"
)

// Polygons runs the compressor over a PolygonZ collection: select a
// descriptor over every ring vertex, compress, recompute bounding
// boxes, and write the length-prefixed result.
func Polygons(polys []*geom.PolygonZ[float64]) ([]byte, stats.Descriptor, error) {
	var allVerts []geom.Point3[float64]
	for _, p := range polys {
		for _, r := range p.Outers {
			allVerts = append(allVerts, r...)
		}
		for _, r := range p.Inners {
			allVerts = append(allVerts, r...)
		}
	}
	d, err := stats.SelectPoints3(allVerts)
	if err != nil {
		return nil, stats.Descriptor{}, err
	}
	w := bufio2.NewWriter()
	WriteDescriptor(w, d)
	switch d.Width {
	case stats.WidthU8:
		writePolygonsBody[uint8](w, polys, d)
	case stats.WidthU16:
		writePolygonsBody[uint16](w, polys, d)
	case stats.WidthU32:
		writePolygonsBody[uint32](w, polys, d)
	default:
		writePolygonsBody[float64](w, polys, d)
	}
	return w.Bytes(), d, nil
}

// CompressPolygonsTyped compresses a polygon collection's rings into
// concrete type T without serializing.
func CompressPolygonsTyped[T geom.Numeric](polys []*geom.PolygonZ[float64], d stats.Descriptor) []*geom.PolygonZ[T] {
	out := make([]*geom.PolygonZ[T], 0, len(polys))
	for _, p := range polys {
		np := &geom.PolygonZ[T]{Style: p.Style}
		np.Outers = compressRings[T](p.Outers, d)
		np.Inners = compressRings[T](p.Inners, d)
		np.StretchBB()
		out = append(out, np)
	}
	return out
}

func compressRings[T geom.Numeric](rings []geom.Ring[float64], d stats.Descriptor) []geom.Ring[T] {
	out := make([]geom.Ring[T], 0, len(rings))
	for _, r := range rings {
		nr := make(geom.Ring[T], len(r))
		for i, v := range r {
			if d.Width == stats.WidthNone {
				nr[i] = geom.Point3[T]{X: T(v.X), Y: T(v.Y), Z: T(v.Z)}
			} else {
				nr[i] = geom.Point3[T]{
					X: compressAxis[T](v.X, d.OX, d.Multi),
					Y: compressAxis[T](v.Y, d.OY, d.Multi),
					Z: compressAxis[T](v.Z, d.OZ, d.Multi),
				}
			}
		}
		out = append(out, nr)
	}
	return out
}

func writePolygonsBody[T geom.Numeric](w *bufio2.Writer, polys []*geom.PolygonZ[float64], d stats.Descriptor) {
	compressed := CompressPolygonsTyped[T](polys, d)
	gbb := geom.GetGlobalBB[T](compressed)
	WriteBB(w, gbb)
	w.Count(len(compressed))
	for _, p := range compressed {
		writeP3(w, p.BB.Min)
		writeP3(w, p.BB.Max)
		writeRings(w, p.Outers)
		writeRings(w, p.Inners)
		w.U64(p.Style)
	}
}

func writeRings[T geom.Numeric](w *bufio2.Writer, rings []geom.Ring[T]) {
	w.Count(len(rings))
	for _, r := range rings {
		w.Count(len(r))
		for _, v := range r {
			writeP3(w, v)
		}
	}
}
