// Package shapesrc adapts shapefile records into the internal shape
// types the pipeline consumes, narrowed down to the two record kinds
// the pipeline actually builds from: PolylineZ contours and PolygonZ
// polygons. Every other variant is counted as UnsupportedShape and
// dropped.
//
// Reads the shapefile itself with github.com/twpayne/go-shapefile +
// github.com/twpayne/go-geom; this package owns that boundary, so the
// rest of the pipeline never imports go-shapefile types.
package shapesrc

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"

	ggeom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-shapefile"

	"github.com/codybloemhard/geolod/internal/geom"
	"github.com/codybloemhard/geolod/internal/issuelog"
)

// Read opens a shapefile from either a zip archive or a plain directory
// holding the .shp/.shx/.dbf triple, dispatching on the file extension.
func Read(path string) (*shapefile.Shapefile, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return shapefile.ReadZipFile(path, nil)
	}
	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return shapefile.ReadFS(os.DirFS(dir), base, nil)
}

// ReadZipReader is the fs.FS-driven counterpart of Read, used when the
// caller already holds an open archive (matches ReadFS's own signature).
func ReadZipReader(zr *zip.Reader, basename string) (*shapefile.Shapefile, error) {
	return shapefile.ReadFS(zr, basename, nil)
}

// ExtractContours converts every PolylineZ record into a ShapeZ,
// dropping and logging records that fail validation: more than one
// part (MultiChunkShape), no points (EmptyShape), or non-uniform
// elevation (TwoPlusZInHeightline).
func ExtractContours(sf *shapefile.Shapefile, logger *issuelog.Logger) []*geom.ShapeZ[float64] {
	var out []*geom.ShapeZ[float64]
	for i := range sf.SHP.Records {
		_, g := sf.Record(i)
		out = append(out, contoursFromGeom(g, logger)...)
	}
	return out
}

func contoursFromGeom(g ggeom.T, logger *issuelog.Logger) []*geom.ShapeZ[float64] {
	switch t := g.(type) {
	case *ggeom.LineString:
		s, ok := contourFromLineString(t, logger)
		if !ok {
			return nil
		}
		return []*geom.ShapeZ[float64]{s}
	case *ggeom.MultiLineString:
		if t.NumLineStrings() > 1 {
			logger.Log(issuelog.MultiChunkShape)
			return nil
		}
		if t.NumLineStrings() == 0 {
			logger.Log(issuelog.EmptyShape)
			return nil
		}
		s, ok := contourFromLineString(t.LineString(0), logger)
		if !ok {
			return nil
		}
		return []*geom.ShapeZ[float64]{s}
	case nil:
		logger.Log(issuelog.EmptyShape)
		return nil
	default:
		logger.Log(issuelog.UnsupportedShape)
		return nil
	}
}

func contourFromLineString(ls *ggeom.LineString, logger *issuelog.Logger) (*geom.ShapeZ[float64], bool) {
	stride := ls.Stride()
	flat := ls.FlatCoords()
	if len(flat) < stride {
		logger.Log(issuelog.EmptyShape)
		return nil, false
	}
	zIdx := ls.Layout().ZIndex()

	z := zAt(flat, zIdx, stride, 0)
	points := make([]geom.Point2[float64], 0, len(flat)/stride)
	for i := 0; i+stride <= len(flat); i += stride {
		if zIdx >= 0 && flat[i+zIdx] != z {
			logger.Log(issuelog.TwoPlusZInHeightline)
			return nil, false
		}
		points = append(points, geom.Point2[float64]{X: flat[i], Y: flat[i+1]})
	}
	s := &geom.ShapeZ[float64]{Points: points, Z: z}
	s.StretchBB()
	return s, true
}

func zAt(flat []float64, zIdx, stride, vertex int) float64 {
	if zIdx < 0 {
		return 0
	}
	off := vertex*stride + zIdx
	if off >= len(flat) {
		return 0
	}
	return flat[off]
}

// ExtractPolygons converts every Polygon/PolygonZ/MultiPolygon record
// into a PolygonZ with a fixed style id of 0: shapefile-sourced
// polygons carry no style, only KML ones do.
func ExtractPolygons(sf *shapefile.Shapefile, logger *issuelog.Logger) []*geom.PolygonZ[float64] {
	var out []*geom.PolygonZ[float64]
	for i := range sf.SHP.Records {
		_, g := sf.Record(i)
		p, ok := polygonFromGeom(g, logger)
		if !ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

func polygonFromGeom(g ggeom.T, logger *issuelog.Logger) (*geom.PolygonZ[float64], bool) {
	result := &geom.PolygonZ[float64]{}
	switch t := g.(type) {
	case *ggeom.Polygon:
		appendPolygonRings(result, t)
	case *ggeom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			appendPolygonRings(result, t.Polygon(i))
		}
	case nil:
		logger.Log(issuelog.EmptyShape)
		return nil, false
	default:
		logger.Log(issuelog.UnsupportedShape)
		return nil, false
	}
	if len(result.Outers) == 0 {
		logger.Log(issuelog.EmptyShape)
		return nil, false
	}
	result.StretchBB()
	return result, true
}

func appendPolygonRings(dst *geom.PolygonZ[float64], p *ggeom.Polygon) {
	flat := p.FlatCoords()
	ends := p.Ends()
	stride := p.Stride()
	zIdx := p.Layout().ZIndex()

	start := 0
	for ringIdx, end := range ends {
		ring := ringFromFlat(flat[start:end], stride, zIdx)
		if ringIdx == 0 {
			dst.Outers = append(dst.Outers, ring)
		} else {
			dst.Inners = append(dst.Inners, ring)
		}
		start = end
	}
}

func ringFromFlat(flat []float64, stride, zIdx int) geom.Ring[float64] {
	ring := make(geom.Ring[float64], 0, len(flat)/stride)
	for i := 0; i+stride <= len(flat); i += stride {
		z := 0.0
		if zIdx >= 0 {
			z = flat[i+zIdx]
		}
		ring = append(ring, geom.Point3[float64]{X: flat[i], Y: flat[i+1], Z: z})
	}
	return ring
}
