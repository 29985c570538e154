package driver

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/codybloemhard/geolod/internal/bufio2"
	"github.com/codybloemhard/geolod/internal/compress"
	"github.com/codybloemhard/geolod/internal/geom"
	"github.com/codybloemhard/geolod/internal/issuelog"
	"github.com/codybloemhard/geolod/internal/kmlsrc"
	"github.com/codybloemhard/geolod/internal/polychunk"
	"github.com/codybloemhard/geolod/internal/report"
	"github.com/codybloemhard/geolod/internal/shapesrc"
	"github.com/codybloemhard/geolod/internal/stats"
	"github.com/codybloemhard/geolod/internal/triangulate"
)

// polyChunkCuts is the fixed grid dimension of the geomerge output.
const polyChunkCuts = 8

func loadShapefilePolygons(cfg Config, logger *issuelog.Logger) ([]*geom.PolygonZ[float64], error) {
	path, err := onlyInput(cfg)
	if err != nil {
		return nil, err
	}
	sf, err := shapesrc.Read(path)
	if err != nil {
		return nil, fmt.Errorf("driver: reading shapefile %s: %w", path, err)
	}
	return shapesrc.ExtractPolygons(sf, logger), nil
}

// runPolygonZ compresses shapefile polygons without triangulating.
func runPolygonZ(cfg Config, logger *issuelog.Logger, sugar *zap.SugaredLogger) error {
	t := newPhaseTimer()
	polys, err := loadShapefilePolygons(cfg, logger)
	if err != nil {
		return err
	}
	sugar.Infof("read %d polygons (%d points), %s", len(polys), report.PointsTotal(polys), t.elapsed())
	buf, d, err := compress.Polygons(polys)
	if err != nil {
		return err
	}
	sugar.Infof("compressed (%s), %s", report.DescriptorSummary(d), t.elapsed())
	return writeFile(cfg.Output, buf, sugar, t)
}

// runTriangulate converts shapefile polygons to one compressed
// triangle-mesh blob.
func runTriangulate(cfg Config, logger *issuelog.Logger, sugar *zap.SugaredLogger) error {
	t := newPhaseTimer()
	polys, err := loadShapefilePolygons(cfg, logger)
	if err != nil {
		return err
	}
	sugar.Infof("read %d polygons, %s", len(polys), t.elapsed())
	meshes := triangulate.Triangulate(polys, logger)
	sugar.Infof("triangulated into %d meshes (%d vertices), %s",
		len(meshes), report.PointsTotal(meshes), t.elapsed())
	buf, d, err := compress.Triangles(meshes)
	if err != nil {
		return err
	}
	sugar.Infof("compressed (%s), %s", report.DescriptorSummary(d), t.elapsed())
	return writeFile(cfg.Output, buf, sugar, t)
}

// runGeoMerge reads styled KML polygons from every input, triangulates
// them, distributes the triangles into a fixed 8x8 grid, and writes one
// polychunk blob per cell plus the styles palette and the
// chunks.polyinfo index.
func runGeoMerge(cfg Config, logger *issuelog.Logger, sugar *zap.SugaredLogger) error {
	if len(cfg.Inputs) == 0 {
		return fmt.Errorf("driver: geomerge needs input files")
	}
	t := newPhaseTimer()
	reg := kmlsrc.NewStyleRegistry()
	var polys []*geom.PolygonZ[float64]
	for _, path := range cfg.Inputs {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("driver: opening %s: %w", path, err)
		}
		ps, err := kmlsrc.ExtractPolygons(f, reg, logger)
		f.Close()
		if err != nil {
			return err
		}
		sugar.Infof("read %s: %d polygons, %s", path, len(ps), t.elapsed())
		polys = append(polys, ps...)
	}
	sugar.Infof("there are %d polygons", len(polys))

	meshes := triangulate.Triangulate(polys, logger)
	sugar.Infof("triangulated into %d meshes, %s", len(meshes), t.elapsed())

	var allVerts []geom.Point2[float64]
	for _, m := range meshes {
		allVerts = append(allVerts, m.Vertices...)
	}
	d, err := stats.SelectXY(allVerts)
	if err != nil {
		return err
	}
	sugar.Infof("compressed (%s)", report.DescriptorSummary(d))

	var werr error
	switch d.Width {
	case stats.WidthU8:
		werr = geomergeTyped[uint8](d, meshes, sugar, t)
	case stats.WidthU16:
		werr = geomergeTyped[uint16](d, meshes, sugar, t)
	case stats.WidthU32:
		werr = geomergeTyped[uint32](d, meshes, sugar, t)
	default:
		werr = geomergeTyped[float64](d, meshes, sugar, t)
	}
	if werr != nil {
		return werr
	}

	styles := bufio2.NewWriter()
	colors := reg.Colors()
	styles.Count(len(colors))
	for _, c := range colors {
		styles.U8(c[0])
		styles.U8(c[1])
		styles.U8(c[2])
		styles.U8(c[3])
	}
	return writeFile("styles", styles.Bytes(), sugar, t)
}

func geomergeTyped[T geom.Numeric](d stats.Descriptor, meshes []*geom.PolyTriangle[float64], sugar *zap.SugaredLogger, t *phaseTimer) error {
	compressed := compress.CompressTrianglesTyped[T](meshes, d)
	gbb := geom.GetGlobalBB[T](compressed)
	cells := polychunk.Cut(compressed, gbb, polyChunkCuts)
	for _, c := range cells {
		var payload []*geom.PolyTriangle[T]
		if c.Mesh != nil {
			payload = []*geom.PolyTriangle[T]{c.Mesh}
		}
		blob := compress.EncodeMeshBlob(d, payload)
		name := fmt.Sprintf("%d-%d.polychunk", c.CX, c.CY)
		if err := os.WriteFile(name, blob, 0o644); err != nil {
			return fmt.Errorf("driver: writing %s: %w", name, err)
		}
	}
	sugar.Infof("wrote %d polychunks, %s", len(cells), t.elapsed())

	info := bufio2.NewWriter()
	compress.WriteBB(info, gbb)
	info.U8(polyChunkCuts)
	return writeFile("chunks.polyinfo", info.Bytes(), sugar, t)
}
