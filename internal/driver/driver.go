// Package driver is the mode dispatcher: each mode composes a subset
// of the pipeline components on the supplied input files and writes
// the requested artifacts, timing each major phase and ending with the
// issue logger's report.
package driver

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/codybloemhard/geolod/internal/compress"
	"github.com/codybloemhard/geolod/internal/geom"
	"github.com/codybloemhard/geolod/internal/issuelog"
	"github.com/codybloemhard/geolod/internal/kmlsrc"
	"github.com/codybloemhard/geolod/internal/report"
	"github.com/codybloemhard/geolod/internal/shapesrc"
)

// Config is the full CLI surface, bound by cmd/geolod and
// consumed here.
type Config struct {
	Inputs     []string
	Output     string
	Mode       string
	FT         string
	Tag0, Tag1 string
	Cuts       uint64
	CutsMulti  uint64
	Levels     uint64
	Mods       []uint64
	Verbose    bool
}

// Run dispatches one mode. A returned error is fatal;
// local failures inside a mode are logged on logger and skipped. The
// issue report is printed on every path, including fatal ones.
func Run(cfg Config, logger *issuelog.Logger, sugar *zap.SugaredLogger) error {
	err := dispatch(cfg, logger, sugar)
	for _, line := range logger.Report() {
		fmt.Println(line)
	}
	return err
}

func dispatch(cfg Config, logger *issuelog.Logger, sugar *zap.SugaredLogger) error {
	switch cfg.Mode {
	case "shapeinfo":
		return runShapeInfo(cfg, logger)
	case "height":
		return runHeight(cfg, logger, sugar)
	case "mergeheight":
		return runMergeHeight(cfg, logger, sugar)
	case "lintheight":
		return runLintHeight(cfg, logger)
	case "chunkify":
		return runChunkify(cfg, logger, sugar)
	case "polygonz":
		return runPolygonZ(cfg, logger, sugar)
	case "triangulate":
		return runTriangulate(cfg, logger, sugar)
	case "geomerge":
		return runGeoMerge(cfg, logger, sugar)
	case "xmltree", "xmltags", "check-tag-child", "checK-nonempty-tag":
		return runXMLProbe(cfg)
	default:
		return fmt.Errorf("driver: unsupported mode %q", cfg.Mode)
	}
}

// onlyInput returns the first input path; most modes take exactly one
// file and ignore extras.
func onlyInput(cfg Config) (string, error) {
	if len(cfg.Inputs) == 0 {
		return "", fmt.Errorf("driver: mode %q needs an input file", cfg.Mode)
	}
	return cfg.Inputs[0], nil
}

// loadContours reads one contour input per the --ft switch: shapefiles
// are assumed to already be in UTM metres, KML in lon/lat degrees
// (projected by kmlsrc).
func loadContours(cfg Config, path string, logger *issuelog.Logger) ([]*geom.ShapeZ[float64], error) {
	switch cfg.FT {
	case "shape":
		sf, err := shapesrc.Read(path)
		if err != nil {
			return nil, fmt.Errorf("driver: reading shapefile %s: %w", path, err)
		}
		return shapesrc.ExtractContours(sf, logger), nil
	case "kml":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("driver: opening %s: %w", path, err)
		}
		defer f.Close()
		return kmlsrc.ExtractContours(f, logger)
	case "", "none":
		return nil, fmt.Errorf("driver: mode %q needs --ft shape or --ft kml", cfg.Mode)
	default:
		return nil, fmt.Errorf("driver: unknown filetype %q", cfg.FT)
	}
}

func writeFile(path string, data []byte, sugar *zap.SugaredLogger, t *phaseTimer) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("driver: writing %s: %w", path, err)
	}
	sugar.Infof("wrote %s (%s), %s", path, humanize.Bytes(uint64(len(data))), t.elapsed())
	return nil
}

func runShapeInfo(cfg Config, logger *issuelog.Logger) error {
	if cfg.FT != "shape" {
		return fmt.Errorf("driver: shapeinfo only works on shapefiles")
	}
	path, err := onlyInput(cfg)
	if err != nil {
		return err
	}
	sf, err := shapesrc.Read(path)
	if err != nil {
		return fmt.Errorf("driver: reading shapefile %s: %w", path, err)
	}
	contours := shapesrc.ExtractContours(sf, logger)
	polys := shapesrc.ExtractPolygons(sf, logger)
	fmt.Printf("records: %d\n", len(sf.SHP.Records))
	for _, line := range report.ContourSummary(contours) {
		fmt.Println(line)
	}
	fmt.Printf("polygons: %d (%s points)\n",
		len(polys), humanize.Comma(int64(report.PointsTotal(polys))))
	return nil
}

func runHeight(cfg Config, logger *issuelog.Logger, sugar *zap.SugaredLogger) error {
	path, err := onlyInput(cfg)
	if err != nil {
		return err
	}
	t := newPhaseTimer()
	shapes, err := loadContours(cfg, path, logger)
	if err != nil {
		return err
	}
	sugar.Infof("read %s: %d contours, %s", path, len(shapes), t.elapsed())
	return compressAndWrite(cfg, shapes, sugar, t)
}

func runMergeHeight(cfg Config, logger *issuelog.Logger, sugar *zap.SugaredLogger) error {
	if len(cfg.Inputs) == 0 {
		return fmt.Errorf("driver: mergeheight needs input files")
	}
	t := newPhaseTimer()
	var collection []*geom.ShapeZ[float64]
	for _, path := range cfg.Inputs {
		shapes, err := loadContours(cfg, path, logger)
		if err != nil {
			return err
		}
		sugar.Infof("read %s: %d contours, %s", path, len(shapes), t.elapsed())
		collection = append(collection, shapes...)
	}
	return compressAndWrite(cfg, collection, sugar, t)
}

// compressAndWrite is the shared tail of the contour modes.
func compressAndWrite(cfg Config, shapes []*geom.ShapeZ[float64], sugar *zap.SugaredLogger, t *phaseTimer) error {
	for _, line := range report.ContourSummary(shapes) {
		sugar.Info(line)
	}
	buf, d, err := compress.Contours(shapes)
	if err != nil {
		return err
	}
	sugar.Infof("compressed (%s), %s", report.DescriptorSummary(d), t.elapsed())
	return writeFile(cfg.Output, buf, sugar, t)
}

func runLintHeight(cfg Config, logger *issuelog.Logger) error {
	if len(cfg.Inputs) == 0 {
		return fmt.Errorf("driver: lintheight needs input files")
	}
	var collection []*geom.ShapeZ[float64]
	for _, path := range cfg.Inputs {
		shapes, err := loadContours(cfg, path, logger)
		if err != nil {
			return err
		}
		collection = append(collection, shapes...)
	}
	fmt.Printf("there are %d wrong heightlines\n", logger.Count(issuelog.TwoPlusZInHeightline))
	for _, line := range report.LintSummary(collection) {
		fmt.Println(line)
	}
	for _, line := range report.ContourSummary(collection) {
		fmt.Println(line)
	}
	return nil
}

func runXMLProbe(cfg Config) error {
	for _, path := range cfg.Inputs {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("driver: opening %s: %w", path, err)
		}
		fmt.Printf("\t file: %s\n", path)
		switch cfg.Mode {
		case "xmltree":
			err = kmlsrc.PrintTagTree(f, os.Stdout)
		case "xmltags":
			err = kmlsrc.PrintTagCount(f, os.Stdout)
		case "check-tag-child":
			var ok bool
			ok, err = kmlsrc.CheckTagChild(f, cfg.Tag0, cfg.Tag1)
			fmt.Println(ok)
		case "checK-nonempty-tag":
			var ok bool
			ok, err = kmlsrc.CheckNonemptyTag(f, cfg.Tag0)
			fmt.Println(ok)
		}
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
