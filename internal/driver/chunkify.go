package driver

import (
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/codybloemhard/geolod/internal/bufio2"
	"github.com/codybloemhard/geolod/internal/chunk"
	"github.com/codybloemhard/geolod/internal/compress"
	"github.com/codybloemhard/geolod/internal/geom"
	"github.com/codybloemhard/geolod/internal/issuelog"
	"github.com/codybloemhard/geolod/internal/lod"
	"github.com/codybloemhard/geolod/internal/report"
	"github.com/codybloemhard/geolod/internal/stats"
)

// decimateBudget is the per-chunk point budget at coarse LODs; fine
// LODs (modulus <= 5) keep every point.
const decimateBudget = 5000

// mergeLevelCap: levels below this (the coarse ones, with the fewest
// cuts and the largest moduli) get the connecting-segment merge; the
// finer levels from this one on are written without it.
const mergeLevelCap = 4

// runChunkify reopens a compressed contour blob and cuts it into one
// chunk file per (level, cx, cy), with cut count multiplying per level
// and a per-level height modulus, plus the chunks.info index.
func runChunkify(cfg Config, logger *issuelog.Logger, sugar *zap.SugaredLogger) error {
	path, err := onlyInput(cfg)
	if err != nil {
		return err
	}
	if cfg.Cuts < 1 {
		return fmt.Errorf("driver: cuts must be at least one")
	}
	if cfg.CutsMulti < 1 {
		return fmt.Errorf("driver: cuts multiplier must be at least one")
	}
	if cfg.Levels < 1 {
		return fmt.Errorf("driver: levels must be at least one")
	}
	if uint64(len(cfg.Mods)) != cfg.Levels {
		return fmt.Errorf("driver: mods length %d must equal levels %d", len(cfg.Mods), cfg.Levels)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("driver: reading %s: %w", path, err)
	}
	r := bufio2.NewReader(data)
	d, err := compress.ReadDescriptor(r)
	if err != nil {
		return fmt.Errorf("driver: reading descriptor of %s: %w", path, err)
	}
	sugar.Infof("mx: %d my: %d mz: %d multi: %d target: %s", d.MX, d.MY, d.MZ, d.Multi, d.Width)

	switch d.Width {
	case stats.WidthU8:
		return chunkifyTyped[uint8](cfg, d, r, logger, sugar)
	case stats.WidthU16:
		return chunkifyTyped[uint16](cfg, d, r, logger, sugar)
	case stats.WidthU32:
		return chunkifyTyped[uint32](cfg, d, r, logger, sugar)
	default:
		return chunkifyTyped[float64](cfg, d, r, logger, sugar)
	}
}

func chunkifyTyped[T geom.Numeric](cfg Config, d stats.Descriptor, r *bufio2.Reader, logger *issuelog.Logger, sugar *zap.SugaredLogger) error {
	gbb, shapes, err := compress.ReadContourBody[T](r)
	if err != nil {
		return fmt.Errorf("driver: reading contour body: %w", err)
	}
	if cfg.Verbose {
		for _, line := range report.HeightDistribution(shapes) {
			sugar.Info(line)
		}
	}

	t := newPhaseTimer()
	info := bufio2.NewWriter()
	info.U64(cfg.Levels)
	cuts := cfg.Cuts
	for level := uint64(0); level < cfg.Levels; level++ {
		mod := cfg.Mods[level]
		cells := chunk.Cut(shapes, gbb, cuts, logger)
		for _, c := range cells {
			w := bufio2.NewWriter()
			w.U64(level)
			w.U64(c.CX)
			w.U64(c.CY)

			p0 := report.PointsTotal(c.Shapes)
			filtered := lod.HeightFilter(c.Shapes, mod)
			p1 := report.PointsTotal(filtered)
			budget := decimateBudget
			if mod <= 5 {
				budget = math.MaxInt
			}
			picked := lod.Decimate(filtered, budget)
			p2 := report.PointsTotal(picked)
			lines0 := len(picked)
			final := picked
			if level < mergeLevelCap {
				final = lod.Merge(picked)
			}
			compress.EncodeShapes(w, final)

			name := fmt.Sprintf("%d-%d-%d.hlinechunk", level, c.CX, c.CY)
			if err := os.WriteFile(name, w.Bytes(), 0o644); err != nil {
				return fmt.Errorf("driver: writing %s: %w", name, err)
			}
			if cfg.Verbose {
				sugar.Infof("%s: points %d -> %d -> %d, lines %d -> %d",
					name, p0, p1, p2, lines0, len(final))
			}
		}
		sugar.Infof("level %d: %d cells at %d cuts (mod %d), %s",
			level, len(cells), cuts, mod, t.elapsed())
		info.U64(cuts)
		cuts *= cfg.CutsMulti
	}

	info.U64(d.MX)
	info.U64(d.MY)
	info.U64(d.MZ)
	info.U64(d.Multi)
	// chunks.info bounds are fixed at u16 regardless of the payload
	// width.
	info.U16(uint16(gbb.Min.X))
	info.U16(uint16(gbb.Min.Y))
	info.U16(uint16(gbb.Min.Z))
	info.U16(uint16(gbb.Max.X))
	info.U16(uint16(gbb.Max.Y))
	info.U16(uint16(gbb.Max.Z))
	info.Count(len(cfg.Mods))
	for _, m := range cfg.Mods {
		info.U64(m)
	}
	return writeFile("chunks.info", info.Bytes(), sugar, t)
}
