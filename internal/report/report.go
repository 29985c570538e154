// Package report computes the diagnostic statistics the driver prints
// for the shapeinfo, lintheight and compression phases: per-shape
// ranges, repeated-point counts, height distributions, and the range
// usage of a chosen compression descriptor.
package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/codybloemhard/geolod/internal/geom"
	"github.com/codybloemhard/geolod/internal/stats"
)

// ShapeRanges returns the largest per-shape x and y coordinate range
// over a contour collection, after u64 truncation. Small per-shape
// ranges relative to the global range indicate a collection that would
// chunk well.
func ShapeRanges(shapes []*geom.ShapeZ[float64]) (rangeX, rangeY uint64) {
	for _, s := range shapes {
		minx, miny := uint64(math.MaxUint64), uint64(math.MaxUint64)
		var maxx, maxy uint64
		for _, p := range s.Points {
			x, y := uint64(p.X), uint64(p.Y)
			if x < minx {
				minx = x
			}
			if x > maxx {
				maxx = x
			}
			if y < miny {
				miny = y
			}
			if y > maxy {
				maxy = y
			}
		}
		if len(s.Points) == 0 {
			continue
		}
		if r := maxx - minx; r > rangeX {
			rangeX = r
		}
		if r := maxy - miny; r > rangeY {
			rangeY = r
		}
	}
	return rangeX, rangeY
}

// RepeatedPoints counts total points and consecutive duplicates over a
// contour collection; duplicates are pure overhead, adding points
// without changing the drawn line.
func RepeatedPoints(shapes []*geom.ShapeZ[float64]) (points, repeated int) {
	for _, s := range shapes {
		if len(s.Points) == 0 {
			continue
		}
		last := s.Points[0]
		for _, p := range s.Points[1:] {
			if p == last {
				repeated++
			}
			last = p
		}
		points += len(s.Points)
	}
	return points, repeated
}

// PointsTotal sums vertex counts over any shape collection.
func PointsTotal[S geom.PointsLen](shapes []S) int {
	n := 0
	for _, s := range shapes {
		n += s.PointsLen()
	}
	return n
}

// HeightDistribution returns "height z: count lines" lines for a
// compressed contour set, ascending by elevation.
func HeightDistribution[T geom.Numeric](shapes []*geom.ShapeZ[T]) []string {
	counts := make(map[uint64]int)
	for _, s := range shapes {
		counts[uint64(s.Z)]++
	}
	zs := make([]uint64, 0, len(counts))
	for z := range counts {
		zs = append(zs, z)
	}
	sort.Slice(zs, func(i, j int) bool { return zs[i] < zs[j] })
	lines := make([]string, 0, len(zs))
	for _, z := range zs {
		lines = append(lines, fmt.Sprintf("height %d: %d lines", z, counts[z]))
	}
	return lines
}

// DescriptorSummary renders the chosen compression descriptor with its
// range usage, the quality metric worth keeping >= 0.5.
func DescriptorSummary(d stats.Descriptor) string {
	return fmt.Sprintf("target: %s, multiplier: %s, range usage: %.1f%%",
		d.Width, humanize.Comma(int64(d.Multi)), d.Usage*100)
}

// ContourSummary renders shape/point totals for a contour collection.
func ContourSummary(shapes []*geom.ShapeZ[float64]) []string {
	points, repeated := RepeatedPoints(shapes)
	rx, ry := ShapeRanges(shapes)
	gbb := geom.GetGlobalBB[float64](shapes)
	return []string{
		fmt.Sprintf("shapes: %s, points: %s (%s repeated)",
			humanize.Comma(int64(len(shapes))), humanize.Comma(int64(points)), humanize.Comma(int64(repeated))),
		fmt.Sprintf("max per-shape range: x %s, y %s", humanize.Comma(int64(rx)), humanize.Comma(int64(ry))),
		fmt.Sprintf("global bounds: (%.1f, %.1f, %.1f) - (%.1f, %.1f, %.1f)",
			gbb.Min.X, gbb.Min.Y, gbb.Min.Z, gbb.Max.X, gbb.Max.Y, gbb.Max.Z),
	}
}

// LintSummary renders the lintheight report: how many shapes are too
// short to draw and the distribution of shape lengths.
func LintSummary(shapes []*geom.ShapeZ[float64]) []string {
	short := 0
	lens := make([]int, 0, len(shapes))
	for _, s := range shapes {
		if len(s.Points) < 2 {
			short++
		}
		lens = append(lens, len(s.Points))
	}
	lines := []string{
		fmt.Sprintf("shapes: %s, with fewer than 2 points: %s",
			humanize.Comma(int64(len(shapes))), humanize.Comma(int64(short))),
	}
	if len(lens) > 0 {
		sort.Ints(lens)
		total := 0
		for _, l := range lens {
			total += l
		}
		lines = append(lines,
			fmt.Sprintf("length median: %d, mean: %.1f, min: %d, max: %d",
				lens[len(lens)/2], float64(total)/float64(len(lens)), lens[0], lens[len(lens)-1]))
	}
	return lines
}
