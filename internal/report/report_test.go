package report

import (
	"strings"
	"testing"

	"github.com/codybloemhard/geolod/internal/geom"
	"github.com/codybloemhard/geolod/internal/stats"
)

func lineOf(z float64, pts ...float64) *geom.ShapeZ[float64] {
	s := &geom.ShapeZ[float64]{Z: z}
	for i := 0; i+1 < len(pts); i += 2 {
		s.Points = append(s.Points, geom.Point2[float64]{X: pts[i], Y: pts[i+1]})
	}
	s.StretchBB()
	return s
}

func TestShapeRanges(t *testing.T) {
	shapes := []*geom.ShapeZ[float64]{
		lineOf(0, 10, 10, 30, 15),
		lineOf(0, 0, 0, 5, 100),
	}
	rx, ry := ShapeRanges(shapes)
	if rx != 20 {
		t.Errorf("rangeX = %d, want 20", rx)
	}
	if ry != 100 {
		t.Errorf("rangeY = %d, want 100", ry)
	}
}

func TestRepeatedPoints(t *testing.T) {
	shapes := []*geom.ShapeZ[float64]{
		lineOf(0, 1, 1, 1, 1, 2, 2),
	}
	points, repeated := RepeatedPoints(shapes)
	if points != 3 {
		t.Errorf("points = %d, want 3", points)
	}
	if repeated != 1 {
		t.Errorf("repeated = %d, want 1", repeated)
	}
}

func TestHeightDistributionSorted(t *testing.T) {
	shapes := []*geom.ShapeZ[uint16]{
		{Z: 200}, {Z: 100}, {Z: 200},
	}
	lines := HeightDistribution(shapes)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "height 100:") || !strings.HasPrefix(lines[1], "height 200:") {
		t.Fatalf("expected ascending heights, got %v", lines)
	}
	if !strings.Contains(lines[1], "2 lines") {
		t.Fatalf("expected count 2 at height 200, got %q", lines[1])
	}
}

func TestDescriptorSummaryUsage(t *testing.T) {
	d := stats.Descriptor{Multi: 1, Width: stats.WidthU8, Usage: 0.784}
	s := DescriptorSummary(d)
	if !strings.Contains(s, "u8") || !strings.Contains(s, "78.4%") {
		t.Fatalf("unexpected summary: %q", s)
	}
}

func TestLintSummaryCountsShortShapes(t *testing.T) {
	shapes := []*geom.ShapeZ[float64]{
		lineOf(0, 1, 1),
		lineOf(0, 1, 1, 2, 2, 3, 3),
	}
	lines := LintSummary(shapes)
	if !strings.Contains(lines[0], "with fewer than 2 points: 1") {
		t.Fatalf("unexpected lint line: %q", lines[0])
	}
}
