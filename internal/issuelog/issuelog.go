// Package issuelog implements the pipeline's single piece of
// process-wide mutable state: a multiset of issue kinds with
// occurrence counts, plus a free-form Message kind that prints
// immediately instead of being counted.
package issuelog

import (
	"fmt"

	"go.uber.org/zap"
)

// Kind enumerates every counted diagnostic issue kind.
type Kind int

const (
	TwoPlusZInHeightline Kind = iota
	UnsupportedShape
	EmptyShape
	MultiChunkShape
	NonOriginBoundingbox
	EmptyStyleId
	MissingStyleId
	PolyNotEnoughVertices
	OutOfIndicesBound
	NoEarsLeft
	InnerNotInside
)

func (k Kind) String() string {
	switch k {
	case TwoPlusZInHeightline:
		return "contour has more than one distinct elevation"
	case UnsupportedShape:
		return "unsupported shape type, dropped"
	case EmptyShape:
		return "empty shape, dropped"
	case MultiChunkShape:
		return "polyline has more than one part"
	case NonOriginBoundingbox:
		return "chunker called with a non-origin bounding box"
	case EmptyStyleId:
		return "style id present but empty"
	case MissingStyleId:
		return "style id missing"
	case PolyNotEnoughVertices:
		return "polygon ring has fewer than 3 vertices"
	case OutOfIndicesBound:
		return "triangulated mesh exceeds 65536 vertices"
	case NoEarsLeft:
		return "ear clipping stalled with no ear found"
	case InnerNotInside:
		return "inner ring not contained in any outer ring"
	default:
		return "unknown issue"
	}
}

// Logger owns the counted-issue multiset and the structured logger
// backing the free-form Message kind. It is passed by exclusive
// reference through the driver, never duplicated.
type Logger struct {
	counts map[Kind]int
	sugar  *zap.SugaredLogger
}

// New creates a Logger. sugar may be nil, in which case Message calls
// are silently dropped instead of printed (used in tests).
func New(sugar *zap.SugaredLogger) *Logger {
	return &Logger{counts: make(map[Kind]int), sugar: sugar}
}

// Log records one occurrence of k.
func (l *Logger) Log(k Kind) {
	l.counts[k]++
}

// Count returns how many times k has been logged so far.
func (l *Logger) Count(k Kind) int {
	return l.counts[k]
}

// Message prints a free-form diagnostic immediately; it is never
// counted or summarized by Report.
func (l *Logger) Message(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Report returns one "(N times) <description>" line per issue kind
// that was logged at least once, in declaration order.
func (l *Logger) Report() []string {
	var lines []string
	for k := TwoPlusZInHeightline; k <= InnerNotInside; k++ {
		if n := l.counts[k]; n > 0 {
			lines = append(lines, fmt.Sprintf("(%d times) %s", n, k))
		}
	}
	return lines
}

// Total returns the sum of every counted issue.
func (l *Logger) Total() int {
	n := 0
	for _, c := range l.counts {
		n += c
	}
	return n
}
