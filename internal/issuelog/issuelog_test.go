package issuelog

import "testing"

func TestLogAndReport(t *testing.T) {
	l := New(nil)
	l.Log(EmptyShape)
	l.Log(EmptyShape)
	l.Log(NoEarsLeft)

	if l.Count(EmptyShape) != 2 {
		t.Fatalf("expected 2, got %d", l.Count(EmptyShape))
	}
	if l.Total() != 3 {
		t.Fatalf("expected total 3, got %d", l.Total())
	}
	lines := l.Report()
	if len(lines) != 2 {
		t.Fatalf("expected 2 report lines, got %d: %v", len(lines), lines)
	}
}

func TestReportEmptyWhenNothingLogged(t *testing.T) {
	l := New(nil)
	if lines := l.Report(); len(lines) != 0 {
		t.Fatalf("expected no lines, got %v", lines)
	}
}

func TestMessageDoesNotAffectCounts(t *testing.T) {
	l := New(nil)
	l.Message("hello %d", 1)
	if l.Total() != 0 {
		t.Fatalf("expected Message to not affect counts")
	}
}
