package pipeline

import (
	"errors"
	"testing"
)

func TestCanProceed(t *testing.T) {
	cases := []struct {
		name    string
		results []StageResult
		want    bool
	}{
		{"empty", nil, true},
		{"all ok", []StageResult{okResult("a", ""), okResult("b", "")}, true},
		{"warnings only", []StageResult{okResult("a", ""), warnResult("b", errors.New("x"))}, true},
		{"one fatal", []StageResult{okResult("a", ""), fatalResult("b", errors.New("x"))}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanProceed(tc.results); got != tc.want {
				t.Fatalf("CanProceed = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFirstFatal(t *testing.T) {
	fatalErr := errors.New("boom")
	results := []StageResult{
		warnResult("relational store", errors.New("slow")),
		fatalResult("graph store", fatalErr),
		fatalResult("working dir", errors.New("later")),
	}
	got, found := FirstFatal(results)
	if !found {
		t.Fatal("expected a fatal result")
	}
	if got.Stage != "graph store" || !errors.Is(got.Err, fatalErr) {
		t.Fatalf("FirstFatal = %+v, want the graph store failure", got)
	}

	if _, found := FirstFatal(nil); found {
		t.Fatal("found a fatal result in an empty slice")
	}
}

func TestSeverityString(t *testing.T) {
	if OutcomeOK.String() != "ok" || OutcomeWarning.String() != "warning" || OutcomeFatal.String() != "fatal" {
		t.Fatalf("unexpected severity names: %s %s %s", OutcomeOK, OutcomeWarning, OutcomeFatal)
	}
}

func TestFormatCounts(t *testing.T) {
	got := formatCounts(map[string]int64{"Entity:Person": 3, "Diagnostic": 1, "Entity": 10})
	want := "Diagnostic=1 Entity=10 Entity:Person=3"
	if got != want {
		t.Fatalf("formatCounts = %q, want %q", got, want)
	}
	if formatCounts(nil) != "(none)" {
		t.Fatalf("formatCounts(nil) = %q", formatCounts(nil))
	}
}
