package sim

import (
	"context"
	"testing"
)

func TestEnsembleRun(t *testing.T) {
	ens := NewEnsemble(newTestRunner, 4, 10)

	results, err := ens.Run(context.Background(), testConfig(20))
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Seed != int64(10+i) {
			t.Errorf("result %d: expected seed %d, got %d", i, 10+i, r.Seed)
		}
		if r.Frames != 20 {
			t.Errorf("result %d: expected 20 frames, got %d", i, r.Frames)
		}
	}
}

func TestSummarize(t *testing.T) {
	results := []*Result{
		{Metrics: map[string]float64{"b": 1, "a": 2}},
		{Metrics: map[string]float64{"b": 3, "a": 2}},
		nil,
	}

	sums := Summarize(results)
	if len(sums) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(sums))
	}
	if sums[0].Name != "a" || sums[1].Name != "b" {
		t.Errorf("expected sorted names, got %s %s", sums[0].Name, sums[1].Name)
	}
	b := sums[1]
	if b.Mean != 2 || b.Min != 1 || b.Max != 3 {
		t.Errorf("unexpected summary %+v", b)
	}
	if sums[0].StdDev != 0 {
		t.Errorf("expected zero spread, got %f", sums[0].StdDev)
	}
}
