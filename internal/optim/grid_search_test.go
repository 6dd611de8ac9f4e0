package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/chladni/internal/particle"
)

func TestGridSearchMaximize(t *testing.T) {
	g := NewGridSearch(
		[]string{"a", "b"},
		[][]float64{{1, 2, 3}, {10, 20}},
		true,
	)
	if g.Size() != 6 {
		t.Fatalf("Size() = %d, want 6", g.Size())
	}

	trials, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		return p["a"] + p["b"], nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 6 {
		t.Fatalf("got %d trials", len(trials))
	}
	if best := trials[0]; best.Params["a"] != 3 || best.Params["b"] != 20 || best.Score != 23 {
		t.Errorf("best = %+v", best)
	}
	if worst := trials[5]; worst.Score != 11 {
		t.Errorf("worst = %+v", worst)
	}
}

func TestGridSearchMinimize(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{-1, 0, 2}}, false)
	trials, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		return p["x"] * p["x"], nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if trials[0].Params["x"] != 0 {
		t.Errorf("best x = %v, want 0", trials[0].Params["x"])
	}
}

func TestGridSearchStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}}, true)
	_, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		calls++
		if p["x"] == 2 {
			return 0, boom
		}
		return 1, nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestGridSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGridSearch([]string{"x"}, [][]float64{{1}}, true)
	_, err := g.Search(ctx, func(context.Context, map[string]float64) (float64, error) {
		t.Fatal("objective called after cancel")
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestApply(t *testing.T) {
	p := particle.DefaultParams()
	if err := Apply(&p, "jitter", 0.5); err != nil {
		t.Fatal(err)
	}
	if p.Jitter != 0.5 {
		t.Errorf("jitter = %v", p.Jitter)
	}
	if err := Apply(&p, "gravity", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("err = %v, want ErrUnknownParam", err)
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := Apply(&p, "repulsion", v); !errors.Is(err, particle.ErrInvalidParams) {
			t.Errorf("Apply(repulsion, %v) err = %v, want ErrInvalidParams", v, err)
		}
	}
	if p.Repulsion != particle.DefaultParams().Repulsion {
		t.Errorf("rejected value must not be stored, repulsion = %v", p.Repulsion)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		values  []float64
		wantErr bool
	}{
		{"repulsion=0.001,0.002", "repulsion", []float64{0.001, 0.002}, false},
		{"bounce= 0.2 , 0.8", "bounce", []float64{0.2, 0.8}, false},
		{"bounce", "", nil, true},
		{"bounce=", "", nil, true},
		{"gravity=1", "", nil, true},
		{"jitter=a", "", nil, true},
		{"repulsion=NaN", "", nil, true},
		{"jitter=0.001,Inf", "", nil, true},
		{"bounce=-Inf", "", nil, true},
		{"free_damping=5", "", nil, true},
		{"settle_threshold=1.5", "", nil, true},
		{"repulsion=-0.1", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, values, err := ParseRange(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if name != tt.name || len(values) != len(tt.values) {
				t.Fatalf("got %s %v", name, values)
			}
			for i := range values {
				if values[i] != tt.values[i] {
					t.Errorf("values[%d] = %v, want %v", i, values[i], tt.values[i])
				}
			}
		})
	}
}
