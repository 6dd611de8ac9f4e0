package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/chladni/internal/config"
	"github.com/san-kum/chladni/internal/particle"
	"github.com/san-kum/chladni/internal/sim"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager for empty dir, got %v %v", om, err)
	}

	if err := om.WriteTelemetry(Record{}); err != nil {
		t.Errorf("nil manager should ignore writes: %v", err)
	}
	if err := om.WriteConfig(config.DefaultConfig()); err != nil {
		t.Errorf("nil manager should ignore config: %v", err)
	}
	if om.Dir() != "" || om.Path("a.png") != "a.png" {
		t.Error("nil manager should not rewrite paths")
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil close: %v", err)
	}
}

func TestWriteTelemetryHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteTelemetry(Record{RunID: "r", Frame: i, Pattern: "cross", Particles: 10}); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "run_id"); n != 1 {
		t.Errorf("expected one header, found %d", n)
	}

	var got []Record
	if err := gocsv.UnmarshalBytes(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(got) != 3 || got[2].Frame != 3 || got[0].Pattern != "cross" {
		t.Errorf("unexpected records %+v", got)
	}
}

func TestWriteConfig(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	cfg := config.DefaultConfig()
	cfg.Seed = 99
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	loaded, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Seed != 99 {
		t.Errorf("expected seed 99, got %d", loaded.Seed)
	}
}

func TestRecorderSamplesEveryN(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	rec := NewRecorder(om, 10)
	runner := sim.New()
	runner.AddObserver(rec)

	cfg := sim.DefaultConfig()
	cfg.Dims = particle.Dimensions{Width: 100, Height: 100}
	cfg.Frames = 35
	result, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	if rec.Err() != nil {
		t.Fatalf("recorder error: %v", rec.Err())
	}
	if rec.Written() != 3 {
		t.Errorf("expected rows for frames 10, 20, 30, got %d", rec.Written())
	}

	var got []Record
	f, err := os.Open(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, &got); err != nil {
		t.Fatal(err)
	}
	for i, r := range got {
		if r.RunID != result.RunID {
			t.Errorf("row %d: run id %q, want %q", i, r.RunID, result.RunID)
		}
		if r.Frame != (i+1)*10 {
			t.Errorf("row %d: frame %d", i, r.Frame)
		}
		if r.Particles != result.Particles || r.Pattern != "fundamental" {
			t.Errorf("row %d: unexpected %+v", i, r)
		}
	}
}
