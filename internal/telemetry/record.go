package telemetry

import (
	"github.com/san-kum/chladni/internal/metrics"
	"github.com/san-kum/chladni/internal/particle"
)

// Record is one telemetry.csv row.
type Record struct {
	RunID         string  `csv:"run_id"`
	Frame         int     `csv:"frame"`
	Pattern       string  `csv:"pattern"`
	Particles     int     `csv:"particles"`
	Settled       float64 `csv:"settled_fraction"`
	MeanIntensity float64 `csv:"mean_intensity"`
	MeanSpeed     float64 `csv:"mean_speed"`
}

// Recorder samples a run every few frames and writes the result through an
// OutputManager. It satisfies sim.Observer.
type Recorder struct {
	om        *OutputManager
	every     int
	settled   *metrics.SettledFraction
	intensity *metrics.MeanIntensity
	speed     *metrics.MeanSpeed
	written   int
	err       error
}

func NewRecorder(om *OutputManager, every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{
		om:        om,
		every:     every,
		settled:   metrics.NewSettledFraction(),
		intensity: metrics.NewMeanIntensity(),
		speed:     metrics.NewMeanSpeed(),
	}
}

func (rec *Recorder) OnFrame(r *particle.Run) {
	if rec.err != nil || r.T()%rec.every != 0 {
		return
	}
	rec.settled.Observe(r)
	rec.intensity.Observe(r)
	rec.speed.Observe(r)

	rec.err = rec.om.WriteTelemetry(Record{
		RunID:         r.ID(),
		Frame:         r.T(),
		Pattern:       r.Pattern().Name(),
		Particles:     r.Len(),
		Settled:       rec.settled.Value(),
		MeanIntensity: rec.intensity.Value(),
		MeanSpeed:     rec.speed.Value(),
	})
	if rec.err == nil {
		rec.written++
	}
}

// Written is the number of rows written so far.
func (rec *Recorder) Written() int { return rec.written }

// Err returns the first write error; recording stops after it.
func (rec *Recorder) Err() error { return rec.err }
