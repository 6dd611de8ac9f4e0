package metrics

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/chladni/internal/particle"
)

const (
	NameSettled   = "settled_fraction"
	NameIntensity = "mean_intensity"
	NameSpeed     = "mean_speed"
	NameBoundary  = "boundary_contacts"
)

// Each metric reports the value observed on the most recent frame.

type SettledFraction struct {
	value float64
}

func NewSettledFraction() *SettledFraction { return &SettledFraction{} }

func (m *SettledFraction) Name() string { return NameSettled }

func (m *SettledFraction) Observe(r *particle.Run) {
	ps := r.Particles()
	if len(ps) == 0 {
		m.value = 0
		return
	}
	n := 0
	for _, p := range ps {
		if p.Settled {
			n++
		}
	}
	m.value = float64(n) / float64(len(ps))
}

func (m *SettledFraction) Value() float64 { return m.value }
func (m *SettledFraction) Reset()         { m.value = 0 }

// MeanIntensity is the mean field magnitude at particle positions. It drops
// as particles gather on nodal lines.
type MeanIntensity struct {
	value float64
	buf   []float64
}

func NewMeanIntensity() *MeanIntensity { return &MeanIntensity{} }

func (m *MeanIntensity) Name() string { return NameIntensity }

func (m *MeanIntensity) Observe(r *particle.Run) {
	ps := r.Particles()
	m.buf = m.buf[:0]
	for _, p := range ps {
		m.buf = append(m.buf, r.Intensity(p.Pos))
	}
	m.value = mean(m.buf)
}

func (m *MeanIntensity) Value() float64 { return m.value }

func (m *MeanIntensity) Reset() {
	m.value = 0
	m.buf = m.buf[:0]
}

type MeanSpeed struct {
	value float64
	buf   []float64
}

func NewMeanSpeed() *MeanSpeed { return &MeanSpeed{} }

func (m *MeanSpeed) Name() string { return NameSpeed }

func (m *MeanSpeed) Observe(r *particle.Run) {
	ps := r.Particles()
	m.buf = m.buf[:0]
	for _, p := range ps {
		m.buf = append(m.buf, r2.Norm(p.Vel))
	}
	m.value = mean(m.buf)
}

func (m *MeanSpeed) Value() float64 { return m.value }

func (m *MeanSpeed) Reset() {
	m.value = 0
	m.buf = m.buf[:0]
}

// BoundaryContacts counts particles resting on an edge of the unit square,
// which after reflection is exactly the set that bounced this frame or
// has not left the wall since.
type BoundaryContacts struct {
	value float64
}

func NewBoundaryContacts() *BoundaryContacts { return &BoundaryContacts{} }

func (m *BoundaryContacts) Name() string { return NameBoundary }

func (m *BoundaryContacts) Observe(r *particle.Run) {
	n := 0
	for _, p := range r.Particles() {
		if onEdge(p.Pos.X) || onEdge(p.Pos.Y) {
			n++
		}
	}
	m.value = float64(n)
}

func (m *BoundaryContacts) Value() float64 { return m.value }
func (m *BoundaryContacts) Reset()         { m.value = 0 }

func onEdge(v float64) bool { return v == 0 || v == 1 }

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
