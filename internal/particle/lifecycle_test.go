package particle_test

import (
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chladni/internal/field"
	"github.com/san-kum/chladni/internal/particle"
	"github.com/san-kum/chladni/internal/sched"
)

var _ = Describe("System lifecycle on a real clock", func() {
	var (
		sys  *particle.System
		dims particle.Dimensions
	)

	frames := func() int {
		n := -1
		sys.View(func(r *particle.Run) { n = r.T() })
		return n
	}

	BeforeEach(func() {
		dims = particle.Dimensions{Width: 320, Height: 240}
		sys = particle.NewSystem(sched.NewTicker(240),
			particle.WithSeed(3),
			particle.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		)
	})

	AfterEach(func() {
		sys.Stop()
	})

	It("starts stopped", func() {
		Expect(sys.State()).To(Equal(particle.Stopped))
	})

	It("advances frames once started", func() {
		_, err := sys.Start(dims, field.Cross)
		Expect(err).NotTo(HaveOccurred())
		Expect(sys.State()).To(Equal(particle.Running))
		Eventually(frames, 2*time.Second, 5*time.Millisecond).Should(BeNumerically(">=", 5))
	})

	It("never advances a run after it is canceled", func() {
		run, err := sys.Start(dims, field.Star)
		Expect(err).NotTo(HaveOccurred())
		Eventually(frames, 2*time.Second, 5*time.Millisecond).Should(BeNumerically(">=", 2))

		run.Cancel()
		var stopped int
		sys.View(func(*particle.Run) { Fail("view must not see a canceled run") })
		stopped = run.T()
		Consistently(run.T, 100*time.Millisecond, 10*time.Millisecond).Should(Equal(stopped))
		Expect(sys.State()).To(Equal(particle.Stopped))
	})

	It("reseeds with a fresh counter on pattern change", func() {
		first, err := sys.Start(dims, field.Fundamental)
		Expect(err).NotTo(HaveOccurred())
		Eventually(frames, 2*time.Second, 5*time.Millisecond).Should(BeNumerically(">=", 3))

		second, err := sys.Start(dims, field.Radial)
		Expect(err).NotTo(HaveOccurred())
		frozen := first.T()

		Eventually(frames, 2*time.Second, 5*time.Millisecond).Should(BeNumerically(">=", 1))
		Expect(first.T()).To(Equal(frozen))
		Expect(second.Pattern()).To(Equal(field.Radial))
		Expect(second.ID()).NotTo(Equal(first.ID()))
	})

	It("refuses to start without a viewport", func() {
		_, err := sys.Start(particle.Dimensions{}, field.Cross)
		Expect(err).To(MatchError(particle.ErrNoSurface))
		Expect(sys.State()).To(Equal(particle.Stopped))
	})

	It("wraps any pattern index", func() {
		run, err := sys.Start(dims, field.Pattern(-3))
		Expect(err).NotTo(HaveOccurred())
		Expect(run.Pattern()).To(Equal(field.Star))
	})
})
