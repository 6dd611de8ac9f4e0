// Package particle implements the Chladni particle system: a fixed batch of
// point particles pushed away from antinodes of a [field.Fn] until they
// settle along its nodal lines.
//
// A [System] owns at most one [Run]. Starting a system seeds particles for
// the given viewport and schedules one frame per tick on its
// [sched.Scheduler]; starting again, or stopping, discards the run:
//
//	sys := particle.NewSystem(sched.NewManual(), particle.WithSeed(42))
//	run, err := sys.Start(particle.Dimensions{Width: 1024, Height: 768}, field.Star)
//	if err != nil {
//	    return err
//	}
//	defer run.Cancel()
//
// # Thread Safety
//
// Frames, Start, Stop and View are serialized by the system's mutex. Frame
// hooks run with that mutex held and must not call Start or Stop.
package particle
