// Package field evaluates the stylized Chladni vibration modes that drive
// the particle background.
//
// Five closed-form patterns are provided, selected by a wrapped index:
//
//   - [Fundamental]: single vertical nodal line (1,0)
//   - [Cross]: (1,1) mode
//   - [Star]: (2,1) mode
//   - [Radial]: six-fold angular mode with radial rings
//   - [Lattice]: (2,2) mode
//
// Every pattern is a pure function of (x, y, t). The time term only scales
// the amplitude, so nodal lines stay fixed while their strength pulses.
//
// # Gradient sampling
//
// [NewGrid] samples a pattern on a 21×21 lattice and approximates its
// spatial derivative by forward differences:
//
//	g := field.NewGrid(field.Func(field.Star), t)
//	if s, ok := g.Cell(x, y); ok {
//	    _ = s.DX
//	}
package field
