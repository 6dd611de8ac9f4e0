// Package analysis characterizes how a run converges from its metric
// series.
//
//   - [SettleFrame]: first frame after which a series stays above a level
//   - [PowerSpectrum]: magnitude spectrum of a mean-removed series
//   - [DominantFrequency]: strongest non-DC bin, in cycles per second
//
// A settled-fraction series that keeps oscillating after it settles points
// at particles hopping between neighbouring nodes:
//
//	f := analysis.DominantFrequency(series, 60)
package analysis
