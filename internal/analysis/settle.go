package analysis

// SettleFrame returns the index after which every value of series is at
// least level, or -1 when the series ends below it.
func SettleFrame(series []float64, level float64) int {
	at := -1
	for i, v := range series {
		switch {
		case v < level:
			at = -1
		case at < 0:
			at = i
		}
	}
	return at
}

// Tail returns the last fraction of series, at least one element when
// series is non-empty.
func Tail(series []float64, fraction float64) []float64 {
	if len(series) == 0 {
		return series
	}
	n := int(float64(len(series)) * fraction)
	n = max(1, min(n, len(series)))
	return series[len(series)-n:]
}
