package stats

// SMA returns the simple moving average of values with the given window.
// The mean expands until the window fills, so the output has the same
// length as the input. A window below 1 is treated as 1.
func SMA(values []float64, window int) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	if window < 1 {
		window = 1
	}

	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}
