package analysis

// Smooth returns the centred moving average of values. Each output point averages the inputs
// within window/2 samples on each side; the window is truncated at both ends of the sequence
// instead of being padded.
func Smooth(values []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, NewError(KindConfiguration, "smoothing window must be >= 1, got %d", window)
	}

	half := window / 2
	res := make([]float64, len(values))
	for i := range values {
		lo := max(0, i-half)
		hi := min(len(values)-1, i+half)
		res[i] = mean(values[lo : hi+1])
	}

	return res, nil
}

// mean uses a running update so that a window of identical values averages to exactly that value.
func mean(values []float64) float64 {
	var m float64
	for k, v := range values {
		m += (v - m) / float64(k+1)
	}

	return m
}
