package model

// Sample is one (time, value) measurement. Time is in seconds.
type Sample struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// Range is a closed [Min, Max] interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v lies inside the interval, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Times returns the time axis of samples.
func Times(samples []Sample) []float64 {
	res := make([]float64, len(samples))
	for i, s := range samples {
		res[i] = s.Time
	}

	return res
}

// Values returns the value axis of samples.
func Values(samples []Sample) []float64 {
	res := make([]float64, len(samples))
	for i, s := range samples {
		res[i] = s.Value
	}

	return res
}
