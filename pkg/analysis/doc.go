// Package analysis detects the time origin of a voltage-vs-time measurement and classifies
// whether the waveform after that origin is a step response.
//
// An analysis run goes through five stages, always in the same order: the raw values are
// smoothed with a centred moving average, a baseline is located, the origin is detected
// from that baseline, the time axis (and optionally the value axis) is shifted so the origin
// becomes zero, and finally the aligned signal is tested for a significant excursion followed
// by a quiet settle window.
//
// The run is synchronous and works on a fully loaded, in-memory sequence. It keeps no state
// between calls, so independent sequences can be analysed concurrently without locking.
// Identical inputs always produce identical results.
//
// Fatal conditions (bad configuration, malformed or insufficient input) are returned as an
// *Error carrying a Kind. Soft conditions, such as a signal that never departs from its
// baseline or never settles, still produce a complete Result with a negative verdict and a
// Reason explaining it.
package analysis
