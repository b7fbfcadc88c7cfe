package speech

import (
	"math"
	"strconv"
	"strings"
)

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// EstimateDuration returns a rough speaking time in seconds for text at the
// given rate, assuming 150 words per minute. It is a display heuristic only:
// pitch and voice are ignored and the engine's completion is authoritative.
func EstimateDuration(text string, rate float64) float64 {
	if rate <= 0 || math.IsNaN(rate) {
		rate = DefaultRate
	}
	words := WordCount(text)
	return float64(words) / WordsPerMinute * (1 / rate) * 60
}

// FormatDuration renders seconds with one decimal, e.g. "0.8s".
func FormatDuration(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 1, 64) + "s"
}

// clamp bounds v to [lo, hi]; NaN yields def.
func clamp(v, lo, hi, def float64) float64 {
	switch {
	case math.IsNaN(v):
		return def
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// ClampPitch bounds a pitch value to the supported range.
func ClampPitch(v float64) float64 { return clamp(v, MinPitch, MaxPitch, DefaultPitch) }

// ClampRate bounds a rate value to the supported range.
func ClampRate(v float64) float64 { return clamp(v, MinRate, MaxRate, DefaultRate) }
