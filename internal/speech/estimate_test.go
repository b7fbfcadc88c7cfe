package speech

import (
	"math"
	"testing"
)

func TestWordCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"Hello world", 2},
		{"  Hello \n\t world  ", 2},
		{"one", 1},
		{"a  b   c d", 4},
	}

	for _, tt := range tests {
		if got := WordCount(tt.text); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestEstimateDuration(t *testing.T) {
	tests := []struct {
		name string
		text string
		rate float64
		want float64
	}{
		{"two words at normal rate", "Hello world", 1.0, 0.8},
		{"faster rate shortens", "one two three", 1.5, 0.8},
		{"slower rate lengthens", "a b c d e f g h i j", 0.5, 8.0},
		{"blank text", "  ", 1.0, 0},
		{"zero rate falls back to default", "Hello world", 0, 0.8},
		{"NaN rate falls back to default", "Hello world", math.NaN(), 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateDuration(tt.text, tt.rate)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EstimateDuration(%q, %v) = %v, want %v", tt.text, tt.rate, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.8, "0.8s"},
		{0, "0.0s"},
		{12.345, "12.3s"},
		{EstimateDuration("Hello world", 1), "0.8s"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestControllerEstimateUsesRate(t *testing.T) {
	c := newTestController(t, newFakeEngine(), WithRate(2.0))
	if got := c.Estimate("Hello world"); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("Estimate() = %v, want 0.4", got)
	}
}
