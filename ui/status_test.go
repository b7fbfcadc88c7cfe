package ui

import (
	"strings"
	"testing"

	"github.com/dgnsrekt/voiceover/internal/speech"
)

func TestStatusLine(t *testing.T) {
	tests := []struct {
		name string
		text string
		rate float64
		want string
	}{
		{"empty", "", 1.0, "Characters: 0 | Estimated duration: 0.0s"},
		{"two words", "Hello world", 1.0, "Characters: 11 | Estimated duration: 0.8s"},
		{"double rate", "Hello world", 2.0, "Characters: 11 | Estimated duration: 0.4s"},
		{"thousands", strings.Repeat("a ", 617), 1.0, "Characters: 1,234 | Estimated duration: 246.8s"},
		{"multibyte", "héllo wörld", 1.0, "Characters: 11 | Estimated duration: 0.8s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusLine(tt.text, tt.rate); got != tt.want {
				t.Errorf("statusLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLabels(t *testing.T) {
	if got := pitchLabel(1.0); got != "Pitch (1.0)" {
		t.Errorf("pitchLabel = %q", got)
	}
	if got := rateLabel(1.5); got != "Rate (1.5x)" {
		t.Errorf("rateLabel = %q", got)
	}
}

func TestStepValue(t *testing.T) {
	tests := []struct {
		v     float64
		delta int
		want  float64
	}{
		{1.0, 1, 1.1},
		{1.0, -1, 0.9},
		{0.7, 1, 0.8},
		{1.9, 1, 2.0},
		{1.25, 1, 1.4}, // snaps to the step grid
	}
	for _, tt := range tests {
		if got := stepValue(tt.v, tt.delta); got != tt.want {
			t.Errorf("stepValue(%v, %d) = %v, want %v", tt.v, tt.delta, got, tt.want)
		}
	}
}

func TestRenderSliderKnob(t *testing.T) {
	tests := []struct {
		v    float64
		want int // knob position
	}{
		{speech.MinPitch, 0},
		{speech.MaxPitch, sliderWidth - 1},
		{1.25, 12},
	}
	for _, tt := range tests {
		got := renderSlider(tt.v, speech.MinPitch, speech.MaxPitch, sliderWidth, false, true)
		pos := strings.Index(got, "●")
		if pos < 0 {
			t.Fatalf("no knob in %q", got)
		}
		if n := countBar(got[:pos]); n != tt.want {
			t.Errorf("renderSlider(%v): knob at %d, want %d", tt.v, n, tt.want)
		}
	}
}

func countBar(s string) int {
	return strings.Count(s, "━") + strings.Count(s, "─")
}
