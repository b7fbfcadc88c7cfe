package ui

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/voiceover/internal/speech"
)

const (
	sliderStep  = 0.1
	sliderWidth = 24
	ellipsis    = "…"
)

// statusLine renders the counter shown under the text box.
func statusLine(text string, rate float64) string {
	chars := utf8.RuneCountInString(text)
	return fmt.Sprintf("Characters: %s | Estimated duration: %s",
		humanize.Comma(int64(chars)),
		speech.FormatDuration(speech.EstimateDuration(text, rate)))
}

func pitchLabel(v float64) string { return fmt.Sprintf("Pitch (%.1f)", v) }
func rateLabel(v float64) string  { return fmt.Sprintf("Rate (%.1fx)", v) }

// stepValue moves v by delta slider steps, snapping to the step grid.
func stepValue(v float64, delta int) float64 {
	return math.Round((v+float64(delta)*sliderStep)*10) / 10
}

// renderSlider draws a horizontal slider for v in [lo, hi].
func renderSlider(v, lo, hi float64, width int, focused, disabled bool) string {
	if width < 2 {
		width = 2
	}
	pos := int(math.Round((v - lo) / (hi - lo) * float64(width-1)))
	pos = min(max(pos, 0), width-1)

	filled := strings.Repeat("━", pos)
	empty := strings.Repeat("─", width-1-pos)

	switch {
	case disabled:
		return midGrayFg(filled + "●" + empty)
	case focused:
		return fuchsiaFg(filled) + fuchsiaFg("●") + midGrayFg(empty)
	default:
		return brightGrayFg(filled) + brightGrayFg("●") + midGrayFg(empty)
	}
}

// toast is a transient error banner.
type toast struct {
	title   string
	body    string
	seq     int
	visible bool
}

// show displays n and returns the sequence number its timeout must carry.
func (t *toast) show(n speech.Notice) int {
	t.seq++
	t.title = n.Title
	t.body = n.Description
	t.visible = true
	return t.seq
}

// hide dismisses the toast unless a newer one replaced it.
func (t *toast) hide(seq int) {
	if seq == t.seq {
		t.visible = false
	}
}

func (t toast) view(width int) string {
	if !t.visible {
		return ""
	}
	body := t.body
	if width > len(t.title)+4 {
		body = truncate.StringWithTail(body, uint(width-len(t.title)-4), ellipsis)
	}
	return errorTitleStyle(t.title+":") + " " + errorFg(body)
}
