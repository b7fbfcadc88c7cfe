package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/dgnsrekt/voiceover/internal/speech"
)

const maxVisibleVoices = 6

// LanguageName returns the English name of a BCP 47 tag, or "" when the
// tag cannot be parsed.
func LanguageName(code string) string {
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	return display.English.Tags().Name(tag)
}

// voiceDetails renders the line describing the selected voice.
func voiceDetails(v speech.Voice) string {
	lang := v.Language
	switch name := LanguageName(lang); {
	case lang == "":
		lang = "unknown"
	case name != "":
		lang = fmt.Sprintf("%s (%s)", lang, name)
	}
	return fmt.Sprintf("Language: %s | Name: %s", lang, v.Name)
}

func voiceLabels(voices []speech.Voice) []string {
	labels := make([]string, len(voices))
	for i, v := range voices {
		labels[i] = v.String()
	}
	return labels
}

// voicePicker is the drop-down opened on the voice field. It keeps indices
// into the controller's voice list; the list itself is not copied.
type voicePicker struct {
	input   textinput.Model
	open    bool
	cursor  int
	matches []int
}

func newVoicePicker() voicePicker {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "type to filter voices"
	ti.CharLimit = 64
	return voicePicker{input: ti}
}

func (p *voicePicker) show(voices []speech.Voice, selected string) {
	p.open = true
	p.input.SetValue("")
	p.input.Focus()
	p.filter(voices)
	for i, idx := range p.matches {
		if voices[idx].ID == selected {
			p.cursor = i
			break
		}
	}
}

func (p *voicePicker) hide() {
	p.open = false
	p.input.Blur()
}

// filter recomputes the matches for the current query.
func (p *voicePicker) filter(voices []speech.Voice) {
	p.matches = p.matches[:0]
	query := strings.TrimSpace(p.input.Value())
	if query == "" {
		for i := range voices {
			p.matches = append(p.matches, i)
		}
	} else {
		for _, m := range fuzzy.Find(query, voiceLabels(voices)) {
			p.matches = append(p.matches, m.Index)
		}
	}
	p.cursor = min(max(p.cursor, 0), max(len(p.matches)-1, 0))
}

func (p *voicePicker) move(delta int) {
	if len(p.matches) == 0 {
		return
	}
	p.cursor = (p.cursor + delta + len(p.matches)) % len(p.matches)
}

// current returns the index into the voice list under the cursor.
func (p voicePicker) current() (int, bool) {
	if p.cursor < 0 || p.cursor >= len(p.matches) {
		return 0, false
	}
	return p.matches[p.cursor], true
}

func (p voicePicker) view(voices []speech.Voice, width int) string {
	var b strings.Builder
	b.WriteString(p.input.View())
	b.WriteByte('\n')

	if len(p.matches) == 0 {
		b.WriteString(dimStyle("  No matching voices"))
		return b.String()
	}

	start := 0
	if p.cursor >= maxVisibleVoices {
		start = p.cursor - maxVisibleVoices + 1
	}
	end := min(start+maxVisibleVoices, len(p.matches))

	for i := start; i < end; i++ {
		label := truncate.StringWithTail(voices[p.matches[i]].String(), uint(max(width-4, 8)), ellipsis)
		label = runewidth.FillRight(label, max(width-4, 8))
		if i == p.cursor {
			b.WriteString(fuchsiaFg("> " + label))
		} else {
			b.WriteString("  " + label)
		}
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	if len(p.matches) > end-start {
		b.WriteString("\n" + dimStyle(fmt.Sprintf("  %d of %d", p.cursor+1, len(p.matches))))
	}
	return b.String()
}
