package ui

import (
	"testing"

	"github.com/dgnsrekt/voiceover/internal/speech"
)

func TestLanguageName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en-US", "American English"},
		{"de", "German"},
		{"", ""},
		{"not a tag!", ""},
	}
	for _, tt := range tests {
		if got := LanguageName(tt.code); got != tt.want {
			t.Errorf("LanguageName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestVoiceDetails(t *testing.T) {
	tests := []struct {
		voice speech.Voice
		want  string
	}{
		{
			speech.Voice{ID: "a", Name: "Samantha", Language: "en-US"},
			"Language: en-US (American English) | Name: Samantha",
		},
		{
			speech.Voice{ID: "b", Name: "Robot"},
			"Language: unknown | Name: Robot",
		},
	}
	for _, tt := range tests {
		if got := voiceDetails(tt.voice); got != tt.want {
			t.Errorf("voiceDetails() = %q, want %q", got, tt.want)
		}
	}
}

func TestVoicePickerFilter(t *testing.T) {
	voices := []speech.Voice{
		{ID: "en", Name: "Mock English", Language: "en-US"},
		{ID: "de", Name: "Mock German", Language: "de-DE"},
		{ID: "ja", Name: "Mock Japanese", Language: "ja-JP"},
	}

	p := newVoicePicker()
	p.show(voices, "ja")
	if len(p.matches) != 3 {
		t.Fatalf("empty query should match all voices, got %v", p.matches)
	}
	if i, _ := p.current(); i != 2 {
		t.Errorf("cursor should start on the selected voice, got %d", i)
	}

	p.input.SetValue("germ")
	p.filter(voices)
	if len(p.matches) != 1 || p.matches[0] != 1 {
		t.Errorf("matches = %v, want [1]", p.matches)
	}
	if i, ok := p.current(); !ok || i != 1 {
		t.Errorf("current = %d, %v; want 1", i, ok)
	}

	p.input.SetValue("zzz")
	p.filter(voices)
	if _, ok := p.current(); ok {
		t.Error("no match should leave nothing under the cursor")
	}

	p.hide()
	if p.open {
		t.Error("picker should be closed")
	}
}

func TestVoicePickerMoveWraps(t *testing.T) {
	voices := []speech.Voice{{ID: "a"}, {ID: "b"}}
	p := newVoicePicker()
	p.show(voices, "a")

	p.move(-1)
	if i, _ := p.current(); i != 1 {
		t.Errorf("current = %d, want 1", i)
	}
	p.move(1)
	if i, _ := p.current(); i != 0 {
		t.Errorf("current = %d, want 0", i)
	}
}
