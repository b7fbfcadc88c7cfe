package engines

import (
	"context"
	"os/exec"
	"reflect"
	"testing"

	"github.com/dgnsrekt/voiceover/internal/speech"
)

const espeakVoicesFixture = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-gb           --/M      English_(Great_Britain) gmw/en            (en 2)
 2  en-us           --/M      English_(America)  gmw/en-US            (en 3)
 5  en-gb           --/M      English_(Great_Britain) gmw/en
 5  ja              --/M      Japanese           jpx/ja
garbage line
`

func TestParseEspeakVoices(t *testing.T) {
	got := parseEspeakVoices([]byte(espeakVoicesFixture))
	want := []speech.Voice{
		{ID: "af", Name: "Afrikaans", Language: "af"},
		{ID: "en-gb", Name: "English (Great Britain)", Language: "en-gb"},
		{ID: "en-us", Name: "English (America)", Language: "en-us"},
		{ID: "ja", Name: "Japanese", Language: "ja"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseEspeakVoices() =\n%v\nwant\n%v", got, want)
	}
}

func TestParseEspeakVoicesEmpty(t *testing.T) {
	if got := parseEspeakVoices(nil); len(got) != 0 {
		t.Errorf("expected no voices, got %v", got)
	}
}

func TestEspeakMapping(t *testing.T) {
	tests := []struct {
		name      string
		pitch     float64
		rate      float64
		wantPitch int
		wantRate  int
	}{
		{"defaults", 1.0, 1.0, 50, 175},
		{"minimums", 0.5, 0.5, 25, 88},
		{"maximums clamp pitch", 2.0, 2.0, 99, 350},
		{"out of range input", 5.0, 0.1, 99, 88},
		{"fractional", 1.3, 1.25, 65, 219},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := espeakPitch(tt.pitch); got != tt.wantPitch {
				t.Errorf("espeakPitch(%v) = %d, want %d", tt.pitch, got, tt.wantPitch)
			}
			if got := espeakRate(tt.rate); got != tt.wantRate {
				t.Errorf("espeakRate(%v) = %d, want %d", tt.rate, got, tt.wantRate)
			}
		})
	}
}

func TestEspeakArgs(t *testing.T) {
	v := speech.Voice{ID: "en-gb", Name: "English", Language: "en-gb"}

	got := espeakArgs(speech.Request{ID: 1, Text: "hi", Voice: &v, Pitch: 1.0, Rate: 2.0})
	want := []string{"-v", "en-gb", "-p", "50", "-s", "350", "--stdin"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("espeakArgs() = %v, want %v", got, want)
	}

	got = espeakArgs(speech.Request{ID: 2, Text: "hi", Pitch: 0.5, Rate: 1.0})
	want = []string{"-p", "25", "-s", "175", "--stdin"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("espeakArgs() without voice = %v, want %v", got, want)
	}
}

func TestEspeakListVoices(t *testing.T) {
	if _, err := exec.LookPath("espeak-ng"); err != nil {
		t.Skip("espeak-ng not installed")
	}

	e, err := NewEspeak(EspeakConfig{Binary: "espeak-ng", Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	voices, err := e.ListVoices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(voices) == 0 {
		t.Error("expected at least one voice")
	}
}
