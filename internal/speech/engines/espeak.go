package engines

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voiceover/internal/speech"
)

const (
	espeakBasePitch = 50 // espeak -p default, 0-99
	espeakMaxPitch  = 99
	espeakBaseRate  = 175 // espeak -s default, words per minute
	espeakMinRate   = 80
	espeakMaxRate   = 450
)

// EspeakConfig configures the espeak-ng engine.
type EspeakConfig struct {
	// Binary overrides the executable; espeak-ng then espeak are tried
	// when empty.
	Binary string
	Logger *log.Logger
}

// Espeak speaks through the espeak-ng command line tool, which plays audio
// itself.
type Espeak struct {
	binary string
	logger *log.Logger
	runner *runner
}

var _ speech.Engine = (*Espeak)(nil)

// NewEspeak locates the espeak binary. A missing binary yields an
// ENGINE_UNAVAILABLE error.
func NewEspeak(cfg EspeakConfig) (*Espeak, error) {
	bin, err := lookBinary(cfg.Binary, "espeak-ng", "espeak")
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("espeak")
	}
	logger.Debug("using binary", "path", bin)

	return &Espeak{
		binary: bin,
		logger: logger,
		runner: newRunner(logger),
	}, nil
}

// Name implements speech.Engine.
func (e *Espeak) Name() string { return EspeakName }

// ListVoices implements speech.Engine.
func (e *Espeak) ListVoices(ctx context.Context) ([]speech.Voice, error) {
	out, err := exec.CommandContext(ctx, e.binary, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("%s --voices: %w", e.binary, err)
	}
	voices := parseEspeakVoices(out)
	e.logger.Debug("listed voices", "count", len(voices))
	return voices, nil
}

// Speak implements speech.Engine.
func (e *Espeak) Speak(req speech.Request) error {
	args := espeakArgs(req)
	text := req.Text
	return e.runner.start(req.ID, func(ctx context.Context, started func()) error {
		return runCommand(ctx, e.binary, args, strings.NewReader(text), nil, started)
	})
}

// CancelActive implements speech.Engine.
func (e *Espeak) CancelActive() error {
	e.runner.cancelActive()
	return nil
}

// Events implements speech.Engine.
func (e *Espeak) Events() <-chan speech.Event { return e.runner.events }

// Close implements speech.Engine.
func (e *Espeak) Close() error {
	if e.runner.close() {
		e.runner.closeEvents()
	}
	return nil
}

// espeakArgs builds the command line for req. Text is passed on stdin.
func espeakArgs(req speech.Request) []string {
	args := make([]string, 0, 7)
	if id := req.VoiceID(); id != "" {
		args = append(args, "-v", id)
	}
	args = append(args,
		"-p", strconv.Itoa(espeakPitch(req.Pitch)),
		"-s", strconv.Itoa(espeakRate(req.Rate)),
		"--stdin",
	)
	return args
}

// espeakPitch maps a [0.5, 2.0] multiplier onto espeak's 0-99 scale.
func espeakPitch(p float64) int {
	v := int(math.Round(espeakBasePitch * speech.ClampPitch(p)))
	return min(max(v, 0), espeakMaxPitch)
}

// espeakRate maps a [0.5, 2.0] multiplier onto words per minute.
func espeakRate(r float64) int {
	v := int(math.Round(espeakBaseRate * speech.ClampRate(r)))
	return min(max(v, espeakMinRate), espeakMaxRate)
}

// parseEspeakVoices reads the table printed by `espeak-ng --voices`:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  af              --/M      Afrikaans          gmw/af
func parseEspeakVoices(out []byte) []speech.Voice {
	var voices []speech.Voice
	seen := make(map[string]bool)

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}

		lang := fields[1]
		if seen[lang] {
			continue
		}
		seen[lang] = true

		voices = append(voices, speech.Voice{
			ID:       lang,
			Name:     strings.ReplaceAll(fields[3], "_", " "),
			Language: lang,
		})
	}
	return voices
}
