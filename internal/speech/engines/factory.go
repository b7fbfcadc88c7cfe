package engines

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgnsrekt/voiceover/internal/audio"
	"github.com/dgnsrekt/voiceover/internal/speech"
)

// Engine names accepted by New.
const (
	AutoName   = "auto"
	EspeakName = "espeak"
	PiperName  = "piper"
	MockName   = "mock"
)

// ErrUnknownEngine is returned by New for names it does not recognise.
var ErrUnknownEngine = errors.New("unknown engine")

// Config carries the settings of every engine; New picks the relevant one.
type Config struct {
	Espeak EspeakConfig
	Piper  PiperConfig
	Mock   MockConfig
}

// Names lists the concrete engines in auto-detection order, then mock.
func Names() []string {
	return []string{EspeakName, PiperName, MockName}
}

// New builds the named engine. Auto (or an empty name) picks the first
// installed host engine.
func New(name string, cfg Config) (speech.Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", AutoName:
		for _, n := range []string{EspeakName, PiperName} {
			if Available(n, cfg) {
				return New(n, cfg)
			}
		}
		return nil, speech.NewEngineError(speech.ErrorCodeEngineUnavailable,
			"no speech engine found; install espeak-ng or piper", 0, nil)

	case EspeakName:
		return NewEspeak(cfg.Espeak)

	case PiperName:
		pcfg := cfg.Piper
		var owned *audio.Player
		if pcfg.Player == nil {
			p, err := audio.NewPlayer(audio.DefaultPlayerConfig())
			if err != nil {
				return nil, speech.NewEngineError(speech.ErrorCodeEngineUnavailable, "no audio output", 0, err)
			}
			owned = p
			pcfg.Player = p
		}
		e, err := NewPiper(pcfg)
		if err != nil {
			if owned != nil {
				_ = owned.Close()
			}
			return nil, err
		}
		if owned != nil {
			e.closer = owned
		}
		return e, nil

	case MockName:
		return NewMock(cfg.Mock), nil

	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownEngine, name, strings.Join(append([]string{AutoName}, Names()...), ", "))
	}
}

// Available reports whether the named engine can run on this host.
func Available(name string, cfg Config) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case EspeakName:
		_, err := lookBinary(cfg.Espeak.Binary, "espeak-ng", "espeak")
		return err == nil
	case PiperName:
		_, err := lookBinary(cfg.Piper.Binary, "piper")
		return err == nil
	case MockName:
		return true
	default:
		return false
	}
}
