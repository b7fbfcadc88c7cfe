package engines

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voiceover/internal/audio"
	"github.com/dgnsrekt/voiceover/internal/speech"
)

const (
	// piperMaxText bounds a single utterance; piper holds the whole
	// rendering in memory before playback starts.
	piperMaxText = 5000

	defaultPiperSampleRate = 22050
)

// Player plays raw mono 16-bit PCM.
type Player interface {
	Play(pcm []byte) (<-chan struct{}, error)
	Stop()
	SampleRate() int
	Channels() int
}

var _ Player = (*audio.Player)(nil)

// PiperConfig configures the piper engine.
type PiperConfig struct {
	// Binary overrides the piper executable.
	Binary string

	// VoiceDirs are scanned for *.onnx models.
	VoiceDirs []string

	// SampleRate is assumed for models whose config omits it.
	SampleRate int

	// Player receives the rendered PCM.
	Player Player

	// Watch enables the voices directory watcher.
	Watch   bool
	Watcher WatchConfig

	Logger *log.Logger
}

// piperModel is a voice model found on disk.
type piperModel struct {
	voice      speech.Voice
	path       string
	sampleRate int
}

// piperModelConfig is the subset of a model's .onnx.json we read.
type piperModelConfig struct {
	Dataset string `json:"dataset"`
	Audio   struct {
		SampleRate int    `json:"sample_rate"`
		Quality    string `json:"quality"`
	} `json:"audio"`
	Espeak struct {
		Voice string `json:"voice"`
	} `json:"espeak"`
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
}

// Piper renders speech with the piper neural TTS binary and plays the PCM
// through an audio Player.
type Piper struct {
	binary     string
	dirs       []string
	sampleRate int
	player     Player
	logger     *log.Logger
	runner     *runner
	watcher    *Watcher
	closer     io.Closer

	mu      sync.Mutex
	models  map[string]piperModel
	playing <-chan struct{}
}

var _ speech.Engine = (*Piper)(nil)

// NewPiper locates the piper binary and, when configured, starts watching
// the voice directories.
func NewPiper(cfg PiperConfig) (*Piper, error) {
	bin, err := lookBinary(cfg.Binary, "piper")
	if err != nil {
		return nil, err
	}
	if cfg.Player == nil {
		return nil, speech.NewEngineError(speech.ErrorCodeEngineUnavailable, "no audio output", 0, nil)
	}
	if cfg.Player.Channels() != 1 {
		return nil, fmt.Errorf("piper renders mono audio, player has %d channels", cfg.Player.Channels())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("piper")
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = defaultPiperSampleRate
	}

	e := &Piper{
		binary:     bin,
		dirs:       cfg.VoiceDirs,
		sampleRate: sampleRate,
		player:     cfg.Player,
		logger:     logger,
		runner:     newRunner(logger),
		models:     make(map[string]piperModel),
	}

	if cfg.Watch {
		w, err := NewWatcher(e.dirs, e.ListVoices, e.runner.emit, cfg.Watcher)
		if err != nil {
			logger.Warn("voices watcher disabled", "error", err)
		} else {
			e.watcher = w
		}
	}

	return e, nil
}

// Name implements speech.Engine.
func (e *Piper) Name() string { return PiperName }

// ListVoices implements speech.Engine. It rescans the voice directories.
func (e *Piper) ListVoices(ctx context.Context) ([]speech.Voice, error) {
	models, err := scanPiperModels(ctx, e.dirs, e.sampleRate, e.logger)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.models = make(map[string]piperModel, len(models))
	for _, m := range models {
		e.models[m.voice.ID] = m
	}
	e.mu.Unlock()

	voices := make([]speech.Voice, len(models))
	for i, m := range models {
		voices[i] = m.voice
	}
	e.logger.Debug("listed voices", "count", len(voices), "dirs", len(e.dirs))
	return voices, nil
}

// Speak implements speech.Engine.
func (e *Piper) Speak(req speech.Request) error {
	if n := utf8.RuneCountInString(req.Text); n > piperMaxText {
		return speech.NewEngineError(speech.ErrorCodeInvalidInput,
			fmt.Sprintf("text too long: %d characters (max %d)", n, piperMaxText), req.ID, nil)
	}

	m, ok := e.model(req.VoiceID())
	if !ok {
		return speech.NewEngineError(speech.ErrorCodeInvalidInput, "no piper model for voice", req.ID,
			fmt.Errorf("%w: %q", speech.ErrVoiceNotFound, req.VoiceID()))
	}
	if req.Pitch != speech.DefaultPitch {
		e.logger.Debug("pitch is not supported, ignoring", "pitch", req.Pitch)
	}

	args := piperArgs(m, req.Rate)
	text := req.Text

	return e.runner.start(req.ID, func(ctx context.Context, started func()) error {
		var raw bytes.Buffer
		if err := runCommand(ctx, e.binary, args, strings.NewReader(text), &raw, nil); err != nil {
			return err
		}
		if raw.Len() == 0 {
			return errors.New("piper produced no audio output")
		}

		pcm, err := audio.Resample(raw.Bytes(), m.sampleRate, e.player.SampleRate(), 1)
		if err != nil {
			return fmt.Errorf("resample: %w", err)
		}

		done, err := e.play(ctx, pcm)
		if err != nil {
			return err
		}
		started()

		select {
		case <-done:
			return nil
		case <-ctx.Done():
			e.stop(done)
			<-done
			return ctx.Err()
		}
	})
}

func (e *Piper) play(ctx context.Context, pcm []byte) (<-chan struct{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done, err := e.player.Play(pcm)
	if err != nil {
		return nil, fmt.Errorf("play: %w", err)
	}
	e.playing = done
	return done, nil
}

// stop halts playback if done still belongs to the current stream.
func (e *Piper) stop(done <-chan struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.playing != done {
		return
	}
	e.player.Stop()
	e.playing = nil
}

// CancelActive implements speech.Engine.
func (e *Piper) CancelActive() error {
	e.runner.cancelActive()
	return nil
}

// Events implements speech.Engine.
func (e *Piper) Events() <-chan speech.Event { return e.runner.events }

// Close implements speech.Engine.
func (e *Piper) Close() error {
	if !e.runner.close() {
		return nil
	}
	// The watcher emits through the runner, which no longer blocks.
	var err error
	if e.watcher != nil {
		err = e.watcher.Close()
	}
	e.runner.closeEvents()
	if e.closer != nil {
		if cerr := e.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (e *Piper) model(id string) (piperModel, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.models[id]
	return m, ok
}

func piperArgs(m piperModel, rate float64) []string {
	lengthScale := 1.0 / speech.ClampRate(rate)
	return []string{
		"--model", m.path,
		"--output-raw",
		"--length-scale", strconv.FormatFloat(lengthScale, 'f', 2, 64),
	}
}

// scanPiperModels finds *.onnx models in dirs. Missing directories are
// skipped. The first model with a given name wins.
func scanPiperModels(ctx context.Context, dirs []string, sampleRate int, logger *log.Logger) ([]piperModel, error) {
	var models []piperModel
	seen := make(map[string]bool)

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read voices dir: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".onnx" {
				continue
			}
			id := strings.TrimSuffix(entry.Name(), ".onnx")
			if seen[id] {
				continue
			}
			seen[id] = true

			path := filepath.Join(dir, entry.Name())
			m := piperModel{
				voice:      speech.Voice{ID: id, Name: id},
				path:       path,
				sampleRate: sampleRate,
			}
			if cfg, err := readPiperModelConfig(path + ".json"); err != nil {
				logger.Debug("model config unreadable", "model", path, "error", err)
			} else {
				cfg.apply(&m)
			}
			models = append(models, m)
		}
	}

	sort.Slice(models, func(i, j int) bool { return models[i].voice.ID < models[j].voice.ID })
	return models, nil
}

func readPiperModelConfig(path string) (piperModelConfig, error) {
	var cfg piperModelConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

func (c piperModelConfig) apply(m *piperModel) {
	switch {
	case c.Language.Code != "":
		m.voice.Language = strings.ReplaceAll(c.Language.Code, "_", "-")
	case c.Espeak.Voice != "":
		m.voice.Language = c.Espeak.Voice
	}
	if c.Dataset != "" {
		m.voice.Name = strings.TrimSpace(c.Dataset + " " + c.Audio.Quality)
	}
	if c.Audio.SampleRate > 0 {
		m.sampleRate = c.Audio.SampleRate
	}
}
