package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// ErrClosed is returned when playing through a closed player.
var ErrClosed = errors.New("audio player closed")

// PlayerState represents the current state of the player.
type PlayerState int32

const (
	StateStopped PlayerState = iota
	StatePlaying
	StateClosed
)

func (s PlayerState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("PlayerState(%d)", int32(s))
	}
}

// pollInterval is how often a playing stream is checked for drain.
const pollInterval = 20 * time.Millisecond

// Player plays one PCM buffer at a time.
type Player struct {
	context *oto.Context
	logger  *log.Logger

	sampleRate int
	channels   int

	state atomic.Int32

	mu     sync.Mutex
	stream *stream
}

// stream keeps the PCM slice referenced while oto reads from it.
type stream struct {
	data   []byte
	player *oto.Player
	done   chan struct{}
	stop   chan struct{}
	once   sync.Once
}

func (s *stream) halt() {
	s.once.Do(func() { close(s.stop) })
}

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	SampleRate int // 44100 or 48000 Hz only
	Channels   int // 1 = mono, 2 = stereo
	BitDepth   int // 16 bits per sample
	BufferSize int // bytes
}

// DefaultPlayerConfig returns the default player configuration.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: 44100,
		Channels:   1,
		BitDepth:   16,
		BufferSize: 4096,
	}
}

// NewPlayer opens the audio device. Only one player may exist per process.
func NewPlayer(config PlayerConfig) (*Player, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	op := &oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   Duration(config.BufferSize, config.SampleRate, config.Channels),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	p := &Player{
		context:    ctx,
		logger:     log.Default().WithPrefix("audio"),
		sampleRate: config.SampleRate,
		channels:   config.Channels,
	}
	p.state.Store(int32(StateStopped))
	return p, nil
}

func validateConfig(config PlayerConfig) error {
	// oto is only reliable at these rates across backends.
	if config.SampleRate != 44100 && config.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", config.SampleRate)
	}
	if config.Channels != 1 && config.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", config.Channels)
	}
	if config.BitDepth != 16 {
		return fmt.Errorf("bit depth must be 16, got %d", config.BitDepth)
	}
	if config.BufferSize <= 0 {
		return errors.New("buffer size must be positive")
	}
	return nil
}

// SampleRate returns the device sample rate.
func (p *Player) SampleRate() int { return p.sampleRate }

// Channels returns the device channel count.
func (p *Player) Channels() int { return p.channels }

// Play starts playing pcm and returns a channel that is closed once the
// audio drains or Stop is called. Anything already playing is stopped.
func (p *Player) Play(pcm []byte) (<-chan struct{}, error) {
	if PlayerState(p.state.Load()) == StateClosed {
		return nil, ErrClosed
	}
	if err := Validate(pcm, p.channels); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	s := &stream{
		data: pcm,
		done: make(chan struct{}),
		stop: make(chan struct{}),
	}
	s.player = p.context.NewPlayer(bytes.NewReader(s.data))
	s.player.Play()

	p.stream = s
	p.state.Store(int32(StatePlaying))
	p.logger.Debug("playback started", "bytes", len(pcm), "duration", Duration(len(pcm), p.sampleRate, p.channels))

	go p.watch(s)

	return s.done, nil
}

func (p *Player) watch(s *stream) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-s.stop:
			break loop
		case <-ticker.C:
			if !s.player.IsPlaying() {
				break loop
			}
		}
	}

	s.player.Pause()
	if err := s.player.Close(); err != nil {
		p.logger.Debug("closing oto player", "error", err)
	}

	p.mu.Lock()
	if p.stream == s {
		p.stream = nil
		if PlayerState(p.state.Load()) == StatePlaying {
			p.state.Store(int32(StateStopped))
		}
	}
	p.mu.Unlock()

	close(s.done)
}

// Stop halts playback. It is safe to call when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.stream == nil {
		return
	}
	p.stream.halt()
	p.stream = nil
	if PlayerState(p.state.Load()) == StatePlaying {
		p.state.Store(int32(StateStopped))
	}
}

// IsPlaying reports whether audio is currently playing.
func (p *Player) IsPlaying() bool {
	return PlayerState(p.state.Load()) == StatePlaying
}

// State returns the player state.
func (p *Player) State() PlayerState {
	return PlayerState(p.state.Load())
}

// Close stops playback. The oto context itself lives until process exit.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.state.Store(int32(StateClosed))
	return nil
}
