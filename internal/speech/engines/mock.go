package engines

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/voiceover/internal/speech"
)

// MockConfig configures the mock engine.
type MockConfig struct {
	// Voices is the initial voice list; DefaultMockVoices when nil.
	Voices []speech.Voice

	// WordsPerMinute sets the simulated speaking speed at rate 1.0.
	WordsPerMinute float64

	Logger *log.Logger
}

// DefaultMockVoices returns the voices the mock engine starts with.
func DefaultMockVoices() []speech.Voice {
	return []speech.Voice{
		{ID: "mock-en", Name: "Mock English", Language: "en-US"},
		{ID: "mock-de", Name: "Mock German", Language: "de-DE"},
		{ID: "mock-ja", Name: "Mock Japanese", Language: "ja-JP"},
	}
}

// Mock is a deterministic engine that pretends to speak for as long as the
// text would take at its configured speed.
type Mock struct {
	logger *log.Logger
	runner *runner
	wpm    float64

	mu       sync.Mutex
	voices   []speech.Voice
	listErr  error
	fail     error
	requests []speech.Request
	cancels  int
}

var _ speech.Engine = (*Mock)(nil)

// NewMock creates a mock engine.
func NewMock(cfg MockConfig) *Mock {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("mock")
	}
	voices := cfg.Voices
	if voices == nil {
		voices = DefaultMockVoices()
	}
	wpm := cfg.WordsPerMinute
	if wpm <= 0 {
		wpm = speech.WordsPerMinute
	}

	return &Mock{
		logger: logger,
		runner: newRunner(logger),
		wpm:    wpm,
		voices: append([]speech.Voice(nil), voices...),
	}
}

// Name implements speech.Engine.
func (m *Mock) Name() string { return MockName }

// ListVoices implements speech.Engine.
func (m *Mock) ListVoices(ctx context.Context) ([]speech.Voice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]speech.Voice(nil), m.voices...), nil
}

// Speak implements speech.Engine.
func (m *Mock) Speak(req speech.Request) error {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fail := m.fail
	m.mu.Unlock()

	d := m.Duration(req)
	m.logger.Debug("speaking", "id", req.ID, "voice", req.VoiceID(), "duration", d)

	return m.runner.start(req.ID, func(ctx context.Context, started func()) error {
		started()

		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return fail
		}
	})
}

// Duration returns how long req is simulated to take.
func (m *Mock) Duration(req speech.Request) time.Duration {
	words := float64(speech.WordCount(req.Text))
	minutes := words / m.wpm / speech.ClampRate(req.Rate)
	return time.Duration(minutes * float64(time.Minute))
}

// CancelActive implements speech.Engine.
func (m *Mock) CancelActive() error {
	m.mu.Lock()
	m.cancels++
	m.mu.Unlock()
	m.runner.cancelActive()
	return nil
}

// Events implements speech.Engine.
func (m *Mock) Events() <-chan speech.Event { return m.runner.events }

// Close implements speech.Engine.
func (m *Mock) Close() error {
	if m.runner.close() {
		m.runner.closeEvents()
	}
	return nil
}

// SetVoices replaces the voice list and announces the change.
func (m *Mock) SetVoices(voices []speech.Voice) {
	m.mu.Lock()
	m.voices = append([]speech.Voice(nil), voices...)
	m.mu.Unlock()
	m.runner.emit(speech.Event{Kind: speech.EventVoicesChanged, Voices: voices})
}

// FailWith makes subsequent utterances end with err; nil restores success.
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// FailListing makes ListVoices return err; nil restores success.
func (m *Mock) FailListing(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// Requests returns the requests handed to Speak so far.
func (m *Mock) Requests() []speech.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]speech.Request(nil), m.requests...)
}

// Cancels returns how many times CancelActive was called.
func (m *Mock) Cancels() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancels
}
