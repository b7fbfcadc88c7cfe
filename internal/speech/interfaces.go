package speech

import "context"

// Engine is the host speech synthesis capability consumed by the controller.
//
// Engines do their work outside the caller's flow of control and report
// back on the Events channel. For any one request, events arrive in the
// order start, then end or error. Engines do not queue: a second Speak
// interrupts whatever the first one is doing.
type Engine interface {
	// Name returns the engine name (e.g. "espeak", "piper").
	Name() string

	// ListVoices returns the voices currently available. An empty list is
	// valid; hosts often load voices lazily.
	ListVoices(ctx context.Context) ([]Voice, error)

	// Speak hands a request to the engine and returns immediately.
	Speak(req Request) error

	// CancelActive tears down the in-flight request, if any.
	CancelActive() error

	// Events delivers start, end, error and voices-changed notifications.
	Events() <-chan Event

	// Close releases any resources held by the engine.
	Close() error
}
