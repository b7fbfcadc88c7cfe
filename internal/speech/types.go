package speech

import "fmt"

// Parameter bounds shared by pitch and rate.
const (
	MinPitch     = 0.5
	MaxPitch     = 2.0
	DefaultPitch = 1.0

	MinRate     = 0.5
	MaxRate     = 2.0
	DefaultRate = 1.0

	// WordsPerMinute is the average speaking pace used for estimates.
	WordsPerMinute = 150
)

// Voice describes a synthesis voice supplied by the host engine.
type Voice struct {
	ID       string // Opaque identifier passed back to the engine
	Name     string // Human-readable name
	Language string // Language tag as reported by the host (e.g. "en-US")
}

// String returns the voice as shown in selectors, e.g. "Amy (en-US)".
func (v Voice) String() string {
	name := v.Name
	if name == "" {
		name = v.ID
	}
	if v.Language == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, v.Language)
}

// Request is a single utterance handed to an engine.
type Request struct {
	// ID identifies the request. It increases monotonically per controller
	// and is echoed back on every engine event for the request.
	ID uint64

	// Text is the content to speak, as typed by the user.
	Text string

	// Voice is the selected voice, or nil for the platform default.
	Voice *Voice

	// Pitch and Rate are already clamped to [0.5, 2.0].
	Pitch float64
	Rate  float64
}

// VoiceID returns the selected voice identifier or "" for the default.
func (r Request) VoiceID() string {
	if r.Voice == nil {
		return ""
	}
	return r.Voice.ID
}

// EventKind identifies an engine callback.
type EventKind int

const (
	// EventStart reports that audio for a request became audible.
	EventStart EventKind = iota
	// EventEnd reports natural completion (or teardown after cancel).
	EventEnd
	// EventError reports an abnormal completion.
	EventError
	// EventVoicesChanged reports a replaced host voice list.
	EventVoicesChanged
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	case EventVoicesChanged:
		return "voices-changed"
	default:
		return "unknown"
	}
}

// Event is delivered by an engine on its Events channel.
type Event struct {
	Kind      EventKind
	RequestID uint64  // Identity of the request; zero for voice events
	Err       error   // Set for EventError
	Voices    []Voice // Set for EventVoicesChanged
}

// Notice is the single user-facing notification produced for an engine
// failure.
type Notice struct {
	Title       string
	Description string
	RequestID   uint64
	Err         error
}

// Outcome reports what HandleEvent did with an event.
type Outcome int

const (
	// OutcomeApplied means the event changed controller state.
	OutcomeApplied Outcome = iota
	// OutcomeIgnored means the event was informational.
	OutcomeIgnored
	// OutcomeStale means the event belonged to a request that is no
	// longer active and was discarded.
	OutcomeStale
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}
