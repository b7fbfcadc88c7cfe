package speech

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	noticeTitle       = "Error"
	noticeDescription = "Failed to generate speech. Please try again."
)

// Controller mediates between user intent and a single synthesis engine.
//
// It guarantees that at most one request is owned by the engine at any
// time and that State reflects that. Controller is not safe for concurrent
// use: all methods, including HandleEvent, must be called from one event
// loop, which is how engine callbacks are serialized with user actions.
type Controller struct {
	engine  Engine
	logger  *log.Logger
	notify  func(Notice)
	onState func(from, to State)

	sm      *stateMachine
	seq     uint64
	active  Request
	started bool

	voices    []Voice
	selected  string
	preferred string
	pitch     float64
	rate      float64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for lifecycle diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotifier registers the receiver of user-facing failure notices.
func WithNotifier(fn func(Notice)) Option {
	return func(c *Controller) { c.notify = fn }
}

// WithStateListener registers a callback invoked after every transition.
func WithStateListener(fn func(from, to State)) Option {
	return func(c *Controller) { c.onState = fn }
}

// WithPitch sets the initial pitch.
func WithPitch(v float64) Option {
	return func(c *Controller) { c.pitch = ClampPitch(v) }
}

// WithRate sets the initial rate.
func WithRate(v float64) Option {
	return func(c *Controller) { c.rate = ClampRate(v) }
}

// WithVoice sets the voice to prefer once it shows up in a voice list.
func WithVoice(id string) Option {
	return func(c *Controller) { c.preferred = strings.TrimSpace(id) }
}

// New creates a controller driving the given engine.
func New(engine Engine, opts ...Option) (*Controller, error) {
	if engine == nil {
		return nil, ErrNoEngine
	}

	c := &Controller{
		engine: engine,
		logger: log.Default().WithPrefix("speech"),
		sm:     newStateMachine(),
		pitch:  DefaultPitch,
		rate:   DefaultRate,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.sm.OnEnter(StateIdle, func(from State) { c.entered(from, StateIdle) })
	c.sm.OnEnter(StateSpeaking, func(from State) { c.entered(from, StateSpeaking) })

	return c, nil
}

// LoadVoices queries the engine and replaces the voice set with the result.
// An empty result is a valid transient state; a later voices-changed event
// (or another call) fills the list in.
func (c *Controller) LoadVoices(ctx context.Context) ([]Voice, error) {
	voices, err := c.engine.ListVoices(ctx)
	if err != nil {
		c.logger.Warn("unable to list voices", "engine", c.engine.Name(), "error", err)
		return nil, fmt.Errorf("list voices: %w", err)
	}
	c.SetVoices(voices)
	return c.Voices(), nil
}

// SetVoices replaces the voice set wholesale. When nothing is selected and
// the new set is non-empty, the preferred voice (or else the first one) is
// selected. A selection that vanished from the set is dropped first. While
// speaking the selection is left alone until the controller is idle again.
func (c *Controller) SetVoices(voices []Voice) {
	c.voices = append([]Voice(nil), voices...)
	if !c.Speaking() {
		c.reconcileSelection()
	}
	c.logger.Debug("voices updated", "count", len(c.voices), "selected", c.selected)
}

func (c *Controller) reconcileSelection() {
	if c.selected != "" && c.indexOf(c.selected) < 0 {
		c.logger.Debug("selected voice no longer available", "voice", c.selected)
		c.selected = ""
	}

	if c.selected == "" && len(c.voices) > 0 {
		if c.preferred != "" && c.indexOf(c.preferred) >= 0 {
			c.selected = c.preferred
		} else {
			c.selected = c.voices[0].ID
		}
	}
}

// SelectVoice updates the pending voice selection. It is ignored while
// speaking.
func (c *Controller) SelectVoice(id string) error {
	if c.Speaking() {
		return ErrBusy
	}
	if c.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrVoiceNotFound, id)
	}
	c.selected = id
	return nil
}

// SetPitch clamps and stores the pitch. It is ignored while speaking.
func (c *Controller) SetPitch(v float64) error {
	if c.Speaking() {
		return ErrBusy
	}
	c.pitch = ClampPitch(v)
	return nil
}

// SetRate clamps and stores the rate. It is ignored while speaking.
func (c *Controller) SetRate(v float64) error {
	if c.Speaking() {
		return ErrBusy
	}
	c.rate = ClampRate(v)
	return nil
}

// Speak hands a new request built from the current parameters to the
// engine and returns without waiting for audio. A request already in
// flight is cancelled first.
func (c *Controller) Speak(text string) (Request, error) {
	if strings.TrimSpace(text) == "" {
		return Request{}, ErrEmptyInput
	}

	if c.Speaking() {
		c.logger.Debug("superseding active request", "id", c.active.ID)
		c.cancelActive()
	}

	c.seq++
	req := Request{
		ID:    c.seq,
		Text:  text,
		Pitch: c.pitch,
		Rate:  c.rate,
	}
	if v, ok := c.Selected(); ok {
		req.Voice = &v
	}

	c.active = req
	c.started = false
	c.sm.Transition(StateSpeaking)

	if err := c.engine.Speak(req); err != nil {
		ee := NewEngineError(ErrorCodeEngineFailure, "engine rejected request", req.ID, err)
		c.fail(ee)
		return req, ee
	}

	c.logger.Debug("request issued",
		"id", req.ID,
		"voice", req.VoiceID(),
		"pitch", req.Pitch,
		"rate", req.Rate,
		"words", WordCount(req.Text))

	return req, nil
}

// Stop cancels the active request and returns to idle immediately, without
// waiting for the engine to acknowledge. It is a no-op when idle.
func (c *Controller) Stop() {
	if !c.Speaking() {
		return
	}
	c.logger.Debug("stopping request", "id", c.active.ID)
	c.cancelActive()
	c.release()
}

// HandleEvent applies an engine callback. Completion events whose identity
// does not match the active request are discarded.
func (c *Controller) HandleEvent(ev Event) Outcome {
	if ev.Kind == EventVoicesChanged {
		c.SetVoices(ev.Voices)
		return OutcomeApplied
	}

	if !c.Speaking() || ev.RequestID != c.active.ID {
		stale := NewEngineError(ErrorCodeStaleCallback, "callback for inactive request", ev.RequestID, ev.Err)
		c.logger.Debug("discarding callback", "event", ev.Kind, "error", stale)
		return OutcomeStale
	}

	switch ev.Kind {
	case EventStart:
		c.started = true
		return OutcomeIgnored
	case EventEnd:
		c.release()
		return OutcomeApplied
	case EventError:
		c.fail(NewEngineError(ErrorCodeEngineFailure, "speech synthesis failed", ev.RequestID, ev.Err))
		return OutcomeApplied
	default:
		c.logger.Warn("unknown engine event", "kind", ev.Kind)
		return OutcomeIgnored
	}
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	return c.sm.Current()
}

// Speaking reports whether a request is active.
func (c *Controller) Speaking() bool {
	return c.sm.Current() == StateSpeaking
}

// Active returns the active request, if any.
func (c *Controller) Active() (Request, bool) {
	if !c.Speaking() {
		return Request{}, false
	}
	return c.active, true
}

// Started reports whether the engine confirmed audible start of the active
// request.
func (c *Controller) Started() bool {
	return c.Speaking() && c.started
}

// Voices returns a copy of the last known voice set.
func (c *Controller) Voices() []Voice {
	return append([]Voice(nil), c.voices...)
}

// Selected returns the selected voice, if any.
func (c *Controller) Selected() (Voice, bool) {
	if i := c.indexOf(c.selected); i >= 0 {
		return c.voices[i], true
	}
	return Voice{}, false
}

// Pitch returns the stored pitch.
func (c *Controller) Pitch() float64 { return c.pitch }

// Rate returns the stored rate.
func (c *Controller) Rate() float64 { return c.rate }

// Engine returns the engine driven by the controller.
func (c *Controller) Engine() Engine { return c.engine }

// CanSpeak reports whether a speak action makes sense for text: it is not
// blank, nothing is speaking and at least one voice is known.
func (c *Controller) CanSpeak(text string) bool {
	return strings.TrimSpace(text) != "" && !c.Speaking() && len(c.voices) > 0
}

// Estimate returns the estimated duration of text at the current rate.
func (c *Controller) Estimate(text string) float64 {
	return EstimateDuration(text, c.rate)
}

func (c *Controller) cancelActive() {
	if err := c.engine.CancelActive(); err != nil {
		// The request is released regardless; a late callback is stale.
		c.logger.Warn("engine cancel failed", "id", c.active.ID, "error", err)
	}
}

func (c *Controller) release() {
	c.active = Request{}
	c.started = false
	c.sm.Transition(StateIdle)
	c.reconcileSelection()
}

func (c *Controller) fail(err *EngineError) {
	c.logger.Error("speech failed", "id", err.RequestID, "error", err)
	c.release()
	if c.notify != nil {
		c.notify(Notice{
			Title:       noticeTitle,
			Description: noticeDescription,
			RequestID:   err.RequestID,
			Err:         err,
		})
	}
}

func (c *Controller) entered(from, to State) {
	c.logger.Debug("state transition", "from", from, "to", to)
	if c.onState != nil {
		c.onState(from, to)
	}
}

func (c *Controller) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, v := range c.voices {
		if v.ID == id {
			return i
		}
	}
	return -1
}
