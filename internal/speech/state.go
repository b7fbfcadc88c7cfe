package speech

// State is the lifecycle state of the controller.
type State int

const (
	// StateIdle means no request is owned by the engine.
	StateIdle State = iota
	// StateSpeaking means exactly one request has been handed to the engine.
	StateSpeaking
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// stateMachine guards lifecycle transitions.
type stateMachine struct {
	current     State
	transitions map[State][]State
	onEnter     map[State]func(from State)
}

func newStateMachine() *stateMachine {
	return &stateMachine{
		current: StateIdle,
		transitions: map[State][]State{
			StateIdle: {StateSpeaking},
			// Speaking -> Speaking is the implicit stop-then-start of a
			// superseding request.
			StateSpeaking: {StateIdle, StateSpeaking},
		},
		onEnter: make(map[State]func(from State)),
	}
}

// Transition moves to the given state and reports whether it was allowed.
func (sm *stateMachine) Transition(to State) bool {
	valid := false
	for _, state := range sm.transitions[sm.current] {
		if state == to {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	from := sm.current
	sm.current = to

	if fn, ok := sm.onEnter[to]; ok && fn != nil {
		fn(from)
	}
	return true
}

// Current returns the current state.
func (sm *stateMachine) Current() State {
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *stateMachine) OnEnter(state State, fn func(from State)) {
	sm.onEnter[state] = fn
}
