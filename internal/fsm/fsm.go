// Package fsm defines the voice session state machine.
//
// A single state encodes both the permission tri-state and the engine
// listening/dictating flags so that a stop command and a late engine
// termination can never observe the two halves out of sync.
package fsm

import "fmt"

type State string

type Event string

// Permission is the microphone permission tri-state derived from a State.
type Permission string

const (
	// StateIdle means no permission has been requested yet.
	StateIdle State = "idle"
	// StatePermissionPending means a permission request is in flight.
	StatePermissionPending State = "permission_pending"
	// StateDenied means the user rejected microphone access; terminal until
	// an explicit retry.
	StateDenied State = "denied"
	// StateReady means permission is granted and the engine is stopped.
	StateReady State = "ready"
	// StateListening means the engine is running but output is discarded.
	StateListening State = "listening"
	// StateDictating means the engine is running and final results are routed
	// into the document.
	StateDictating State = "dictating"
)

const (
	EventRequest    Event = "request"
	EventGrant      Event = "grant"
	EventDeny       Event = "deny"
	EventMicOn      Event = "mic_on"
	EventMicOff     Event = "mic_off"
	EventActivate   Event = "activate"
	EventDeactivate Event = "deactivate"
)

const (
	PermissionUnknown Permission = "unknown"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Listening reports whether the engine is running in this state.
func (s State) Listening() bool {
	return s == StateListening || s == StateDictating
}

// Activated reports whether engine output is routed into the document.
func (s State) Activated() bool {
	return s == StateDictating
}

// Permission derives the permission tri-state.
func (s State) Permission() Permission {
	switch s {
	case StateReady, StateListening, StateDictating:
		return PermissionGranted
	case StateDenied:
		return PermissionDenied
	default:
		return PermissionUnknown
	}
}

func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle:
		if event == EventRequest {
			return StatePermissionPending, nil
		}
		return current, invalidTransition(current, event)
	case StatePermissionPending:
		switch event {
		case EventGrant:
			return StateReady, nil
		case EventDeny:
			return StateDenied, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateDenied:
		if event == EventRequest {
			return StatePermissionPending, nil
		}
		return current, invalidTransition(current, event)
	case StateReady:
		if event == EventMicOn {
			return StateListening, nil
		}
		return current, invalidTransition(current, event)
	case StateListening:
		switch event {
		case EventMicOff:
			return StateReady, nil
		case EventActivate:
			return StateDictating, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateDictating:
		switch event {
		case EventMicOff:
			return StateReady, nil
		case EventDeactivate:
			return StateListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
