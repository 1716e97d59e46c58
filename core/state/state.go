// Package state defines the studio work-state machine.
package state

import "fmt"

// StudioState represents the state of the studio worker.
// The studio executes one operation at a time; the state names the
// operation currently in flight.
type StudioState int

const (
	// StateIdle indicates the studio is ready to accept a command.
	StateIdle StudioState = iota
	// StateGenerating indicates a code image is being rendered.
	StateGenerating
	// StateSaving indicates the held image is being written to disk.
	StateSaving
	// StateLoading indicates a scan image is being read from disk.
	StateLoading
	// StateScanning indicates symbol detection is running.
	StateScanning
	// StateShuttingDown indicates the studio is draining and stopping.
	StateShuttingDown
	// StateStopped indicates the studio has terminated.
	StateStopped
)

// String returns the string representation of the state.
func (s StudioState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateGenerating:
		return "Generating"
	case StateSaving:
		return "Saving"
	case StateLoading:
		return "Loading"
	case StateScanning:
		return "Scanning"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateStopped:
		return "Stopped"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// validTransitions defines the allowed state transitions.
// Key is the current state, value is a list of valid target states.
var validTransitions = map[StudioState][]StudioState{
	StateIdle:         {StateGenerating, StateSaving, StateLoading, StateScanning, StateShuttingDown},
	StateGenerating:   {StateIdle, StateShuttingDown},
	StateSaving:       {StateIdle, StateShuttingDown},
	StateLoading:      {StateScanning, StateIdle, StateShuttingDown},
	StateScanning:     {StateIdle, StateShuttingDown},
	StateShuttingDown: {StateStopped},
	StateStopped:      {}, // Terminal state, no transitions allowed
}

// CanTransitionTo checks if transitioning from the current state to the target state is valid.
func (s StudioState) CanTransitionTo(target StudioState) bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// ValidTransitions returns the list of valid target states from the current state.
func (s StudioState) ValidTransitions() []StudioState {
	return validTransitions[s]
}

// IsTerminal returns true if the state is a terminal state (no further transitions).
func (s StudioState) IsTerminal() bool {
	return s == StateStopped
}

// IsBusy returns true while an operation is in flight.
func (s StudioState) IsBusy() bool {
	switch s {
	case StateGenerating, StateSaving, StateLoading, StateScanning:
		return true
	default:
		return false
	}
}

// CanAcceptCommands returns true if the studio can take a new command.
func (s StudioState) CanAcceptCommands() bool {
	return s == StateIdle
}

// TransitionError represents an invalid state transition attempt.
type TransitionError struct {
	From   StudioState
	To     StudioState
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid state transition from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// NewTransitionError creates a new TransitionError.
func NewTransitionError(from, to StudioState, reason string) *TransitionError {
	return &TransitionError{From: from, To: to, Reason: reason}
}
