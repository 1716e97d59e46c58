package event

import "codestudio/core/state"

// StudioStateChanged is published when the studio's work state changes.
// The presentation layer uses it to enable/disable action buttons.
type StudioStateChanged struct {
	OldState state.StudioState
	NewState state.StudioState
}

func NewStudioStateChanged(oldState, newState state.StudioState) *StudioStateChanged {
	return &StudioStateChanged{
		OldState: oldState,
		NewState: newState,
	}
}

func (e *StudioStateChanged) EventName() string {
	return "StudioStateChanged"
}

// HistoryUpdated is published after the history store changed, whether by
// appending new records or by deleting through the panel.
type HistoryUpdated struct {
	Count int // Total records after the update
}

func NewHistoryUpdated(count int) *HistoryUpdated {
	return &HistoryUpdated{Count: count}
}

func (e *HistoryUpdated) EventName() string {
	return "HistoryUpdated"
}
