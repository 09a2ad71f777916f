// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package login

// State is a step of the login state machine.
type State int

// Login states. Success and Failed are terminal.
const (
	StateStart State = iota
	StateAwaitingResponse
	StateQueued
	StateAwaitingTwoFactor
	StateSuccess
	StateFailed
)

var stateNames = map[State]string{
	StateStart:             "start",
	StateAwaitingResponse:  "awaiting_response",
	StateQueued:            "queued",
	StateAwaitingTwoFactor: "awaiting_two_factor",
	StateSuccess:           "success",
	StateFailed:            "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

// transitions lists the legal moves out of every non-terminal state.
var transitions = map[State][]State{
	StateStart:             {StateAwaitingResponse},
	StateAwaitingResponse:  {StateSuccess, StateFailed, StateQueued, StateAwaitingTwoFactor},
	StateQueued:            {StateAwaitingResponse, StateFailed},
	StateAwaitingTwoFactor: {StateAwaitingResponse, StateFailed},
}

// CanTransition reports whether the machine may move from s to next.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
