// Package state defines the article lifecycle and its transition table.
//
// Transitions are a total function of (state, action): every pair either
// yields the next state or a *TransitionError naming the rejected move.
package state

import (
	"errors"
	"fmt"
	"strings"
)

// State is an article lifecycle state.
type State string

const (
	Collected  State = "COLLECTED"
	Analyzing  State = "ANALYZING"
	Analyzed   State = "ANALYZED"
	Classified State = "CLASSIFIED"
	Published  State = "PUBLISHED"
	Released   State = "RELEASED"
	Rejected   State = "REJECTED"
)

// States lists every state in lifecycle order.
var States = []State{Collected, Analyzing, Analyzed, Classified, Published, Released, Rejected}

// Action is an operation that moves an article between states.
type Action string

const (
	BeginAnalysis    Action = "begin_analysis"
	Score            Action = "score"
	Classify         Action = "classify"
	Reject           Action = "reject"
	Restore          Action = "restore"
	Publish          Action = "publish"
	Release          Action = "release"
	ResetPublication Action = "reset_publication"
)

var transitions = map[Action]struct {
	from []State
	to   State
}{
	BeginAnalysis:    {from: []State{Collected}, to: Analyzing},
	Score:            {from: []State{Collected, Analyzing}, to: Analyzed},
	Classify:         {from: []State{Analyzed}, to: Classified},
	Reject:           {from: []State{Analyzed, Classified, Published}, to: Rejected},
	Restore:          {from: []State{Rejected}, to: Classified},
	Publish:          {from: []State{Classified}, to: Published},
	Release:          {from: []State{Published}, to: Released},
	ResetPublication: {from: []State{Published, Released}, to: Classified},
}

// ErrIllegalTransition is matched by every *TransitionError.
var ErrIllegalTransition = errors.New("illegal state transition")

// TransitionError reports a rejected (state, action) pair. Target is empty
// for unknown actions.
type TransitionError struct {
	From   State
	Action Action
	Target State
}

func (e *TransitionError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("illegal state transition: unknown action %q from %s", e.Action, e.From)
	}
	return fmt.Sprintf("illegal state transition: cannot %s from %s to %s", e.Action, e.From, e.Target)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// Next returns the state reached by applying action to from.
func Next(from State, action Action) (State, error) {
	t, ok := transitions[action]
	if !ok {
		return from, &TransitionError{From: from, Action: action}
	}
	for _, s := range t.from {
		if s == from {
			return t.to, nil
		}
	}
	return from, &TransitionError{From: from, Action: action, Target: t.to}
}

// Can reports whether action is legal from the given state.
func Can(from State, action Action) bool {
	_, err := Next(from, action)
	return err == nil
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	for _, known := range States {
		if s == known {
			return true
		}
	}
	return false
}

// ParseState parses a state name, ignoring case.
func ParseState(s string) (State, error) {
	st := State(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown state %q", s)
	}
	return st, nil
}

// Publication reports whether s carries an edition assignment.
func (s State) Publication() bool {
	return s == Published || s == Released
}
