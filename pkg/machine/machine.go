package machine

import (
	"errors"
	"fmt"
	"slices"
)

type State interface {
	~string
}

// Allowable maps where a from state is allowed to transition to
type Allowable[S State] struct {
	from S
	to   []S
}

// StateMachine guards the transitions of a single record's state
type StateMachine[S State] struct {
	current     S
	transitions []Allowable[S]
}

var (
	ErrInvalidTransition = errors.New("invalid state transition")
)

// TransitionBuilder helps in creating a from-to relationship for state transitions
type TransitionBuilder[S State] struct {
	transition Allowable[S]
}

func New[S State](current S, transitions ...Allowable[S]) *StateMachine[S] {
	return &StateMachine[S]{current: current, transitions: transitions}
}

// From initializes a transition from a specific state
func From[S State](from S) *TransitionBuilder[S] {
	return &TransitionBuilder[S]{transition: Allowable[S]{from: from}}
}

// To sets the possible destination states and returns the configured transition
func (tb *TransitionBuilder[S]) To(to ...S) Allowable[S] {
	tb.transition.to = to
	return tb.transition
}

// Next lists the states reachable from the current state
func (m *StateMachine[S]) Next() []S {
	var next []S
	for _, t := range m.transitions {
		if t.from != m.current {
			continue
		}
		for _, s := range t.to {
			if !slices.Contains(next, s) {
				next = append(next, s)
			}
		}
	}
	return next
}

// ToState returns an error wrapping ErrInvalidTransition if the current state can't move to s
func (m *StateMachine[S]) ToState(s S) error {
	if slices.Contains(m.Next(), s) {
		return nil
	}

	return fmt.Errorf("%w: %q to %q", ErrInvalidTransition, m.current, s)
}
