package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateMachine(t *testing.T) {
	type TestState string

	const (
		StateUnmatched TestState = "unmatched"
		StatePending   TestState = "pending"
		StateMatched   TestState = "matched"
	)

	transitions := []Allowable[TestState]{
		From(StateUnmatched).To(StatePending, StateMatched),
		From(StatePending).To(StateUnmatched, StateMatched),
		From(StateMatched).To(StatePending),
	}

	t.Run("valid transition", func(t *testing.T) {
		machine := New(StateUnmatched, transitions...)

		err := machine.ToState(StatePending)
		assert.Nil(t, err)
		assert.Equal(t, StateUnmatched, machine.current)
	})

	t.Run("invalid transition", func(t *testing.T) {
		machine := New(StateMatched, transitions...)

		err := machine.ToState(StateUnmatched)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Contains(t, err.Error(), `"matched" to "unmatched"`)
	})

	t.Run("next states", func(t *testing.T) {
		machine := New(StatePending, transitions...)
		assert.Equal(t, []TestState{StateUnmatched, StateMatched}, machine.Next())
	})

	t.Run("duplicate from entries are merged", func(t *testing.T) {
		machine := New(StatePending,
			From(StatePending).To(StateMatched),
			From(StatePending).To(StateMatched, StateUnmatched),
		)
		assert.Equal(t, []TestState{StateMatched, StateUnmatched}, machine.Next())
	})

	t.Run("unknown state has no transitions", func(t *testing.T) {
		machine := New(TestState("other"), transitions...)
		assert.Empty(t, machine.Next())
		assert.ErrorIs(t, machine.ToState(StatePending), ErrInvalidTransition)
	})
}
