package match

import (
	"context"
	"fmt"
	"time"
)

// FlowState is a step of the search wizard.
type FlowState string

// search flow states, cycling INPUT -> LOADING -> RESULTS -> INPUT
const (
	StateInput   FlowState = "INPUT"
	StateLoading FlowState = "LOADING"
	StateResults FlowState = "RESULTS"
)

// Flow is the search wizard state machine. It starts in StateInput and
// cycles; there is no terminal state. The optional delay simulates search
// latency before the transition to StateResults, a UI affordance the caller
// may disable by leaving it at zero.
type Flow struct {
	state FlowState
	delay time.Duration
}

// NewFlow makes a flow in StateInput with the given artificial result delay.
func NewFlow(delay time.Duration) *Flow {
	return &Flow{state: StateInput, delay: delay}
}

// State returns the current state.
func (f *Flow) State() FlowState { return f.state }

// Begin moves INPUT -> LOADING. It must only be called after the caller has
// validated the search input.
func (f *Flow) Begin() error {
	if f.state != StateInput {
		return fmt.Errorf("cannot begin search from state %s", f.state)
	}
	f.state = StateLoading
	return nil
}

// Complete moves LOADING -> RESULTS, waiting out the artificial delay first.
// The wait is cut short when ctx is cancelled, but the transition still
// happens so the flow never sticks in LOADING.
func (f *Flow) Complete(ctx context.Context) error {
	if f.state != StateLoading {
		return fmt.Errorf("cannot complete search from state %s", f.state)
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}
	f.state = StateResults
	return nil
}

// Reset moves RESULTS -> INPUT for a new search.
func (f *Flow) Reset() error {
	if f.state != StateResults {
		return fmt.Errorf("cannot reset search from state %s", f.state)
	}
	f.state = StateInput
	return nil
}
