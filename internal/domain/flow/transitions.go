package flow

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a step change is not allowed
var ErrInvalidTransition = errors.New("invalid step transition")

// requestTransitions is the transition table of the internal request
// conversation. StepMenu is additionally reachable from every step because
// typing "menu" silently discards an unfinished flow.
var requestTransitions = map[Step][]Step{
	StepMenu:             {StepAwaitingReason},
	StepAwaitingReason:   {StepAwaitingStart, StepAwaitingDecision},
	StepAwaitingStart:    {StepAwaitingEnd},
	StepAwaitingEnd:      {StepAwaitingDecision},
	StepAwaitingDecision: {StepAwaitingPhoto, StepDone},
	StepAwaitingPhoto:    {StepDone},
}

// helpdeskTransitions is the transition table of the helpdesk conversation
var helpdeskTransitions = map[HelpdeskStep][]HelpdeskStep{
	HelpdeskAwaitIdentity: {HelpdeskAwaitQuestion},
	HelpdeskAwaitQuestion: {HelpdeskAwaitAnswer},
	HelpdeskAwaitAnswer:   {HelpdeskFollowup},
	HelpdeskFollowup:      {HelpdeskAwaitQuestion, HelpdeskAwaitSchedule},
}

// CanTransition reports whether the request flow may move between two steps
func CanTransition(from, to Step) bool {
	if to == StepMenu {
		return true
	}
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Advance moves the request to the target step, validating the transition
func (r *Request) Advance(to Step) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: unknown step %s", ErrInvalidTransition, to)
	}
	if !CanTransition(r.Step, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Step, to)
	}
	r.Step = to
	return nil
}

// CanTransitionHelpdesk reports whether the helpdesk flow may move between
// two steps
func CanTransitionHelpdesk(from, to HelpdeskStep) bool {
	for _, next := range helpdeskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Advance moves the helpdesk conversation to the target step, validating the
// transition
func (h *Helpdesk) Advance(to HelpdeskStep) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: unknown helpdesk step %s", ErrInvalidTransition, to)
	}
	if !CanTransitionHelpdesk(h.Step, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, h.Step, to)
	}
	h.Step = to
	return nil
}
