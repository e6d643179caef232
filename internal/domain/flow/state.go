package flow

// Step represents a position in the internal request conversation
type Step string

const (
	StepMenu             Step = "MENU"
	StepAwaitingReason   Step = "AWAITING_REASON"
	StepAwaitingStart    Step = "AWAITING_START_TIME"
	StepAwaitingEnd      Step = "AWAITING_END_TIME"
	StepAwaitingDecision Step = "AWAITING_DECISION"
	StepAwaitingPhoto    Step = "AWAITING_PHOTO"
	StepDone             Step = "DONE"
)

var validSteps = map[Step]bool{
	StepMenu:             true,
	StepAwaitingReason:   true,
	StepAwaitingStart:    true,
	StepAwaitingEnd:      true,
	StepAwaitingDecision: true,
	StepAwaitingPhoto:    true,
	StepDone:             true,
}

// String returns the string representation of the step
func (s Step) String() string {
	return string(s)
}

// IsValid returns true if the step is a known request flow step
func (s Step) IsValid() bool {
	return validSteps[s]
}

// HelpdeskStep represents a position in the helpdesk conversation
type HelpdeskStep string

const (
	HelpdeskAwaitIdentity HelpdeskStep = "AWAIT_IDENTITY"
	HelpdeskAwaitQuestion HelpdeskStep = "AWAIT_QUESTION"
	HelpdeskAwaitAnswer   HelpdeskStep = "AWAIT_ANSWER"
	HelpdeskFollowup      HelpdeskStep = "FOLLOWUP"
	HelpdeskAwaitSchedule HelpdeskStep = "AWAIT_SCHEDULE"
)

var validHelpdeskSteps = map[HelpdeskStep]bool{
	HelpdeskAwaitIdentity: true,
	HelpdeskAwaitQuestion: true,
	HelpdeskAwaitAnswer:   true,
	HelpdeskFollowup:      true,
	HelpdeskAwaitSchedule: true,
}

// String returns the string representation of the helpdesk step
func (s HelpdeskStep) String() string {
	return string(s)
}

// IsValid returns true if the step is a known helpdesk step
func (s HelpdeskStep) IsValid() bool {
	return validHelpdeskSteps[s]
}

// Kind is the type of internal request being made
type Kind string

const (
	KindOvertime Kind = "Lembur"
	KindLeave    Kind = "Cuti"
)

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}
