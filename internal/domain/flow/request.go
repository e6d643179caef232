package flow

import (
	"github.com/siskadev/siska-bot/internal/directory"
	"github.com/siskadev/siska-bot/internal/domain/chat"
)

// PhotoCount is the number of evidence photos an overtime report requires,
// collected in the fixed order: work result, on-site, approval screenshot.
const PhotoCount = 3

// Request is the per-participant state of an internal request conversation.
// A participant holds at most one Request at a time; re-entering the menu
// silently replaces an unfinished one.
type Request struct {
	Step       Step
	Kind       Kind
	Reason     string
	StartTime  string
	EndTime    string
	Employee   *directory.Employee
	Supervisor *directory.Employee
	Photos     []string // stored media paths, in collection order
}

// PhotosRemaining reports how many photos are still missing
func (r Request) PhotosRemaining() int {
	remaining := PhotoCount - len(r.Photos)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Helpdesk is the per-participant state of a helpdesk conversation. It is
// mutually exclusive with Request for any participant.
type Helpdesk struct {
	Step     HelpdeskStep
	Identity string // free-text identity given at the first step
}

// PendingApproval is the context snapshot bound to one approval message sent
// to a supervisor, keyed elsewhere by that message's identity. It is
// consumed exactly once, the instant a decision is recognized.
type PendingApproval struct {
	Requester  chat.ParticipantID
	Kind       Kind
	Employee   *directory.Employee
	Supervisor *directory.Employee
	Reason     string
	StartTime  string
	EndTime    string
}
