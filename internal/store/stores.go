package store

import (
	"github.com/siskadev/siska-bot/internal/domain/chat"
	"github.com/siskadev/siska-bot/internal/domain/flow"
)

// Stores bundles the four shared state tables of the orchestrator:
// per-participant request and helpdesk conversations plus the two
// correlation tables keyed by outbound message identity. A participant may
// hold a request flow or a helpdesk flow, never both.
type Stores struct {
	Requests  *Store[chat.ParticipantID, flow.Request]
	Helpdesks *Store[chat.ParticipantID, flow.Helpdesk]
	Approvals *Store[string, flow.PendingApproval]
	Forwards  *Store[string, chat.ParticipantID]
}

// NewStores creates the four empty state tables
func NewStores() *Stores {
	return &Stores{
		Requests:  New[chat.ParticipantID, flow.Request](),
		Helpdesks: New[chat.ParticipantID, flow.Helpdesk](),
		Approvals: New[string, flow.PendingApproval](),
		Forwards:  New[string, chat.ParticipantID](),
	}
}

// OpenHelpdesk replaces any request flow with a helpdesk conversation,
// keeping the two domains mutually exclusive for the participant.
func (s *Stores) OpenHelpdesk(id chat.ParticipantID, hd flow.Helpdesk) {
	s.Requests.Delete(id)
	s.Helpdesks.Put(id, hd)
}

// OpenRequest replaces any helpdesk conversation with a request flow
func (s *Stores) OpenRequest(id chat.ParticipantID, req flow.Request) {
	s.Helpdesks.Delete(id)
	s.Requests.Put(id, req)
}
