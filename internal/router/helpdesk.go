package router

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/siskadev/siska-bot/internal/domain/chat"
	"github.com/siskadev/siska-bot/internal/domain/flow"
)

// handleHelpdesk advances the helpdesk conversation one step. External
// participants enter here on first contact; internal participants arrive via
// menu option 3 with the identity step already skipped.
func (r *Router) handleHelpdesk(ctx context.Context, msg chat.Message) {
	hd, ok := r.stores.Helpdesks.Get(msg.From)
	if !ok {
		r.stores.OpenHelpdesk(msg.From, flow.Helpdesk{Step: flow.HelpdeskAwaitIdentity})
		r.notifier.Send(msg.From, msgHelpdeskWelcome)
		return
	}

	switch hd.Step {
	case flow.HelpdeskAwaitIdentity:
		hd.Identity = strings.TrimSpace(msg.Body)
		if !r.advanceHelpdesk(&hd, flow.HelpdeskAwaitQuestion) {
			return
		}
		r.stores.Helpdesks.Put(msg.From, hd)
		r.notifier.Send(msg.From, msgHelpdeskAskQuestion)

	case flow.HelpdeskAwaitQuestion:
		r.relayQuestion(ctx, msg, hd)

	case flow.HelpdeskAwaitAnswer:
		// Waiting on the group; stay silent until the quoted reply arrives.

	case flow.HelpdeskFollowup:
		r.handleFollowup(msg, hd)

	case flow.HelpdeskAwaitSchedule:
		r.stores.Helpdesks.Delete(msg.From)
		r.notifier.Send(msg.From, msgHelpdeskScheduleAck)
		r.sendToGroup(msgGroupSchedule(msg.From, msg.Body))
	}
}

// relayQuestion forwards a question to the helpdesk group as a question
// message followed by a tracked instruction message. The pending-forward
// entry is keyed by the instruction's identity. The pair must arrive in
// order with nothing of another flow between them, so both sends run on one
// goroutine under the group send lock.
func (r *Router) relayQuestion(ctx context.Context, msg chat.Message, hd flow.Helpdesk) {
	identity := hd.Identity
	if identity == "" {
		identity = msg.NotifyName
	}
	if identity == "" {
		identity = "User"
	}

	question := msgGroupQuestion(identity, msg.From, msg.Body)
	instruction := msgGroupInstruction(msg.From)

	if !r.advanceHelpdesk(&hd, flow.HelpdeskAwaitAnswer) {
		return
	}
	r.stores.Helpdesks.Put(msg.From, hd)

	sender := msg.From
	go func() {
		ctx := context.Background()
		r.groupMu.Lock()
		defer r.groupMu.Unlock()
		if err := r.notifier.SendTyped(ctx, r.cfg.HelpdeskGroupID, question); err != nil {
			r.logger.Error("Failed to forward question to helpdesk group",
				zap.String("from", sender.String()),
				zap.Error(err))
			return
		}
		msgID, err := r.notifier.SendTracked(ctx, r.cfg.HelpdeskGroupID, instruction)
		if err != nil {
			r.logger.Error("Failed to post helpdesk instruction",
				zap.String("from", sender.String()),
				zap.Error(err))
			return
		}
		r.stores.Forwards.Put(msgID, sender)
	}()

	r.notifier.Send(msg.From, msgHelpdeskForwarded)
}

// handleFollowup branches on the user's verdict after an answer was relayed
func (r *Router) handleFollowup(msg chat.Message, hd flow.Helpdesk) {
	switch t := normalize(msg.Body); {
	case strings.Contains(t, "selesai"):
		r.stores.Helpdesks.Delete(msg.From)
		r.notifier.Send(msg.From, msgHelpdeskDone)
	case t == "1":
		if !r.advanceHelpdesk(&hd, flow.HelpdeskAwaitQuestion) {
			return
		}
		r.stores.Helpdesks.Put(msg.From, hd)
		r.notifier.Send(msg.From, msgHelpdeskNextQuestion)
	case t == "2":
		if !r.advanceHelpdesk(&hd, flow.HelpdeskAwaitSchedule) {
			return
		}
		r.stores.Helpdesks.Put(msg.From, hd)
		r.notifier.Send(msg.From, msgHelpdeskAskSchedule)
	default:
		r.notifier.Send(msg.From, msgHelpdeskInvalidChoice)
	}
}
