// Package router classifies every inbound message against the conversation
// and correlation state and applies exactly one transition. Dispatch is
// expected to be called from a single goroutine (the inbound queue); the
// stores carry their own locks so the admin surface can read them
// concurrently.
package router

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/siskadev/siska-bot/internal/audit"
	"github.com/siskadev/siska-bot/internal/directory"
	"github.com/siskadev/siska-bot/internal/domain/chat"
	"github.com/siskadev/siska-bot/internal/domain/flow"
	"github.com/siskadev/siska-bot/internal/report"
	"github.com/siskadev/siska-bot/internal/store"
)

// directParticipantSuffix is how the network addresses an individual chat
const directParticipantSuffix = "@c.us"

// Notifier delivers outbound messages
type Notifier interface {
	// Send delivers a typed reply without blocking
	Send(to chat.ParticipantID, body string)

	// SendTyped delivers a typed reply, blocking until sent
	SendTyped(ctx context.Context, to chat.ParticipantID, body string) error

	// SendTracked delivers immediately and returns the message identity
	SendTracked(ctx context.Context, to chat.ParticipantID, body string) (string, error)

	// SendFile delivers a document without blocking
	SendFile(to chat.ParticipantID, path, caption string)
}

// MediaFetcher downloads inbound media payloads from the gateway
type MediaFetcher interface {
	DownloadMedia(ctx context.Context, mediaRef string) ([]byte, error)
}

// MediaStore persists downloaded photos
type MediaStore interface {
	SavePhoto(participant string, content []byte) (string, error)
}

// Reporter renders the overtime report
type Reporter interface {
	Generate(ctx context.Context, rc report.Context, photos []string) (string, error)
}

// Recorder appends entries to the audit log
type Recorder interface {
	Record(ctx context.Context, channel string, direction audit.Direction, body string) error
}

// Config holds router configuration
type Config struct {
	HelpdeskGroupID chat.ParticipantID
	LeaveFormURL    string
}

// Router is the conversation orchestrator
type Router struct {
	cfg      Config
	dir      *directory.Directory
	stores   *store.Stores
	notifier Notifier
	media    MediaFetcher
	photos   MediaStore
	reports  Reporter
	recorder Recorder
	logger   *zap.Logger

	// groupMu serializes every send bound for the helpdesk group. The
	// instruction message says "the question above", so nothing may land
	// between a question and its instruction.
	groupMu sync.Mutex
}

// New creates a new router
func New(
	cfg Config,
	dir *directory.Directory,
	stores *store.Stores,
	notifier Notifier,
	media MediaFetcher,
	photos MediaStore,
	reports Reporter,
	recorder Recorder,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:      cfg,
		dir:      dir,
		stores:   stores,
		notifier: notifier,
		media:    media,
		photos:   photos,
		reports:  reports,
		recorder: recorder,
		logger:   logger,
	}
}

// Dispatch applies one inbound message to the state machine. Precedence:
// group traffic, supervisor decisions, photo collection, helpdesk, menu,
// request flow, fallback. Exactly one path runs per message.
func (r *Router) Dispatch(ctx context.Context, msg chat.Message) error {
	if err := r.recorder.Record(ctx, msg.From.String(), audit.DirectionIn, msg.Body); err != nil {
		r.logger.Error("Failed to record inbound message", zap.Error(err))
	}

	r.logger.Info("Inbound message",
		zap.String("from", msg.From.String()),
		zap.Bool("is_group", msg.IsGroup),
		zap.Bool("quoted", msg.HasQuoted()),
		zap.Bool("media", msg.HasMedia()))

	switch msg.Classify() {
	case chat.ClassGroup:
		// 1. Group traffic: only quoted replies to a known helpdesk
		// instruction are processed; everything else from groups is dropped.
		r.handleGroupReply(ctx, msg)
		return nil
	case chat.ClassQuotedDirect:
		// 2. Supervisor decision via quote reply; an unknown quote falls
		// through to the direct-message rules.
		if r.handleDecision(ctx, msg) {
			return nil
		}
	}

	// 3. Photo collection for an approved overtime request
	if req, ok := r.stores.Requests.Get(msg.From); ok && req.Step == flow.StepAwaitingPhoto {
		r.handlePhoto(ctx, msg, req)
		return nil
	}

	// 4. External participants, and anyone inside a helpdesk conversation
	employee := r.dir.FindByPhone(msg.From.Digits())
	_, helpdeskActive := r.stores.Helpdesks.Get(msg.From)
	if employee == nil || helpdeskActive {
		r.handleHelpdesk(ctx, msg)
		return nil
	}

	// 5. Menu display, silently replacing any unfinished request flow
	if _, ok := r.stores.Requests.Get(msg.From); !ok || normalize(msg.Body) == "menu" {
		r.stores.OpenRequest(msg.From, flow.Request{Step: flow.StepMenu, Employee: employee})
		r.notifier.Send(msg.From, msgMainMenu(employee.Name))
		return nil
	}

	// 6. Active request flow
	r.handleRequestFlow(ctx, msg, employee)
	return nil
}

// handleGroupReply resolves a quoted helpdesk instruction back to the
// participant awaiting the answer (rule 1)
func (r *Router) handleGroupReply(ctx context.Context, msg chat.Message) {
	if msg.From != r.cfg.HelpdeskGroupID || !msg.HasQuoted() {
		return
	}

	target, ok := r.stores.Forwards.Take(msg.QuotedID)
	if !ok {
		return
	}

	hd, ok := r.stores.Helpdesks.Get(target)
	if !ok || hd.Advance(flow.HelpdeskFollowup) != nil {
		// The user's flow drifted or vanished while the group deliberated;
		// the answer still takes precedence.
		hd = flow.Helpdesk{Step: flow.HelpdeskFollowup, Identity: hd.Identity}
	}
	r.stores.Helpdesks.Put(target, hd)

	answer := msgHelpdeskAnswer(msg.Body)
	go func() {
		// The answer must reach the user before the follow-up menu.
		if err := r.notifier.SendTyped(context.Background(), target, answer); err != nil {
			r.logger.Error("Failed to relay helpdesk answer",
				zap.String("to", target.String()),
				zap.Error(err))
			return
		}
		if err := r.notifier.SendTyped(context.Background(), target, msgHelpdeskFollowup); err != nil {
			r.logger.Error("Failed to send follow-up menu",
				zap.String("to", target.String()),
				zap.Error(err))
		}
	}()

	r.sendToGroup(msgGroupAnswerRelayed(target))
}

// handleDecision processes a supervisor's quote reply against the pending
// approval table (rule 2). Returns false when the quoted message is not a
// known approval key so routing falls through.
func (r *Router) handleDecision(ctx context.Context, msg chat.Message) bool {
	pa, ok := r.stores.Approvals.Get(msg.QuotedID)
	if !ok {
		return false
	}

	switch {
	case IsApproval(msg.Body):
		r.stores.Approvals.Delete(msg.QuotedID)
		r.applyApproval(ctx, msg.From, pa)
	case IsRejection(msg.Body):
		r.stores.Approvals.Delete(msg.QuotedID)
		r.stores.Requests.Delete(pa.Requester)
		r.notifier.Send(pa.Requester, msgRejected(pa.Kind))
		r.notifier.Send(msg.From, msgDecisionAck(false, pa.Employee.Name))
	default:
		// Neither: re-prompt without consuming, so a later valid reply
		// still resolves the request.
		r.notifier.Send(msg.From, msgDecisionPrompt)
	}

	return true
}

// applyApproval moves an approved overtime request into photo collection, or
// closes an approved leave request with the form link
func (r *Router) applyApproval(ctx context.Context, supervisor chat.ParticipantID, pa flow.PendingApproval) {
	if pa.Kind == flow.KindOvertime {
		req, ok := r.stores.Requests.Get(pa.Requester)
		if ok && req.Advance(flow.StepAwaitingPhoto) == nil {
			req.Photos = nil
		} else {
			// The requester replaced or lost the flow meanwhile; rebuild it
			// from the approval snapshot so the photos still have a home.
			req = flow.Request{
				Step:       flow.StepAwaitingPhoto,
				Kind:       pa.Kind,
				Reason:     pa.Reason,
				StartTime:  pa.StartTime,
				EndTime:    pa.EndTime,
				Employee:   pa.Employee,
				Supervisor: pa.Supervisor,
			}
		}
		r.stores.OpenRequest(pa.Requester, req)
		r.notifier.Send(pa.Requester, msgOvertimeApproved())
	} else {
		r.stores.Requests.Delete(pa.Requester)
		r.notifier.Send(pa.Requester, msgLeaveApproved(r.cfg.LeaveFormURL))
	}

	r.notifier.Send(supervisor, msgDecisionAck(true, pa.Employee.Name))
}

// sendToGroup delivers one message to the helpdesk group off the hot path,
// holding the group send lock so it cannot land inside another flow's
// question and instruction pair.
func (r *Router) sendToGroup(body string) {
	go func() {
		r.groupMu.Lock()
		defer r.groupMu.Unlock()
		if err := r.notifier.SendTyped(context.Background(), r.cfg.HelpdeskGroupID, body); err != nil {
			r.logger.Error("Failed to send helpdesk group message", zap.Error(err))
		}
	}()
}

// advance applies a step change through the transition table. The routing
// rules only request legal transitions, so a refusal here is a routing bug.
func (r *Router) advance(req *flow.Request, to flow.Step) bool {
	if err := req.Advance(to); err != nil {
		r.logger.Error("Refused request step transition", zap.Error(err))
		return false
	}
	return true
}

// advanceHelpdesk is advance for the helpdesk transition table
func (r *Router) advanceHelpdesk(hd *flow.Helpdesk, to flow.HelpdeskStep) bool {
	if err := hd.Advance(to); err != nil {
		r.logger.Error("Refused helpdesk step transition", zap.Error(err))
		return false
	}
	return true
}

// normalize trims and lowercases a message body for command matching
func normalize(body string) string {
	return strings.ToLower(strings.TrimSpace(body))
}

func participantFromPhone(phone string) chat.ParticipantID {
	return chat.ParticipantID(phone + directParticipantSuffix)
}
