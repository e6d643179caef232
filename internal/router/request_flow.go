package router

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/siskadev/siska-bot/internal/directory"
	"github.com/siskadev/siska-bot/internal/domain/chat"
	"github.com/siskadev/siska-bot/internal/domain/flow"
	"github.com/siskadev/siska-bot/internal/report"
)

// handleRequestFlow advances the internal request conversation one step
func (r *Router) handleRequestFlow(ctx context.Context, msg chat.Message, employee *directory.Employee) {
	req, ok := r.stores.Requests.Get(msg.From)
	if !ok {
		r.notifier.Send(msg.From, msgUnrecognized)
		return
	}

	switch req.Step {
	case flow.StepMenu:
		r.handleMenuChoice(ctx, msg, req)

	case flow.StepAwaitingReason:
		req.Reason = strings.TrimSpace(msg.Body)
		if req.Kind == flow.KindOvertime {
			if !r.advance(&req, flow.StepAwaitingStart) {
				return
			}
			r.stores.Requests.Put(msg.From, req)
			r.notifier.Send(msg.From, msgAskStartTime)
			return
		}
		r.submitForApproval(ctx, msg.From, req)

	case flow.StepAwaitingStart:
		req.StartTime = strings.TrimSpace(msg.Body)
		if !r.advance(&req, flow.StepAwaitingEnd) {
			return
		}
		r.stores.Requests.Put(msg.From, req)
		r.notifier.Send(msg.From, msgAskEndTime)

	case flow.StepAwaitingEnd:
		req.EndTime = strings.TrimSpace(msg.Body)
		r.submitForApproval(ctx, msg.From, req)

	default:
		// Awaiting the supervisor's decision; nothing the requester types
		// moves the flow except "menu", which rule 5 already intercepted.
		r.notifier.Send(msg.From, msgUnrecognized)
	}
}

// handleMenuChoice applies the 3-option main menu
func (r *Router) handleMenuChoice(ctx context.Context, msg chat.Message, req flow.Request) {
	switch normalize(msg.Body) {
	case "1":
		req.Kind = flow.KindOvertime
		if !r.advance(&req, flow.StepAwaitingReason) {
			return
		}
		r.stores.Requests.Put(msg.From, req)
		r.notifier.Send(msg.From, msgAskOvertimeReason)
	case "2":
		req.Kind = flow.KindLeave
		if !r.advance(&req, flow.StepAwaitingReason) {
			return
		}
		r.stores.Requests.Put(msg.From, req)
		r.notifier.Send(msg.From, msgAskLeaveReason)
	case "3":
		// Internal participants skip the identity step; the directory
		// already knows them.
		r.stores.OpenHelpdesk(msg.From, flow.Helpdesk{
			Step:     flow.HelpdeskAwaitQuestion,
			Identity: req.Employee.Name,
		})
		r.notifier.Send(msg.From, msgHelpdeskMenuQuestion)
	default:
		r.notifier.Send(msg.From, msgInvalidMenuChoice)
	}
}

// submitForApproval resolves the supervisor, sends the approval request and
// registers the pending-approval entry. The flow state only changes after
// the send succeeds, so a transport failure leaves the step retryable.
func (r *Router) submitForApproval(ctx context.Context, requester chat.ParticipantID, req flow.Request) {
	supervisor := r.dir.FindSupervisor(req.Employee)
	if supervisor == nil {
		r.logger.Warn("Supervisor not found",
			zap.String("employee", req.Employee.Name),
			zap.String("supervisor_phone", req.Employee.SupervisorPhone))
		r.stores.Requests.Delete(requester)
		r.notifier.Send(requester, msgSupervisorMissing)
		return
	}
	req.Supervisor = supervisor

	text := msgApprovalRequest(req.Kind, req.Employee.Name, req.Reason, req.StartTime, req.EndTime)
	msgID, err := r.notifier.SendTracked(ctx, participantFromPhone(supervisor.Phone), text)
	if err != nil {
		r.logger.Error("Failed to send approval request",
			zap.String("supervisor", supervisor.Name),
			zap.Error(err))
		return
	}

	r.stores.Approvals.Put(msgID, flow.PendingApproval{
		Requester:  requester,
		Kind:       req.Kind,
		Employee:   req.Employee,
		Supervisor: supervisor,
		Reason:     req.Reason,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})

	if !r.advance(&req, flow.StepAwaitingDecision) {
		return
	}
	r.stores.Requests.Put(requester, req)
	r.notifier.Send(requester, msgRequestForwarded(req.Kind))
}

// handlePhoto collects one evidence photo (rule 3). Messages without media
// at this step are treated as duplicate or noise events and ignored.
func (r *Router) handlePhoto(ctx context.Context, msg chat.Message, req flow.Request) {
	if !msg.HasMedia() {
		return
	}

	data, err := r.media.DownloadMedia(ctx, msg.MediaRef)
	if err != nil {
		r.logger.Error("Failed to download photo",
			zap.String("from", msg.From.String()),
			zap.String("media_ref", msg.MediaRef),
			zap.Error(err))
		return
	}

	path, err := r.photos.SavePhoto(msg.From.Digits(), data)
	if err != nil {
		r.logger.Error("Failed to store photo",
			zap.String("from", msg.From.String()),
			zap.Error(err))
		return
	}

	req.Photos = append(req.Photos, path)
	if req.PhotosRemaining() > 0 {
		r.stores.Requests.Put(msg.From, req)
		r.notifier.Send(msg.From, msgPhotoPrompt(len(req.Photos)+1))
		return
	}

	// Terminal: the flow leaves the store so the next message starts fresh.
	if !r.advance(&req, flow.StepDone) {
		return
	}
	r.stores.Requests.Delete(msg.From)
	go r.generateReport(msg.From, req)
}

// generateReport renders the overtime report and delivers it to the
// requester and, when resolvable, the supervisor
func (r *Router) generateReport(requester chat.ParticipantID, req flow.Request) {
	rc := report.Context{
		Name:      req.Employee.Name,
		Date:      time.Now().Format("02-01-2006"),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Activity:  req.Reason,
	}
	rc.EmployeeID = req.Employee.ID
	if req.Supervisor != nil {
		rc.SupervisorName = req.Supervisor.Name
		rc.SupervisorTitle = req.Supervisor.Title
	}

	path, err := r.reports.Generate(context.Background(), rc, req.Photos)
	if err != nil {
		r.logger.Error("Failed to generate overtime report",
			zap.String("requester", requester.String()),
			zap.Error(err))
		r.notifier.Send(requester, MsgSystemError)
		return
	}

	caption := msgReportReady(req.Employee.Name)
	r.notifier.SendFile(requester, path, caption)
	if req.Supervisor != nil {
		r.notifier.SendFile(participantFromPhone(req.Supervisor.Phone), path, caption)
	}
}
