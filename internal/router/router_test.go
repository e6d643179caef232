package router

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siskadev/siska-bot/internal/audit"
	"github.com/siskadev/siska-bot/internal/directory"
	"github.com/siskadev/siska-bot/internal/domain/chat"
	"github.com/siskadev/siska-bot/internal/domain/flow"
	"github.com/siskadev/siska-bot/internal/report"
	"github.com/siskadev/siska-bot/internal/store"
)

const (
	groupID      = chat.ParticipantID("120363041234567890@g.us")
	budiPhone    = "628512340001"
	sitiPhone    = "628512340002"
	outsidePhone = "628599990000"
)

var (
	budiID    = participantFromPhone(budiPhone)
	sitiID    = participantFromPhone(sitiPhone)
	outsideID = participantFromPhone(outsidePhone)
)

type sentMessage struct {
	to   chat.ParticipantID
	body string
	file string
}

// fakeNotifier captures every outbound message in order. SendTracked hands
// out sequential identities so tests can correlate the pending tables. A
// typed send whose body contains gateBody blocks after recording until the
// gate closes, which lets tests hold one delivery open.
type fakeNotifier struct {
	mu        sync.Mutex
	sends     []sentMessage
	tracked   int
	trackFail bool
	gateBody  string
	gate      chan struct{}
}

func (f *fakeNotifier) record(to chat.ParticipantID, body, file string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentMessage{to: to, body: body, file: file})
}

func (f *fakeNotifier) Send(to chat.ParticipantID, body string) { f.record(to, body, "") }

func (f *fakeNotifier) SendTyped(ctx context.Context, to chat.ParticipantID, body string) error {
	f.record(to, body, "")
	f.mu.Lock()
	gate, gateBody := f.gate, f.gateBody
	f.mu.Unlock()
	if gate != nil && gateBody != "" && strings.Contains(body, gateBody) {
		<-gate
	}
	return nil
}

func (f *fakeNotifier) SendTracked(ctx context.Context, to chat.ParticipantID, body string) (string, error) {
	if f.trackFail {
		return "", fmt.Errorf("gateway unavailable")
	}
	f.mu.Lock()
	f.tracked++
	id := fmt.Sprintf("track-%d", f.tracked)
	f.sends = append(f.sends, sentMessage{to: to, body: body})
	f.mu.Unlock()
	return id, nil
}

func (f *fakeNotifier) SendFile(to chat.ParticipantID, path, caption string) {
	f.record(to, caption, path)
}

func (f *fakeNotifier) messagesTo(to chat.ParticipantID) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, s := range f.sends {
		if s.to == to {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeNotifier) lastTo(to chat.ParticipantID) string {
	msgs := f.messagesTo(to)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].body
}

func (f *fakeNotifier) countTo(to chat.ParticipantID) int {
	return len(f.messagesTo(to))
}

type fakeFetcher struct{}

func (fakeFetcher) DownloadMedia(ctx context.Context, mediaRef string) ([]byte, error) {
	return []byte("jpeg:" + mediaRef), nil
}

type fakeMediaStore struct {
	mu    sync.Mutex
	saved int
}

func (f *fakeMediaStore) SavePhoto(participant string, content []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved++
	return fmt.Sprintf("/photos/%s/%d.jpg", participant, f.saved), nil
}

type fakeReporter struct {
	mu     sync.Mutex
	calls  []report.Context
	photos [][]string
}

func (f *fakeReporter) Generate(ctx context.Context, rc report.Context, photos []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rc)
	f.photos = append(f.photos, photos)
	return "/reports/laporan.xlsx", nil
}

func (f *fakeReporter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []audit.Direction
}

func (f *fakeRecorder) Record(ctx context.Context, channel string, direction audit.Direction, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, direction)
	return nil
}

type fixture struct {
	router   *Router
	stores   *store.Stores
	notifier *fakeNotifier
	reports  *fakeReporter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := directory.NewFromRecords([]directory.Employee{
		{
			Name:            "Budi Santoso",
			ID:              "198501012010011001",
			Title:           "Staf",
			Phone:           budiPhone,
			SupervisorPhone: sitiPhone,
		},
		{
			Name:            "Siti Rahayu",
			ID:              "197901012005012001",
			Title:           "Kepala Seksi",
			Phone:           sitiPhone,
			SupervisorPhone: "628599999999",
		},
	}, zap.NewNop())

	stores := store.NewStores()
	notifier := &fakeNotifier{}
	reports := &fakeReporter{}

	r := New(
		Config{HelpdeskGroupID: groupID, LeaveFormURL: "https://forms.example/cuti"},
		dir,
		stores,
		notifier,
		fakeFetcher{},
		&fakeMediaStore{},
		reports,
		&fakeRecorder{},
		zap.NewNop(),
	)

	return &fixture{router: r, stores: stores, notifier: notifier, reports: reports}
}

func (fx *fixture) dispatch(t *testing.T, msg chat.Message) {
	t.Helper()
	require.NoError(t, fx.router.Dispatch(context.Background(), msg))
}

func text(from chat.ParticipantID, body string) chat.Message {
	return chat.Message{From: from, Body: body}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	assert.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, msg)
}

func TestDispatch_FirstContactShowsMenu(t *testing.T) {
	fx := newFixture(t)

	fx.dispatch(t, text(budiID, "halo"))

	req, ok := fx.stores.Requests.Get(budiID)
	require.True(t, ok)
	assert.Equal(t, flow.StepMenu, req.Step)
	assert.Contains(t, fx.notifier.lastTo(budiID), "Budi Santoso")
	assert.Contains(t, fx.notifier.lastTo(budiID), "1. Pengajuan Lembur")
}

func TestDispatch_InvalidMenuChoiceKeepsMenu(t *testing.T) {
	fx := newFixture(t)

	fx.dispatch(t, text(budiID, "halo"))
	fx.dispatch(t, text(budiID, "9"))

	req, ok := fx.stores.Requests.Get(budiID)
	require.True(t, ok)
	assert.Equal(t, flow.StepMenu, req.Step)
	assert.Equal(t, msgInvalidMenuChoice, fx.notifier.lastTo(budiID))
}

func TestDispatch_MenuResetDiscardsUnfinishedFlow(t *testing.T) {
	fx := newFixture(t)

	fx.dispatch(t, text(budiID, "halo"))
	fx.dispatch(t, text(budiID, "1"))
	fx.dispatch(t, text(budiID, "menyelesaikan rekonsiliasi"))

	req, _ := fx.stores.Requests.Get(budiID)
	require.Equal(t, flow.StepAwaitingStart, req.Step)

	fx.dispatch(t, text(budiID, "  MENU  "))

	req, ok := fx.stores.Requests.Get(budiID)
	require.True(t, ok)
	assert.Equal(t, flow.StepMenu, req.Step)
	assert.Empty(t, req.Reason, "reset must discard collected fields")
	assert.Empty(t, req.Kind)
}

func TestDispatch_OvertimeFlowRegistersPendingApproval(t *testing.T) {
	fx := newFixture(t)

	fx.dispatch(t, text(budiID, "halo"))
	fx.dispatch(t, text(budiID, "1"))
	assert.Equal(t, msgAskOvertimeReason, fx.notifier.lastTo(budiID))

	fx.dispatch(t, text(budiID, "menyelesaikan laporan keuangan"))
	assert.Equal(t, msgAskStartTime, fx.notifier.lastTo(budiID))

	fx.dispatch(t, text(budiID, "18:00"))
	assert.Equal(t, msgAskEndTime, fx.notifier.lastTo(budiID))

	fx.dispatch(t, text(budiID, "21:00"))

	req, ok := fx.stores.Requests.Get(budiID)
	require.True(t, ok)
	assert.Equal(t, flow.StepAwaitingDecision, req.Step)
	assert.Equal(t, msgRequestForwarded(flow.KindOvertime), fx.notifier.lastTo(budiID))

	pa, ok := fx.stores.Approvals.Get("track-1")
	require.True(t, ok, "pending approval must be keyed by the tracked message id")
	assert.Equal(t, budiID, pa.Requester)
	assert.Equal(t, flow.KindOvertime, pa.Kind)
	assert.Equal(t, "18:00", pa.StartTime)
	assert.Equal(t, "21:00", pa.EndTime)

	toSupervisor := fx.notifier.messagesTo(sitiID)
	require.Len(t, toSupervisor, 1)
	assert.Contains(t, toSupervisor[0].body, "Budi Santoso")
	assert.Contains(t, toSupervisor[0].body, "Jam: 18:00 - 21:00")
}

func TestDispatch_LeaveFlowSkipsTimes(t *testing.T) {
	fx := newFixture(t)

	fx.dispatch(t, text(budiID, "halo"))
	fx.dispatch(t, text(budiID, "2"))
	assert.Equal(t, msgAskLeaveReason, fx.notifier.lastTo(budiID))

	fx.dispatch(t, text(budiID, "cuti tahunan keperluan keluarga"))

	req, ok := fx.stores.Requests.Get(budiID)
	require.True(t, ok)
	assert.Equal(t, flow.StepAwaitingDecision, req.Step)

	pa, ok := fx.stores.Approvals.Get("track-1")
	require.True(t, ok)
	assert.Equal(t, flow.KindLeave, pa.Kind)

	toSupervisor := fx.notifier.messagesTo(sitiID)
	require.Len(t, toSupervisor, 1)
	assert.NotContains(t, toSupervisor[0].body, "Jam:", "leave requests carry no time range")
}

func TestDispatch_SupervisorMissingAbortsSubmission(t *testing.T) {
	fx := newFixture(t)

	// Siti's supervisor number is not in the directory.
	fx.dispatch(t, text(sitiID, "halo"))
	fx.dispatch(t, text(sitiID, "2"))
	fx.dispatch(t, text(sitiID, "cuti sakit"))

	_, ok := fx.stores.Requests.Get(sitiID)
	assert.False(t, ok, "flow must be discarded when the supervisor is unresolvable")
	assert.Equal(t, 0, fx.stores.Approvals.Len())
	assert.Equal(t, msgSupervisorMissing, fx.notifier.lastTo(sitiID))
}

func TestDispatch_TransportFailureLeavesStepRetryable(t *testing.T) {
	fx := newFixture(t)

	fx.dispatch(t, text(budiID, "halo"))
	fx.dispatch(t, text(budiID, "1"))
	fx.dispatch(t, text(budiID, "lembur rekonsiliasi"))
	fx.dispatch(t, text(budiID, "18:00"))

	fx.notifier.trackFail = true
	fx.dispatch(t, text(budiID, "21:00"))

	req, ok := fx.stores.Requests.Get(budiID)
	require.True(t, ok)
	assert.Equal(t, flow.StepAwaitingEnd, req.Step, "failed send must not advance the flow")
	assert.Equal(t, 0, fx.stores.Approvals.Len())

	// The gateway recovers and the user resends the end time.
	fx.notifier.trackFail = false
	fx.dispatch(t, text(budiID, "21:00"))

	req, _ = fx.stores.Requests.Get(budiID)
	assert.Equal(t, flow.StepAwaitingDecision, req.Step)
	assert.Equal(t, 1, fx.stores.Approvals.Len())
}

// submitOvertime drives a full overtime submission and returns the pending
// approval key.
func submitOvertime(t *testing.T, fx *fixture) string {
	t.Helper()
	fx.dispatch(t, text(budiID, "halo"))
	fx.dispatch(t, text(budiID, "1"))
	fx.dispatch(t, text(budiID, "menyelesaikan laporan keuangan"))
	fx.dispatch(t, text(budiID, "18:00"))
	fx.dispatch(t, text(budiID, "21:00"))
	require.Equal(t, 1, fx.stores.Approvals.Len())
	return "track-1"
}

func TestDispatch_ApprovalMovesOvertimeToPhotos(t *testing.T) {
	fx := newFixture(t)
	key := submitOvertime(t, fx)

	fx.dispatch(t, chat.Message{From: sitiID, Body: "  1  ", QuotedID: key})

	_, ok := fx.stores.Approvals.Get(key)
	assert.False(t, ok, "a decision consumes the pending approval")

	req, ok := fx.stores.Requests.Get(budiID)
	require.True(t, ok)
	assert.Equal(t, flow.StepAwaitingPhoto, req.Step)
	assert.Empty(t, req.Photos)

	assert.Contains(t, fx.notifier.lastTo(budiID), "DISETUJUI")
	assert.Contains(t, fx.notifier.lastTo(budiID), photoLabels[0])
	assert.Equal(t, msgDecisionAck(true, "Budi Santoso"), fx.notifier.lastTo(sitiID))
}

func TestDispatch_RejectionClosesFlow(t *testing.T) {
	fx := newFixture(t)
	key := submitOvertime(t, fx)

	fx.dispatch(t, chat.Message{From: sitiID, Body: "Tolak dulu ya", QuotedID: key})

	_, ok := fx.stores.Requests.Get(budiID)
	assert.False(t, ok)
	assert.Equal(t, 0, fx.stores.Approvals.Len())
	assert.Equal(t, msgRejected(flow.KindOvertime), fx.notifier.lastTo(budiID))
	assert.Equal(t, msgDecisionAck(false, "Budi Santoso"), fx.notifier.lastTo(sitiID))
}

func TestDispatch_UnparseableDecisionRepromptsWithoutConsuming(t *testing.T) {
	fx := newFixture(t)
	key := submitOvertime(t, fx)

	fx.dispatch(t, chat.Message{From: sitiID, Body: "nanti saya cek", QuotedID: key})

	assert.Equal(t, 1, fx.stores.Approvals.Len(), "an unparseable reply must not consume the entry")
	assert.Equal(t, msgDecisionPrompt, fx.notifier.lastTo(sitiID))

	// A later valid reply still resolves the request.
	fx.dispatch(t, chat.Message{From: sitiID, Body: "setuju", QuotedID: key})

	assert.Equal(t, 0, fx.stores.Approvals.Len())
	req, _ := fx.stores.Requests.Get(budiID)
	assert.Equal(t, flow.StepAwaitingPhoto, req.Step)
}

func TestDispatch_ReplayedDecisionIsNoop(t *testing.T) {
	fx := newFixture(t)
	key := submitOvertime(t, fx)

	fx.dispatch(t, chat.Message{From: sitiID, Body: "1", QuotedID: key})
	req, _ := fx.stores.Requests.Get(budiID)
	require.Equal(t, flow.StepAwaitingPhoto, req.Step)
	approvals := fx.notifier.countTo(budiID)

	// The supervisor quotes the same message again; the key is gone, so the
	// reply falls through the decision path.
	fx.dispatch(t, chat.Message{From: sitiID, Body: "1", QuotedID: key})

	req, ok := fx.stores.Requests.Get(budiID)
	require.True(t, ok)
	assert.Equal(t, flow.StepAwaitingPhoto, req.Step, "requester state must be untouched by a replay")
	assert.Equal(t, approvals, fx.notifier.countTo(budiID), "requester must not be notified twice")
}

func TestDispatch_LeaveApprovalSendsFormLink(t *testing.T) {
	fx := newFixture(t)

	fx.dispatch(t, text(budiID, "halo"))
	fx.dispatch(t, text(budiID, "2"))
	fx.dispatch(t, text(budiID, "cuti tahunan"))

	fx.dispatch(t, chat.Message{From: sitiID, Body: "1", QuotedID: "track-1"})

	_, ok := fx.stores.Requests.Get(budiID)
	assert.False(t, ok, "an approved leave request closes immediately")
	assert.Contains(t, fx.notifier.lastTo(budiID), "https://forms.example/cuti")
}

func TestDispatch_PhotoCollectionGeneratesReport(t *testing.T) {
	fx := newFixture(t)
	key := submitOvertime(t, fx)
	fx.dispatch(t, chat.Message{From: sitiID, Body: "1", QuotedID: key})

	// Text at the photo step is ignored.
	before := fx.notifier.countTo(budiID)
	fx.dispatch(t, text(budiID, "ini fotonya"))
	assert.Equal(t, before, fx.notifier.countTo(budiID))

	fx.dispatch(t, chat.Message{From: budiID, MediaRef: "media-1"})
	assert.Equal(t, msgPhotoPrompt(2), fx.notifier.lastTo(budiID))

	fx.dispatch(t, chat.Message{From: budiID, MediaRef: "media-2"})
	assert.Equal(t, msgPhotoPrompt(3), fx.notifier.lastTo(budiID))

	fx.dispatch(t, chat.Message{From: budiID, MediaRef: "media-3"})

	_, ok := fx.stores.Requests.Get(budiID)
	assert.False(t, ok, "the third photo closes the flow")

	eventually(t, func() bool { return fx.reports.callCount() == 1 }, "report must be generated")

	fx.reports.mu.Lock()
	rc := fx.reports.calls[0]
	photos := fx.reports.photos[0]
	fx.reports.mu.Unlock()

	assert.Equal(t, "Budi Santoso", rc.Name)
	assert.Equal(t, "Siti Rahayu", rc.SupervisorName)
	assert.Equal(t, "18:00", rc.StartTime)
	assert.Equal(t, "21:00", rc.EndTime)
	assert.Len(t, photos, 3)

	eventually(t, func() bool {
		msgs := fx.notifier.messagesTo(budiID)
		return len(msgs) > 0 && msgs[len(msgs)-1].file != ""
	}, "report file must reach the requester")
	eventually(t, func() bool {
		for _, s := range fx.notifier.messagesTo(sitiID) {
			if s.file != "" {
				return true
			}
		}
		return false
	}, "report file must reach the supervisor")
}

func TestDispatch_ExternalSenderEntersHelpdesk(t *testing.T) {
	fx := newFixture(t)

	fx.dispatch(t, text(outsideID, "Halo"))

	hd, ok := fx.stores.Helpdesks.Get(outsideID)
	require.True(t, ok)
	assert.Equal(t, flow.HelpdeskAwaitIdentity, hd.Step)
	assert.Equal(t, msgHelpdeskWelcome, fx.notifier.lastTo(outsideID))

	fx.dispatch(t, text(outsideID, "Andi, Konsultan, PT Maju"))

	hd, _ = fx.stores.Helpdesks.Get(outsideID)
	assert.Equal(t, flow.HelpdeskAwaitQuestion, hd.Step)
	assert.Equal(t, "Andi, Konsultan, PT Maju", hd.Identity)
}

func TestDispatch_HelpdeskRelayRoundTrip(t *testing.T) {
	fx := newFixture(t)

	fx.dispatch(t, text(outsideID, "Halo"))
	fx.dispatch(t, text(outsideID, "Andi, Konsultan, PT Maju"))
	fx.dispatch(t, text(outsideID, "Bagaimana cara klaim perjalanan dinas?"))

	hd, _ := fx.stores.Helpdesks.Get(outsideID)
	assert.Equal(t, flow.HelpdeskAwaitAnswer, hd.Step)
	assert.Equal(t, msgHelpdeskForwarded, fx.notifier.lastTo(outsideID))

	// Question and instruction reach the group in order, and the forward
	// table is keyed by the instruction's identity.
	eventually(t, func() bool { return fx.stores.Forwards.Len() == 1 }, "forward entry must be registered")

	groupMsgs := fx.notifier.messagesTo(groupID)
	require.Len(t, groupMsgs, 2)
	assert.Contains(t, groupMsgs[0].body, "Andi, Konsultan, PT Maju")
	assert.Contains(t, groupMsgs[0].body, "Bagaimana cara klaim perjalanan dinas?")
	assert.Contains(t, groupMsgs[1].body, "QUOTE REPLY")

	instructionID := "track-1"
	target, ok := fx.stores.Forwards.Get(instructionID)
	require.True(t, ok)
	assert.Equal(t, outsideID, target)

	// While waiting, anything the user says is swallowed.
	before := fx.notifier.countTo(outsideID)
	fx.dispatch(t, text(outsideID, "halo?"))
	assert.Equal(t, before, fx.notifier.countTo(outsideID))

	// The group answers by quoting the instruction.
	fx.dispatch(t, chat.Message{
		From:     groupID,
		IsGroup:  true,
		Body:     "Klaim melalui aplikasi SAKTI, lampirkan surat tugas.",
		QuotedID: instructionID,
	})

	assert.Equal(t, 0, fx.stores.Forwards.Len(), "a quoted answer consumes the forward entry")
	hd, _ = fx.stores.Helpdesks.Get(outsideID)
	assert.Equal(t, flow.HelpdeskFollowup, hd.Step)
	eventually(t, func() bool {
		return strings.Contains(fx.notifier.lastTo(groupID), "Jawaban sudah diteruskan")
	}, "group must be acknowledged")

	eventually(t, func() bool {
		return strings.Contains(fx.notifier.lastTo(outsideID), "membantu")
	}, "answer and follow-up menu must reach the user")

	userMsgs := fx.notifier.messagesTo(outsideID)
	require.GreaterOrEqual(t, len(userMsgs), 2)
	answer := userMsgs[len(userMsgs)-2]
	assert.Contains(t, answer.body, "aplikasi SAKTI", "answer must precede the follow-up menu")

	// Replaying the same quoted answer is a no-op.
	groupBefore := fx.notifier.countTo(groupID)
	fx.dispatch(t, chat.Message{From: groupID, IsGroup: true, Body: "lagi", QuotedID: instructionID})
	assert.Equal(t, groupBefore, fx.notifier.countTo(groupID))
}

func TestDispatch_GroupRelayPairsDoNotInterleave(t *testing.T) {
	fx := newFixture(t)
	otherID := chat.ParticipantID("628588880000@c.us")

	for _, id := range []chat.ParticipantID{outsideID, otherID} {
		fx.dispatch(t, text(id, "Halo"))
		fx.dispatch(t, text(id, "Identitas "+id.Digits()))
	}

	// Hold the first user's question open after it reaches the group, then
	// relay the second user's question while it hangs.
	gate := make(chan struct{})
	fx.notifier.mu.Lock()
	fx.notifier.gate = gate
	fx.notifier.gateBody = "pertanyaan pertama"
	fx.notifier.mu.Unlock()

	fx.dispatch(t, text(outsideID, "pertanyaan pertama soal SPJ"))
	eventually(t, func() bool { return fx.notifier.countTo(groupID) == 1 }, "first question must reach the group")

	fx.dispatch(t, text(otherID, "pertanyaan kedua soal gaji"))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, fx.notifier.countTo(groupID),
		"the second relay must wait while the first pair is in flight")

	close(gate)
	eventually(t, func() bool { return fx.stores.Forwards.Len() == 2 }, "both pairs must complete")

	msgs := fx.notifier.messagesTo(groupID)
	require.Len(t, msgs, 4)
	assert.Contains(t, msgs[0].body, "pertanyaan pertama")
	assert.Contains(t, msgs[1].body, "QUOTE REPLY")
	assert.Contains(t, msgs[1].body, outsideID.String())
	assert.Contains(t, msgs[2].body, "pertanyaan kedua")
	assert.Contains(t, msgs[3].body, "QUOTE REPLY")
	assert.Contains(t, msgs[3].body, otherID.String())
}

func TestDispatch_ApprovalAfterMenuResetRebuildsFlow(t *testing.T) {
	fx := newFixture(t)
	key := submitOvertime(t, fx)

	// The requester bails back to the menu while the supervisor deliberates.
	fx.dispatch(t, text(budiID, "menu"))
	req, _ := fx.stores.Requests.Get(budiID)
	require.Equal(t, flow.StepMenu, req.Step)

	fx.dispatch(t, chat.Message{From: sitiID, Body: "1", QuotedID: key})

	req, ok := fx.stores.Requests.Get(budiID)
	require.True(t, ok)
	assert.Equal(t, flow.StepAwaitingPhoto, req.Step)
	assert.Equal(t, "menyelesaikan laporan keuangan", req.Reason,
		"the flow is rebuilt from the approval snapshot")
	assert.Equal(t, "18:00", req.StartTime)
	require.NotNil(t, req.Supervisor)
	assert.Equal(t, "Siti Rahayu", req.Supervisor.Name)
}

func TestDispatch_HelpdeskFollowupBranches(t *testing.T) {
	fx := newFixture(t)

	openFollowup := func() {
		fx.stores.OpenHelpdesk(outsideID, flow.Helpdesk{
			Step:     flow.HelpdeskFollowup,
			Identity: "Andi",
		})
	}

	openFollowup()
	fx.dispatch(t, text(outsideID, "Sudah, selesai. Terima kasih"))
	_, ok := fx.stores.Helpdesks.Get(outsideID)
	assert.False(t, ok)
	assert.Equal(t, msgHelpdeskDone, fx.notifier.lastTo(outsideID))

	openFollowup()
	fx.dispatch(t, text(outsideID, "1"))
	hd, _ := fx.stores.Helpdesks.Get(outsideID)
	assert.Equal(t, flow.HelpdeskAwaitQuestion, hd.Step)
	assert.Equal(t, msgHelpdeskNextQuestion, fx.notifier.lastTo(outsideID))

	openFollowup()
	fx.dispatch(t, text(outsideID, "2"))
	hd, _ = fx.stores.Helpdesks.Get(outsideID)
	assert.Equal(t, flow.HelpdeskAwaitSchedule, hd.Step)

	fx.dispatch(t, text(outsideID, "Senin depan jam 10"))
	_, ok = fx.stores.Helpdesks.Get(outsideID)
	assert.False(t, ok, "a schedule request ends the conversation")
	eventually(t, func() bool {
		return strings.Contains(fx.notifier.lastTo(groupID), "Senin depan jam 10")
	}, "schedule request must reach the group")

	openFollowup()
	fx.dispatch(t, text(outsideID, "mungkin"))
	assert.Equal(t, msgHelpdeskInvalidChoice, fx.notifier.lastTo(outsideID))
}

func TestDispatch_InternalMenuOptionThreeOpensHelpdesk(t *testing.T) {
	fx := newFixture(t)

	fx.dispatch(t, text(budiID, "halo"))
	fx.dispatch(t, text(budiID, "3"))

	_, hasRequest := fx.stores.Requests.Get(budiID)
	assert.False(t, hasRequest)

	hd, ok := fx.stores.Helpdesks.Get(budiID)
	require.True(t, ok)
	assert.Equal(t, flow.HelpdeskAwaitQuestion, hd.Step, "internal users skip the identity step")
	assert.Equal(t, "Budi Santoso", hd.Identity)
}

func TestDispatch_GroupNoiseIsDropped(t *testing.T) {
	fx := newFixture(t)

	// Plain chatter in the helpdesk group.
	fx.dispatch(t, chat.Message{From: groupID, IsGroup: true, Body: "rapat jam 2 ya"})
	// A quoted reply to an unknown message.
	fx.dispatch(t, chat.Message{From: groupID, IsGroup: true, Body: "ok", QuotedID: "unknown"})
	// Quoted reply from an unrelated group.
	fx.dispatch(t, chat.Message{
		From:     chat.ParticipantID("99999@g.us"),
		IsGroup:  true,
		Body:     "ok",
		QuotedID: "track-1",
	})

	assert.Empty(t, fx.notifier.sends)
	assert.Equal(t, 0, fx.stores.Forwards.Len())
}
