// Package notifier formats and delivers outbound messages. Ordinary replies
// simulate a human operator: typing indicator, a 1-3 second pause, then the
// text. Sends that produce correlation keys skip the pause and return the
// gateway-assigned message identity synchronously.
package notifier

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/siskadev/siska-bot/internal/audit"
	"github.com/siskadev/siska-bot/internal/domain/chat"
)

// Transport is the outbound contract of the session gateway
type Transport interface {
	SendText(ctx context.Context, to, body string) (string, error)
	SendFile(ctx context.Context, to, path, caption string) error
	SetTyping(ctx context.Context, to string, typing bool) error
}

// Recorder appends entries to the audit log
type Recorder interface {
	Record(ctx context.Context, channel string, direction audit.Direction, body string) error
}

// Config holds notifier configuration
type Config struct {
	TypingDelayMin time.Duration
	TypingDelayMax time.Duration
}

// Notifier sends outbound messages through the gateway
type Notifier struct {
	transport Transport
	recorder  Recorder
	delayMin  time.Duration
	delayMax  time.Duration
	logger    *zap.Logger
}

// New creates a new notifier
func New(transport Transport, recorder Recorder, cfg Config, logger *zap.Logger) *Notifier {
	delayMin := cfg.TypingDelayMin
	delayMax := cfg.TypingDelayMax
	if delayMin <= 0 {
		delayMin = time.Second
	}
	if delayMax < delayMin {
		delayMax = delayMin + 2*time.Second
	}
	return &Notifier{
		transport: transport,
		recorder:  recorder,
		delayMin:  delayMin,
		delayMax:  delayMax,
		logger:    logger,
	}
}

// Send delivers a typed reply without blocking the caller. Delivery failures
// are logged; the channel itself is failing, so no user notice is attempted.
func (n *Notifier) Send(to chat.ParticipantID, body string) {
	go func() {
		if err := n.SendTyped(context.Background(), to, body); err != nil {
			n.logger.Error("Failed to deliver message",
				zap.String("to", to.String()),
				zap.Error(err))
		}
	}()
}

// SendTyped delivers a reply with the typing simulation, blocking until sent
func (n *Notifier) SendTyped(ctx context.Context, to chat.ParticipantID, body string) error {
	if err := n.transport.SetTyping(ctx, to.String(), true); err != nil {
		n.logger.Debug("Failed to start typing indicator",
			zap.String("to", to.String()),
			zap.Error(err))
	}
	time.Sleep(n.typingDelay())
	if err := n.transport.SetTyping(ctx, to.String(), false); err != nil {
		n.logger.Debug("Failed to clear typing indicator",
			zap.String("to", to.String()),
			zap.Error(err))
	}

	_, err := n.deliver(ctx, to, body)
	return err
}

// SendTracked delivers a message immediately, without the typing pause, and
// returns its identity for use as a correlation key.
func (n *Notifier) SendTracked(ctx context.Context, to chat.ParticipantID, body string) (string, error) {
	return n.deliver(ctx, to, body)
}

// SendFile delivers a document without blocking the caller
func (n *Notifier) SendFile(to chat.ParticipantID, path, caption string) {
	go func() {
		ctx := context.Background()
		if err := n.transport.SendFile(ctx, to.String(), path, caption); err != nil {
			n.logger.Error("Failed to deliver file",
				zap.String("to", to.String()),
				zap.String("path", path),
				zap.Error(err))
			return
		}
		n.record(ctx, to, "[file] "+path)
	}()
}

func (n *Notifier) deliver(ctx context.Context, to chat.ParticipantID, body string) (string, error) {
	msgID, err := n.transport.SendText(ctx, to.String(), body)
	if err != nil {
		return "", err
	}
	n.record(ctx, to, body)
	return msgID, nil
}

func (n *Notifier) record(ctx context.Context, to chat.ParticipantID, body string) {
	if err := n.recorder.Record(ctx, to.String(), audit.DirectionOut, body); err != nil {
		n.logger.Error("Failed to record outbound message",
			zap.String("to", to.String()),
			zap.Error(err))
	}
}

func (n *Notifier) typingDelay() time.Duration {
	spread := n.delayMax - n.delayMin
	if spread <= 0 {
		return n.delayMin
	}
	return n.delayMin + time.Duration(rand.Int63n(int64(spread)))
}
