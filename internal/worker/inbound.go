package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/siskadev/siska-bot/internal/domain/chat"
)

// Dispatcher applies one inbound message to the conversation state
type Dispatcher interface {
	Dispatch(ctx context.Context, msg chat.Message) error
}

// InboundQueue serializes all message processing on a single goroutine so
// every transition over the shared state tables is atomic with respect to
// every other. Faults raised by one message are contained: logged, answered
// with the fault notice, and the queue moves on.
type InboundQueue struct {
	dispatcher Dispatcher
	onFault    func(msg chat.Message)
	queue      chan chat.Message
	done       chan struct{}
	logger     *zap.Logger
}

// NewInboundQueue creates an inbound queue with the given buffer size
func NewInboundQueue(dispatcher Dispatcher, onFault func(msg chat.Message), buffer int, logger *zap.Logger) *InboundQueue {
	if buffer <= 0 {
		buffer = 256
	}
	return &InboundQueue{
		dispatcher: dispatcher,
		onFault:    onFault,
		queue:      make(chan chat.Message, buffer),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Name returns the worker name
func (q *InboundQueue) Name() string {
	return "inbound-queue"
}

// Start launches the processing goroutine
func (q *InboundQueue) Start(ctx context.Context) error {
	go q.run(ctx)
	return nil
}

// Stop closes the queue and waits for buffered messages to drain
func (q *InboundQueue) Stop() {
	close(q.queue)
	<-q.done
}

// Enqueue hands one inbound message to the queue. It fails instead of
// blocking when the queue is full so the webhook can shed load.
func (q *InboundQueue) Enqueue(msg chat.Message) error {
	select {
	case q.queue <- msg:
		return nil
	default:
		return fmt.Errorf("inbound queue full")
	}
}

// Len returns the number of queued messages
func (q *InboundQueue) Len() int {
	return len(q.queue)
}

func (q *InboundQueue) run(ctx context.Context) {
	defer close(q.done)
	for msg := range q.queue {
		q.process(ctx, msg)
	}
}

// process runs one dispatch inside the per-message fault boundary
func (q *InboundQueue) process(ctx context.Context, msg chat.Message) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("Panic while processing message",
				zap.String("from", msg.From.String()),
				zap.Any("panic", r),
				zap.Stack("stack"))
			if q.onFault != nil {
				q.onFault(msg)
			}
		}
	}()

	if err := q.dispatcher.Dispatch(ctx, msg); err != nil {
		q.logger.Error("Failed to process message",
			zap.String("from", msg.From.String()),
			zap.Error(err))
		if q.onFault != nil {
			q.onFault(msg)
		}
	}
}
