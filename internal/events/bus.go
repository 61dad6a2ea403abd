package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"user-management-service/internal/domain"
)

// Handler consumes events off the bus.
type Handler interface {
	HandleEvent(ctx context.Context, evt domain.Event)
}

const dispatchTimeout = 30 * time.Second

// Bus decouples mutating operations from notification side effects: the
// usecases publish and move on, a single worker goroutine hands events to
// the dispatcher. A full buffer drops the event rather than blocking the
// primary transaction.
type Bus struct {
	ch      chan domain.Event
	handler Handler
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewBus(handler Handler, buffer int, logger *zap.Logger) *Bus {
	b := &Bus{
		ch:      make(chan domain.Event, buffer),
		handler: handler,
		logger:  logger,
	}
	b.wg.Add(1)
	go b.run()
	return b
}

func (b *Bus) run() {
	defer b.wg.Done()
	for evt := range b.ch {
		b.dispatch(evt)
	}
}

func (b *Bus) dispatch(evt domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic recovered in event handler",
				zap.String("event", string(evt.Type)),
				zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	b.handler.HandleEvent(ctx, evt)
}

// Publish enqueues an event. Must not be called after Close; the server
// stops accepting requests before it closes the bus.
func (b *Bus) Publish(evt domain.Event) {
	select {
	case b.ch <- evt:
	default:
		b.logger.Warn("event bus full, dropping event",
			zap.String("event", string(evt.Type)),
			zap.String("user_id", evt.UserID.String()))
	}
}

// Close drains queued events and stops the worker.
func (b *Bus) Close() {
	close(b.ch)
	b.wg.Wait()
}
