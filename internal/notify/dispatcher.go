// Package notify fans push notifications out to a bounded worker pool so
// request handlers never wait on the push provider. Delivery is best effort:
// failures are logged and counted, never returned to the caller.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/caerus-app/caerus-backend/internal/observability"
	"github.com/caerus-app/caerus-backend/internal/push"
)

// Notification is a push addressed to one device token.
type Notification struct {
	Type     string
	Token    string
	Title    string
	Body     string
	Data     map[string]any
	DedupKey string // optional; repeated keys are delivered once
}

// Notifier accepts notifications for asynchronous delivery. Notify reports
// whether n was queued.
type Notifier interface {
	Notify(n Notification) bool
}

// Deduper reports whether a key is seen for the first time.
type Deduper interface {
	FirstSeen(ctx context.Context, key string) (bool, error)
}

// Options configures a Dispatcher.
type Options struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	Dedup     Deduper
	Logger    zerolog.Logger
}

// Dispatcher is a Notifier backed by a fixed pool of workers.
type Dispatcher struct {
	sender  push.Sender
	dedup   Deduper
	log     zerolog.Logger
	timeout time.Duration

	queue  chan Notification
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts opts.Workers workers delivering through sender.
func NewDispatcher(sender push.Sender, opts Options) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	d := &Dispatcher{
		sender:  sender,
		dedup:   opts.Dedup,
		log:     opts.Logger.With().Str("component", "notify").Logger(),
		timeout: opts.Timeout,
		queue:   make(chan Notification, opts.QueueSize),
	}
	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.worker()
	}
	return d
}

// Notify queues n without blocking. Notifications without a token, or sent
// while the queue is full or closed, are dropped.
func (d *Dispatcher) Notify(n Notification) bool {
	if n.Token == "" {
		observability.RecordNotification(n.Type, "no_token")
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		observability.RecordNotification(n.Type, "dropped")
		return false
	}
	select {
	case d.queue <- n:
		return true
	default:
		d.log.Warn().Str("type", n.Type).Msg("notification queue full, dropping")
		observability.RecordNotification(n.Type, "dropped")
		return false
	}
}

// Close stops accepting notifications and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n Notification) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("type", n.Type).Msg("notification worker panic")
			observability.RecordNotification(n.Type, "error")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if d.dedup != nil && n.DedupKey != "" {
		first, err := d.dedup.FirstSeen(ctx, n.DedupKey)
		switch {
		case err != nil:
			// Deliver anyway; a duplicate push beats a lost one.
			d.log.Warn().Err(err).Str("key", n.DedupKey).Msg("notification dedup check failed")
		case !first:
			observability.RecordNotification(n.Type, "duplicate")
			return
		}
	}

	err := d.sender.Send(ctx, push.Message{
		To:    n.Token,
		Title: n.Title,
		Body:  n.Body,
		Data:  n.Data,
	})
	switch {
	case err == nil:
		observability.RecordNotification(n.Type, "sent")
		d.log.Debug().Str("type", n.Type).Msg("notification sent")
	case errors.Is(err, push.ErrInvalidToken):
		observability.RecordNotification(n.Type, "invalid_token")
		d.log.Debug().Str("type", n.Type).Msg("skipping notification for non-expo token")
	default:
		observability.RecordNotification(n.Type, "error")
		d.log.Error().Err(err).Str("type", n.Type).Msg("notification failed")
	}
}

// Discard is a Notifier that drops everything.
type Discard struct{}

// Notify implements Notifier.
func (Discard) Notify(Notification) bool { return false }
