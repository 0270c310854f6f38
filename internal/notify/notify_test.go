package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/push"
)

const tok = "ExponentPushToken[abc]"

var changedAt = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type stubSender struct {
	mu    sync.Mutex
	sent  []push.Message
	err   error
	block chan struct{}
}

func (s *stubSender) Send(_ context.Context, m push.Message) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
	return s.err
}

func (s *stubSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type stubDedup struct {
	seen map[string]bool
	err  error
}

func (s *stubDedup) FirstSeen(_ context.Context, key string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func TestDispatcher_DeliversAndDrainsOnClose(t *testing.T) {
	s := &stubSender{}
	d := NewDispatcher(s, Options{Workers: 2, QueueSize: 8, Logger: zerolog.Nop()})

	for i := 0; i < 5; i++ {
		require.True(t, d.Notify(Notification{Type: TypeNewMessage, Token: tok, Title: "t"}))
	}
	d.Close()
	assert.Equal(t, 5, s.count())

	assert.False(t, d.Notify(Notification{Token: tok}), "closed dispatcher accepts nothing")
	d.Close()
}

func TestDispatcher_SkipsMissingToken(t *testing.T) {
	s := &stubSender{}
	d := NewDispatcher(s, Options{Logger: zerolog.Nop()})
	assert.False(t, d.Notify(Notification{Type: TypeNewQuestion}))
	d.Close()
	assert.Zero(t, s.count())
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	s := &stubSender{block: make(chan struct{})}
	d := NewDispatcher(s, Options{Workers: 1, QueueSize: 1, Logger: zerolog.Nop()})

	// One in flight, one queued; eventually the queue is full.
	accepted := 0
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if d.Notify(Notification{Token: tok}) {
			accepted++
			continue
		}
		break
	}
	assert.LessOrEqual(t, accepted, 2)
	close(s.block)
	d.Close()
	assert.Equal(t, accepted, s.count())
}

func TestDispatcher_Dedup(t *testing.T) {
	s := &stubSender{}
	d := NewDispatcher(s, Options{Workers: 1, QueueSize: 4, Dedup: &stubDedup{seen: map[string]bool{}}, Logger: zerolog.Nop()})
	n := InvestorInterested(tok, "ann", "acme", "th1", domain.ThreadActive, changedAt)
	d.Notify(n)
	d.Notify(n)
	d.Close()
	assert.Equal(t, 1, s.count())
}

func TestDispatcher_RepeatedStatusTransitionsAllDelivered(t *testing.T) {
	s := &stubSender{}
	d := NewDispatcher(s, Options{Workers: 1, QueueSize: 4, Dedup: NewMemoryDeduper(time.Hour), Logger: zerolog.Nop()})
	d.Notify(InvestorInterested(tok, "ann", "acme", "th1", domain.ThreadActive, changedAt))
	d.Notify(InvestorDeclined(tok, "ann", "acme", "th1", domain.ThreadInterested, changedAt.Add(time.Second)))
	d.Notify(InvestorInterested(tok, "ann", "acme", "th1", domain.ThreadDeclined, changedAt.Add(2*time.Second)))
	d.Close()
	assert.Equal(t, 3, s.count())
}

func TestDispatcher_DedupFailureStillDelivers(t *testing.T) {
	s := &stubSender{}
	d := NewDispatcher(s, Options{Dedup: &stubDedup{err: errors.New("redis down")}, Logger: zerolog.Nop()})
	d.Notify(NewQuestion(tok, "ann", "acme", "th1", "m1"))
	d.Close()
	assert.Equal(t, 1, s.count())
}

func TestDispatcher_SendErrorIsSwallowed(t *testing.T) {
	s := &stubSender{err: push.ErrRejected}
	d := NewDispatcher(s, Options{Logger: zerolog.Nop()})
	assert.True(t, d.Notify(Notification{Token: tok}))
	d.Close()
	assert.Equal(t, 1, s.count())
}

func TestMemoryDeduper(t *testing.T) {
	m := NewMemoryDeduper(time.Minute)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	first, err := m.FirstSeen(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, first)
	first, _ = m.FirstSeen(context.Background(), "k")
	assert.False(t, first)

	now = now.Add(2 * time.Minute)
	first, _ = m.FirstSeen(context.Background(), "k")
	assert.True(t, first, "expired keys are forgotten")
}

func TestMessages(t *testing.T) {
	n := InvestorInterested(tok, "jane doe", "Acme AI", "th1", domain.ThreadActive, changedAt)
	assert.Equal(t, "An investor is interested!", n.Title)
	assert.Equal(t, "Jane Doe wants to connect about Acme AI", n.Body)
	assert.Equal(t, map[string]any{"type": TypeInvestorInterested, "thread_id": "th1", "screen": ScreenFounderThread}, n.Data)

	n = InvestorDeclined(tok, "", "", "th1", domain.ThreadActive, changedAt)
	assert.Equal(t, "An investor responded to your Q&A for your startup", n.Body)
	assert.NotEqual(t, InvestorInterested(tok, "", "", "th1", domain.ThreadActive, changedAt).DedupKey, n.DedupKey)
	assert.NotEqual(t,
		InvestorInterested(tok, "", "", "th1", domain.ThreadActive, changedAt).DedupKey,
		InvestorInterested(tok, "", "", "th1", domain.ThreadActive, changedAt.Add(time.Minute)).DedupKey)

	n = FounderReplied(tok, "Sam", "acme", "th2", "m9")
	assert.Equal(t, "Acme replied", n.Title)
	assert.Equal(t, ScreenInvestorThread, n.Data["screen"])
	assert.Equal(t, "message:m9", n.DedupKey)

	n = TalentInterest(tok, "Riley", "", "th3", "m1")
	assert.Equal(t, "Riley wants to connect", n.Body)
	n = TalentInterest(tok, "Riley", "Globex", "th3", "m1")
	assert.Equal(t, "Riley from Globex wants to connect", n.Body)
	assert.Equal(t, ScreenTalentThread, n.Data["screen"])
}
