package gateway

import (
	"context"
	"fmt"
	"sync"
)

// Feed fans committed changes out to per-user subscribers. Handlers run on the
// publishing goroutine, after the feed lock has been released.
type Feed struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*feedSubscription
	closed bool
}

type feedSubscription struct {
	feed    *Feed
	id      uint64
	userID  string
	handler func(ChangeEvent)
	once    sync.Once
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[uint64]*feedSubscription)}
}

// Subscribe registers handler for changes owned by userID. ctx only guards the
// registration; delivery continues until Unsubscribe or Close.
func (f *Feed) Subscribe(ctx context.Context, userID string, handler func(ChangeEvent)) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	if userID == "" {
		return nil, fmt.Errorf("subscribe: user id is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("subscribe: handler is required")
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, fmt.Errorf("subscribe: feed is closed")
	}
	f.nextID++
	sub := &feedSubscription{
		feed:    f,
		id:      f.nextID,
		userID:  userID,
		handler: handler,
	}
	f.subs[sub.id] = sub
	f.mu.Unlock()
	return sub, nil
}

// Publish delivers ev to every current subscriber of userID. Each subscriber gets its own
// copy of the record.
func (f *Feed) Publish(userID string, ev ChangeEvent) {
	f.mu.RLock()
	targets := make([]*feedSubscription, 0, len(f.subs))
	for _, sub := range f.subs {
		if sub.userID == userID {
			targets = append(targets, sub)
		}
	}
	f.mu.RUnlock()

	for _, sub := range targets {
		copied := ev
		copied.Record = ev.Record.Clone()
		sub.handler(copied)
	}
}

// SubscriberCount returns the number of live subscriptions for userID.
func (f *Feed) SubscriberCount(userID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, sub := range f.subs {
		if sub.userID == userID {
			n++
		}
	}
	return n
}

// Close drops every subscription and rejects new ones.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = make(map[uint64]*feedSubscription)
	f.closed = true
}

// Unsubscribe implements Subscription.
func (s *feedSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s.id)
		s.feed.mu.Unlock()
	})
}
