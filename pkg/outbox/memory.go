package outbox

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process outbox. Events whose dispatch failed go back to
// pending until maxRetries is reached. Events locked by a relay that never
// reported back become available again once their lease runs out.
type MemoryStore struct {
	maxRetries int
	now        func() time.Time

	mu     sync.Mutex
	nextID int64
	events []*Event
}

func NewMemoryStore(maxRetries int) *MemoryStore {
	return &MemoryStore{maxRetries: maxRetries, now: time.Now}
}

func (s *MemoryStore) Append(_ context.Context, ev Event) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	ev.ID = s.nextID
	ev.Status = StatusPending
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = s.now().UTC()
	}
	s.events = append(s.events, &ev)
	return ev.ID, nil
}

func (s *MemoryStore) LockBatch(_ context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var out []Event
	for _, ev := range s.events {
		if len(out) >= batchSize {
			break
		}
		available := ev.Status == StatusPending ||
			(ev.Status == StatusInProgress && now.After(ev.LeaseUntil))
		if !available {
			continue
		}
		ev.Status = StatusInProgress
		ev.RelayID = relayID
		ev.LeaseUntil = now.Add(lease)
		out = append(out, *ev)
	}
	return out, nil
}

// MarkSent drops the sent events; nothing reads them afterwards.
func (s *MemoryStore) MarkSent(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent := make(map[int64]bool, len(ids))
	for _, id := range ids {
		sent[id] = true
	}
	kept := s.events[:0]
	for _, ev := range s.events {
		if !sent[ev.ID] {
			kept = append(kept, ev)
		}
	}
	s.events = kept
	return nil
}

func (s *MemoryStore) MarkFailed(_ context.Context, id int64, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.events {
		if ev.ID != id {
			continue
		}
		ev.RetryCount++
		ev.LastError = errMsg
		if ev.RetryCount >= s.maxRetries {
			ev.Status = StatusFailed
		} else {
			ev.Status = StatusPending
		}
	}
	return nil
}

// Unsent returns a copy of every event not yet sent.
func (s *MemoryStore) Unsent() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, *ev)
	}
	return out
}
