package core

import (
	"sync"

	"groovecall/internal/chat"
)

// QueueStore is the single source of truth for per-chat playback state. A chat
// id is present if and only if it has at least one queued or playing entry,
// and the entry at index 0 is always the one currently streaming.
//
// The store is safe for concurrent use, but check-then-act sequences (the
// idle/active decision in the dispatcher) need the dispatcher's per-chat locks
// on top of it.
type QueueStore struct {
	mu     sync.RWMutex
	queues map[int64][]*QueueEntry
}

func NewQueueStore() *QueueStore {
	return &QueueStore{
		queues: make(map[int64][]*QueueEntry),
	}
}

// IsActive reports whether the chat currently has a playing or queued entry.
func (s *QueueStore) IsActive(chatID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.queues[chatID]) > 0
}

// Append adds an entry to the tail of the chat's queue and returns its
// position (0 = now playing).
func (s *QueueStore) Append(entry *QueueEntry) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[entry.ChatID] = append(s.queues[entry.ChatID], entry)
	return len(s.queues[entry.ChatID]) - 1
}

// AppendHead inserts an entry at position 0, ahead of any pre-seeded entries.
// Used by force-play, which preserves out-of-band queue state.
func (s *QueueStore) AppendHead(entry *QueueEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[entry.ChatID] = append([]*QueueEntry{entry}, s.queues[entry.ChatID]...)
}

// Reset drops all entries for the chat.
func (s *QueueStore) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queues, chatID)
}

// Snapshot returns a copy of the chat's current sequence, for rollback.
func (s *QueueStore) Snapshot(chatID int64) []*QueueEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.queues[chatID]
	if len(entries) == 0 {
		return nil
	}
	out := make([]*QueueEntry, len(entries))
	copy(out, entries)
	return out
}

// Restore replaces the chat's sequence with a previously taken snapshot.
func (s *QueueStore) Restore(chatID int64, entries []*QueueEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(entries) == 0 {
		delete(s.queues, chatID)
		return
	}
	s.queues[chatID] = entries
}

// Length returns the number of entries queued for the chat, head included.
func (s *QueueStore) Length(chatID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.queues[chatID])
}

// Head returns the currently playing entry, or nil for an idle chat.
func (s *QueueStore) Head(chatID int64) *QueueEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entries := s.queues[chatID]; len(entries) > 0 {
		return entries[0]
	}
	return nil
}

// PopHead removes and returns the head entry. The chat id disappears from the
// store when its sequence empties.
func (s *QueueStore) PopHead(chatID int64) (*QueueEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.queues[chatID]
	if len(entries) == 0 {
		return nil, false
	}
	head := entries[0]
	if len(entries) == 1 {
		delete(s.queues, chatID)
	} else {
		s.queues[chatID] = entries[1:]
	}
	return head, true
}

// SetNowPlaying records the announcement message ref on the head entry. The
// slot is written once per head transition and ignored if the chat went idle
// in between.
func (s *QueueStore) SetNowPlaying(chatID int64, ref *chat.MessageRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entries := s.queues[chatID]; len(entries) > 0 {
		entries[0].NowPlaying = ref
	}
}

// ActiveChats returns the number of chats with a non-empty queue.
func (s *QueueStore) ActiveChats() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.queues)
}

// TotalEntries returns the number of entries across all chats.
func (s *QueueStore) TotalEntries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, entries := range s.queues {
		total += len(entries)
	}
	return total
}
