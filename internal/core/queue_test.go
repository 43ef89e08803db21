package core

import (
	"testing"

	"groovecall/internal/chat"
)

func entry(chatID int64, title string) *QueueEntry {
	return &QueueEntry{ChatID: chatID, Title: title, MediaRef: "/tmp/" + title}
}

func TestQueueStoreAppendPositions(t *testing.T) {
	s := NewQueueStore()

	if s.IsActive(1) {
		t.Error("fresh store should not be active")
	}

	if pos := s.Append(entry(1, "first")); pos != 0 {
		t.Errorf("first Append() position = %d, expected 0", pos)
	}
	if pos := s.Append(entry(1, "second")); pos != 1 {
		t.Errorf("second Append() position = %d, expected 1", pos)
	}

	if !s.IsActive(1) {
		t.Error("store should be active after appends")
	}
	if s.Length(1) != 2 {
		t.Errorf("Length() = %d, expected 2", s.Length(1))
	}
	if head := s.Head(1); head == nil || head.Title != "first" {
		t.Errorf("Head() = %v, expected the first entry", head)
	}
}

func TestQueueStorePopHead(t *testing.T) {
	s := NewQueueStore()
	s.Append(entry(1, "first"))
	s.Append(entry(1, "second"))

	head, ok := s.PopHead(1)
	if !ok || head.Title != "first" {
		t.Fatalf("PopHead() = %v, %v", head, ok)
	}
	if head := s.Head(1); head == nil || head.Title != "second" {
		t.Errorf("Head() after pop = %v, expected the second entry", head)
	}

	s.PopHead(1)
	if s.IsActive(1) {
		t.Error("chat should go idle when its queue empties")
	}
	if _, ok := s.PopHead(1); ok {
		t.Error("PopHead() on an idle chat should report no entry")
	}
}

func TestQueueStoreAppendHead(t *testing.T) {
	s := NewQueueStore()
	s.Append(entry(1, "seeded"))
	s.AppendHead(entry(1, "forced"))

	if head := s.Head(1); head == nil || head.Title != "forced" {
		t.Errorf("Head() = %v, expected the forced entry", head)
	}
	if s.Length(1) != 2 {
		t.Errorf("Length() = %d, expected the seeded entry preserved", s.Length(1))
	}
}

func TestQueueStoreSnapshotRestore(t *testing.T) {
	s := NewQueueStore()
	s.Append(entry(1, "a"))
	s.Append(entry(1, "b"))

	snapshot := s.Snapshot(1)

	s.Reset(1)
	if s.IsActive(1) {
		t.Fatal("Reset() should clear the chat")
	}

	s.Restore(1, snapshot)
	if s.Length(1) != 2 {
		t.Errorf("Length() after Restore = %d, expected 2", s.Length(1))
	}
	if head := s.Head(1); head == nil || head.Title != "a" {
		t.Errorf("Head() after Restore = %v", head)
	}

	// Restoring an empty snapshot clears the chat entirely.
	s.Restore(1, nil)
	if s.IsActive(1) {
		t.Error("Restore(nil) should leave the chat idle")
	}
}

func TestQueueStoreSnapshotIsolation(t *testing.T) {
	s := NewQueueStore()
	s.Append(entry(1, "a"))

	snapshot := s.Snapshot(1)
	s.Append(entry(1, "b"))

	if len(snapshot) != 1 {
		t.Errorf("snapshot grew with the live queue: %d entries", len(snapshot))
	}
}

func TestQueueStoreSetNowPlaying(t *testing.T) {
	s := NewQueueStore()
	s.Append(entry(1, "playing"))

	ref := &chat.MessageRef{ChatID: 1, MessageID: 42}
	s.SetNowPlaying(1, ref)

	if head := s.Head(1); head.NowPlaying != ref {
		t.Errorf("NowPlaying = %v, expected the set ref", head.NowPlaying)
	}

	// A gone-idle chat swallows the write.
	s.Reset(1)
	s.SetNowPlaying(1, ref)
	if s.IsActive(1) {
		t.Error("SetNowPlaying on an idle chat must not recreate it")
	}
}

func TestQueueStoreCounters(t *testing.T) {
	s := NewQueueStore()
	s.Append(entry(1, "a"))
	s.Append(entry(1, "b"))
	s.Append(entry(2, "c"))

	if got := s.ActiveChats(); got != 2 {
		t.Errorf("ActiveChats() = %d, expected 2", got)
	}
	if got := s.TotalEntries(); got != 3 {
		t.Errorf("TotalEntries() = %d, expected 3", got)
	}
}
