package buffer

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "buffer.db"), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreOrdersByPriorityThenTime(t *testing.T) {
	store := openTemp(t)
	base := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	items := []Item{
		{ID: "profile", Entity: EntityProfile, Priority: PriorityProfile, Timestamp: base},
		{ID: "task-late", Entity: EntityTask, Priority: PriorityTask, Timestamp: base.Add(time.Minute)},
		{ID: "task-early", Entity: EntityTask, Priority: PriorityTask, Timestamp: base},
		{ID: "transition", Entity: EntityTask, Priority: PriorityTransition, Timestamp: base.Add(time.Hour)},
	}
	for _, item := range items {
		if err := store.Enqueue(item); err != nil {
			t.Fatalf("Enqueue(%s): %v", item.ID, err)
		}
	}

	got, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	want := []string{"transition", "task-early", "task-late", "profile"}
	if len(got) != len(want) {
		t.Fatalf("GetBatch returned %d items, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("item %d = %s, want %s", i, got[i].ID, id)
		}
	}

	limited, err := store.GetBatch(2)
	if err != nil {
		t.Fatalf("GetBatch(2): %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("GetBatch(2) returned %d items", len(limited))
	}
}

func TestStoreRemoveAndRetry(t *testing.T) {
	store := openTemp(t)
	payload, _ := json.Marshal(map[string]string{"id": "t1"})
	base := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	if err := store.Enqueue(Item{ID: "a", Entity: EntityTask, EntityID: "t1", Data: payload, Timestamp: base}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := store.Enqueue(Item{ID: "b", Entity: EntityTask, EntityID: "t1", Timestamp: base.Add(time.Second)}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := store.Enqueue(Item{ID: "c", Entity: EntityLeave, Priority: PriorityLeave, Timestamp: base}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	batch, err := store.GetBatch(10)
	if err != nil || len(batch) != 3 {
		t.Fatalf("GetBatch = %d items, err %v", len(batch), err)
	}
	first := batch[1]
	if first.ID != "a" || string(first.Data) != string(payload) {
		t.Fatalf("unexpected item %+v", first)
	}
	if first.Subject() != "task:t1" {
		t.Errorf("subject = %q", first.Subject())
	}

	first.Retries++
	first.LastError = "connection reset"
	if err := store.Retry(first); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if err := store.Retry(Item{ID: "x"}); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("Retry of unread item err = %v", err)
	}

	again, _ := store.GetBatch(10)
	if len(again) != 3 || again[1].ID != "a" || again[1].Retries != 1 || again[1].LastError == "" {
		t.Fatalf("retried item should keep its position: %+v", again)
	}

	// Remove without a bucket key falls back to a scan by id.
	if err := store.Remove(Item{ID: "c"}); err != nil {
		t.Fatalf("Remove by id: %v", err)
	}
	if err := store.Remove(again[1]); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	rest, _ := store.GetBatch(10)
	if len(rest) != 1 || rest[0].ID != "b" {
		t.Fatalf("remaining = %+v", rest)
	}
}

func TestStorePendingByEntity(t *testing.T) {
	store := openTemp(t)
	for i, entity := range []string{EntityTask, EntityTask, EntityLeave, EntityProfile} {
		if err := store.Enqueue(Item{ID: string(rune('a' + i)), Entity: entity}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	pending, err := store.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if pending[EntityTask] != 2 || pending[EntityLeave] != 1 || pending[EntityProfile] != 1 {
		t.Fatalf("pending = %v", pending)
	}
}

func TestStoreCleanup(t *testing.T) {
	store := openTemp(t)
	now := time.Now()
	for i, age := range []time.Duration{72 * time.Hour, 48 * time.Hour, 30 * time.Hour, time.Hour} {
		item := Item{ID: string(rune('a' + i)), Entity: EntityTask, Timestamp: now.Add(-age)}
		if err := store.Enqueue(item); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	removed, err := store.Cleanup(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	if size, _ := store.Size(); size != 1 {
		t.Errorf("size = %d, want 1", size)
	}
}
