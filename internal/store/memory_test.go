package store

import (
	"context"
	"testing"
)

var _ Store[record] = (*MemoryStore[record])(nil)

type record struct {
	Name  string
	Items map[string]int
}

func copyRecord(r record) record {
	out := record{Name: r.Name, Items: make(map[string]int, len(r.Items))}
	for k, v := range r.Items {
		out.Items[k] = v
	}
	return out
}

func TestMemoryStore_GetPut(t *testing.T) {
	store := NewMemoryStore[string]()
	ctx := context.Background()

	if err := store.Put(ctx, "p1", "alice"); err != nil {
		t.Fatalf("Unexpected error on Put: %v", err)
	}

	got, ok, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Unexpected error on Get: %v", err)
	}
	if !ok {
		t.Error("Expected value to exist")
	}
	if got != "alice" {
		t.Errorf("Expected value 'alice', got '%s'", got)
	}

	_, ok, err = store.Get(ctx, "non-existent")
	if err != nil {
		t.Fatalf("Unexpected error on Get: %v", err)
	}
	if ok {
		t.Error("Expected value to not exist")
	}
}

func TestMemoryStore_Overwrite(t *testing.T) {
	store := NewMemoryStore[int]()
	ctx := context.Background()

	_ = store.Put(ctx, "rp", 10)
	if err := store.Put(ctx, "rp", 20); err != nil {
		t.Fatalf("Unexpected error on overwrite Put: %v", err)
	}

	got, ok, _ := store.Get(ctx, "rp")
	if !ok || got != 20 {
		t.Errorf("Expected value 20, got %d", got)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", store.Len())
	}
}

func TestMemoryStore_Copying(t *testing.T) {
	store := NewCopyingMemoryStore(copyRecord)
	ctx := context.Background()

	in := record{Name: "alice", Items: map[string]int{"Power Band Rare": 1}}
	_ = store.Put(ctx, "p1", in)
	in.Items["Power Band Rare"] = 9

	got, _, _ := store.Get(ctx, "p1")
	if got.Items["Power Band Rare"] != 1 {
		t.Errorf("Expected stored copy to ignore later writes, got %d", got.Items["Power Band Rare"])
	}
	got.Items["Power Band Rare"] = 5

	again, _, _ := store.Get(ctx, "p1")
	if again.Items["Power Band Rare"] != 1 {
		t.Errorf("Expected reads to be independent, got %d", again.Items["Power Band Rare"])
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore[int]()
	ctx := context.Background()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(id int) {
			if err := store.Put(ctx, "key", id); err != nil {
				t.Errorf("Error in concurrent Put: %v", err)
			}
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	_, ok, err := store.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Unexpected error on Get: %v", err)
	}
	if !ok {
		t.Error("Expected value to exist after concurrent writes")
	}
}
