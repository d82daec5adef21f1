package battle

import (
	"errors"
	"sync"
	"testing"
)

func TestRegistry_AcquireRelease(t *testing.T) {
	r := NewRegistry()

	tok, err := r.Acquire("alice", "bob")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !r.Active("alice") || !r.Active("bob") {
		t.Error("Expected both ids active")
	}

	r.Release(tok)
	if r.Active("alice") || r.Active("bob") {
		t.Error("Expected both ids released")
	}
	r.Release(tok)
}

func TestRegistry_AllOrNothing(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Acquire("bob"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	_, err := r.Acquire("alice", "bob")
	if !errors.Is(err, ErrConcurrentBattle) {
		t.Fatalf("Expected ErrConcurrentBattle, got %v", err)
	}
	if r.Active("alice") {
		t.Error("Expected alice not to be held after a failed acquire")
	}
}

func TestRegistry_DuplicateIDs(t *testing.T) {
	r := NewRegistry()
	tok, err := r.Acquire("alice", "alice")
	if err != nil {
		t.Fatalf("Expected duplicates in one call to be fine, got %v", err)
	}
	r.Release(tok)
	if r.Active("alice") {
		t.Error("Expected alice released")
	}
}

func TestRegistry_StaleTokenDoesNotReleaseNewHolder(t *testing.T) {
	r := NewRegistry()
	old, _ := r.Acquire("alice")
	r.Release(old)
	if _, err := r.Acquire("alice"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	r.Release(old)
	if !r.Active("alice") {
		t.Error("Expected the new holder to keep alice")
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Acquire("alice"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Errorf("Expected exactly one winner, got %d", wins)
	}
}
