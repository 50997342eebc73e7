package events

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestMemorySequence_PerKeyCounters(t *testing.T) {
	seq := NewMemorySequence()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, "task-a")
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got != want {
			t.Errorf("task-a sequence = %d, want %d", got, want)
		}
	}

	// A different key starts its own counter at 1.
	got, err := seq.Next(ctx, "task-b")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != 1 {
		t.Errorf("task-b sequence = %d, want 1", got)
	}
}

func TestMemorySequence_Concurrent(t *testing.T) {
	seq := NewMemorySequence()
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	seen := make(chan int64, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := seq.Next(ctx, "task-a")
			if err != nil {
				t.Errorf("Next: %v", err)
				return
			}
			seen <- n
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int64]bool)
	for n := range seen {
		if unique[n] {
			t.Errorf("duplicate sequence %d", n)
		}
		unique[n] = true
	}
	if len(unique) != goroutines {
		t.Errorf("got %d unique sequences, want %d", len(unique), goroutines)
	}
}

func TestMemorySequence_ConcurrentAcrossKeys(t *testing.T) {
	seq := NewMemorySequence()
	ctx := context.Background()

	const keys = 10
	const perKey = 20
	var wg sync.WaitGroup
	for k := 0; k < keys; k++ {
		key := fmt.Sprintf("task-%d", k)
		for i := 0; i < perKey; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := seq.Next(ctx, key); err != nil {
					t.Errorf("Next(%s): %v", key, err)
				}
			}()
		}
	}
	wg.Wait()

	// Every key's counter must have advanced independently to perKey.
	for k := 0; k < keys; k++ {
		key := fmt.Sprintf("task-%d", k)
		n, err := seq.Next(ctx, key)
		if err != nil {
			t.Fatalf("Next(%s): %v", key, err)
		}
		if n != perKey+1 {
			t.Errorf("%s counter = %d, want %d", key, n, perKey+1)
		}
	}
}
