package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	done := make(chan struct{}, 3)

	p := NewPool(2, 4, func(task Task) {
		mu.Lock()
		seen[task.JobID] = true
		mu.Unlock()
		done <- struct{}{}
	})

	for _, id := range []string{"a", "b", "c"} {
		if err := p.Submit(Task{JobID: id}); err != nil {
			t.Fatalf("Submit(%s): %v", id, err)
		}
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for tasks")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 {
		t.Errorf("ran %d tasks, want 3", len(seen))
	}
}

func TestPool_RejectsWhenFull(t *testing.T) {
	block := make(chan struct{})
	p := NewPool(1, 1, func(Task) { <-block })

	// First task occupies the worker, second fills the queue.
	if err := p.Submit(Task{JobID: "running"}); err != nil {
		t.Fatalf("Submit running: %v", err)
	}
	// Give the worker time to pick up the first task.
	deadline := time.Now().Add(time.Second)
	for {
		if err := p.Submit(Task{JobID: "queued"}); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("queue slot never freed")
		}
		time.Sleep(time.Millisecond)
	}

	err := p.Submit(Task{JobID: "rejected"})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("Submit on full queue: want ErrBusy, got %v", err)
	}

	close(block)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := NewPool(1, 1, func(Task) {})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := p.Submit(Task{JobID: "late"}); err == nil {
		t.Fatal("Submit after Shutdown should fail")
	}
}
