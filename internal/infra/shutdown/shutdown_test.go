// Package shutdown provides graceful shutdown handling.
package shutdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestHandler_HooksRunInReverseOrder(t *testing.T) {
	h := NewHandler(time.Second)

	var mu sync.Mutex
	var order []int
	for i := 0; i < 3; i++ {
		h.OnShutdown(func(context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()
	time.Sleep(20 * time.Millisecond)
	h.Trigger()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Wait returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []int{2, 1, 0}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("hook order = %v, want %v", order, want)
		}
	}
}

func TestHandler_ReturnsHookError(t *testing.T) {
	h := NewHandler(time.Second)
	hookErr := errors.New("store close failed")
	h.OnShutdown(func(context.Context) error { return hookErr })
	h.OnShutdown(func(context.Context) error { return nil })

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()
	time.Sleep(20 * time.Millisecond)
	h.Trigger()

	select {
	case err := <-errCh:
		if !errors.Is(err, hookErr) {
			t.Errorf("Wait returned %v, want hook error", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return")
	}
}

func TestHandler_DoneClosesAfterWait(t *testing.T) {
	h := NewHandler(time.Second)

	go h.Wait()
	time.Sleep(20 * time.Millisecond)

	select {
	case <-h.Done():
		t.Fatal("Done closed before shutdown")
	default:
	}

	h.Trigger()
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done did not close")
	}
}

func TestHandler_HookContextHasDeadline(t *testing.T) {
	h := NewHandler(100 * time.Millisecond)

	deadlineSet := make(chan bool, 1)
	h.OnShutdown(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		deadlineSet <- ok
		return nil
	})

	go h.Wait()
	time.Sleep(20 * time.Millisecond)
	h.Trigger()

	select {
	case ok := <-deadlineSet:
		if !ok {
			t.Error("hook context should carry the shutdown deadline")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hook did not run")
	}
}
