package concurrency

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestExecutor_Submit(t *testing.T) {
	exec := NewExecutor(context.Background(), ExecutorConfig{Workers: 2, QueueSize: 10})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = exec.Shutdown(ctx)
	}()

	var ran int32
	done := make(chan struct{})
	err := exec.Submit(TaskFunc(func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		close(done)
		return nil
	}))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task not executed")
	}
	if atomic.LoadInt32(&ran) != 1 {
		t.Errorf("task ran %d times, want 1", ran)
	}
}

func TestExecutor_SubmitNil(t *testing.T) {
	exec := NewExecutor(context.Background(), DefaultExecutorConfig())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = exec.Shutdown(ctx)
	}()

	if err := exec.Submit(nil); err == nil {
		t.Error("Submit(nil) should fail")
	}
}

func TestExecutor_SubmitAfterShutdown(t *testing.T) {
	exec := NewExecutor(context.Background(), ExecutorConfig{Workers: 1, QueueSize: 1})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := exec.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	// Second shutdown is a no-op.
	if err := exec.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}

	if err := exec.Submit(TaskFunc(func(ctx context.Context) error { return nil })); err == nil {
		t.Error("Submit() after Shutdown should fail")
	}
}

func TestNamedTask(t *testing.T) {
	task := NewNamedTask("dispatch-test", func(ctx context.Context) error { return nil })
	if task.Name() != "dispatch-test" {
		t.Errorf("Name() = %q, want %q", task.Name(), "dispatch-test")
	}
	if err := task.Execute(context.Background()); err != nil {
		t.Errorf("Execute() error = %v", err)
	}
}
