package performance

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkerPoolRunsTasks(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Stop()

	var counter atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		ok := pool.Submit(func() {
			counter.Add(1)
			wg.Done()
		})
		if !ok {
			t.Fatal("Submit returned false on a running pool")
		}
	}
	wg.Wait()

	if got := counter.Load(); got != 100 {
		t.Errorf("ran %d tasks, want 100", got)
	}
}

func TestDoWaitsForAllTasks(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Stop()

	results := make([]int, 50)
	tasks := make([]func(), 50)
	for i := range tasks {
		i := i
		tasks[i] = func() { results[i] = i + 1 }
	}
	pool.Do(tasks)

	for i, r := range results {
		if r != i+1 {
			t.Fatalf("task %d not completed before Do returned", i)
		}
	}
}

func TestDoFallsBackInlineWhenNotStarted(t *testing.T) {
	pool := NewWorkerPool(4)

	ran := false
	pool.Do([]func(){func() { ran = true }})
	if !ran {
		t.Error("Do on a stopped pool did not run the task inline")
	}
}

func TestSubmitAfterStop(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Stop()

	if pool.Submit(func() {}) {
		t.Error("Submit returned true on a stopped pool")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Start() // no-op

	var wg sync.WaitGroup
	wg.Add(1)
	pool.Submit(func() { wg.Done() })
	wg.Wait()
	pool.Stop()

	if pool.TasksDone() == 0 {
		t.Error("TasksDone not incremented")
	}
}
