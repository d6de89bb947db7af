package fanout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestBatch_SettleAll(t *testing.T) {
	boom := errors.New("boom")
	tasks := []Task{
		{Name: "a", Run: func(ctx context.Context) (interface{}, error) { return 1, nil }},
		{Name: "b", Run: func(ctx context.Context) (interface{}, error) { return nil, boom }},
		{Name: "c", Run: func(ctx context.Context) (interface{}, error) { return 3, nil }},
	}

	results := Batch(context.Background(), 0, tasks)
	if len(results) != 3 {
		t.Fatalf("got %d results; want 3", len(results))
	}
	byName := ByName(results)
	if byName["a"].Err != nil || byName["a"].Value != 1 {
		t.Errorf("task a: %+v", byName["a"])
	}
	if !errors.Is(byName["b"].Err, boom) {
		t.Errorf("task b error = %v; want boom", byName["b"].Err)
	}
	if byName["c"].Err != nil || byName["c"].Value != 3 {
		t.Errorf("task c must settle despite b failing: %+v", byName["c"])
	}
}

func TestBatch_FailureDoesNotCancelSiblings(t *testing.T) {
	// a fails immediately; b keeps running and must still complete
	tasks := []Task{
		{Name: "a", Run: func(ctx context.Context) (interface{}, error) {
			return nil, errors.New("instant failure")
		}},
		{Name: "b", Run: func(ctx context.Context) (interface{}, error) {
			select {
			case <-time.After(50 * time.Millisecond):
				return "done", nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}},
	}

	byName := ByName(Batch(context.Background(), 0, tasks))
	if byName["b"].Err != nil {
		t.Errorf("sibling was cancelled: %v", byName["b"].Err)
	}
	if byName["b"].Value != "done" {
		t.Errorf("sibling value = %v; want done", byName["b"].Value)
	}
}

func TestBatch_PerTaskTimeout(t *testing.T) {
	tasks := []Task{
		{Name: "slow", Timeout: 20 * time.Millisecond, Run: func(ctx context.Context) (interface{}, error) {
			select {
			case <-time.After(time.Second):
				return "late", nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}},
		{Name: "fast", Timeout: time.Second, Run: func(ctx context.Context) (interface{}, error) {
			return "ok", nil
		}},
	}

	byName := ByName(Batch(context.Background(), 0, tasks))
	if !errors.Is(byName["slow"].Err, context.DeadlineExceeded) {
		t.Errorf("slow task error = %v; want deadline exceeded", byName["slow"].Err)
	}
	if byName["fast"].Err != nil {
		t.Errorf("fast task failed: %v", byName["fast"].Err)
	}
}

func TestBatch_RecoversPanics(t *testing.T) {
	tasks := []Task{
		{Name: "panicky", Run: func(ctx context.Context) (interface{}, error) {
			panic("oops")
		}},
		{Name: "ok", Run: func(ctx context.Context) (interface{}, error) { return 42, nil }},
	}

	byName := ByName(Batch(context.Background(), 0, tasks))
	if byName["panicky"].Err == nil {
		t.Error("panic must settle as an error")
	}
	if byName["ok"].Value != 42 {
		t.Errorf("ok task = %+v", byName["ok"])
	}
}

func TestBatch_BoundedConcurrency(t *testing.T) {
	const n = 8
	var inFlight, peak int32

	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{Name: "t", Run: func(ctx context.Context) (interface{}, error) {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return nil, nil
		}}
	}

	Batch(context.Background(), 2, tasks)
	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Errorf("peak concurrency = %d; want <= 2", p)
	}
}
