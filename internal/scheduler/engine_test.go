package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func startEngine(t *testing.T, buffer int) *Engine {
	t.Helper()
	engine := NewEngine(buffer)
	engine.Start(t.Context())
	t.Cleanup(engine.Stop)
	return engine
}

func TestEngineFiresInTriggerOrder(t *testing.T) {
	engine := startEngine(t, 8)

	now := time.Now()
	if err := engine.Schedule(Job{ID: "later", TriggerAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(Job{ID: "sooner", TriggerAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitJob(t, engine.C(), time.Second)
	second := waitJob(t, engine.C(), time.Second)
	if first.ID != "sooner" || second.ID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
}

func TestScheduleSameIDMovesJob(t *testing.T) {
	engine := startEngine(t, 4)

	if err := engine.Schedule(Job{ID: "weekly", TriggerAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := engine.Schedule(Job{ID: "weekly", TriggerAt: time.Now().Add(10 * time.Millisecond)}); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if engine.Pending() != 1 {
		t.Fatalf("expected 1 pending job, got %d", engine.Pending())
	}
	if job := waitJob(t, engine.C(), time.Second); job.ID != "weekly" {
		t.Fatalf("unexpected job %q", job.ID)
	}
}

func TestCancelRemovesPendingJob(t *testing.T) {
	engine := startEngine(t, 4)

	now := time.Now()
	_ = engine.Schedule(Job{ID: "a", TriggerAt: now.Add(30 * time.Millisecond)})
	_ = engine.Schedule(Job{ID: "b", TriggerAt: now.Add(40 * time.Millisecond)})

	if !engine.Cancel("a") {
		t.Fatal("expected a to be pending")
	}
	if engine.Cancel("missing") {
		t.Fatal("cancel of unknown id reported success")
	}
	if job := waitJob(t, engine.C(), time.Second); job.ID != "b" {
		t.Fatalf("expected b, got %q", job.ID)
	}
}

func TestSlowConsumerDropsJobs(t *testing.T) {
	engine := startEngine(t, 1)

	due := time.Now().Add(20 * time.Millisecond)
	for i := range 25 {
		if err := engine.Schedule(Job{ID: fmt.Sprintf("job-%d", i), TriggerAt: due}); err != nil {
			t.Fatalf("schedule job: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped jobs > 0, got %d", engine.Dropped())
	}
}

func TestScheduleValidatesJob(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(Job{ID: "bad"}); !errors.Is(err, ErrInvalidTriggerTime) {
		t.Fatalf("expected ErrInvalidTriggerTime, got %v", err)
	}
	if err := engine.Schedule(Job{TriggerAt: time.Now()}); !errors.Is(err, ErrMissingJobID) {
		t.Fatalf("expected ErrMissingJobID, got %v", err)
	}
}

func TestScheduleAfterStopFails(t *testing.T) {
	engine := NewEngine(1)
	engine.Start(t.Context())
	if err := engine.Schedule(Job{ID: "later", TriggerAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	engine.Stop()
	if err := engine.Schedule(Job{ID: "late", TriggerAt: time.Now()}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if _, open := <-engine.C(); open {
		t.Fatal("expected output channel to be closed after stop")
	}
}

func TestContextCancelClosesChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	engine := NewEngine(1)
	engine.Start(ctx)
	defer engine.Stop()

	cancel()
	select {
	case _, open := <-engine.C():
		if open {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("engine did not stop on context cancel")
	}
}

func TestConcurrentScheduleDeliversEveryJob(t *testing.T) {
	engine := startEngine(t, 4096)

	const workers = 8
	const perWorker = 100
	total := workers * perWorker

	now := time.Now()
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				job := Job{
					ID:        fmt.Sprintf("u%d-%d", w, i),
					Kind:      KindWeeklyReview,
					TriggerAt: now.Add(time.Duration((w+i)%50+10) * time.Millisecond),
				}
				if err := engine.Schedule(job); err != nil {
					t.Errorf("schedule failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	deadline := time.After(5 * time.Second)
	for received := 0; received < total; received++ {
		select {
		case <-deadline:
			t.Fatalf("timeout: received=%d total=%d dropped=%d", received, total, engine.Dropped())
		case <-engine.C():
		}
	}
	if engine.Dropped() != 0 {
		t.Fatalf("expected zero drops with active consumer, got %d", engine.Dropped())
	}
}

func waitJob(t *testing.T, ch <-chan Job, timeout time.Duration) Job {
	t.Helper()
	select {
	case job := <-ch:
		return job
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for job")
		return Job{}
	}
}
