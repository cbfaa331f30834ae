package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrMissingJobID       = errors.New("scheduler: job id is required")
	ErrStopped            = errors.New("scheduler: engine stopped")
)

// Job is one pending timer. IDs are unique within an engine; scheduling an
// ID that is already queued moves it instead of adding a second entry.
type Job struct {
	ID        string
	Kind      string
	TriggerAt time.Time
}

type jobQueue struct {
	items []Job
	index map[string]int
}

func (q *jobQueue) Len() int { return len(q.items) }

func (q *jobQueue) Less(i, j int) bool {
	return q.items[i].TriggerAt.Before(q.items[j].TriggerAt)
}

func (q *jobQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.index[q.items[i].ID] = i
	q.index[q.items[j].ID] = j
}

func (q *jobQueue) Push(x any) {
	job := x.(Job)
	q.index[job.ID] = len(q.items)
	q.items = append(q.items, job)
}

func (q *jobQueue) Pop() any {
	n := len(q.items)
	job := q.items[n-1]
	q.items = q.items[:n-1]
	delete(q.index, job.ID)
	return job
}

// Engine fires jobs on C() once their trigger time passes. A consumer that
// falls behind loses jobs; they are counted in Dropped.
type Engine struct {
	mu      sync.Mutex
	queue   jobQueue
	out     chan Job
	wakeup  chan struct{}
	done    chan struct{}
	cancel  context.CancelFunc
	started bool
	stopped bool
	dropped atomic.Uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  jobQueue{index: make(map[string]int)},
		out:    make(chan Job, bufferSize),
		wakeup: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (e *Engine) C() <-chan Job { return e.out }

// Start runs the timer loop until ctx ends or Stop is called. C is closed
// when the loop exits.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	ctx, e.cancel = context.WithCancel(ctx)
	go e.loop(ctx)
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	started := e.started
	if e.cancel != nil {
		e.cancel()
	}
	e.mu.Unlock()
	if started {
		<-e.done
	}
}

func (e *Engine) Schedule(job Job) error {
	if job.ID == "" {
		return ErrMissingJobID
	}
	if job.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}
	if i, ok := e.queue.index[job.ID]; ok {
		e.queue.items[i] = job
		heap.Fix(&e.queue, i)
	} else {
		heap.Push(&e.queue, job)
	}
	e.signalWakeup()
	return nil
}

// Cancel removes a queued job and reports whether it was pending.
func (e *Engine) Cancel(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, ok := e.queue.index[id]
	if !ok {
		return false
	}
	heap.Remove(&e.queue, i)
	e.signalWakeup()
	return true
}

func (e *Engine) Dropped() uint64 { return e.dropped.Load() }

// Pending reports how many jobs are waiting to fire.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Len()
}

func (e *Engine) loop(ctx context.Context) {
	defer close(e.done)
	defer close(e.out)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		next, ok := e.peek()
		if ok {
			timer.Reset(max(time.Until(next.TriggerAt), 0))
		} else {
			timer.Stop()
		}

		select {
		case <-ctx.Done():
			return
		case <-e.wakeup:
		case now := <-timer.C:
			for _, job := range e.popDue(now) {
				select {
				case e.out <- job:
				default:
					e.dropped.Add(1)
				}
			}
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (Job, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queue.Len() == 0 {
		return Job{}, false
	}
	return e.queue.items[0], true
}

func (e *Engine) popDue(now time.Time) []Job {
	e.mu.Lock()
	defer e.mu.Unlock()

	var due []Job
	for e.queue.Len() > 0 && !e.queue.items[0].TriggerAt.After(now) {
		due = append(due, heap.Pop(&e.queue).(Job))
	}
	return due
}
