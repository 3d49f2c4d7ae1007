// Package dispatch runs fire-and-forget tasks on a bounded worker pool.
// The webhook handler hands import work off here so the HTTP response
// can go out immediately.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"stridesync/internal/shared/goroutine"
	"stridesync/internal/shared/logger"
)

// Task is one unit of asynchronous work. The context passed in is the
// dispatcher's own lifecycle context, not the submitting request's: the
// HTTP request that queued the task is finished by the time it runs.
type Task func(ctx context.Context)

// Dispatcher owns a bounded queue and a fixed set of workers. Enqueue
// never blocks; a full queue rejects the task and the periodic
// reconciliation sweep picks the work up later.
type Dispatcher struct {
	queue   chan queuedTask
	logger  logger.Interface
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	startMu sync.Mutex
	started bool
}

type queuedTask struct {
	id   string
	name string
	run  Task
}

func NewDispatcher(queueSize, workers int, log logger.Interface) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if workers <= 0 {
		workers = 4
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		queue:  make(chan queuedTask, queueSize),
		logger: log.Named("dispatcher"),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.started = true
	return d
}

// Enqueue queues a task for asynchronous execution. Returns an error
// when the dispatcher is stopped or the queue is full; the caller is
// expected to log and move on, never to retry.
func (d *Dispatcher) Enqueue(name string, task Task) error {
	// the send happens under startMu so Stop cannot close the queue
	// between the started check and the send.
	d.startMu.Lock()
	defer d.startMu.Unlock()

	if !d.started {
		return fmt.Errorf("dispatcher is stopped")
	}

	qt := queuedTask{id: uuid.NewString(), name: name, run: task}
	select {
	case d.queue <- qt:
		d.logger.Debugw("task queued", "task_id", qt.id, "task", name)
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// Stop drains the queue and waits for in-flight tasks, up to the
// context deadline. Workers finish their current task; queued tasks
// still run unless the deadline fires first.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.startMu.Lock()
	if !d.started {
		d.startMu.Unlock()
		return nil
	}
	d.started = false
	close(d.queue)
	d.startMu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		return fmt.Errorf("dispatcher drain interrupted: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker(n int) {
	defer d.wg.Done()
	name := fmt.Sprintf("dispatch-worker-%d", n)

	for qt := range d.queue {
		d.runTask(name, qt)
	}
}

func (d *Dispatcher) runTask(worker string, qt queuedTask) {
	defer goroutine.Recover(d.logger, worker+" "+qt.name)
	d.logger.Debugw("task running", "task_id", qt.id, "task", qt.name, "worker", worker)
	qt.run(d.ctx)
}
