package scope

// Scheduler defers work to a later point of the caller's loop.
type Scheduler interface {
	Schedule(task func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(task func())

// Schedule implements Scheduler.
func (f SchedulerFunc) Schedule(task func()) { f(task) }

// Queue is a FIFO scheduler driven by its owner. Tasks scheduled while a
// tick is running are deferred to the next tick.
type Queue struct {
	tasks []func()
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Schedule appends task to the queue.
func (q *Queue) Schedule(task func()) {
	if task != nil {
		q.tasks = append(q.tasks, task)
	}
}

// Pending returns the number of queued tasks.
func (q *Queue) Pending() int {
	return len(q.tasks)
}

// Tick runs the tasks queued before the call and returns how many ran.
func (q *Queue) Tick() int {
	batch := q.tasks
	q.tasks = nil
	for _, task := range batch {
		task()
	}
	return len(batch)
}

// Drain ticks until the queue is empty and returns the number of tasks run.
func (q *Queue) Drain() int {
	n := 0
	for len(q.tasks) > 0 {
		n += q.Tick()
	}
	return n
}
