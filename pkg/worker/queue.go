package worker

import "github.com/jzx17/dpool/pkg/types"

// taskQueue is a FIFO ring buffer of pending tasks.
// It has no lock of its own; every call must hold Pool.mu.
type taskQueue struct {
	buf  []types.Task
	head int
	size int
}

func newTaskQueue(capacity int) *taskQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &taskQueue{buf: make([]types.Task, capacity)}
}

// push appends task at the tail, growing the ring when full
func (q *taskQueue) push(task types.Task) {
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.size)%len(q.buf)] = task
	q.size++
}

// pop removes and returns the head task
func (q *taskQueue) pop() (types.Task, bool) {
	if q.size == 0 {
		return nil, false
	}
	task := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return task, true
}

// drain removes every pending task in FIFO order
func (q *taskQueue) drain() []types.Task {
	tasks := make([]types.Task, 0, q.size)
	for {
		task, ok := q.pop()
		if !ok {
			return tasks
		}
		tasks = append(tasks, task)
	}
}

func (q *taskQueue) len() int {
	return q.size
}

func (q *taskQueue) grow() {
	buf := make([]types.Task, len(q.buf)*2)
	for i := 0; i < q.size; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}
