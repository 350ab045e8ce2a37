// Package sched queues work between simulation passes. Blocks defer
// their mutations through it so a scheduling pass never observes a
// half-moved world, and background loaders hand results back through
// the same queue.
package sched

import (
	"sync"

	"github.com/pn2s/factory/internal/block"
	"github.com/pn2s/factory/internal/grid"
)

// Queue collects tasks in FIFO order. Safe for concurrent producers;
// draining hands the whole backlog to a single consumer.
type Queue struct {
	mu    sync.Mutex
	tasks []Task
}

func NewQueue() *Queue {
	return &Queue{}
}

// Schedule appends t to the backlog.
func (q *Queue) Schedule(t Task) {
	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()
}

// ScheduleUpdate queues deferred block work.
func (q *Queue) ScheduleUpdate(fn block.UpdateFn, meta grid.BlockMeta) {
	q.Schedule(UpdateBlock{Fn: fn, Meta: meta})
}

// Drain takes the whole backlog, leaving the queue empty. Tasks come
// back in the order they were scheduled.
func (q *Queue) Drain() []Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.tasks
	q.tasks = nil
	return out
}

// Len reports the pending task count.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

var _ block.Scheduler = (*Queue)(nil)
