// Package loop schedules cancelable timers whose callbacks run on a single
// event thread. Timer expirations are turned into Fire messages; the owner
// of the event thread hands each one back to Dispatch, which runs the
// callback unless the task was stopped in the meantime.
package loop

import (
	"sync"
	"time"
)

// Task is a scheduled callback. Stop reports whether the task was still
// pending.
type Task interface {
	Stop() bool
}

// Scheduler creates tasks. Every calls fn at each interval until fn returns
// false or the task is stopped.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
	Every(d time.Duration, fn func() bool) Task
}

// Fire is delivered to the event thread when a timer expires.
type Fire struct {
	id uint64
}

type Loop struct {
	mu    sync.Mutex
	send  func(Fire)
	next  uint64
	tasks map[uint64]*task
}

type task struct {
	loop     *Loop
	id       uint64
	interval time.Duration
	once     func()
	repeat   func() bool
	timer    *time.Timer
}

var _ Scheduler = (*Loop)(nil)

// New returns a loop that posts expirations through send. send is called
// from timer goroutines and may block until the event thread accepts.
func New(send func(Fire)) *Loop {
	return &Loop{send: send, tasks: make(map[uint64]*task)}
}

func (l *Loop) AfterFunc(d time.Duration, fn func()) Task {
	return l.schedule(&task{interval: d, once: fn})
}

func (l *Loop) Every(d time.Duration, fn func() bool) Task {
	return l.schedule(&task{interval: d, repeat: fn})
}

func (l *Loop) schedule(t *task) Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	t.loop = l
	t.id = l.next
	l.tasks[t.id] = t
	t.arm()
	return t
}

func (t *task) arm() {
	id := t.id
	send := t.loop.send
	t.timer = time.AfterFunc(t.interval, func() { send(Fire{id: id}) })
}

// Pending returns the number of live tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// Dispatch runs the callback for f. It must be called on the event thread.
func (l *Loop) Dispatch(f Fire) {
	l.mu.Lock()
	t, ok := l.tasks[f.id]
	if ok && t.once != nil {
		delete(l.tasks, f.id)
	}
	l.mu.Unlock()
	if !ok {
		return
	}
	if t.once != nil {
		t.once()
		return
	}
	again := t.repeat()
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, live := l.tasks[f.id]; !live {
		return
	}
	if !again {
		delete(l.tasks, f.id)
		return
	}
	t.arm()
}

func (t *task) Stop() bool {
	l := t.loop
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.tasks[t.id]; !ok {
		return false
	}
	delete(l.tasks, t.id)
	if t.timer != nil {
		t.timer.Stop()
	}
	return true
}
