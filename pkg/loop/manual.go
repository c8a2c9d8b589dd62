package loop

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler driven by Advance. Callbacks run
// synchronously inside Advance, in due-time order.
type Manual struct {
	now   time.Duration
	next  uint64
	tasks []*manualTask
}

type manualTask struct {
	m        *Manual
	id       uint64
	due      time.Duration
	interval time.Duration
	once     func()
	repeat   func() bool
	live     bool
}

var _ Scheduler = (*Manual)(nil)

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Task {
	return m.add(&manualTask{interval: d, once: fn})
}

func (m *Manual) Every(d time.Duration, fn func() bool) Task {
	return m.add(&manualTask{interval: d, repeat: fn})
}

func (m *Manual) add(t *manualTask) Task {
	m.next++
	t.m = m
	t.id = m.next
	t.due = m.now + t.interval
	t.live = true
	m.tasks = append(m.tasks, t)
	return t
}

func (t *manualTask) Stop() bool {
	if !t.live {
		return false
	}
	t.live = false
	t.m.prune()
	return true
}

func (m *Manual) prune() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if t.live {
			live = append(live, t)
		}
	}
	m.tasks = live
}

// Pending returns the number of live tasks.
func (m *Manual) Pending() int {
	return len(m.tasks)
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Advance moves virtual time forward by d, firing every task that comes due.
func (m *Manual) Advance(d time.Duration) {
	end := m.now + d
	for {
		t := m.earliest()
		if t == nil || t.due > end {
			break
		}
		m.now = t.due
		if t.once != nil {
			t.live = false
			m.prune()
			t.once()
			continue
		}
		if t.repeat() && t.live {
			t.due = m.now + t.interval
		} else {
			t.live = false
			m.prune()
		}
	}
	m.now = end
}

func (m *Manual) earliest() *manualTask {
	if len(m.tasks) == 0 {
		return nil
	}
	sorted := append([]*manualTask(nil), m.tasks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].due == sorted[j].due {
			return sorted[i].id < sorted[j].id
		}
		return sorted[i].due < sorted[j].due
	})
	return sorted[0]
}
