package result

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs f once after d. The returned cancel reports whether the task
// was stopped before it ran.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (cancel func() bool)
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(d time.Duration, f func()) func() bool

// AfterFunc implements Scheduler.
func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) func() bool { return fn(d, f) }

// TimerScheduler schedules on real timers.
var TimerScheduler Scheduler = SchedulerFunc(func(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
})

// ManualScheduler fires tasks only when Advance moves its clock past their
// deadline.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks map[int]*manualTask
}

type manualTask struct {
	at  time.Duration
	seq int
	f   func()
}

// NewManualScheduler returns a scheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[int]*manualTask)}
}

// AfterFunc implements Scheduler.
func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := m.seq
	m.tasks[id] = &manualTask{at: m.now + d, seq: id, f: f}
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.tasks[id]; !ok {
			return false
		}
		delete(m.tasks, id)
		return true
	}
}

// Advance moves the clock by d and runs every task now due, in deadline order.
// Tasks run without the scheduler lock held.
func (m *ManualScheduler) Advance(d time.Duration) int {
	m.mu.Lock()
	m.now += d
	var due []*manualTask
	for id, t := range m.tasks {
		if t.at <= m.now {
			due = append(due, t)
			delete(m.tasks, id)
		}
	}
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at == due[j].at {
			return due[i].seq < due[j].seq
		}
		return due[i].at < due[j].at
	})
	for _, t := range due {
		t.f()
	}
	return len(due)
}

// Pending returns the number of scheduled tasks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
