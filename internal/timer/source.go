package timer

import (
	"sort"
	"sync"
	"time"
)

// Source supplies the current time.
type Source interface {
	Now() time.Time
}

// Scheduler runs f once after d. The returned func cancels the call if it
// has not fired yet.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (cancel func())
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

func (System) AfterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// Manual is a Source and Scheduler whose time only moves when Advance is
// called. Scheduled funcs run on the goroutine calling Advance, in due order.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	due       time.Time
	seq       int
	f         func()
	cancelled bool
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, f func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	task := &manualTask{due: m.now.Add(d), seq: m.seq, f: f}
	m.tasks = append(m.tasks, task)
	return func() {
		m.mu.Lock()
		task.cancelled = true
		m.mu.Unlock()
	}
}

// Advance moves time forward by d, firing every task that falls due on the
// way. Tasks scheduled by a firing task also run if they are due in range.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		task := m.nextDue(target)
		if task == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = task.due
		m.mu.Unlock()

		task.f()
	}
}

// Pending counts scheduled tasks that have neither fired nor been cancelled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (m *Manual) nextDue(target time.Time) *manualTask {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	m.tasks = live
	if len(m.tasks) == 0 {
		return nil
	}

	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].due.Equal(m.tasks[j].due) {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].due.Before(m.tasks[j].due)
	})
	next := m.tasks[0]
	if next.due.After(target) {
		return nil
	}
	m.tasks = m.tasks[1:]
	return next
}
