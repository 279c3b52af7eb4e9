package timer

import (
	"context"
	"sync"
	"time"
)

// Loop calls a tick func every interval until it is stopped or its context
// is cancelled. Each tick re-arms the next one, so a slow tick delays the
// following tick instead of piling up.
type Loop struct {
	scheduler Scheduler
	interval  time.Duration
	tick      func()

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	pending func()
}

// StartLoop arms the first tick one interval from now.
func StartLoop(ctx context.Context, scheduler Scheduler, interval time.Duration, tick func()) *Loop {
	ctx, cancel := context.WithCancel(ctx)
	l := &Loop{
		scheduler: scheduler,
		interval:  interval,
		tick:      tick,
		ctx:       ctx,
		cancel:    cancel,
	}
	l.arm()
	return l
}

func (l *Loop) arm() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ctx.Err() != nil {
		return
	}
	l.pending = l.scheduler.AfterFunc(l.interval, l.fire)
}

func (l *Loop) fire() {
	if l.ctx.Err() != nil {
		return
	}
	l.tick()
	l.arm()
}

// Stop cancels the loop. It does not wait for a tick already running, so it
// is safe to call from inside the tick func. Stop is idempotent.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel()
	if l.pending != nil {
		l.pending()
		l.pending = nil
	}
}

// Running reports whether the loop has not been stopped.
func (l *Loop) Running() bool {
	return l.ctx.Err() == nil
}
