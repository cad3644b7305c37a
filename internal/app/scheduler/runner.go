package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Ticker abstracts time.Ticker so tests can drive ticks by hand
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker { return realTicker{t: time.NewTicker(d)} }

// runner calls fn on every tick until its context ends or Stop is called
type runner struct {
	name       string
	interval   time.Duration
	runOnStart bool
	newTicker  func(time.Duration) Ticker
	fn         func()
	log        zerolog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Start launches the loop. It returns at once; the loop ends when ctx is
// cancelled or Stop is called. Starting a running loop does nothing.
func (r *runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true

	ticker := r.newTicker(r.interval)
	go r.loop(ctx, ticker, r.done)

	r.log.Info().Dur("interval", r.interval).Msgf("%s started", r.name)
}

// Stop cancels the loop and waits for it to exit. It is safe to call
// more than once.
func (r *runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel, done := r.cancel, r.done
	r.running = false
	r.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether the loop is active
func (r *runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *runner) loop(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	if r.runOnStart {
		r.fn()
	}

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msgf("%s stopped", r.name)
			return
		case <-ticker.C():
			r.fn()
		}
	}
}
