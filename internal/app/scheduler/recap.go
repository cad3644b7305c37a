// Package scheduler runs the periodic jobs: the weekly recap evaluation
// and the idle session sweep.
package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/majlis/internal/app/models"
)

// RecapGenerator publishes a recap when one is due
type RecapGenerator interface {
	GenerateWeeklyRecap(now time.Time) (models.Post, bool)
}

// Options configures a RecapScheduler
type Options struct {
	Interval time.Duration
	// RunOnStart evaluates once immediately instead of waiting a full interval
	RunOnStart bool
	Now        func() time.Time
	NewTicker  func(time.Duration) Ticker
	// OnRun is called after every evaluation
	OnRun func(published bool, took time.Duration)
}

// RecapScheduler evaluates the weekly recap on a fixed interval
type RecapScheduler struct {
	*runner
	gen  RecapGenerator
	opts Options
	log  zerolog.Logger
}

// NewRecapScheduler creates a stopped scheduler
func NewRecapScheduler(gen RecapGenerator, opts Options, log zerolog.Logger) *RecapScheduler {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewTicker == nil {
		opts.NewTicker = newRealTicker
	}

	s := &RecapScheduler{
		gen:  gen,
		opts: opts,
		log:  log.With().Str("component", "recap_scheduler").Logger(),
	}
	s.runner = &runner{
		name:       "Recap scheduler",
		interval:   opts.Interval,
		runOnStart: opts.RunOnStart,
		newTicker:  opts.NewTicker,
		fn:         func() { s.RunOnce() },
		log:        s.log,
	}
	return s
}

// RunOnce evaluates the recap at the current clock reading
func (s *RecapScheduler) RunOnce() (models.Post, bool) {
	start := time.Now()
	post, published := s.gen.GenerateWeeklyRecap(s.opts.Now())
	took := time.Since(start)

	if published {
		s.log.Info().Str("postID", post.ID).Msg("Weekly recap posted")
	} else {
		s.log.Debug().Msg("Weekly recap not due")
	}

	if s.opts.OnRun != nil {
		s.opts.OnRun(published, took)
	}
	return post, published
}
