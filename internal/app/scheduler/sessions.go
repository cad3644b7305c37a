package scheduler

import (
	"time"

	"github.com/rs/zerolog"
)

// SessionPruner drops sessions that have gone idle
type SessionPruner interface {
	PruneClients(now time.Time) int
}

// SweepOptions configures a SessionSweeper
type SweepOptions struct {
	Interval  time.Duration
	Now       func() time.Time
	NewTicker func(time.Duration) Ticker
}

// SessionSweeper prunes idle sessions on a fixed interval
type SessionSweeper struct {
	*runner
	pruner SessionPruner
	now    func() time.Time
	log    zerolog.Logger
}

// NewSessionSweeper creates a stopped sweeper
func NewSessionSweeper(pruner SessionPruner, opts SweepOptions, log zerolog.Logger) *SessionSweeper {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewTicker == nil {
		opts.NewTicker = newRealTicker
	}

	s := &SessionSweeper{
		pruner: pruner,
		now:    opts.Now,
		log:    log.With().Str("component", "session_sweeper").Logger(),
	}
	s.runner = &runner{
		name:      "Session sweeper",
		interval:  opts.Interval,
		newTicker: opts.NewTicker,
		fn:        func() { s.RunOnce() },
		log:       s.log,
	}
	return s
}

// RunOnce prunes at the current clock reading
func (s *SessionSweeper) RunOnce() int {
	n := s.pruner.PruneClients(s.now())
	if n > 0 {
		s.log.Info().Int("pruned", n).Msg("Idle sessions removed")
	}
	return n
}
