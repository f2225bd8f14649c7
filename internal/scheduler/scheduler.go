// Package scheduler owns the timing of background maintenance; the stores
// expose purge operations but never schedule themselves.
package scheduler

import (
	"log/slog"
	"time"
)

// purger is one store's expiry sweep.
type purger interface {
	PurgeExpired(now time.Time) (int64, error)
}

// Sweeper runs the daily purge across every maintained table. One store
// failing is logged and does not abort the others.
type Sweeper struct {
	sessions      purger
	blacklist     purger
	oneTimeTokens purger
	systemLogs    purger
	interval      time.Duration
}

func NewSweeper(sessions, blacklist, oneTimeTokens, systemLogs purger) *Sweeper {
	return &Sweeper{
		sessions:      sessions,
		blacklist:     blacklist,
		oneTimeTokens: oneTimeTokens,
		systemLogs:    systemLogs,
		interval:      24 * time.Hour,
	}
}

// Start launches the sweep goroutine. Closing done stops it.
func (s *Sweeper) Start(done chan struct{}) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep(time.Now())
			case <-done:
				return
			}
		}
	}()
}

// Sweep purges rows past expiry from each store in turn.
func (s *Sweeper) Sweep(now time.Time) {
	slog.Info("token cleanup started")

	targets := []struct {
		name  string
		store purger
	}{
		{"refresh_sessions", s.sessions},
		{"blacklisted_tokens", s.blacklist},
		{"one_time_tokens", s.oneTimeTokens},
		{"system_logs", s.systemLogs},
	}
	for _, t := range targets {
		deleted, err := t.store.PurgeExpired(now)
		if err != nil {
			slog.Error("token cleanup failed", "store", t.name, "error", err)
			continue
		}
		if deleted > 0 {
			slog.Info("token cleanup purged rows", "store", t.name, "deleted", deleted)
		}
	}

	slog.Info("token cleanup completed")
}
