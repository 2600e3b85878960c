// Package scheduler runs the periodic maintenance that lives outside the
// synchronous core: the components themselves never start background work.
package scheduler

import (
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/akovalenko/homelib/internal/database/stats"
)

// StatsRefreshScheduler periodically recomputes the aggregate library
// counters. Refresh failures are logged and swallowed; stale statistics are
// a cosmetic problem, not an operational one.
type StatsRefreshScheduler struct {
	stats      *stats.Repository
	schedule   string
	periodDays int

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

// NewStatsRefreshScheduler creates a new scheduler instance.
func NewStatsRefreshScheduler(repo *stats.Repository, schedule string, newBooksPeriodDays int) *StatsRefreshScheduler {
	return &StatsRefreshScheduler{
		stats:      repo,
		schedule:   schedule,
		periodDays: newBooksPeriodDays,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start registers the cron entry and begins running refreshes.
func (s *StatsRefreshScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.refresh)
	if err != nil {
		return err
	}
	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true
	log.Printf("Statistics refresh scheduled: %s", s.schedule)
	return nil
}

// Stop halts the scheduler, waiting for an in-flight refresh to finish.
func (s *StatsRefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	log.Printf("Statistics refresh scheduler stopped")
}

// RunNow triggers one refresh immediately, outside the schedule.
func (s *StatsRefreshScheduler) RunNow() {
	s.refresh()
}

func (s *StatsRefreshScheduler) refresh() {
	if err := s.stats.Refresh(s.periodDays); err != nil {
		log.Printf("Statistics refresh failed: %v", err)
		return
	}
	log.Printf("Statistics refreshed")
}
