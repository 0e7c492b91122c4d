package scheduler

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// job is one daily trigger: run script at HH:MM.
type job struct {
	at     string
	script string
}

// Scheduler fires configured commands at their daily trigger times. It
// polls once per second and reloads the config file whenever it changes on
// disk, so time-list mutations take effect without a restart.
type Scheduler struct {
	configPath string
	loc        *time.Location
	runner     JobRunner
	logger     *slog.Logger

	jobs      []job
	lastFired map[string]string // job key -> date it last fired
	cfgMtime  time.Time
	now       func() time.Time
	tick      time.Duration
}

// New creates a scheduler reading its job list from configPath.
func New(configPath string, loc *time.Location, runner JobRunner, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		configPath: configPath,
		loc:        loc,
		runner:     runner,
		logger:     logger.With("component", "scheduler"),
		lastFired:  make(map[string]string),
		now:        time.Now,
		tick:       time.Second,
	}
}

// Reload reads the config and rebuilds the job registry from scratch.
func (s *Scheduler) Reload() error {
	cfg, err := LoadConfig(s.configPath)
	if err != nil {
		return err
	}
	s.rebuild(cfg)
	if info, err := os.Stat(s.configPath); err == nil {
		s.cfgMtime = info.ModTime()
	}
	return nil
}

// rebuild clears all registered jobs and registers the config's jobs anew.
func (s *Scheduler) rebuild(cfg Config) {
	s.jobs = s.jobs[:0]
	for _, at := range cfg.CrawlerTimes {
		s.jobs = append(s.jobs, job{at: at, script: cfg.CrawlerScript})
		s.logger.Info("crawler job registered", "at", at)
	}
	for _, at := range cfg.EmailTimes {
		s.jobs = append(s.jobs, job{at: at, script: cfg.EmailScript})
		s.logger.Info("email job registered", "at", at)
	}
}

// Run polls for due jobs until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Reload(); err != nil {
		return err
	}
	s.logger.Info("scheduler started", "jobs", len(s.jobs), "timezone", s.loc.String())

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.maybeReload()
			s.step(ctx, s.now())
		}
	}
}

// maybeReload re-reads the config when its mtime changed.
func (s *Scheduler) maybeReload() {
	info, err := os.Stat(s.configPath)
	if err != nil || info.ModTime().Equal(s.cfgMtime) {
		return
	}
	if err := s.Reload(); err != nil {
		s.logger.Error("config reload failed", "error", err)
		return
	}
	s.logger.Info("config reloaded", "jobs", len(s.jobs))
}

// step fires every job whose trigger time matches now and has not already
// fired today. Jobs run synchronously, one after another; a failing job is
// logged and does not stop the loop.
func (s *Scheduler) step(ctx context.Context, now time.Time) {
	local := now.In(s.loc)
	hhmm := local.Format("15:04")
	today := local.Format("2006-01-02")

	for _, j := range s.jobs {
		if j.at != hhmm {
			continue
		}
		key := j.at + " " + j.script
		if s.lastFired[key] == today {
			continue
		}
		s.lastFired[key] = today
		if err := s.runner.Run(ctx, j.script); err != nil {
			s.logger.Error("scheduled job failed", "script", j.script, "at", j.at, "error", err)
		}
	}
}
