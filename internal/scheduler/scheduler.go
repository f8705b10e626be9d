package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-widget/internal/weather"
)

// Searcher fetches the current weather for a location query.
type Searcher interface {
	Current(ctx context.Context, query string) (weather.Reading, error)
}

// ProbeStatus is the outcome of the most recent provider probe.
type ProbeStatus struct {
	Enabled  bool      `json:"enabled"`
	Location string    `json:"location,omitempty"`
	LastRun  time.Time `json:"lastRun"`
	OK       bool      `json:"ok"`
	Error    string    `json:"error,omitempty"`
}

// Scheduler periodically checks that the weather provider answers for a known
// location. Probe results feed the health endpoint only.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Searcher
	location  string
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger

	mu     sync.RWMutex
	status ProbeStatus
}

// New creates a new Scheduler. An empty location disables probing.
func New(location string, interval time.Duration, service Searcher, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		service:   service,
		location:  location,
		interval:  interval,
		timeout:   30 * time.Second,
		logger:    logger,
		status:    ProbeStatus{Enabled: location != "", Location: location},
	}
}

// Start schedules the probe job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.location == "" {
		s.logger.Info("scheduler: no probe location configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	if _, err := s.scheduler.Every(interval).Do(s.RunProbe); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunProbe performs one probe synchronously and records its outcome.
func (s *Scheduler) RunProbe() {
	s.logger.Debug("scheduler: running provider probe", "location", s.location)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.service.Current(ctx, s.location)

	st := ProbeStatus{
		Enabled:  true,
		Location: s.location,
		LastRun:  time.Now().UTC(),
		OK:       err == nil,
	}
	if err != nil {
		st.Error = err.Error()
		s.logger.Warn("scheduler: provider probe failed", "location", s.location, "err", err)
	}

	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// Status returns the latest probe outcome.
func (s *Scheduler) Status() ProbeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
