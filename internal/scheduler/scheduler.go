package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Stormmysea/stock-website/internal/dashboard"
)

// Session boundaries in New York time; a refresh there flips the market
// status without waiting for the next interval tick.
const (
	openCron  = "CRON_TZ=America/New_York 0 30 9 * * 1-5"
	closeCron = "CRON_TZ=America/New_York 0 0 16 * * 1-5"
)

// Refresher rebuilds the dashboard state.
type Refresher interface {
	Refresh(ctx context.Context) (*dashboard.State, error)
}

// Scheduler manages the refresh cron tasks.
type Scheduler struct {
	Cron    *cron.Cron
	Service Refresher
	Ctx     context.Context
	// Timeout bounds a single refresh.
	Timeout time.Duration

	mu sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, svc Refresher) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Service: svc,
		Ctx:     ctx,
		Timeout: 25 * time.Second,
	}
}

// RegisterAll registers the periodic refresh and the session boundary
// refreshes. Ticks that arrive while a refresh is still running are skipped.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(cron.FuncJob(s.refreshTask))
	if _, err := s.Cron.AddJob(refreshCron, job); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddJob(openCron, job); err != nil {
		return fmt.Errorf("register market open task: %w", err)
	}
	if _, err := s.Cron.AddJob(closeCron, job); err != nil {
		return fmt.Errorf("register market close task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes a refresh immediately (initial load, manual trigger).
func (s *Scheduler) RunNow(ctx context.Context) error {
	// Serialize with scheduled ticks so two refreshes never overlap.
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	_, err := s.Service.Refresh(ctx)
	return err
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running refresh task")
	if err := s.RunNow(s.Ctx); err != nil {
		log.Printf("[ERROR] refresh: %v", err)
	}
}
