package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DailyTrigger submits its tasks once a day at a wall-clock time
type DailyTrigger struct {
	hour, minute int
	location     *time.Location
	interval     time.Duration
	scheduler    *Scheduler
	tasks        []Task
	logger       *zap.Logger
	now          func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// DailyTriggerConfig configures a DailyTrigger
type DailyTriggerConfig struct {
	Hour          int
	Minute        int
	Location      *time.Location
	CheckInterval time.Duration
}

// NewDailyTrigger creates a trigger for tasks on scheduler
func NewDailyTrigger(cfg DailyTriggerConfig, scheduler *Scheduler, logger *zap.Logger, tasks ...Task) *DailyTrigger {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyTrigger{
		hour:      cfg.Hour,
		minute:    cfg.Minute,
		location:  cfg.Location,
		interval:  cfg.CheckInterval,
		scheduler: scheduler,
		tasks:     tasks,
		logger:    logger,
		now:       time.Now,
	}
}

// Start begins polling the clock
func (d *DailyTrigger) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isRunning {
		return nil
	}
	d.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.wg.Add(1)
	go d.loop(ctx)

	d.logger.Info("Daily trigger started",
		zap.Int("hour", d.hour),
		zap.Int("minute", d.minute),
		zap.String("location", d.location.String()),
	)
	return nil
}

// Stop ends polling
func (d *DailyTrigger) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	d.mu.Unlock()

	d.cancel()
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *DailyTrigger) loop(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.check()
		}
	}
}

// check fires at most once per calendar day, on or after the configured time
func (d *DailyTrigger) check() bool {
	now := d.now().In(d.location)
	today := now.Format("2006-01-02")
	due := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, d.location)

	d.mu.Lock()
	if d.lastRunDate == today || now.Before(due) {
		d.mu.Unlock()
		return false
	}
	d.lastRunDate = today
	d.mu.Unlock()

	d.RunNow()
	return true
}

// RunNow submits every task immediately
func (d *DailyTrigger) RunNow() {
	for _, task := range d.tasks {
		if _, err := d.scheduler.Submit(task); err != nil {
			d.logger.Error("Failed to submit task", zap.String("task", task.Name()), zap.Error(err))
		}
	}
}
