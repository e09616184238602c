package fetchcache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JanitorConfig configures a Janitor.
type JanitorConfig struct {
	// Store is the store to trim. Required.
	Store Store

	// Interval is the time between trims. When zero, DefaultLifespan
	// is used.
	Interval time.Duration

	// Logger receives trim failures. Defaults to a nop logger.
	Logger *zap.Logger
}

// Janitor trims a store in the background. The process does not wait
// for it on exit; call Stop for an orderly shutdown.
type Janitor struct {
	store    Store
	interval time.Duration
	logger   *zap.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewJanitor returns a janitor for the given store. It does not start
// trimming until Start is called.
func NewJanitor(cfg JanitorConfig) *Janitor {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultLifespan
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{
		store:    cfg.Store,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background trim loop. Subsequent calls are no-ops.
func (j *Janitor) Start() {
	j.startOnce.Do(func() {
		go j.run()
	})
}

// Stop halts the trim loop and waits for it to finish. Safe to call
// more than once and before Start.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stop)
	})
	j.startOnce.Do(func() {
		close(j.done)
	})
	<-j.done
}

func (j *Janitor) run() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stop:
			return
		case <-ticker.C:
			if err := j.store.Trim(context.Background()); err != nil {
				j.logger.Warn("cache trim failed", zap.Error(err))
			}
		}
	}
}
