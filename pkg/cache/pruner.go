package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner runs SQLiteStore.Prune on a cron schedule so expired rows do not
// accumulate between reads.
type Pruner struct {
	store    *SQLiteStore
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewPruner creates a pruner with a standard 5-field cron schedule, for
// example "*/10 * * * *" for every ten minutes.
func NewPruner(store *SQLiteStore, schedule string) *Pruner {
	return &Pruner{
		store:    store,
		schedule: schedule,
		logger:   slog.Default().With("component", "cache-pruner"),
	}
}

// Start validates the schedule and begins running prunes in the background.
func (p *Pruner) Start() error {
	c := cron.New()
	_, err := c.AddFunc(p.schedule, p.prune)
	if err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", p.schedule, err)
	}
	c.Start()
	p.cron = c
	p.logger.Info("cache pruner started", "schedule", p.schedule)
	return nil
}

// Stop halts scheduling and waits for an in-flight prune to finish.
func (p *Pruner) Stop() {
	if p.cron == nil {
		return
	}
	<-p.cron.Stop().Done()
}

func (p *Pruner) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := p.store.Prune(ctx)
	if err != nil {
		p.logger.Error("cache prune failed", "error", err)
		return
	}
	if removed > 0 {
		p.logger.Info("cache pruned", "removed", removed)
	}
}
