// Package expiry flags ingredients once they pass their expiration date.
package expiry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"inventory-system/config"
	"inventory-system/core/store"
	"inventory-system/core/utils"
)

type Watcher struct {
	cfg         config.ExpiryConfig
	ingredients store.IngredientsStore
	logger      *utils.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWatcher(cfg config.ExpiryConfig, ingredients store.IngredientsStore, logger *utils.Logger) *Watcher {
	return &Watcher{cfg: cfg, ingredients: ingredients, logger: logger}
}

// StartWithContext runs one sweep right away and then schedules sweeps on
// the configured cron spec. Starting twice is a no-op.
func (w *Watcher) StartWithContext(ctx context.Context) error {
	if w == nil || w.ingredients == nil || !w.cfg.Enabled {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return nil
	}
	cronLog := cron.PrintfLogger(w.logger)
	c := cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)))
	runCtx, cancel := context.WithCancel(ctx)
	if _, err := c.AddFunc(w.cfg.Schedule, func() { w.sweep(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("expiry schedule %q: %w", w.cfg.Schedule, err)
	}
	w.cron = c
	w.cancel = cancel
	c.Start()
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.sweep(runCtx)
	}()
	w.logger.Printf("expiry watcher started (%s)", w.cfg.Schedule)
	return nil
}

func (w *Watcher) StopWithContext(ctx context.Context) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	c, cancel := w.cron, w.cancel
	w.cron, w.cancel = nil, nil
	w.mu.Unlock()
	if c == nil {
		return nil
	}
	cancel()
	done := make(chan struct{})
	go func() {
		<-c.Stop().Done()
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Watcher) sweep(ctx context.Context) {
	n, err := w.RunOnce(ctx, utils.NowUTC())
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Errorf("expiry sweep: %v", err)
		}
		return
	}
	if n > 0 {
		w.logger.Printf("expiry sweep flagged %d ingredients", n)
	}
}

// RunOnce flags every unflagged ingredient that expired before now's date and
// returns how many were flagged.
func (w *Watcher) RunOnce(ctx context.Context, now time.Time) (int, error) {
	expired, err := w.ingredients.ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	flagged := 0
	for _, ing := range expired {
		if err := w.ingredients.MarkExpired(ctx, ing.ID, "expired on "+ing.ExpirationDate); err != nil {
			return flagged, fmt.Errorf("flag ingredient %d: %w", ing.ID, err)
		}
		w.logger.Warnf("ingredient %s (%s) expired on %s and was flagged", ing.Name, ing.BarcodeID, ing.ExpirationDate)
		flagged++
	}
	return flagged, nil
}
