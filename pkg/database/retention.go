package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
)

// Pruner deletes records older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Retention periodically prunes old records from a set of stores.
type Retention struct {
	pruners map[string]Pruner
	window  time.Duration
	mu      sync.Mutex
	stop    chan struct{}
	running bool
	now     func() time.Time
}

// NewRetention creates a Retention keeping records for window.
func NewRetention(window time.Duration, pruners map[string]Pruner) *Retention {
	return &Retention{
		pruners: pruners,
		window:  window,
		stop:    make(chan struct{}),
		now:     time.Now,
	}
}

// RunOnce prunes every store once and returns the deleted count per store.
// A failing store does not stop the others.
func (r *Retention) RunOnce(ctx context.Context) (map[string]int64, error) {
	deleted := make(map[string]int64, len(r.pruners))
	if r.window <= 0 {
		return deleted, nil
	}

	cutoff := r.now().Add(-r.window)
	var firstErr error
	for name, p := range r.pruners {
		n, err := p.Prune(ctx, cutoff)
		if err != nil {
			logger.Error(fmt.Sprintf("Error purgando '%s': %v", name, err), "Retention")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		deleted[name] = n
		if n > 0 {
			logger.Debug(fmt.Sprintf("Purgados %d registros de '%s'", n, name), "Retention")
		}
	}
	return deleted, firstErr
}

// Start runs RunOnce every interval until Stop. Starting again restarts the loop.
func (r *Retention) Start(interval time.Duration) {
	r.mu.Lock()
	if r.running {
		close(r.stop)
	}
	r.running = true
	r.stop = make(chan struct{})
	stopChan := r.stop
	r.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.System(fmt.Sprintf("Purga automática iniciada (retención: %s, intervalo: %s)", r.window, interval), "Retention")

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				_, _ = r.RunOnce(ctx)
				cancel()
			case <-stopChan:
				logger.Info("Purga automática detenida", "Retention")
				return
			}
		}
	}()
}

// Stop ends the loop started by Start.
func (r *Retention) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		close(r.stop)
		r.running = false
	}
}
