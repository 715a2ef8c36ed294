package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

const sweepBatch = 100

// ConfinementSource lists and clears recorded confinements.
type ConfinementSource interface {
	ExpiredConfinements(ctx context.Context, now time.Time, limit int) ([]models.Confinement, error)
	DeleteConfinement(ctx context.Context, guildID, userID string) error
}

// Releaser lifts a confinement on the platform.
type Releaser interface {
	Release(ctx context.Context, c models.Confinement) error
}

// Sweeper lifts role confinements once they expire. Native timeouts expire
// on their own and are only cleaned from the store.
type Sweeper struct {
	store    ConfinementSource
	releaser Releaser
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	stop    chan struct{}
	running bool
}

// NewSweeper creates a Sweeper that runs every interval.
func NewSweeper(store ConfinementSource, releaser Releaser, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sweeper{store: store, releaser: releaser, interval: interval, now: time.Now}
}

// Sweep releases every expired confinement and returns how many were
// cleared. A failed release is kept for the next run.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	expired, err := s.store.ExpiredConfinements(ctx, s.now(), sweepBatch)
	if err != nil {
		return 0, err
	}

	cleared := 0
	for _, c := range expired {
		if c.RoleID != "" {
			if err := s.releaser.Release(ctx, c); err != nil {
				logger.Warn(fmt.Sprintf("No se pudo liberar a %s en %s: %v", c.UserID, c.GuildID, err), "AntiNuke")
				continue
			}
		}
		if err := s.store.DeleteConfinement(ctx, c.GuildID, c.UserID); err != nil {
			logger.Error(fmt.Sprintf("No se pudo borrar el aislamiento de %s: %v", c.UserID, err), "AntiNuke")
			continue
		}
		cleared++
	}
	if cleared > 0 {
		logger.Info(fmt.Sprintf("%d aislamientos expirados liberados", cleared), "AntiNuke")
	}
	return cleared, nil
}

// Start runs Sweep in the background until Stop.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})

	stop := s.stop
	apperrors.Go("confinement-sweeper", func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), s.interval)
				if _, err := s.Sweep(ctx); err != nil {
					logger.Error(fmt.Sprintf("Error revisando aislamientos expirados: %v", err), "AntiNuke")
				}
				cancel()
			}
		}
	})
}

// Stop halts the background loop.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stop)
	s.running = false
}
