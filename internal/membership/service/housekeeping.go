package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/store"
	"github.com/jonboulle/clockwork"
)

// HousekeepingService periodically lapses invitations that expired without
// being used, so they stop holding the one-live-invitation-per-email slot.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Clock    clockwork.Clock
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, clock clockwork.Clock, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Clock:    clock,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until the worker has finished any in-progress pass.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := s.Clock.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.Chan():
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce performs a single pass and returns how many invitations lapsed.
func (s *HousekeepingService) RunOnce(ctx context.Context) int64 {
	n, err := s.Store.Invitations().LapseExpiredInvitations(ctx, s.Clock.Now())
	if err != nil {
		s.Logger.Error("failed to lapse expired invitations", "error", err)
		return 0
	}
	s.Logger.Debug("housekeeping pass completed", "lapsed_invitations", n)
	return n
}
