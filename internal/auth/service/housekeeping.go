package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/siteauth/internal/auth/metrics"
	"github.com/aussiebroadwan/siteauth/internal/auth/store"
)

// HousekeepingService periodically deletes expired sessions and invitations
// that were never redeemed.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping worker. A non-positive
// interval defaults to one hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, mx *metrics.Metrics, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Metrics:  mx,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", slog.Duration("interval", s.Interval))
}

// Stop blocks until any in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep runs one cleanup pass. Each table is cleaned independently so one
// failure does not stop the other.
func (s *HousekeepingService) Sweep(ctx context.Context) {
	now := clock(s.Now)

	sessions, err := s.Store.Sessions().DeleteExpiredSessions(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired sessions", slog.Any("error", err))
	} else {
		s.Metrics.Housekeeping("sessions", sessions)
	}

	invites, err := s.Store.Invites().DeleteExpiredInvites(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired invites", slog.Any("error", err))
	} else {
		s.Metrics.Housekeeping("invites", invites)
	}

	s.Logger.Debug("housekeeping sweep completed",
		slog.Int64("sessions_deleted", sessions),
		slog.Int64("invites_deleted", invites),
	)
}
