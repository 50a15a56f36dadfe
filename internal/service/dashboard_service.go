package service

import (
	"context"
	"time"

	"adminhub/internal/cache"
	"adminhub/internal/models"
	"adminhub/internal/repository"

	"golang.org/x/sync/errgroup"
)

// OnlineAdmins reports which admins hold a live feed connection.
type OnlineAdmins interface {
	OnlineIDs(ctx context.Context) []uint
}

// DashboardStats are the counters on the dashboard landing page.
type DashboardStats struct {
	PendingEvents int64     `json:"pending_events"`
	OpenReports   int64     `json:"open_reports"`
	ActiveSOS     int64     `json:"active_sos"`
	AdminsOnline  int       `json:"admins_online"`
	GeneratedAt   time.Time `json:"generated_at"`
}

type DashboardService struct {
	events   repository.EventRepository
	reports  repository.ReportRepository
	sos      repository.SOSRepository
	presence OnlineAdmins
}

func NewDashboardService(events repository.EventRepository, reports repository.ReportRepository, sos repository.SOSRepository, presence OnlineAdmins) *DashboardService {
	return &DashboardService{events: events, reports: reports, sos: sos, presence: presence}
}

// Stats returns the cached counters. Online admins are always read live.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	err := cache.Aside(ctx, "dashboard", cache.DashboardStatsKey, &stats, cache.DashboardTTL, func() error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			stats.PendingEvents, err = s.events.CountByStatus(gctx, models.EventStatusPending)
			return err
		})
		g.Go(func() (err error) {
			stats.OpenReports, err = s.reports.CountOpen(gctx)
			return err
		})
		g.Go(func() (err error) {
			stats.ActiveSOS, err = s.sos.CountActive(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}
		stats.GeneratedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.presence != nil {
		stats.AdminsOnline = len(s.presence.OnlineIDs(ctx))
	}
	return &stats, nil
}
