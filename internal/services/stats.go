package services

import (
	"context"
	"time"

	"github.com/aawaaz/complaint-desk/internal/metrics"
	"github.com/aawaaz/complaint-desk/internal/models"
	"go.uber.org/zap"
)

// Statistics returns the admin dashboard counts. The snapshot is recomputed
// on every call.
func (s *ComplaintService) Statistics(ctx context.Context, p *models.Principal) (*models.Statistics, error) {
	if err := Authorize(p, ActionStatistics, nil); err != nil {
		return nil, err
	}
	return s.snapshot(ctx)
}

// snapshot derives the totals from one status grouping, so
// Total == Pending + InProgress + Resolved holds even under concurrent writes.
func (s *ComplaintService) snapshot(ctx context.Context) (*models.Statistics, error) {
	byStatus, err := s.store.CountGroupedBy(ctx, models.GroupByStatus)
	if err != nil {
		return nil, internal("count complaints by status", err)
	}
	byCategory, err := s.store.CountGroupedBy(ctx, models.GroupByCategory)
	if err != nil {
		return nil, internal("count complaints by category", err)
	}

	stats := &models.Statistics{ByCategory: make(map[models.Category]int64)}
	for value, n := range byStatus {
		switch models.Status(value) {
		case models.StatusPending:
			stats.Pending += n
		case models.StatusInProgress:
			stats.InProgress += n
		case models.StatusResolved:
			stats.Resolved += n
		default:
			s.logger.Warnw("Ignoring complaints with unknown status", "status", value, "count", n)
			continue
		}
		stats.Total += n
	}
	for value, n := range byCategory {
		if n == 0 {
			continue
		}
		stats.ByCategory[models.Category(value)] = n
	}

	return stats, nil
}

// StatsWorker periodically refreshes the complaint gauges exported on /metrics
type StatsWorker struct {
	complaintSvc *ComplaintService
	logger       *zap.SugaredLogger
}

// NewStatsWorker creates a new background stats worker
func NewStatsWorker(cs *ComplaintService, logger *zap.SugaredLogger) *StatsWorker {
	return &StatsWorker{complaintSvc: cs, logger: logger}
}

// Start refreshes immediately and then on every tick until ctx is cancelled
func (w *StatsWorker) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		w.logger.Warnw("Stats worker not started", "interval", interval)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stats worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsWorker) refresh(ctx context.Context) {
	stats, err := w.complaintSvc.snapshot(ctx)
	if err != nil {
		w.logger.Warnw("Stats refresh failed", "error", err)
		return
	}

	metrics.ComplaintsTotal.Set(float64(stats.Total))
	metrics.ComplaintsByStatus.WithLabelValues(string(models.StatusPending)).Set(float64(stats.Pending))
	metrics.ComplaintsByStatus.WithLabelValues(string(models.StatusInProgress)).Set(float64(stats.InProgress))
	metrics.ComplaintsByStatus.WithLabelValues(string(models.StatusResolved)).Set(float64(stats.Resolved))

	w.logger.Debugw("Complaint gauges refreshed", "total", stats.Total)
}
