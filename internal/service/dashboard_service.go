package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/database"
)

const dashboardCacheKey = "dashboard:summary"

type dashboardRepository interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

// DashboardService serves the occupancy and billing overview.
type DashboardService struct {
	repo    dashboardRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	ttl     time.Duration
	loads   singleflight.Group
}

// NewDashboardService constructs the service. A zero ttl uses the cache default.
func NewDashboardService(repo dashboardRepository, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, metrics: metrics, logger: logger, ttl: ttl}
}

// Summary returns the dashboard figures and whether they came from cache.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	var cached models.DashboardSummary
	if s.cache.Get(ctx, dashboardCacheKey, &cached) {
		return &cached, true, nil
	}

	// Concurrent misses share one aggregate query; it must outlive the caller that started it.
	value, err, _ := s.loads.Do(dashboardCacheKey, func() (interface{}, error) {
		loadCtx := context.WithoutCancel(ctx)
		start := time.Now()
		summary, err := s.repo.Summary(loadCtx)
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveDBQuery("dashboard.summary", time.Since(start))
		s.cache.Set(loadCtx, dashboardCacheKey, summary, s.ttl)
		return summary, nil
	})
	if err != nil {
		return nil, false, database.TranslateError(err, "dashboard")
	}
	return value.(*models.DashboardSummary), false, nil
}

// Invalidate drops the cached summary.
func (s *DashboardService) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, dashboardCacheKey)
}
