package services

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	returnrepo "github.com/atacadao/guanabara-backend/internal/data/repos/returns"
	"github.com/atacadao/guanabara-backend/internal/domain"
	"github.com/atacadao/guanabara-backend/internal/pkg/logger"
)

const statsCacheKey = "returns:stats"

// StatsService computes a live snapshot of the request population. The
// redis client is optional; when present, snapshots are cached under a
// short TTL and cache trouble degrades to a direct computation.
type StatsService interface {
	Stats(ctx context.Context) (*domain.Stats, error)
}

type statsService struct {
	log      *logger.Logger
	repo     returnrepo.ReturnRequestRepo
	rdb      *goredis.Client
	cacheTTL time.Duration
}

func NewStatsService(log *logger.Logger, repo returnrepo.ReturnRequestRepo, rdb *goredis.Client, cacheTTL time.Duration) StatsService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &statsService{
		log:      log.With("service", "StatsService"),
		repo:     repo,
		rdb:      rdb,
		cacheTTL: cacheTTL,
	}
}

func (s *statsService) Stats(ctx context.Context) (*domain.Stats, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.Stats{
		PendingRequests:     counts[domain.StatusPending],
		UnderReviewRequests: counts[domain.StatusUnderReview],
		ApprovedRequests:    counts[domain.StatusApproved],
		RejectedRequests:    counts[domain.StatusRejected],
		CompletedRequests:   counts[domain.StatusCompleted],
	}
	for _, n := range counts {
		stats.TotalRequests += n
	}

	if stats.TotalRequests > 0 {
		total := float64(stats.TotalRequests)
		stats.PendingPercentage = float64(stats.PendingRequests) / total * 100
		stats.UnderReviewPercentage = float64(stats.UnderReviewRequests) / total * 100
		stats.ApprovedPercentage = float64(stats.ApprovedRequests) / total * 100
		stats.RejectedPercentage = float64(stats.RejectedRequests) / total * 100
		stats.CompletedPercentage = float64(stats.CompletedRequests) / total * 100
	}

	s.toCache(ctx, stats)
	return stats, nil
}

func (s *statsService) fromCache(ctx context.Context) *domain.Stats {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if err != goredis.Nil {
			s.log.Warn("stats cache read failed", "error", err)
		}
		return nil
	}
	var stats domain.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.log.Warn("stats cache payload malformed", "error", err)
		return nil
	}
	return &stats
}

func (s *statsService) toCache(ctx context.Context, stats *domain.Stats) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, statsCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.log.Warn("stats cache write failed", "error", err)
	}
}
