package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/atacadao/guanabara-backend/internal/pkg/logger"
	"github.com/atacadao/guanabara-backend/internal/services"
)

type Services struct {
	Evidence services.EvidenceStore
	Returns  services.ReturnService
	Stats    services.StatsService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, rdb *goredis.Client) (Services, error) {
	var (
		evidence services.EvidenceStore
		err      error
	)
	switch cfg.EvidenceBackend {
	case EvidenceBackendLocal:
		evidence, err = services.NewLocalEvidenceStore(log, cfg.EvidenceDir, cfg.EvidencePublicPrefix, cfg.EvidenceWriteTimeout)
	case EvidenceBackendGCS:
		evidence, err = services.NewGCSEvidenceStore(log, cfg.EvidenceWriteTimeout)
	default:
		err = fmt.Errorf("unsupported evidence backend %q", cfg.EvidenceBackend)
	}
	if err != nil {
		return Services{}, fmt.Errorf("init evidence store: %w", err)
	}

	return Services{
		Evidence: evidence,
		Returns:  services.NewReturnService(db, log, repos.ReturnRequests, evidence, cfg.EvidenceCleanupOnDelete),
		Stats:    services.NewStatsService(log, repos.ReturnRequests, rdb, cfg.StatsCacheTTL),
	}, nil
}
