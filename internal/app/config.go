package app

import (
	"strings"
	"time"

	"github.com/atacadao/guanabara-backend/internal/pkg/logger"
	"github.com/atacadao/guanabara-backend/internal/utils"
)

const (
	EvidenceBackendLocal = "local"
	EvidenceBackendGCS   = "gcs"
)

type Config struct {
	Port        string
	Environment string

	CORSAllowOrigins []string

	EvidenceBackend         string
	EvidenceDir             string
	EvidencePublicPrefix    string
	EvidenceWriteTimeout    time.Duration
	EvidenceCleanupOnDelete bool

	RedisAddr     string
	StatsCacheTTL time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	origins := strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:3005", log), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return Config{
		Port:        utils.GetEnv("PORT", "8080", log),
		Environment: utils.GetEnv("APP_ENV", "development", log),

		CORSAllowOrigins: origins,

		EvidenceBackend:         strings.ToLower(utils.GetEnv("EVIDENCE_BACKEND", EvidenceBackendLocal, log)),
		EvidenceDir:             utils.GetEnv("EVIDENCE_DIR", "uploads/returns", log),
		EvidencePublicPrefix:    utils.GetEnv("EVIDENCE_PUBLIC_PREFIX", "/uploads/returns", log),
		EvidenceWriteTimeout:    time.Duration(utils.GetEnvAsInt("EVIDENCE_WRITE_TIMEOUT", 30, log)) * time.Second,
		EvidenceCleanupOnDelete: utils.GetEnvAsBool("EVIDENCE_CLEANUP_ON_DELETE", false, log),

		RedisAddr:     utils.GetEnv("REDIS_ADDR", "", log),
		StatsCacheTTL: time.Duration(utils.GetEnvAsInt("STATS_CACHE_TTL", 30, log)) * time.Second,
	}
}
