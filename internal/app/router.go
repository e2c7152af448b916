package app

import (
	"github.com/gin-gonic/gin"

	"github.com/atacadao/guanabara-backend/internal/server"
)

func wireRouter(cfg Config, h Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ReturnHandler:        h.Returns,
		AllowOrigins:         cfg.CORSAllowOrigins,
		ServeEvidence:        cfg.EvidenceBackend == EvidenceBackendLocal,
		EvidenceDir:          cfg.EvidenceDir,
		EvidencePublicPrefix: cfg.EvidencePublicPrefix,
	})
}
