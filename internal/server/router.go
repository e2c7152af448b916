package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/atacadao/guanabara-backend/internal/handlers"
)

type RouterConfig struct {
	ReturnHandler *handlers.ReturnHandler

	AllowOrigins []string

	// Local evidence is served straight off disk; the GCS backend hands
	// out absolute URLs instead and needs no static route.
	ServeEvidence        bool
	EvidenceDir          string
	EvidencePublicPrefix string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("guanabara-backend"))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	if cfg.ServeEvidence {
		router.Static(cfg.EvidencePublicPrefix, cfg.EvidenceDir)
	}

	returns := router.Group("/api/returns")
	{
		returns.POST("", cfg.ReturnHandler.Create)
		returns.GET("", cfg.ReturnHandler.List)
		returns.GET("/pending", cfg.ReturnHandler.ListPending)
		returns.GET("/recent", cfg.ReturnHandler.ListRecent)
		returns.GET("/unresolved", cfg.ReturnHandler.ListUnresolved)
		returns.GET("/resolved", cfg.ReturnHandler.ListResolved)
		returns.GET("/stats", cfg.ReturnHandler.Stats)
		returns.GET("/period", cfg.ReturnHandler.ListByPeriod)
		returns.GET("/status/:status", cfg.ReturnHandler.ListByStatus)
		returns.GET("/type/:type", cfg.ReturnHandler.ListByRequestType)
		returns.GET("/order/:orderId", cfg.ReturnHandler.ListByOrder)
		returns.GET("/user/name/:name", cfg.ReturnHandler.SearchByUserName)
		returns.GET("/user/:email", cfg.ReturnHandler.ListByUserEmail)
		returns.GET("/product/:name", cfg.ReturnHandler.SearchByProduct)
		returns.GET("/:id", cfg.ReturnHandler.GetByID)
		returns.PUT("/:id/status", cfg.ReturnHandler.UpdateStatus)
		returns.PUT("/:id/notes", cfg.ReturnHandler.UpdateNotes)
		returns.DELETE("/:id", cfg.ReturnHandler.Delete)
	}

	return router
}
