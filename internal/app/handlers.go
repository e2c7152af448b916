package app

import (
	"github.com/atacadao/guanabara-backend/internal/handlers"
	"github.com/atacadao/guanabara-backend/internal/pkg/logger"
)

type Handlers struct {
	Returns *handlers.ReturnHandler
}

func wireHandlers(log *logger.Logger, svcs Services) Handlers {
	return Handlers{
		Returns: handlers.NewReturnHandler(log, svcs.Returns, svcs.Stats),
	}
}
