package app

import (
	"gorm.io/gorm"

	returnrepo "github.com/atacadao/guanabara-backend/internal/data/repos/returns"
	"github.com/atacadao/guanabara-backend/internal/pkg/logger"
)

type Repos struct {
	ReturnRequests returnrepo.ReturnRequestRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		ReturnRequests: returnrepo.NewReturnRequestRepo(db, log),
	}
}
