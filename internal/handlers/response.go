package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atacadao/guanabara-backend/internal/domain"
)

// RespondOK returns a read payload (entity or list) directly.
func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondSuccess wraps a mutating operation's result in the
// {success, message, ...} envelope.
func RespondSuccess(c *gin.Context, message string, extra gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// RespondDomainError maps the domain error taxonomy onto HTTP statuses.
func RespondDomainError(c *gin.Context, err error) {
	var (
		validationErr *domain.ValidationError
		transitionErr *domain.InvalidTransitionError
		storageErr    *domain.StorageError
	)
	switch {
	case errors.As(err, &validationErr):
		RespondError(c, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		RespondError(c, http.StatusNotFound, err.Error())
	case errors.As(err, &transitionErr):
		RespondError(c, http.StatusConflict, transitionErr.Error())
	case errors.Is(err, domain.ErrConcurrentModification):
		RespondError(c, http.StatusConflict, err.Error())
	case errors.As(err, &storageErr):
		RespondError(c, http.StatusInternalServerError, storageErr.Error())
	default:
		RespondError(c, http.StatusInternalServerError, err.Error())
	}
}
