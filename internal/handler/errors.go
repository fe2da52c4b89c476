package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/herbal_api/internal/utils"
)

const msgDatabaseNotReady = "Database not ready"

// respondError maps a service error to its HTTP status and writes the error
// envelope. Only caller-facing messages are echoed; storage failures are
// logged and reported generically.
func respondError(c *gin.Context, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Str("path", c.FullPath()).Msg("Request failed")
	}
	utils.Error(c, status, message)
}

func classify(err error) (int, string) {
	var (
		ve *utils.ValidationError
		pe *utils.ProductError
		me *utils.MessageError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.As(err, &pe):
		return http.StatusBadRequest, pe.Error()
	}

	status := http.StatusServiceUnavailable
	message := msgDatabaseNotReady
	switch {
	case errors.Is(err, utils.ErrInvalidInput), errors.Is(err, utils.ErrValidation):
		status, message = http.StatusBadRequest, "Invalid input"
	case errors.Is(err, utils.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, utils.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, utils.ErrConflict):
		status, message = http.StatusConflict, "Conflict"
	case errors.Is(err, utils.ErrConfiguration), errors.Is(err, utils.ErrDecryption):
		status, message = http.StatusInternalServerError, "Internal error"
	default:
		return status, message
	}
	if errors.As(err, &me) {
		message = me.Message
	}
	return status, message
}

// bindJSON decodes the request body into a new T. A missing or malformed body
// yields nil and the service reports the payload as invalid.
func bindJSON[T any](c *gin.Context) *T {
	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		return nil
	}
	return &v
}
