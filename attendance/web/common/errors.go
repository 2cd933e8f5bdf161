package common

import (
	"errors"
	"net/http"

	"fieldtrack.com/fieldtrack/attendance/core"
	web "fieldtrack.com/fieldtrack/web/common"
	"github.com/gin-gonic/gin"
)

// StatusFor maps an error from the attendance core to an HTTP status.
func StatusFor(err error) int {
	var (
		validation  *core.ValidationError
		notFound    *core.NotFoundError
		upstream    *core.UpstreamError
		persistence *core.PersistenceError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	case errors.As(err, &persistence):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// ErrorResponseFor builds the body for err. Storage failures are not echoed
// back to the client.
func ErrorResponseFor(err error) *web.ErrorResponse {
	var validation *core.ValidationError
	if errors.As(err, &validation) {
		return &web.ErrorResponse{Message: validation.Message, Field: validation.Field}
	}
	var persistence *core.PersistenceError
	if errors.As(err, &persistence) {
		return web.NewErrorResponse("Server error")
	}
	return web.NewErrorResponse(err.Error())
}

// WriteError records err on the context for the request log and renders it.
func WriteError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(StatusFor(err), ErrorResponseFor(err))
}
