package httphandler

import (
	"errors"
	"net/http"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

// StatusForError maps an error kind to the HTTP status returned to callers.
// An upstream 404 passes through so unknown pull requests read as not found.
func StatusForError(err error) int {
	var te *model.TransportError
	switch {
	case errors.Is(err, model.ErrRepositoryUnresolved), errors.Is(err, model.ErrMalformedReference):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrConfigurationMissing):
		return http.StatusFailedDependency
	case errors.As(err, &te) && te.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case errors.Is(err, model.ErrTransportFailure),
		errors.Is(err, model.ErrGraphQLOperationFailed),
		errors.Is(err, model.ErrMalformedResponse),
		errors.Is(err, model.ErrPaginationExceeded):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError logs err and writes a JSON error with the mapped status.
// Internal errors are not echoed to the client.
func (h *Handler) writeServiceError(w http.ResponseWriter, msg string, err error, attrs ...any) {
	status := StatusForError(err)
	h.logger.Error(msg, append(attrs, "status", status, "error", err)...)

	if status == http.StatusInternalServerError {
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
