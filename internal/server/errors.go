package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/media-workflow/internal/ingestion"
	"github.com/jonathan/media-workflow/internal/tracker"
	"github.com/jonathan/media-workflow/internal/workflow"
)

// ErrBadRequest indicates a malformed request
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		badRequest *ErrBadRequest
		validation *tracker.ValidationError
		transition *workflow.TransitionError
	)
	switch {
	case errors.As(err, &badRequest), errors.As(err, &validation), errors.Is(err, ingestion.ErrEmptySource):
		return http.StatusBadRequest
	case errors.As(err, &transition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ingestion.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
