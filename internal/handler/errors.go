package handler

import (
	"errors"
	"net/http"

	"github.com/jengzang/citibike-dashboard-go/internal/dataset"
)

// classifyError maps a pipeline error to an HTTP status and a user-visible message
func classifyError(err error) (int, string) {
	var formatErr *dataset.DataFormatError
	var notFound *dataset.SourceNotFoundError
	switch {
	case errors.As(err, &formatErr):
		return http.StatusInternalServerError, "The trip dataset could not be parsed: " + formatErr.Error()
	case errors.As(err, &notFound):
		return http.StatusInternalServerError, "The trip dataset is missing: " + notFound.Path
	default:
		return http.StatusInternalServerError, "Failed to build the dashboard: " + err.Error()
	}
}
