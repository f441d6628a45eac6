package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"

	"pricelist/services"
)

// describeError maps a service error to an HTTP status and a message fit for
// the user. Unknown errors are internal.
func describeError(err error) (int, string) {
	var (
		malformed *services.MalformedInputError
		missing   *services.MissingFieldError
		conv      *services.TypeConversionError
		tmpl      *services.TemplateRenderError
		agg       *services.ExportAggregationError
	)

	switch {
	case errors.As(err, &agg):
		if len(agg.Failures) == 1 {
			status, msg := describeError(agg.Failures[0].Err)
			if agg.Failures[0].Client == "" {
				return status, msg
			}
			return status, fmt.Sprintf("Could not create the pricelist for %s: %s", agg.Failures[0].Client, msg)
		}
		status, _ := describeError(agg.Unwrap())
		return status, fmt.Sprintf("Export failed for %d clients. First error: %s", len(agg.Failures), agg.Failures[0].Err)
	case errors.As(err, &malformed):
		return http.StatusBadRequest, "Could not read the uploaded file: " + malformed.Error()
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity, "The pricelist is incomplete: " + missing.Error()
	case errors.As(err, &conv):
		return http.StatusUnprocessableEntity, "The pricelist has an invalid value: " + conv.Error()
	case errors.As(err, &tmpl):
		return http.StatusInternalServerError, "The document template could not be rendered: " + tmpl.Err.Error()
	}
	return http.StatusInternalServerError, "Something went wrong: " + err.Error()
}

// respondError logs err and answers with the mapped status and message.
func respondError(e *core.RequestEvent, op string, err error) error {
	status, msg := describeError(err)
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Str("op", op).Int("status", status).Msg("request failed")
	return ErrorToast(e, status, msg)
}
