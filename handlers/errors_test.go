package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"pricelist/services"
)

func TestDescribeError(t *testing.T) {
	missing := &services.MissingFieldError{Field: services.ColProduct, Row: 3, Client: "Acme"}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"malformed", &services.MalformedInputError{FileName: "x.csv", Reason: "file must contain a header row"}, http.StatusBadRequest, "header row"},
		{"missing field", missing, http.StatusUnprocessableEntity, `missing field "Product" on row 3`},
		{"wrapped missing field", fmt.Errorf("render: %w", missing), http.StatusUnprocessableEntity, "incomplete"},
		{"type conversion", &services.TypeConversionError{Field: services.ColPricePerKg, Row: 2, Value: "x"}, http.StatusUnprocessableEntity, "not a number"},
		{"template", &services.TemplateRenderError{Template: "t.html", Err: errors.New("boom")}, http.StatusInternalServerError, "boom"},
		{
			"single client failure",
			&services.ExportAggregationError{Failures: []services.ClientFailure{{Client: "Beta", Err: missing}}},
			http.StatusUnprocessableEntity, "for Beta",
		},
		{
			"several client failures",
			&services.ExportAggregationError{Failures: []services.ClientFailure{
				{Client: "Beta", Err: missing},
				{Client: "Gamma", Err: missing},
			}},
			http.StatusUnprocessableEntity, "Export failed for 2 clients",
		},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "disk on fire"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := describeError(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", msg, tt.wantMsg)
			}
		})
	}
}
