package services

import (
	"fmt"
	"strings"
)

// MalformedInputError is returned when an upload cannot be read as a table.
type MalformedInputError struct {
	FileName string
	Reason   string
	Err      error
}

func (e *MalformedInputError) Error() string {
	msg := "malformed input"
	if e.FileName != "" {
		msg += fmt.Sprintf(" %q", e.FileName)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// MissingFieldError reports a required column, or a required value on a given
// row, that is absent. Row is 0 when the whole column is missing.
type MissingFieldError struct {
	Field  string
	Row    int
	Client string
}

func (e *MissingFieldError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "missing field %q", e.Field)
	if e.Row > 0 {
		fmt.Fprintf(&b, " on row %d", e.Row)
	}
	if e.Client != "" {
		fmt.Fprintf(&b, " for client %q", e.Client)
	}
	return b.String()
}

// TypeConversionError reports a cell that could not be converted to a number.
type TypeConversionError struct {
	Field string
	Row   int
	Value string
	Err   error
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("row %d: %s value %q is not a number", e.Row, e.Field, e.Value)
}

func (e *TypeConversionError) Unwrap() error { return e.Err }

// TemplateRenderError wraps a failure to load, parse or execute the document template.
type TemplateRenderError struct {
	Template string
	Err      error
}

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("render template %s: %v", e.Template, e.Err)
}

func (e *TemplateRenderError) Unwrap() error { return e.Err }

// ClientFailure is one failed client within a batch export.
type ClientFailure struct {
	Client string
	Err    error
}

// ExportAggregationError is returned by ExportAll when at least one client
// could not be rendered. Unwrap yields the first failure.
type ExportAggregationError struct {
	Failures []ClientFailure
}

func (e *ExportAggregationError) Error() string {
	if len(e.Failures) == 1 {
		f := e.Failures[0]
		if f.Client == "" {
			return fmt.Sprintf("export failed: %v", f.Err)
		}
		return fmt.Sprintf("export failed for client %q: %v", f.Client, f.Err)
	}
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Client == "" {
			parts = append(parts, f.Err.Error())
			continue
		}
		parts = append(parts, fmt.Sprintf("%q: %v", f.Client, f.Err))
	}
	return fmt.Sprintf("export failed for %d clients: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *ExportAggregationError) Unwrap() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[0].Err
}
