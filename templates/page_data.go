// Package templates holds the HTML components of the interactive shell.
package templates

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
)

// Flash is a one-shot message shown at the top of the page.
type Flash struct {
	Type    string // "success", "warning", "error", "info"
	Message string
}

// PreviewData is what the workspace shows once a table is loaded.
type PreviewData struct {
	FileName   string
	Columns    []string
	Rows       [][]string
	TotalRows  int
	Clients    []string
	Delta      float64
	Adjusted   bool
	Warnings   []string
	UploadedAt string
}

func formatDelta(d float64) string {
	return strconv.FormatFloat(d, 'g', -1, 64)
}

func adjustStatus(p PreviewData) string {
	if p.Adjusted {
		return fmt.Sprintf("Prices adjusted by %+g per kg.", p.Delta)
	}
	return "Prices are as uploaded."
}

// clientURL is the document route of one client.
func clientURL(client string) templ.SafeURL {
	return templ.SafeURL("/pricelists/" + url.PathEscape(client))
}
