package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"

	"pricelist/config"
	"pricelist/services"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeZip  = "application/zip"
)

const maxToastFailures = 5

// HandleExportAll zips one HTML pricelist per client. With the continue
// policy the archive holds every client that rendered plus an itemized
// report, and the skipped clients are named in a toast for the next page view.
// Route: GET /export/all
func HandleExportAll(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s, err := requireSession(app, e)
		if s == nil {
			return err
		}

		policy := cfg.Policy()
		archive, err := services.ExportAll(s.Table, services.NewRenderer(cfg.Render()), services.Today(time.Now()), policy)
		if archive == nil {
			return respondError(e, "export_all", err)
		}

		if err != nil {
			log.Warn().Err(err).
				Str("policy", policy.String()).
				Int("succeeded", len(archive.Report.Succeeded)).
				Int("failed", len(archive.Report.Failed)).
				Msg("export_all: some clients were skipped")
			e.Response.Header().Set("X-Pricelist-Failed", strconv.Itoa(len(archive.Report.Failed)))
			SetToast(e, "warning", skippedSummary(archive.Report))
		}

		log.Info().
			Int("clients", len(archive.Report.Succeeded)).
			Str("file", archive.FileName).
			Str("size", humanize.Bytes(uint64(len(archive.Content)))).
			Msg("export_all: archive built")
		return sendAttachment(e, contentTypeZip, archive.FileName, archive.Content)
	}
}

// skippedSummary names every client left out of a partial export and why.
func skippedSummary(r services.ExportReport) string {
	parts := make([]string, 0, len(r.Failed))
	for i, f := range r.Failed {
		// The toast travels in a cookie; keep it well under the size limit.
		if i == maxToastFailures {
			parts = append(parts, fmt.Sprintf("and %d more", len(r.Failed)-i))
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%v)", f.Client, f.Err))
	}
	total := len(r.Succeeded) + len(r.Failed)
	return fmt.Sprintf("Exported %d of %d clients. Skipped: %s. Details are in %s inside the archive.",
		len(r.Succeeded), total, strings.Join(parts, "; "), services.ReportEntryName)
}

// HandleExportAdjustedCSV downloads the table currently in effect as CSV.
// Route: GET /export/adjusted.csv
func HandleExportAdjustedCSV(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s, err := requireSession(app, e)
		if s == nil {
			return err
		}

		content, err := services.WriteCSV(s.Table)
		if err != nil {
			return respondError(e, "export_csv", err)
		}
		return sendAttachment(e, contentTypeCSV, services.AdjustedCSVName, content)
	}
}

// HandleExportAdjustedExcel downloads the table currently in effect as XLSX.
// Route: GET /export/adjusted.xlsx
func HandleExportAdjustedExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s, err := requireSession(app, e)
		if s == nil {
			return err
		}

		content, err := services.GenerateExcel(s.Table)
		if err != nil {
			return respondError(e, "export_excel", err)
		}
		return sendAttachment(e, contentTypeXLSX, services.AdjustedXLSXName, content)
	}
}

// HandleTemplateCSV downloads a blank CSV with the expected header row.
// Route: GET /template.csv
func HandleTemplateCSV() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		content, err := services.GenerateBlankCSV()
		if err != nil {
			return respondError(e, "template_csv", err)
		}
		return sendAttachment(e, contentTypeCSV, services.BlankCSVName, content)
	}
}

// HandleTemplateExcel downloads a blank workbook with column guidance.
// Route: GET /template.xlsx
func HandleTemplateExcel() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		content, err := services.GenerateBlankExcel()
		if err != nil {
			return respondError(e, "template_excel", err)
		}
		return sendAttachment(e, contentTypeXLSX, services.BlankXLSXName, content)
	}
}
