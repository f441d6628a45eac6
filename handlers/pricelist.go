package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"

	"pricelist/config"
	"pricelist/services"
	"pricelist/templates"
)

// previewRowLimit caps the rows rendered in the preview table.
const previewRowLimit = 200

// HandleHome renders the upload form, plus the preview and actions when the
// session holds a table.
// Route: GET /
func HandleHome(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		flash := popFlash(e)

		var preview *templates.PreviewData
		if s := loadSession(app, e.Request); s != nil {
			data := buildPreview(s)
			preview = &data
		}
		return templates.HomePage(flash, preview).Render(e.Request.Context(), e.Response)
	}
}

func buildPreview(s *Session) templates.PreviewData {
	t := s.Table
	rows := make([][]string, 0, min(t.Len(), previewRowLimit))
	for i, r := range t.Rows {
		if i == previewRowLimit {
			break
		}
		rows = append(rows, r.Cells)
	}

	clients := services.ClientNames(t)
	return templates.PreviewData{
		FileName:   s.FileName,
		Columns:    t.Columns,
		Rows:       rows,
		TotalRows:  t.Len(),
		Clients:    clients,
		Delta:      s.Delta,
		Adjusted:   s.Adjusted(),
		Warnings:   divergenceWarnings(t, clients),
		UploadedAt: humanize.Time(s.UploadedAt),
	}
}

// divergenceWarnings lists clients whose per-client columns disagree between
// rows. Documents use the first row's value.
func divergenceWarnings(t *services.Table, clients []string) []string {
	var warnings []string
	for _, name := range clients {
		g, err := services.GroupByClient(t, name)
		if err != nil {
			continue
		}
		if cols := g.Divergent(); len(cols) > 0 {
			warnings = append(warnings, fmt.Sprintf(
				"%s has differing %s values across rows; the first row is used.",
				name, strings.Join(cols, ", ")))
		}
	}
	return warnings
}

// HandleUpload reads the multipart "file" field into a table and starts a
// fresh session with it. Any previous adjustment is discarded.
// Route: POST /upload
func HandleUpload(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		e.Request.Body = http.MaxBytesReader(e.Response, e.Request.Body, cfg.MaxUploadBytes())
		if err := e.Request.ParseMultipartForm(cfg.MaxUploadBytes()); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				log.Warn().Int64("limit", tooLarge.Limit).Msg("upload: body too large")
				return redirectHome(e, "error", fmt.Sprintf("File too large (limit %d MB)", cfg.MaxUploadMB))
			}
			return redirectHome(e, "error", "Invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return redirectHome(e, "error", "Please select a file to upload")
		}
		defer file.Close()

		table, err := services.LoadTable(file, header.Filename)
		if err == nil && cfg.ValidateOnUpload {
			err = services.ValidateColumns(table)
		}
		if err != nil {
			_, msg := describeError(err)
			log.Warn().Err(err).Str("file", header.Filename).Msg("upload: rejected file")
			return redirectHome(e, "error", msg)
		}

		s := &Session{
			ID:         GetSessionID(e.Request),
			FileName:   header.Filename,
			Original:   table,
			Table:      table,
			UploadedAt: time.Now(),
		}
		saveSession(app, s)

		log.Info().
			Str("session", s.ID).
			Str("file", header.Filename).
			Int("rows", table.Len()).
			Int("columns", len(table.Columns)).
			Msg("upload: loaded pricelist")
		return redirectHome(e, "success", fmt.Sprintf("Loaded %s (%d rows)", header.Filename, table.Len()))
	}
}

// HandleAdjust applies the form's "delta" to every price of the uploaded
// table. Adjustments do not stack: the delta always applies to the table as
// uploaded.
// Route: POST /adjust
func HandleAdjust(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s := loadSession(app, e.Request)
		if s == nil {
			return redirectHome(e, "error", "Upload a CSV file before adjusting prices")
		}

		delta, err := parseDelta(e.Request.FormValue("delta"))
		if err != nil {
			return redirectHome(e, "error", err.Error())
		}

		adjusted, err := services.AdjustPrices(s.Original, delta)
		if err != nil {
			_, msg := describeError(err)
			log.Warn().Err(err).Float64("delta", delta).Msg("adjust: failed")
			return redirectHome(e, "error", msg)
		}

		next := *s
		next.Table = adjusted
		next.Delta = delta
		saveSession(app, &next)

		if delta == 0 {
			return redirectHome(e, "info", "No adjustment applied")
		}
		log.Info().Str("session", s.ID).Float64("delta", delta).Msg("adjust: prices adjusted")
		return redirectHome(e, "success", fmt.Sprintf("Prices adjusted by %+g per kg", delta))
	}
}

// parseDelta accepts an empty value as zero and a comma as decimal separator.
func parseDelta(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	delta, err := cast.ToFloat64E(strings.Replace(raw, ",", ".", 1))
	if err != nil || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, fmt.Errorf("adjustment %q is not a number", raw)
	}
	return delta, nil
}

// HandleReset restores the uploaded prices.
// Route: POST /reset
func HandleReset(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s := loadSession(app, e.Request)
		if s == nil {
			return e.Redirect(http.StatusSeeOther, "/")
		}
		next := *s
		next.Table = s.Original
		next.Delta = 0
		saveSession(app, &next)
		return redirectHome(e, "info", "Prices reset to the uploaded values")
	}
}
