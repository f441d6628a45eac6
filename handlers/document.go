package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"

	"pricelist/config"
	"pricelist/services"
)

// sendAttachment writes content as a file download.
func sendAttachment(e *core.RequestEvent, contentType, fileName string, content []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	e.Response.Header().Set("Content-Length", fmt.Sprintf("%d", len(content)))
	e.Response.WriteHeader(http.StatusOK)
	_, err := e.Response.Write(content)
	return err
}

// clientGroup resolves the {client} path value against the session's current
// table. Unknown clients get a 404.
func clientGroup(app *pocketbase.PocketBase, e *core.RequestEvent) (*services.ClientGroup, bool, error) {
	s, err := requireSession(app, e)
	if s == nil {
		return nil, false, err
	}

	name := e.Request.PathValue("client")
	g, err := services.GroupByClient(s.Table, name)
	if err != nil {
		return nil, false, respondError(e, "document", err)
	}
	if g.Len() == 0 {
		return nil, false, ErrorToast(e, http.StatusNotFound, fmt.Sprintf("Client %q not found in the uploaded pricelist", name))
	}
	if cols := g.Divergent(); len(cols) > 0 {
		log.Warn().Str("client", name).Strs("columns", cols).Msg("document: per-client values differ across rows, using first row")
	}
	return g, true, nil
}

// HandleDocument renders one client's HTML pricelist as a download.
// Route: GET /pricelists/{client}
func HandleDocument(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		g, ok, err := clientGroup(app, e)
		if !ok {
			return err
		}

		doc, err := services.NewRenderer(cfg.Render()).Render(g, services.Today(time.Now()))
		if err != nil {
			return respondError(e, "document", err)
		}

		log.Info().Str("client", g.Name).Int("products", g.Len()).Str("file", doc.FileName).Msg("document: rendered")
		return sendAttachment(e, "text/html; charset=utf-8", doc.FileName, doc.Content)
	}
}

// HandleDocumentPDF renders one client's pricelist as a PDF download.
// Route: GET /pricelists/{client}/pdf
func HandleDocumentPDF(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		g, ok, err := clientGroup(app, e)
		if !ok {
			return err
		}

		doc, err := services.NewRenderer(cfg.Render()).RenderPDF(g, services.Today(time.Now()))
		if err != nil {
			return respondError(e, "document_pdf", err)
		}
		return sendAttachment(e, "application/pdf", doc.FileName, doc.Content)
	}
}
