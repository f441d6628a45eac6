package main

import (
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"

	"pricelist/config"
	"pricelist/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if _, err := os.Stat(cfg.TemplatePath); err != nil {
		log.Warn().Err(err).Str("template", cfg.TemplatePath).Msg("document template not readable; rendering will fail until it exists")
	}

	app := pocketbase.New()

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS(cfg.StaticDir), false))

		se.Router.BindFunc(handlers.SessionMiddleware(app))

		// ── Upload & adjust ──────────────────────────────────────
		se.Router.GET("/", handlers.HandleHome(app))
		// HandleUpload enforces the exact file limit; the route limit only
		// leaves room for the multipart framing around it.
		se.Router.POST("/upload", handlers.HandleUpload(app, cfg)).
			Bind(apis.BodyLimit(cfg.MaxUploadBytes() + 1<<20))
		se.Router.POST("/adjust", handlers.HandleAdjust(app))
		se.Router.POST("/reset", handlers.HandleReset(app))

		// ── Per-client documents ─────────────────────────────────
		se.Router.GET("/pricelists/{client}/pdf", handlers.HandleDocumentPDF(app, cfg))
		se.Router.GET("/pricelists/{client}", handlers.HandleDocument(app, cfg))

		// ── Exports ──────────────────────────────────────────────
		se.Router.GET("/export/all", handlers.HandleExportAll(app, cfg))
		se.Router.GET("/export/adjusted.csv", handlers.HandleExportAdjustedCSV(app))
		se.Router.GET("/export/adjusted.xlsx", handlers.HandleExportAdjustedExcel(app))

		// ── Blank templates ──────────────────────────────────────
		se.Router.GET("/template.csv", handlers.HandleTemplateCSV())
		se.Router.GET("/template.xlsx", handlers.HandleTemplateExcel())

		log.Info().
			Str("env", cfg.Env).
			Str("template", cfg.TemplatePath).
			Str("export_policy", cfg.Policy().String()).
			Msg("pricelist routes registered")
		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
