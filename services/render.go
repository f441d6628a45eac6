package services

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DateLayout is the ISO 8601 date used in documents and file names.
const DateLayout = "2006-01-02"

// Today formats now as the document date stamp.
func Today(now time.Time) string { return now.Format(DateLayout) }

// RenderConfig locates the static resources a document is built from.
// Paths are used as given; config.Load resolves them to absolute paths.
type RenderConfig struct {
	TemplatePath string
	LogoPath     string
}

// LineItem is one product on a client's pricelist.
type LineItem struct {
	Name  string
	Price float64
	Note  string
}

// DocumentData is everything substituted into the template for one client.
type DocumentData struct {
	ClientName     string
	ContactName    string
	ContactEmail   string
	DeliveryVolume string
	EffectiveDate  string
	Products       []LineItem
	DateToday      string
	LogoPath       string
}

// Document is one rendered client pricelist.
type Document struct {
	ClientName string
	FileName   string
	Content    []byte
}

// BuildDocumentData maps a client group onto the template input. Per-client
// fields come from the group's first row; every row becomes one line item in
// order.
func BuildDocumentData(g *ClientGroup, date, logoPath string) (*DocumentData, error) {
	if g.Len() == 0 {
		return nil, &MissingFieldError{Field: ColClientName, Client: g.Name}
	}
	for _, col := range RequiredColumns {
		if !g.Table.HasColumn(col) {
			return nil, &MissingFieldError{Field: col, Client: g.Name}
		}
	}

	first := g.Table.Rows[0]
	scalar := func(col string, required bool) (string, error) {
		v, _ := g.Scalar(col)
		if required && v == "" {
			return "", &MissingFieldError{Field: col, Row: first.Line, Client: g.Name}
		}
		return v, nil
	}

	data := &DocumentData{
		ClientName: g.Name,
		DateToday:  date,
		LogoPath:   logoPath,
		Products:   make([]LineItem, 0, g.Len()),
	}

	var err error
	if data.ContactName, err = scalar(ColContactName, true); err != nil {
		return nil, err
	}
	if data.ContactEmail, err = scalar(ColContactEmail, true); err != nil {
		return nil, err
	}
	if data.EffectiveDate, err = scalar(ColEffectiveDate, true); err != nil {
		return nil, err
	}
	// Null and NaN volumes were blanked by the loader; a missing column renders empty.
	if data.DeliveryVolume, err = scalar(ColDeliveryVolume, false); err != nil {
		return nil, err
	}

	for i, r := range g.Table.Rows {
		name, _ := g.Table.Value(i, ColProduct)
		if name == "" {
			return nil, &MissingFieldError{Field: ColProduct, Row: r.Line, Client: g.Name}
		}

		rawPrice, _ := g.Table.Value(i, ColPricePerKg)
		if rawPrice == "" {
			return nil, &MissingFieldError{Field: ColPricePerKg, Row: r.Line, Client: g.Name}
		}
		price, err := ParsePrice(rawPrice, r.Line)
		if err != nil {
			return nil, err
		}

		note, _ := g.Table.Value(i, ColNote)
		data.Products = append(data.Products, LineItem{Name: name, Price: price, Note: note})
	}

	return data, nil
}

// templateVars exposes the data under the placeholder names the document
// template uses.
func (d *DocumentData) templateVars() map[string]any {
	products := make([]map[string]any, len(d.Products))
	for i, p := range d.Products {
		products[i] = map[string]any{
			"name":  p.Name,
			"price": p.Price,
			"note":  p.Note,
		}
	}
	return map[string]any{
		"client_name":     d.ClientName,
		"contact_name":    d.ContactName,
		"contact_email":   d.ContactEmail,
		"delivery_volume": d.DeliveryVolume,
		"effective_date":  d.EffectiveDate,
		"products":        products,
		"date_today":      d.DateToday,
		"logo_path":       d.LogoPath,
	}
}

// DisplayPrice formats a price with two decimals and thousands separators.
func DisplayPrice(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

var templateFuncs = template.FuncMap{
	"price": DisplayPrice,
}

// Renderer produces client documents from the configured template.
type Renderer struct {
	cfg RenderConfig
}

// NewRenderer returns a Renderer for cfg.
func NewRenderer(cfg RenderConfig) *Renderer {
	return &Renderer{cfg: cfg}
}

// Config returns the renderer's resource locations.
func (r *Renderer) Config() RenderConfig { return r.cfg }

// Render builds the document for one client. The template is read on every
// call so edits to it show up without a restart.
func (r *Renderer) Render(g *ClientGroup, date string) (*Document, error) {
	data, err := BuildDocumentData(g, date, r.cfg.LogoPath)
	if err != nil {
		return nil, err
	}

	tmpl, err := r.loadTemplate()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data.templateVars()); err != nil {
		return nil, &TemplateRenderError{Template: r.cfg.TemplatePath, Err: err}
	}

	return &Document{
		ClientName: g.Name,
		FileName:   DocumentFileName(g.Name, date),
		Content:    buf.Bytes(),
	}, nil
}

func (r *Renderer) loadTemplate() (*template.Template, error) {
	if r.cfg.TemplatePath == "" {
		return nil, &TemplateRenderError{Template: "(unset)", Err: fmt.Errorf("no template path configured")}
	}
	tmpl, err := template.New(filepath.Base(r.cfg.TemplatePath)).
		Funcs(templateFuncs).
		Option("missingkey=error").
		ParseFiles(r.cfg.TemplatePath)
	if err != nil {
		return nil, &TemplateRenderError{Template: r.cfg.TemplatePath, Err: err}
	}
	return tmpl, nil
}

// DocumentFileName is the download name of a client's pricelist.
func DocumentFileName(client, date string) string {
	return fmt.Sprintf("%s_pricelist_%s.html", SanitizeFilename(client), date)
}

// SanitizeFilename replaces characters that cannot appear in a file or
// archive entry name.
func SanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', r == ':', r < 0x20, r == 0x7f:
			return '-'
		}
		return r
	}, s)
}
