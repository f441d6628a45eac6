package services

import (
	"fmt"
	"os"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// PDFFileName is the download name of a client's PDF pricelist.
func PDFFileName(client, date string) string {
	return fmt.Sprintf("%s_pricelist_%s.pdf", SanitizeFilename(client), date)
}

// RenderPDF builds the print version of one client's pricelist.
func (r *Renderer) RenderPDF(g *ClientGroup, date string) (*Document, error) {
	data, err := BuildDocumentData(g, date, r.cfg.LogoPath)
	if err != nil {
		return nil, err
	}

	content, err := GeneratePDF(data)
	if err != nil {
		return nil, err
	}

	return &Document{
		ClientName: g.Name,
		FileName:   PDFFileName(g.Name, date),
		Content:    content,
	}, nil
}

// GeneratePDF lays out a pricelist with maroto and returns the PDF bytes.
func GeneratePDF(data *DocumentData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addPDFHeader(m, data)
	addPDFClientBlock(m, data)
	addPDFTableHeader(m)
	for i, p := range data.Products {
		addPDFTableRow(m, i, p)
	}
	addPDFFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addPDFHeader(m core.Maroto, data *DocumentData) {
	title := col.New(8).Add(
		text.New("Pricelist", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	logo := col.New(4)
	if data.LogoPath != "" {
		if _, err := os.Stat(data.LogoPath); err == nil {
			logo = logo.Add(image.NewFromFile(data.LogoPath, props.Rect{Percent: 90}))
		}
	}

	m.AddRows(row.New(20).Add(title, logo))
	m.AddRows(row.New(4))
}

func addPDFClientBlock(m core.Maroto, data *DocumentData) {
	label := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left}
	value := props.Text{Size: 9, Align: align.Left}

	lines := []struct{ k, v string }{
		{"Client", data.ClientName},
		{"Contact", data.ContactName},
		{"Email", data.ContactEmail},
		{"Delivery volume", data.DeliveryVolume},
		{"Effective date", data.EffectiveDate},
	}
	for _, l := range lines {
		m.AddRows(
			row.New(6).Add(
				col.New(3).Add(text.New(l.k, label)),
				col.New(9).Add(text.New(l.v, value)),
			),
		)
	}
	m.AddRows(row.New(6))
}

func addPDFTableHeader(m core.Maroto) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Left,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextRight := headerText
	headerTextRight.Align = align.Right

	headerCell := props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(5).Add(text.New("Product", headerText)).WithStyle(&headerCell),
			col.New(3).Add(text.New("Price per kg", headerTextRight)).WithStyle(&headerCell),
			col.New(4).Add(text.New("Note", headerText)).WithStyle(&headerCell),
		),
	)
}

func addPDFTableRow(m core.Maroto, i int, p LineItem) {
	base := props.Text{Size: 8, Align: align.Left}
	right := base
	right.Align = align.Right

	colName := col.New(5).Add(text.New(p.Name, base))
	colPrice := col.New(3).Add(text.New(DisplayPrice(p.Price), right))
	colNote := col.New(4).Add(text.New(p.Note, base))

	// Zebra striping.
	if i%2 == 1 {
		cell := &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}
		colName = colName.WithStyle(cell)
		colPrice = colPrice.WithStyle(cell)
		colNote = colNote.WithStyle(cell)
	}

	m.AddRows(row.New(7).Add(colName, colPrice, colNote))
}

func addPDFFooter(m core.Maroto, data *DocumentData) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Generated on %s", data.DateToday),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}
