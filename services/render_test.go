package services

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pricelist/testhelpers"
)

func renderClientHTML(t *testing.T, r *Renderer, tbl *Table, client string) string {
	t.Helper()
	g, err := GroupByClient(tbl, client)
	if err != nil {
		t.Fatalf("GroupByClient() error = %v", err)
	}
	doc, err := r.Render(g, "2024-03-15")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return string(doc.Content)
}

func TestRender_ClientDocument(t *testing.T) {
	html := renderClientHTML(t, testRenderer(t), mustLoad(t, testhelpers.PricelistCSV), "Acme")

	testhelpers.AssertHTMLContains(t, html,
		"<h1>Acme</h1>",
		"Ann Smith &lt;ann@acme.test&gt;",
		`<p class="volume">5 t/month</p>`,
		`<p class="effective">2024-01-01</p>`,
		"<td>Widget</td><td>1.50</td><td>Fresh</td>",
		"<td>Gadget</td><td>2.25</td><td></td>",
		"2024-03-15 /srv/assets/logo.png",
	)
	testhelpers.AssertHTMLNotContains(t, html, "Beta", "nan", "NaN")

	if strings.Index(html, "Widget") > strings.Index(html, "Gadget") {
		t.Error("products should appear in table order")
	}
}

func TestRender_EmptyOptionalFieldsRenderBlank(t *testing.T) {
	html := renderClientHTML(t, testRenderer(t), mustLoad(t, testhelpers.PricelistCSV), "Beta")

	testhelpers.AssertHTMLContains(t, html,
		`<p class="volume"></p>`,
		"<td>Widget</td><td>3.00</td><td></td>",
	)
	testhelpers.AssertHTMLNotContains(t, html, "nan", "<no value>")
}

func TestRender_AdjustedPrices(t *testing.T) {
	adjusted, err := AdjustPrices(mustLoad(t, testhelpers.PricelistCSV), 10)
	if err != nil {
		t.Fatal(err)
	}
	html := renderClientHTML(t, testRenderer(t), adjusted, "Acme")

	testhelpers.AssertHTMLContains(t, html, "<td>11.50</td>", "<td>12.25</td>")
}

func TestRender_EscapesValues(t *testing.T) {
	tbl := mustLoad(t, testhelpers.CSV(
		testhelpers.Header,
		`"A&B <Foods>",Ann,ann@ab.test,,2024-01-01,<script>x</script>,1,`,
	))
	html := renderClientHTML(t, testRenderer(t), tbl, "A&B <Foods>")

	testhelpers.AssertHTMLContains(t, html, "A&amp;B &lt;Foods&gt;", "&lt;script&gt;")
	testhelpers.AssertHTMLNotContains(t, html, "<script>")
}

func TestRender_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		csv   string
		field string
	}{
		{
			"no contact name column",
			"Client Name,Contact Email,Effective Date,Product,Price per kg\nAcme,a@x.test,2024-01-01,W,1\n",
			ColContactName,
		},
		{
			"empty effective date",
			testhelpers.CSV(testhelpers.Header, "Acme,Ann,a@x.test,,NaN,W,1,", "Beta,Bob,b@x.test,,2024-01-01,W,1,"),
			ColEffectiveDate,
		},
		{
			"empty price",
			testhelpers.CSV(testhelpers.Header, "Acme,Ann,a@x.test,,2024-01-01,W,1,", "Acme,Ann,a@x.test,,2024-01-01,V,,"),
			ColPricePerKg,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := GroupByClient(mustLoad(t, tt.csv), "Acme")
			if err != nil {
				t.Fatal(err)
			}
			_, err = testRenderer(t).Render(g, "2024-03-15")
			var missing *MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("error = %v, want MissingFieldError", err)
			}
			if missing.Field != tt.field || missing.Client != "Acme" {
				t.Errorf("MissingFieldError = %+v, want field %q", missing, tt.field)
			}
		})
	}
}

func TestRender_UnknownClient(t *testing.T) {
	g, err := GroupByClient(mustLoad(t, testhelpers.PricelistCSV), "Nobody")
	if err != nil {
		t.Fatal(err)
	}
	_, err = testRenderer(t).Render(g, "2024-03-15")
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingFieldError", err)
	}
}

func TestRender_TemplateErrors(t *testing.T) {
	g, err := GroupByClient(mustLoad(t, testhelpers.PricelistCSV), "Acme")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "absent.html")},
		{"syntax error", testhelpers.WriteTemplate(t, "<h1>{{.client_name</h1>")},
		{"unknown placeholder", testhelpers.WriteTemplate(t, "<h1>{{.client_nickname}}</h1>")},
		{"unset", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(RenderConfig{TemplatePath: tt.path})
			_, err := r.Render(g, "2024-03-15")
			var tmplErr *TemplateRenderError
			if !errors.As(err, &tmplErr) {
				t.Fatalf("error = %v, want TemplateRenderError", err)
			}
		})
	}
}

func TestRender_TemplateReloadedPerCall(t *testing.T) {
	path := testhelpers.WriteTemplate(t, "v1 {{.client_name}}")
	r := NewRenderer(RenderConfig{TemplatePath: path})
	g, err := GroupByClient(mustLoad(t, testhelpers.PricelistCSV), "Acme")
	if err != nil {
		t.Fatal(err)
	}

	first, err := r.Render(g, "2024-03-15")
	if err != nil {
		t.Fatal(err)
	}
	testhelpers.AssertHTMLContains(t, string(first.Content), "v1 Acme")

	if err := os.WriteFile(path, []byte("v2 {{.client_name}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := r.Render(g, "2024-03-15")
	if err != nil {
		t.Fatal(err)
	}
	testhelpers.AssertHTMLContains(t, string(second.Content), "v2 Acme")
}

func TestDocumentFileName(t *testing.T) {
	tests := []struct {
		client string
		want   string
	}{
		{"Acme", "Acme_pricelist_2024-03-15.html"},
		{"A/B", "A-B_pricelist_2024-03-15.html"},
		{`C:\D`, "C--D_pricelist_2024-03-15.html"},
		{"Café Müller", "Café Müller_pricelist_2024-03-15.html"},
	}
	for _, tt := range tests {
		t.Run(tt.client, func(t *testing.T) {
			if got := DocumentFileName(tt.client, "2024-03-15"); got != tt.want {
				t.Errorf("DocumentFileName(%q) = %q, want %q", tt.client, got, tt.want)
			}
		})
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)
	if got := Today(now); got != "2024-03-05" {
		t.Errorf("Today() = %q", got)
	}
}

func TestDisplayPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.5, "1.50"},
		{3, "3.00"},
		{1234.5, "1,234.50"},
	}
	for _, tt := range tests {
		if got := DisplayPrice(tt.in); got != tt.want {
			t.Errorf("DisplayPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRender_ShippedTemplate(t *testing.T) {
	r := NewRenderer(RenderConfig{
		TemplatePath: filepath.Join("..", "assets", "template_en.html"),
		LogoPath:     "/srv/my assets/logo.png",
	})
	tbl := mustLoad(t, testhelpers.CSV(
		testhelpers.Header,
		"Acme,Ann Smith,ann@acme.test,5 t/month,2024-01-01,Widget,1234.5,Fresh",
	))

	html := renderClientHTML(t, r, tbl, "Acme")
	testhelpers.AssertHTMLContains(t, html,
		"<title>Pricelist Acme</title>",
		"<div>Acme</div>",
		`src="file:///srv/my%20assets/logo.png"`,
		"<td>Ann Smith</td>",
		"<td>ann@acme.test</td>",
		"<td>5 t/month</td>",
		"<td>2024-01-01</td>",
		`<tr><td>Widget</td><td class="price">1,234.50</td><td>Fresh</td></tr>`,
		"Issued 2024-03-15.",
	)
	testhelpers.AssertHTMLNotContains(t, html, "<no value>", "{{")
}
