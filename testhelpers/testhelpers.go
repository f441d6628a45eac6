// Package testhelpers provides fixtures for testing the pricelist app.
package testhelpers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}
	return app
}

// Header is the full column layout of an uploaded pricelist.
const Header = "Client Name,Contact Name,Contact Email,Delivery Volume,Effective Date,Product,Price per kg,Note"

// PricelistCSV is a two-client pricelist: Acme with two products and Beta with
// one product and no delivery volume or note.
const PricelistCSV = Header + "\n" +
	"Acme,Ann Smith,ann@acme.test,5 t/month,2024-01-01,Widget,1.50,Fresh\n" +
	"Acme,Ann Smith,ann@acme.test,5 t/month,2024-01-01,Gadget,2.25,\n" +
	"Beta,Bob Jones,bob@beta.test,,2024-02-01,Widget,3,\n"

// CSV joins lines into a CSV document with a trailing newline.
func CSV(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// DocumentTemplate is a minimal document template using every placeholder.
const DocumentTemplate = `<html><body>
<h1>{{.client_name}}</h1>
<p class="contact">{{.contact_name}} &lt;{{.contact_email}}&gt;</p>
<p class="volume">{{.delivery_volume}}</p>
<p class="effective">{{.effective_date}}</p>
<table>{{range .products}}<tr><td>{{.name}}</td><td>{{price .price}}</td><td>{{.note}}</td></tr>{{end}}</table>
<footer>{{.date_today}} {{.logo_path}}</footer>
</body></html>`

// WriteTemplate writes content to a temp file and returns its path.
func WriteTemplate(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "template.html")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}
	return path
}

// AssertHTMLContains checks that the HTML output contains all expected substrings.
func AssertHTMLContains(t *testing.T, html string, substrings ...string) {
	t.Helper()
	for _, s := range substrings {
		if !strings.Contains(html, s) {
			t.Errorf("expected HTML to contain %q, but it did not.\nHTML (first 500 chars): %s", s, truncate(html, 500))
		}
	}
}

// AssertHTMLNotContains checks that the HTML output does not contain any of the substrings.
func AssertHTMLNotContains(t *testing.T, html string, substrings ...string) {
	t.Helper()
	for _, s := range substrings {
		if strings.Contains(html, s) {
			t.Errorf("expected HTML NOT to contain %q, but it did.\nHTML (first 500 chars): %s", s, truncate(html, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
