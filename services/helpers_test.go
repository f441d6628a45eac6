package services

import (
	"strings"
	"testing"

	"pricelist/testhelpers"
)

// mustLoad parses csv text and fails the test on error.
func mustLoad(t *testing.T, csv string) *Table {
	t.Helper()
	tbl, err := LoadTable(strings.NewReader(csv), "pricelist.csv")
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	return tbl
}

// testRenderer returns a Renderer using the minimal fixture template.
func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	return NewRenderer(RenderConfig{
		TemplatePath: testhelpers.WriteTemplate(t, testhelpers.DocumentTemplate),
		LogoPath:     "/srv/assets/logo.png",
	})
}

func column(t *testing.T, tbl *Table, name string) []string {
	t.Helper()
	idx := tbl.ColumnIndex(name)
	if idx < 0 {
		t.Fatalf("column %q not found in %v", name, tbl.Columns)
	}
	out := make([]string, len(tbl.Rows))
	for i, r := range tbl.Rows {
		out[i] = r.Cells[idx]
	}
	return out
}
