package services

import "strings"

// Column headers of a pricelist sheet.
const (
	ColClientName     = "Client Name"
	ColContactName    = "Contact Name"
	ColContactEmail   = "Contact Email"
	ColDeliveryVolume = "Delivery Volume"
	ColEffectiveDate  = "Effective Date"
	ColProduct        = "Product"
	ColPricePerKg     = "Price per kg"
	ColNote           = "Note"
)

// SheetColumns lists every pricelist column in the order used for the blank
// template and exports.
var SheetColumns = []string{
	ColClientName,
	ColContactName,
	ColContactEmail,
	ColDeliveryVolume,
	ColEffectiveDate,
	ColProduct,
	ColPricePerKg,
	ColNote,
}

// RequiredColumns are the columns a document cannot be rendered without.
// Delivery Volume and Note fall back to empty text, so a sheet where either
// column was dropped as entirely empty still renders.
var RequiredColumns = []string{
	ColClientName,
	ColContactName,
	ColContactEmail,
	ColEffectiveDate,
	ColProduct,
	ColPricePerKg,
}

// columnAliases maps a canonical column to alternative headers found in
// older sheets.
var columnAliases = map[string][]string{
	ColContactEmail: {"Email"},
}

// nullTokens are cell texts treated as "no value", matching what common
// dataframe readers consider NA.
var nullTokens = map[string]bool{
	"":         true,
	"NA":       true,
	"N/A":      true,
	"n/a":      true,
	"NaN":      true,
	"nan":      true,
	"-NaN":     true,
	"-nan":     true,
	"null":     true,
	"NULL":     true,
	"None":     true,
	"<NA>":     true,
	"#N/A":     true,
	"#NA":      true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
}

// IsNull reports whether a cell value counts as missing.
func IsNull(v string) bool {
	return nullTokens[strings.TrimSpace(v)]
}

// Row is one data row. Line is its 1-based line in the uploaded sheet
// (the header is line 1), kept for error messages after empty rows are dropped.
type Row struct {
	Line  int
	Cells []string
}

// Table is an in-memory pricelist. Every row has len(Columns) cells and an
// empty cell is null.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the index of the named column, honouring aliases,
// or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	for _, alias := range columnAliases[name] {
		for i, c := range t.Columns {
			if c == alias {
				return i
			}
		}
	}
	return -1
}

// HasColumn reports whether the named column (or one of its aliases) exists.
func (t *Table) HasColumn(name string) bool { return t.ColumnIndex(name) >= 0 }

// Value returns the cell of row i in the named column. ok is false when the
// column does not exist.
func (t *Table) Value(i int, name string) (value string, ok bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return "", false
	}
	return t.Rows[i].Cells[idx], true
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = Row{Line: r.Line, Cells: append([]string(nil), r.Cells...)}
	}
	return out
}

// subset returns a table sharing this table's columns with only the given rows.
func (t *Table) subset(rows []int) *Table {
	out := &Table{Columns: t.Columns, Rows: make([]Row, 0, len(rows))}
	for _, i := range rows {
		out.Rows = append(out.Rows, t.Rows[i])
	}
	return out
}

// ValidateColumns checks that every required column is present.
func ValidateColumns(t *Table) error {
	for _, col := range RequiredColumns {
		if !t.HasColumn(col) {
			return &MissingFieldError{Field: col}
		}
	}
	return nil
}
