package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LoadTable parses an uploaded pricelist. XLSX workbooks are read from their
// first sheet; anything else must be delimited UTF-8 text with a header row.
// Fully empty rows, and columns empty in every data row, are discarded.
func LoadTable(r io.Reader, fileName string) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &MalformedInputError{FileName: fileName, Reason: "failed to read upload", Err: err}
	}

	var records [][]string
	if isExcel(raw, fileName) {
		records, err = parseExcel(raw)
	} else {
		records, err = parseDelimited(raw, fileName)
	}
	if err != nil {
		var malformed *MalformedInputError
		if errors.As(err, &malformed) {
			malformed.FileName = fileName
			return nil, malformed
		}
		return nil, &MalformedInputError{FileName: fileName, Err: err}
	}

	t, err := buildTable(records)
	if err != nil {
		var malformed *MalformedInputError
		if errors.As(err, &malformed) {
			malformed.FileName = fileName
		}
		return nil, err
	}
	return t, nil
}

func isExcel(raw []byte, fileName string) bool {
	if strings.EqualFold(filepath.Ext(fileName), ".xlsx") {
		return true
	}
	return mimetype.Detect(raw).Is(xlsxMIME)
}

// parseDelimited reads CSV-like text. The delimiter is a comma unless the
// header line carries more semicolons or tabs.
func parseDelimited(raw []byte, fileName string) ([][]string, error) {
	if !isText(raw) {
		return nil, &MalformedInputError{
			Reason: fmt.Sprintf("unsupported content type %s", mimetype.Detect(raw).String()),
		}
	}
	if !utf8.Valid(raw) {
		return nil, &MalformedInputError{Reason: "file is not valid UTF-8 text"}
	}

	decoded := transform.NewReader(bytes.NewReader(raw), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	text, err := io.ReadAll(decoded)
	if err != nil {
		return nil, &MalformedInputError{Reason: "failed to decode text", Err: err}
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &MalformedInputError{Reason: "failed to parse CSV", Err: err}
	}
	return records, nil
}

func isText(raw []byte) bool {
	for m := mimetype.Detect(raw); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func sniffDelimiter(text []byte) rune {
	header := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		header = text[:i]
	}

	best, bestCount := ',', bytes.Count(header, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(header, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// parseExcel reads the first sheet of an xlsx workbook.
func parseExcel(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &MalformedInputError{Reason: "failed to open Excel file", Err: err}
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &MalformedInputError{Reason: "failed to read sheet", Err: err}
	}
	if len(rows) == 0 {
		return rows, nil
	}

	// Displayed values carry the cell's number format ("1,234.50"), so prices
	// are read raw. Other columns keep their display form, e.g. dates.
	priceCol := -1
	for i, h := range rows[0] {
		if strings.TrimSpace(h) == ColPricePerKg {
			priceCol = i
		}
	}
	if priceCol < 0 {
		return rows, nil
	}
	rawRows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &MalformedInputError{Reason: "failed to read sheet", Err: err}
	}
	for i := 1; i < len(rows) && i < len(rawRows); i++ {
		if priceCol < len(rows[i]) && priceCol < len(rawRows[i]) {
			rows[i][priceCol] = rawRows[i][priceCol]
		}
	}
	return rows, nil
}

// buildTable turns raw records (header first) into a Table.
func buildTable(records [][]string) (*Table, error) {
	if len(records) == 0 || allNull(records[0]) {
		return nil, &MalformedInputError{Reason: "file must contain a header row"}
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for idx, rec := range records[1:] {
		line := idx + 2 // header is line 1
		if len(rec) > len(header) {
			if !allNull(rec[len(header):]) {
				return nil, &MalformedInputError{
					Reason: fmt.Sprintf("line %d has %d fields, header has %d", line, len(rec), len(header)),
				}
			}
			rec = rec[:len(header)]
		}

		cells := make([]string, len(header))
		for i, v := range rec {
			if !IsNull(v) {
				cells[i] = strings.TrimSpace(v)
			}
		}
		if allNull(cells) {
			continue
		}
		rows = append(rows, Row{Line: line, Cells: cells})
	}

	keep := make([]int, 0, len(header))
	for i := range header {
		if len(rows) == 0 || columnHasValue(rows, i) {
			keep = append(keep, i)
		}
	}

	t := &Table{Columns: make([]string, 0, len(keep)), Rows: make([]Row, 0, len(rows))}
	seen := make(map[string]bool, len(keep))
	for _, i := range keep {
		name := header[i]
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			return nil, &MalformedInputError{Reason: fmt.Sprintf("duplicate column %q", name)}
		}
		seen[name] = true
		t.Columns = append(t.Columns, name)
	}

	for _, r := range rows {
		cells := make([]string, len(keep))
		for j, i := range keep {
			cells[j] = r.Cells[i]
		}
		t.Rows = append(t.Rows, Row{Line: r.Line, Cells: cells})
	}
	return t, nil
}

func allNull(cells []string) bool {
	for _, c := range cells {
		if !IsNull(c) {
			return false
		}
	}
	return true
}

func columnHasValue(rows []Row, col int) bool {
	for _, r := range rows {
		if r.Cells[col] != "" {
			return true
		}
	}
	return false
}
