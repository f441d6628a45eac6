package services

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Download names for the adjusted table.
const (
	AdjustedCSVName  = "adjusted_pricelist.csv"
	AdjustedXLSXName = "adjusted_pricelist.xlsx"
)

// WriteCSV serializes t with a header row. Null cells are written empty and
// prices keep the exact text produced by AdjustPrices, so loading the output
// again yields the same table.
func WriteCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range t.Rows {
		if err := w.Write(r.Cells); err != nil {
			return nil, fmt.Errorf("write csv line %d: %w", r.Line, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateExcel writes t to a single-sheet workbook. Prices are stored as
// numbers, everything else as text.
func GenerateExcel(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Pricelist"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
			Size:  11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	priceStyle, err := f.NewStyle(&excelize.Style{
		NumFmt: 4, // #,##0.00
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create price style: %w", err)
	}

	cols := columnLetters(len(t.Columns))
	priceCol := t.ColumnIndex(ColPricePerKg)

	for i, name := range t.Columns {
		cell := cols[i] + "1"
		f.SetCellValue(sheetName, cell, sanitizeExcelCell(name))
		f.SetCellStyle(sheetName, cell, cell, headerStyle)

		width := float64(len(name)) * 1.3
		if width < 15 {
			width = 15
		}
		f.SetColWidth(sheetName, cols[i], cols[i], width)
	}

	for r, row := range t.Rows {
		rowStr := fmt.Sprintf("%d", r+2)
		for i, v := range row.Cells {
			cell := cols[i] + rowStr
			if i == priceCol && v != "" {
				if price, err := ParsePrice(v, row.Line); err == nil {
					f.SetCellValue(sheetName, cell, price)
					f.SetCellStyle(sheetName, cell, cell, priceStyle)
					continue
				}
			}
			f.SetCellValue(sheetName, cell, sanitizeExcelCell(v))
		}
	}

	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}

// columnLetters returns Excel column letters for n columns: A, B, ... Z, AA, AB ...
func columnLetters(n int) []string {
	cols := make([]string, n)
	for i := 0; i < n; i++ {
		name, _ := excelize.ColumnNumberToName(i + 1)
		cols[i] = name
	}
	return cols
}
