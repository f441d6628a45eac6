package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Download names for the blank pricelist.
const (
	BlankCSVName  = "pricelist_template.csv"
	BlankXLSXName = "pricelist_template.xlsx"
)

// columnHelp describes each sheet column for the Instructions sheet.
var columnHelp = map[string]struct {
	Description string
	Example     string
}{
	ColClientName:     {"Groups rows into one document per client", "Acme Foods"},
	ColContactName:    {"Read from the client's first row", "Jane Doe"},
	ColContactEmail:   {"Read from the client's first row", "jane@acme.example"},
	ColDeliveryVolume: {"Read from the client's first row; may be empty", "2 t / month"},
	ColEffectiveDate:  {"Read from the client's first row", "2024-07-01"},
	ColProduct:        {"One product per row", "Dried apricots"},
	ColPricePerKg:     {"Decimal number, dot separator", "12.50"},
	ColNote:           {"Optional", "Organic"},
}

// GenerateBlankCSV returns a CSV containing only the header row.
func GenerateBlankCSV() ([]byte, error) {
	return WriteCSV(&Table{Columns: SheetColumns})
}

// GenerateBlankExcel returns a workbook with the styled header row and an
// Instructions sheet describing every column.
func GenerateBlankExcel() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Pricelist"
	f.SetSheetName(f.GetSheetName(0), sheetName)

	required := make(map[string]bool, len(RequiredColumns))
	for _, c := range RequiredColumns {
		required[c] = true
	}

	requiredHeaderStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1D4ED8"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})
	optionalHeaderStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#6B7280"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})

	cols := columnLetters(len(SheetColumns))
	for i, name := range SheetColumns {
		cell := cols[i] + "1"
		f.SetCellValue(sheetName, cell, name)
		if required[name] {
			f.SetCellStyle(sheetName, cell, cell, requiredHeaderStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, optionalHeaderStyle)
		}
		f.SetColWidth(sheetName, cols[i], cols[i], 18)
	}

	// Prices must be decimals.
	dv := excelize.NewDataValidation(true)
	priceCol := cols[len(cols)-2]
	dv.Sqref = fmt.Sprintf("%s2:%s1048576", priceCol, priceCol)
	if err := dv.SetRange(-1e9, 1e9, excelize.DataValidationTypeDecimal, excelize.DataValidationOperatorBetween); err == nil {
		f.AddDataValidation(sheetName, dv)
	}

	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	addInstructionsSheet(f, required)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel template: %w", err)
	}
	return buf.Bytes(), nil
}

func addInstructionsSheet(f *excelize.File, required map[string]bool) {
	instSheet := "Instructions"
	f.NewSheet(instSheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
	})

	f.SetCellValue(instSheet, "A1", "Pricelist Upload - Instructions")
	f.SetCellStyle(instSheet, "A1", "A1", titleStyle)

	headers := []string{"Column", "Required?", "Description", "Example"}
	cols := columnLetters(len(headers))
	for i, h := range headers {
		cell := cols[i] + "3"
		f.SetCellValue(instSheet, cell, h)
		f.SetCellStyle(instSheet, cell, cell, headerStyle)
	}

	for i, name := range SheetColumns {
		row := fmt.Sprintf("%d", i+4)
		reqLabel := "Optional"
		if required[name] {
			reqLabel = "Required"
		}
		help := columnHelp[name]
		f.SetCellValue(instSheet, cols[0]+row, name)
		f.SetCellValue(instSheet, cols[1]+row, reqLabel)
		f.SetCellValue(instSheet, cols[2]+row, help.Description)
		f.SetCellValue(instSheet, cols[3]+row, help.Example)
	}

	widths := []float64{20, 12, 45, 25}
	for i, w := range widths {
		f.SetColWidth(instSheet, cols[i], cols[i], w)
	}
}
