package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ParsePrice converts a Price per kg cell to a number.
func ParsePrice(v string, line int) (float64, error) {
	s := strings.TrimSpace(v)
	f, err := cast.ToFloat64E(s)
	if err == nil && (s == "" || math.IsNaN(f) || math.IsInf(f, 0)) {
		err = strconv.ErrSyntax
	}
	if err != nil {
		return 0, &TypeConversionError{Field: ColPricePerKg, Row: line, Value: v, Err: err}
	}
	return f, nil
}

// FormatPrice writes a price with the shortest text that parses back to the
// same float64, so adjusted tables survive a CSV round trip unchanged.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// AdjustPrices returns a copy of t with delta added to every Price per kg.
// A zero delta returns t itself. Null prices stay null.
func AdjustPrices(t *Table, delta float64) (*Table, error) {
	if delta == 0 {
		return t, nil
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return nil, &TypeConversionError{Field: "adjustment", Value: FormatPrice(delta), Err: strconv.ErrSyntax}
	}

	idx := t.ColumnIndex(ColPricePerKg)
	if idx < 0 {
		return nil, &MissingFieldError{Field: ColPricePerKg}
	}

	out := t.Clone()
	for i := range out.Rows {
		row := &out.Rows[i]
		if row.Cells[idx] == "" {
			continue
		}

		price, err := ParsePrice(row.Cells[idx], row.Line)
		if err != nil {
			return nil, err
		}
		row.Cells[idx] = FormatPrice(price + delta)
	}
	return out, nil
}
