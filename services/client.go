package services

// ClientNames returns the distinct non-null Client Name values in the order
// they first appear.
func ClientNames(t *Table) []string {
	idx := t.ColumnIndex(ColClientName)
	if idx < 0 {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, r := range t.Rows {
		name := r.Cells[idx]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// ClientGroup is the set of rows that belong to one client.
type ClientGroup struct {
	Name  string
	Table *Table
}

// GroupByClient returns the rows whose Client Name equals name, in table order.
// A missing column yields a MissingFieldError; a client with no rows yields a
// group of length zero.
func GroupByClient(t *Table, name string) (*ClientGroup, error) {
	idx := t.ColumnIndex(ColClientName)
	if idx < 0 {
		return nil, &MissingFieldError{Field: ColClientName, Client: name}
	}

	var rows []int
	for i, r := range t.Rows {
		if r.Cells[idx] == name {
			rows = append(rows, i)
		}
	}
	return &ClientGroup{Name: name, Table: t.subset(rows)}, nil
}

// CheckClientNames returns a MissingFieldError for the first row without a
// Client Name, since such a row cannot be routed to any document.
func CheckClientNames(t *Table) error {
	idx := t.ColumnIndex(ColClientName)
	if idx < 0 {
		return &MissingFieldError{Field: ColClientName}
	}
	for _, r := range t.Rows {
		if r.Cells[idx] == "" {
			return &MissingFieldError{Field: ColClientName, Row: r.Line}
		}
	}
	return nil
}

// clientScalarColumns hold one value per client, read from the group's first row.
var clientScalarColumns = []string{
	ColContactName,
	ColContactEmail,
	ColDeliveryVolume,
	ColEffectiveDate,
}

// Len returns the number of rows in the group.
func (g *ClientGroup) Len() int { return g.Table.Len() }

// Scalar returns the per-client value of col. The first row wins: values on
// later rows are ignored, and Divergent reports when they disagree.
func (g *ClientGroup) Scalar(col string) (value string, ok bool) {
	if g.Len() == 0 {
		return "", g.Table.HasColumn(col)
	}
	return g.Table.Value(0, col)
}

// Divergent lists the per-client columns whose value differs on any later row
// from the first row.
func (g *ClientGroup) Divergent() []string {
	var cols []string
	for _, col := range clientScalarColumns {
		idx := g.Table.ColumnIndex(col)
		if idx < 0 || g.Len() < 2 {
			continue
		}
		first := g.Table.Rows[0].Cells[idx]
		for _, r := range g.Table.Rows[1:] {
			if r.Cells[idx] != first {
				cols = append(cols, col)
				break
			}
		}
	}
	return cols
}
