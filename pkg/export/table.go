package export

import "fmt"

// Table is a rectangular export: a header row followed by records in column order.
type Table struct {
	Columns []string
	Records [][]string
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table requires at least one column")
	}
	for i, record := range t.Records {
		if len(record) != len(t.Columns) {
			return fmt.Errorf("record %d has %d fields, want %d", i, len(record), len(t.Columns))
		}
	}
	return nil
}
