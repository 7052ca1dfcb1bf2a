package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV streams the table to w.
func WriteCSV(w io.Writer, table Table) error {
	if err := table.validate(); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	if err := writer.WriteAll(table.Records); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
