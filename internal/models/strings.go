package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/lib/pq"
)

// StringList maps a Postgres text[] column.
type StringList []string

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return pq.StringArray(s).Value()
}

// Scan implements sql.Scanner.
func (s *StringList) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	*s = StringList(arr)
	return nil
}
