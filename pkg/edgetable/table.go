// Package edgetable loads account-pair interaction tables and applies the
// support filter that precedes graph construction.
//
// An edge table has at least four caller-named columns: two node identifier
// columns, a floating similarity column, and a numeric support column.
// Tables that cannot be read degrade to an empty table; tables that can be
// read but lack a named column are rejected with ErrSchemaMismatch.
package edgetable

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInputUnreadable marks a missing, empty, or corrupt edge table.
	ErrInputUnreadable = errors.New("edge table unreadable")
	// ErrSchemaMismatch marks a readable table lacking a caller-named column.
	ErrSchemaMismatch = errors.New("edge table schema mismatch")
)

// Columns names the four columns the loader extracts.
type Columns struct {
	Node1   string `json:"node1" yaml:"node1" validate:"required"`
	Node2   string `json:"node2" yaml:"node2" validate:"required,nefield=Node1"`
	Weight  string `json:"sim" yaml:"sim" validate:"required,nefield=Node1,nefield=Node2"`
	Support string `json:"sup" yaml:"sup" validate:"required,nefield=Node1,nefield=Node2,nefield=Weight"`
}

// Names returns the column names in node1, node2, weight, support order.
func (c Columns) Names() []string {
	return []string{c.Node1, c.Node2, c.Weight, c.Support}
}

// Row is one observed interaction between two accounts.
type Row struct {
	Node1   string
	Node2   string
	Weight  float64
	Support float64
}

// Table is an in-memory edge table.
type Table struct {
	Columns Columns
	Rows    []Row

	// Unreadable holds the cause when the source could not be read. Rows is
	// empty whenever it is set.
	Unreadable error
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Supports returns the support column.
func (t *Table) Supports() []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Support
	}
	return out
}

// emptyTable is what every unreadable source degrades to.
func emptyTable(cols Columns, cause error) *Table {
	return &Table{Columns: cols, Rows: []Row{}, Unreadable: cause}
}

// SchemaError lists the caller-named columns absent from a table header.
type SchemaError struct {
	Location string
	Missing  []string
	Header   []string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing columns [%s] (have [%s])",
		e.Location, strings.Join(e.Missing, ", "), strings.Join(e.Header, ", "))
}

// Unwrap lets errors.Is match ErrSchemaMismatch.
func (e *SchemaError) Unwrap() error {
	return ErrSchemaMismatch
}

// unreadable wraps a read failure so errors.Is matches ErrInputUnreadable.
func unreadable(location string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrInputUnreadable, location, cause)
}

// columnIndex maps the caller-named columns onto header positions.
func columnIndex(location string, header []string, cols Columns) ([4]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var idx [4]int
	var missing []string
	for i, name := range cols.Names() {
		p, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[i] = p
	}
	if len(missing) > 0 {
		return idx, &SchemaError{Location: location, Missing: missing, Header: header}
	}
	return idx, nil
}
