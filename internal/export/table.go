package export

import (
	"bufio"
	"os"
	"strings"

	"github.com/bcfcore/promion/internal/errors"
)

// Table accumulates flat records for writing as tab-delimited text
// with a fixed, commented header line. This is the on-disk format the
// analysis directory keeps its flow cell summary in.
type Table struct {
	columns []string
	rows    [][]string
}

// NewTable creates a table with the standard record columns.
func NewTable() *Table {
	return &Table{columns: Header()}
}

// Append adds a record to the table.
func (t *Table) Append(r Record) {
	t.rows = append(t.rows, r.Values())
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table as tab-delimited text, header first.
func (t *Table) String() string {
	var b strings.Builder
	b.WriteString("#" + strings.Join(t.columns, "\t") + "\n")
	for _, row := range t.rows {
		b.WriteString(strings.Join(row, "\t") + "\n")
	}
	return b.String()
}

// Save writes the table to path.
func (t *Table) Save(path string) error {
	const op = errors.Op("export.Table.Save")
	f, err := os.Create(path)
	if err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	w := bufio.NewWriter(f)
	if _, err := w.WriteString(t.String()); err != nil {
		f.Close()
		return errors.E(op, errors.KindIO, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.E(op, errors.KindIO, err)
	}
	return errors.Wrap(op, f.Close())
}
