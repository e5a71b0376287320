package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// isNullCell reports whether a CSV cell denotes an absent value.
func isNullCell(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "null", "none":
		return true
	}
	return false
}

// ReadCSVColumn reads the column named col from CSV data with a header row.
// Empty cells and NA/null/None are read as absent. With a single column,
// a blank line is an empty cell; with several columns it is an error.
// Blank lines after the last record are ignored.
func ReadCSVColumn(r io.Reader, col string) (*Series[float64], error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv input")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	ci := -1
	for i, name := range header {
		if strings.TrimSpace(name) == col {
			ci = i
			break
		}
	}
	if ci < 0 {
		return nil, fmt.Errorf("column %q not found in header [%s]", col, strings.Join(header, " "))
	}
	single := len(header) == 1
	next := endLine(cr, header) + 1

	b := NewBuilder[float64](0)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		// csv.Reader skips blank lines
		if line > next {
			if !single {
				return nil, fmt.Errorf("line %d: blank line", next)
			}
			for ; next < line; next++ {
				b.AppendNull()
			}
		}
		next = endLine(cr, rec) + 1

		cell := rec[ci]
		if isNullCell(cell) {
			b.AppendNull()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad value for %s: %w", line, col, err)
		}
		b.Append(v, true)
	}
	return b.Build(), nil
}

// endLine returns the line on which the record just read ends.
// Quoted fields may span lines.
func endLine(cr *csv.Reader, rec []string) int {
	last := len(rec) - 1
	line, _ := cr.FieldPos(last)
	return line + strings.Count(rec[last], "\n")
}

// WriteCSV writes cols side by side under header. Absent values are
// written as NA so that single-column rows are never blank.
// All columns must have the same length.
func WriteCSV[T Float](w io.Writer, header []string, cols []*Series[T]) error {
	if len(header) != len(cols) {
		return fmt.Errorf("got %d header names for %d columns", len(header), len(cols))
	}
	n := 0
	for i, c := range cols {
		if i == 0 {
			n = c.Len()
		} else if c.Len() != n {
			return fmt.Errorf("column %s has length %d, want %d", header[i], c.Len(), n)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	bits := bitSize[T]()
	row := make([]string, len(cols))
	for i := 0; i < n; i++ {
		for j, c := range cols {
			if v, ok := c.At(i); ok {
				row[j] = strconv.FormatFloat(float64(v), 'g', -1, bits)
			} else {
				row[j] = "NA"
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
