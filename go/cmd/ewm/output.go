package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio"
	"github.com/uluyol/heyp-ewm/go/series"
)

// writeAtomic writes to path through a temporary file that replaces
// path only if write succeeds. A path of "-" writes to stdout.
func writeAtomic(path string, write func(io.Writer) error) error {
	if path == "-" {
		w := bufio.NewWriter(os.Stdout)
		if err := write(w); err != nil {
			return err
		}
		return w.Flush()
	}

	pf, err := renameio.TempFile("", path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer pf.Cleanup()

	w := bufio.NewWriter(pf)
	if err := write(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func readColumn(path, col string) (*series.Series[float64], error) {
	f, err := openInput(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	s, err := series.ReadCSVColumn(bufio.NewReader(f), col)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s, nil
}

type outputFormat string

func (f *outputFormat) String() string { return string(*f) }
func (f *outputFormat) Set(s string) error {
	switch s {
	case "csv", "json":
		*f = outputFormat(s)
		return nil
	}
	return fmt.Errorf("invalid format %q, must be one of 'csv' or 'json'", s)
}

// writeColumns writes cols in the given format. JSON output is an
// object keyed by column name.
func writeColumns[T series.Float](path string, format outputFormat, header []string, cols []*series.Series[T]) error {
	return writeAtomic(path, func(w io.Writer) error {
		if format == "json" {
			obj := make(map[string]*series.Series[T], len(cols))
			for i, c := range cols {
				obj[header[i]] = c
			}
			enc := json.NewEncoder(w)
			return enc.Encode(obj)
		}
		return series.WriteCSV(w, header, cols)
	})
}
