package nflverse

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Row is one CSV record with header-indexed column access. nflverse exports
// carry hundreds of columns; consumers pull only the ones they need by name.
type Row struct {
	header map[string]int
	fields []string
}

// Get returns the named column, or "" if the column is absent.
// "NA" (R's missing-value marker) is normalized to "".
func (r Row) Get(col string) string {
	i, ok := r.header[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	v := r.fields[i]
	if v == "NA" {
		return ""
	}
	return v
}

// Int parses the named column as an integer, tolerating float formatting
// ("1.0") and missing values (0).
func (r Row) Int(col string) int {
	v := r.Get(col)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

// Float parses the named column as a float, with 0 for missing values.
func (r Row) Float(col string) float64 {
	v := r.Get(col)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// Flag parses the named column as a 0/1 indicator.
func (r Row) Flag(col string) bool {
	return r.Int(col) == 1
}

// Map returns the row's non-empty columns as a name -> value map. The map
// is freshly allocated and safe to retain.
func (r Row) Map() map[string]string {
	m := make(map[string]string)
	for name, i := range r.header {
		if i >= len(r.fields) {
			continue
		}
		if v := r.fields[i]; v != "" && v != "NA" {
			m[name] = v
		}
	}
	return m
}

// Has reports whether the CSV carries the named column at all.
func (r Row) Has(col string) bool {
	_, ok := r.header[col]
	return ok
}

// ForEach streams CSV records from rd, calling fn once per data row. Rows are
// never materialized in bulk (play-by-play files run to hundreds of
// megabytes) and the Row passed to fn is only valid for the duration of
// the call.
func ForEach(rd io.Reader, fn func(Row) error) error {
	cr := csv.NewReader(rd)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}
	header := make(map[string]int, len(head))
	for i, name := range head {
		header[strings.TrimSpace(name)] = i
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read csv record: %w", err)
		}
		if err := fn(Row{header: header, fields: rec}); err != nil {
			return err
		}
	}
}

// ForEachFile streams CSV records from a file on disk.
func ForEachFile(path string, fn func(Row) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ForEach(f, fn)
}
