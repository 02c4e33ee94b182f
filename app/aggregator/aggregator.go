// Package aggregator collects harvested article records and writes them as CSV.
package aggregator

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/Semior001/newsharvest/app/store"
)

// bom is the UTF-8 byte order mark, spreadsheet software relies on it
// to detect the encoding.
const bom = "\xef\xbb\xbf"

// Header is the header row of the output table.
var Header = []string{"empresa", "titulo", "url", "contenido", "fecha_publicacion", "pais"}

// Aggregator keeps records in the order they were appended.
// It is not safe for concurrent use.
type Aggregator struct {
	records []store.ArticleRecord
}

// Append adds the record to the end of the table.
func (a *Aggregator) Append(rec store.ArticleRecord) { a.records = append(a.records, rec) }

// Len returns the number of collected records.
func (a *Aggregator) Len() int { return len(a.records) }

// Records returns a copy of the collected records.
func (a *Aggregator) Records() []store.ArticleRecord {
	res := make([]store.ArticleRecord, len(a.records))
	copy(res, a.records)
	return res
}

// Finalize writes all records as CSV with a header row to w and
// returns the number of records written.
func (a *Aggregator) Finalize(w io.Writer) (int, error) {
	if _, err := io.WriteString(w, bom); err != nil {
		return 0, fmt.Errorf("write byte order mark: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	for i, rec := range a.records {
		row := []string{rec.Company, rec.Title, rec.URL, rec.Content, rec.PublishedAt, rec.Market}
		if err := cw.Write(row); err != nil {
			return i, fmt.Errorf("write record %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush: %w", err)
	}

	return len(a.records), nil
}

// WriteFile writes the table to the file at path, replacing it.
func (a *Aggregator) WriteFile(path string) (n int, err error) {
	f, err := os.Create(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", cerr)
		}
	}()

	if n, err = a.Finalize(f); err != nil {
		return n, fmt.Errorf("write %s: %w", path, err)
	}

	return n, nil
}
