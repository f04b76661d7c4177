package store

import (
	"bytes"
	"encoding/csv"

	"github.com/sfomuseum/go-csvdict/v2"

	"github.com/kellerweis/poi-atlas/internal/domain"
)

// WriteCSV writes the table as CSV at path, atomically. The header row is
// always written, so an empty table yields a header-only file rather than
// an empty one. Column order follows fieldNames.
func WriteCSV(path string, records []domain.PointOfInterest) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(fieldNames); err != nil {
		return &domain.PersistenceError{Path: path, Op: "encode", Err: err}
	}
	for _, rec := range records {
		row := rowOf(rec)
		out := make([]string, len(fieldNames))
		for i, name := range fieldNames {
			out[i] = row[name]
		}
		if err := w.Write(out); err != nil {
			return &domain.PersistenceError{Path: path, Op: "encode", Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &domain.PersistenceError{Path: path, Op: "encode", Err: err}
	}

	return writeAtomic(path, buf.Bytes())
}

// ReadCSV loads a table previously written by WriteCSV.
func ReadCSV(path string) ([]domain.PointOfInterest, error) {
	r, err := csvdict.NewReaderFromPath(path)
	if err != nil {
		return nil, &domain.PersistenceError{Path: path, Op: "read", Err: err}
	}

	var records []domain.PointOfInterest
	for row, err := range r.Iterate() {
		if err != nil {
			return nil, &domain.PersistenceError{Path: path, Op: "decode", Err: err}
		}
		rec, err := recordOf(row)
		if err != nil {
			return nil, &domain.PersistenceError{Path: path, Op: "decode", Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}
