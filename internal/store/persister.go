package store

import (
	"context"
	"path/filepath"

	"github.com/kellerweis/poi-atlas/internal/domain"
)

// FilePersister writes the record table as a CSV and JSON pair under Dir.
// Both files share BaseName, e.g. "wineries" produces wineries.csv and
// wineries.json.
type FilePersister struct {
	Dir      string
	BaseName string
}

// Persist writes both encodings and returns the paths written. The CSV is
// written first; if it fails the JSON is not attempted.
func (p *FilePersister) Persist(_ context.Context, records []domain.PointOfInterest) ([]string, error) {
	csvPath := filepath.Join(p.Dir, p.BaseName+".csv")
	jsonPath := filepath.Join(p.Dir, p.BaseName+".json")

	if err := WriteCSV(csvPath, records); err != nil {
		return nil, err
	}
	if err := WriteJSON(jsonPath, records); err != nil {
		return nil, err
	}
	return []string{csvPath, jsonPath}, nil
}
