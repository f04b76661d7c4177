// Package store persists the normalized POI table as flat files.
//
// Two interchangeable encodings are written: a delimited CSV with a header
// row, and a JSON array of objects with the same field set. Both round-trip
// the table field-for-field. Writes go to a temporary file in the target
// directory followed by a rename, so a failed write never leaves a truncated
// file in place of a previously valid one.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kellerweis/poi-atlas/internal/domain"
)

// fieldNames is the CSV column order. Kept stable so diffs between runs are
// meaningful.
var fieldNames = []string{
	"id", "element_type", "name", "brand", "latitude", "longitude",
	"amenity", "shop", "craft",
	"street", "housenumber", "postcode", "city",
	"phone", "website", "email",
	"opening_hours", "operator", "wheelchair", "accessibility",
	"district", "recency", "start_date", "osm_version", "osm_timestamp",
}

// WriteJSON writes the table as an indented JSON array at path, atomically.
// An empty table produces an empty array, not an error.
func WriteJSON(path string, records []domain.PointOfInterest) error {
	if records == nil {
		records = []domain.PointOfInterest{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &domain.PersistenceError{Path: path, Op: "encode", Err: err}
	}
	data = append(data, '\n')
	return writeAtomic(path, data)
}

// ReadJSON loads a table previously written by WriteJSON.
func ReadJSON(path string) ([]domain.PointOfInterest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.PersistenceError{Path: path, Op: "read", Err: err}
	}
	var records []domain.PointOfInterest
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &domain.PersistenceError{Path: path, Op: "decode", Err: err}
	}
	return records, nil
}

// rowOf flattens one record into the CSV column map.
func rowOf(p domain.PointOfInterest) map[string]string {
	return map[string]string{
		"id":            strconv.FormatInt(p.ID, 10),
		"element_type":  p.ElementType,
		"name":          p.Name,
		"brand":         p.Brand,
		"latitude":      strconv.FormatFloat(p.Lat, 'f', -1, 64),
		"longitude":     strconv.FormatFloat(p.Lon, 'f', -1, 64),
		"amenity":       p.Amenity,
		"shop":          p.Shop,
		"craft":         p.Craft,
		"street":        p.Street,
		"housenumber":   p.Housenumber,
		"postcode":      p.Postcode,
		"city":          p.City,
		"phone":         p.Phone,
		"website":       p.Website,
		"email":         p.Email,
		"opening_hours": p.OpeningHours,
		"operator":      p.Operator,
		"wheelchair":    p.Wheelchair,
		"accessibility": string(p.Accessibility),
		"district":      p.District,
		"recency":       p.Recency,
		"start_date":    p.StartDate,
		"osm_version":   strconv.Itoa(p.OSMVersion),
		"osm_timestamp": p.OSMTimestamp,
	}
}

// recordOf rebuilds a record from a CSV row map.
func recordOf(row map[string]string) (domain.PointOfInterest, error) {
	id, err := strconv.ParseInt(row["id"], 10, 64)
	if err != nil {
		return domain.PointOfInterest{}, fmt.Errorf("parse id %q: %w", row["id"], err)
	}
	lat, err := strconv.ParseFloat(row["latitude"], 64)
	if err != nil {
		return domain.PointOfInterest{}, fmt.Errorf("parse latitude %q: %w", row["latitude"], err)
	}
	lon, err := strconv.ParseFloat(row["longitude"], 64)
	if err != nil {
		return domain.PointOfInterest{}, fmt.Errorf("parse longitude %q: %w", row["longitude"], err)
	}
	version := 0
	if v := row["osm_version"]; v != "" {
		version, err = strconv.Atoi(v)
		if err != nil {
			return domain.PointOfInterest{}, fmt.Errorf("parse osm_version %q: %w", v, err)
		}
	}

	return domain.PointOfInterest{
		ID:            id,
		ElementType:   row["element_type"],
		Name:          row["name"],
		Brand:         row["brand"],
		Lat:           lat,
		Lon:           lon,
		Amenity:       row["amenity"],
		Shop:          row["shop"],
		Craft:         row["craft"],
		Street:        row["street"],
		Housenumber:   row["housenumber"],
		Postcode:      row["postcode"],
		City:          row["city"],
		Phone:         row["phone"],
		Website:       row["website"],
		Email:         row["email"],
		OpeningHours:  row["opening_hours"],
		Operator:      row["operator"],
		Wheelchair:    row["wheelchair"],
		Accessibility: domain.Accessibility(row["accessibility"]),
		District:      row["district"],
		Recency:       row["recency"],
		StartDate:     row["start_date"],
		OSMVersion:    version,
		OSMTimestamp:  row["osm_timestamp"],
	}, nil
}

// writeAtomic writes data to a temp file in path's directory and renames it
// into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.PersistenceError{Path: path, Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &domain.PersistenceError{Path: path, Op: "create temp", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &domain.PersistenceError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &domain.PersistenceError{Path: path, Op: "close", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &domain.PersistenceError{Path: path, Op: "rename", Err: err}
	}
	return nil
}
