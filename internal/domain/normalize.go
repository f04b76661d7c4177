package domain

import (
	"log/slog"

	"github.com/paulmach/orb"
)

// DistrictLocator assigns a district label to a coordinate. Implementations
// must be pure: the same coordinate always yields the same label.
type DistrictLocator interface {
	Locate(lat, lon float64) string
}

// Discard reasons reported in the normalization summary.
const (
	DiscardMissingCoordinates = "missing_coordinates"
	DiscardOutsideRegion      = "outside_region"
)

// NormalizeResult holds the normalized table plus per-reason discard counts.
type NormalizeResult struct {
	Records   []PointOfInterest
	Discarded map[string]int
}

// DiscardedTotal returns the number of raw elements dropped during normalization.
func (r NormalizeResult) DiscardedTotal() int {
	total := 0
	for _, n := range r.Discarded {
		total += n
	}
	return total
}

// Normalize maps raw Overpass elements onto the flat PointOfInterest table.
// Elements without coordinates, or with coordinates outside region, are
// discarded and counted, never corrected. Order of surviving records matches
// input order. Individual malformed elements never fail the whole batch.
func Normalize(elements []RawElement, region orb.Bound, locator DistrictLocator, logger *slog.Logger) NormalizeResult {
	result := NormalizeResult{
		Records:   make([]PointOfInterest, 0, len(elements)),
		Discarded: map[string]int{},
	}

	for _, el := range elements {
		lat, lon, ok := el.Coordinates()
		if !ok {
			result.Discarded[DiscardMissingCoordinates]++
			logger.Debug("discarding element", "id", el.ID, "reason", DiscardMissingCoordinates)
			continue
		}
		if !region.Contains(orb.Point{lon, lat}) {
			result.Discarded[DiscardOutsideRegion]++
			logger.Debug("discarding element", "id", el.ID, "reason", DiscardOutsideRegion, "lat", lat, "lon", lon)
			continue
		}

		result.Records = append(result.Records, newPointOfInterest(el, lat, lon, locator))
	}

	return result
}

func newPointOfInterest(el RawElement, lat, lon float64, locator DistrictLocator) PointOfInterest {
	tag := func(key string) string { return el.Tags[key] }

	district := DistrictOther
	if locator != nil {
		district = locator.Locate(lat, lon)
	}

	return PointOfInterest{
		ID:          el.ID,
		ElementType: el.Type,
		Name:        tag("name"),
		Brand:       tag("brand"),
		Lat:         lat,
		Lon:         lon,

		Amenity: tag("amenity"),
		Shop:    tag("shop"),
		Craft:   tag("craft"),

		Street:      tag("addr:street"),
		Housenumber: tag("addr:housenumber"),
		Postcode:    tag("addr:postcode"),
		City:        tag("addr:city"),

		Phone:   tag("phone"),
		Website: tag("website"),
		Email:   tag("email"),

		OpeningHours:  tag("opening_hours"),
		Operator:      tag("operator"),
		Wheelchair:    tag("wheelchair"),
		Accessibility: classifyAccessibility(tag("wheelchair")),

		District: district,
		Recency:  classifyRecency(tag("start_date"), el.Timestamp),

		StartDate:    tag("start_date"),
		OSMVersion:   el.Version,
		OSMTimestamp: el.Timestamp,
	}
}
