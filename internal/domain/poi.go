package domain

import (
	"time"
)

// RawElement represents a single element returned by the Overpass API.
// Nodes carry lat/lon directly; ways and relations carry a computed center
// when the query requests "out center". Tags hold the raw OSM key/value map.
type RawElement struct {
	ID        int64             `json:"id"`
	Type      string            `json:"type"` // "node", "way", or "relation"
	Lat       float64           `json:"lat,omitempty"`
	Lon       float64           `json:"lon,omitempty"`
	Center    *Center           `json:"center,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
	Version   int               `json:"version,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"` // RFC 3339, from "out meta"
}

// Center is the computed centroid of a way or relation.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinates returns the element's position and whether one is present.
func (e RawElement) Coordinates() (lat, lon float64, ok bool) {
	if e.Type == "node" {
		if e.Lat == 0 && e.Lon == 0 {
			return 0, 0, false
		}
		return e.Lat, e.Lon, true
	}
	if e.Center != nil {
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}

// Accessibility is the wheelchair accessibility classification derived from
// the OSM "wheelchair" tag.
type Accessibility string

const (
	AccessibilityAccessible Accessibility = "accessible"
	AccessibilityLimited    Accessibility = "limited"
	AccessibilityUnknown    Accessibility = "unknown"
)

// Recency categories describe how recently a location appears to have opened,
// estimated from the start_date tag or, failing that, OSM edit metadata.
const (
	RecencyVeryRecent     = "very_recent"     // explicit opening date < 1 year ago
	RecencyRecent         = "recent"          // explicit opening date 1-2 years ago
	RecencyLikelyRecent   = "likely_recent"   // OSM entry created < 1 year ago
	RecencyPossiblyRecent = "possibly_recent" // OSM entry created 1-2 years ago
	RecencyEstablished    = "established"
	RecencyUnknown        = "unknown"
)

// PointOfInterest is one normalized location record. Created from a RawElement,
// enriched with district and accessibility, and immutable thereafter.
type PointOfInterest struct {
	ID          int64   `json:"id"`
	ElementType string  `json:"element_type"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand,omitempty"`
	Lat         float64 `json:"latitude"`
	Lon         float64 `json:"longitude"`

	Amenity string `json:"amenity,omitempty"`
	Shop    string `json:"shop,omitempty"`
	Craft   string `json:"craft,omitempty"`

	Street      string `json:"street,omitempty"`
	Housenumber string `json:"housenumber,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	City        string `json:"city,omitempty"`

	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
	Email   string `json:"email,omitempty"`

	OpeningHours  string        `json:"opening_hours,omitempty"`
	Operator      string        `json:"operator,omitempty"`
	Wheelchair    string        `json:"wheelchair,omitempty"` // raw tag value
	Accessibility Accessibility `json:"accessibility"`

	District string `json:"district"`
	Recency  string `json:"recency"`

	StartDate    string `json:"start_date,omitempty"` // OSM start_date tag, verbatim
	OSMVersion   int    `json:"osm_version,omitempty"`
	OSMTimestamp string `json:"osm_timestamp,omitempty"`
}

// classifyAccessibility maps the raw wheelchair tag onto the three-class
// scheme. The mapping is fixed; anything outside it resolves to unknown.
func classifyAccessibility(wheelchair string) Accessibility {
	switch wheelchair {
	case "yes", "designated", "permissive":
		return AccessibilityAccessible
	case "limited", "partial":
		return AccessibilityLimited
	default:
		return AccessibilityUnknown
	}
}

// classifyRecency estimates how recently a location opened. An explicit
// start_date tag wins; otherwise the OSM entry's creation timestamp is used
// as a weaker signal. Both are heuristics, not measured opening dates.
func classifyRecency(startDate, osmTimestamp string) string {
	now := clock.Now()
	oneYearAgo := now.AddDate(-1, 0, 0)
	twoYearsAgo := now.AddDate(-2, 0, 0)

	if t, ok := parseLooseDate(startDate); ok {
		switch {
		case t.After(oneYearAgo):
			return RecencyVeryRecent
		case t.After(twoYearsAgo):
			return RecencyRecent
		default:
			return RecencyEstablished
		}
	}

	if t, ok := parseLooseDate(osmTimestamp); ok {
		switch {
		case t.After(oneYearAgo):
			return RecencyLikelyRecent
		case t.After(twoYearsAgo):
			return RecencyPossiblyRecent
		default:
			return RecencyEstablished
		}
	}

	return RecencyUnknown
}

// parseLooseDate accepts RFC 3339 timestamps as well as the truncated date
// forms common in OSM start_date tags ("2019-05-01", "2019-05", "2019").
func parseLooseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
