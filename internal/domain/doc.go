// Package domain models point-of-interest (POI) records collected from
// OpenStreetMap for the Berlin region.
//
// # Data Source
//
// Raw records come from the Overpass API (https://overpass-api.de), queried
// with "out center meta" so that ways and relations carry a computed centroid
// and every element carries its edit version and timestamp. Tag conventions
// follow the OSM wiki:
//
//	name, brand, operator         — display and chain identity
//	amenity / shop / craft        — category (shop=wine, craft=winery, ...)
//	addr:street, addr:housenumber,
//	addr:postcode, addr:city      — structured address, all optional
//	opening_hours                 — free-text OSM opening hours syntax
//	wheelchair                    — yes / limited / no / designated / ...
//	start_date                    — opening date, often truncated to a year
//
// # Classifications
//
// Accessibility collapses the wheelchair tag onto three classes:
//
//	accessible — yes, designated, permissive
//	limited    — limited, partial
//	unknown    — everything else, including missing and "no"
//
// Recency estimates how recently a location opened. An explicit start_date
// tag is trusted first; otherwise the element's OSM creation timestamp is a
// weaker proxy (a location can be far older than its map entry). The
// resulting categories are heuristics, not measured opening dates.
//
// # District assignment
//
// Districts are approximate axis-aligned envelopes with a stable tie-break
// order; assignment is a pure function of coordinates with "Other" as the
// guaranteed fallback. Records never change district after normalization.
//
// # Estimated series
//
// All historical series in this package are back-projections from a single
// current observation using assumed growth patterns ([EstimatedSeries],
// [BackProjectDensity], [EstimateMarketSeries]). They exist to support
// narrative trend reports and must always be presented as model output.
package domain
