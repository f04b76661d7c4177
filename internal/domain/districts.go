package domain

import "github.com/paulmach/orb"

// District is one named region used to bucket records for reporting.
// Bounds are approximate axis-aligned envelopes, not administrative polygons.
type District struct {
	Name       string
	Bound      orb.Bound // Min = (lon, lat) southwest, Max = (lon, lat) northeast
	Center     orb.Point // (lon, lat)
	AreaKm2    float64
	Population int
}

// GrowthContext captures the development pattern assumed for a district when
// back-projecting historical counts. These figures are heuristics drawn from
// known development and gentrification patterns, not measured data.
type GrowthContext struct {
	Pattern        string
	BaseGrowthRate float64 // assumed average annual growth
	PeakYears      []int
	Description    string
}

// DistrictOther is the fallback label for records outside every named district.
const DistrictOther = "Other"

func bound(minLon, minLat, maxLon, maxLat float64) orb.Bound {
	return orb.Bound{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}}
}

// Districts returns the fixed district table for Berlin. The slice order is
// the containment tie-break order and must stay stable.
func Districts() []District {
	return []District{
		{Name: "Prenzlauer Berg", Bound: bound(13.400, 52.520, 13.450, 52.560), Center: orb.Point{13.425, 52.540}, AreaKm2: 10.9, Population: 165000},
		{Name: "Neukölln", Bound: bound(13.400, 52.450, 13.470, 52.500), Center: orb.Point{13.435, 52.475}, AreaKm2: 44.9, Population: 329000},
		{Name: "Friedrichshain", Bound: bound(13.420, 52.500, 13.480, 52.530), Center: orb.Point{13.450, 52.515}, AreaKm2: 9.8, Population: 144000},
		{Name: "Kreuzberg", Bound: bound(13.380, 52.490, 13.420, 52.520), Center: orb.Point{13.400, 52.505}, AreaKm2: 15.2, Population: 154000},
		{Name: "Wedding", Bound: bound(13.330, 52.530, 13.380, 52.570), Center: orb.Point{13.355, 52.550}, AreaKm2: 9.5, Population: 86000},
		{Name: "Mitte", Bound: bound(13.350, 52.500, 13.420, 52.550), Center: orb.Point{13.385, 52.525}, AreaKm2: 39.5, Population: 384000},
		{Name: "Charlottenburg", Bound: bound(13.280, 52.490, 13.350, 52.530), Center: orb.Point{13.315, 52.510}, AreaKm2: 64.7, Population: 320000},
		{Name: "Schöneberg", Bound: bound(13.330, 52.460, 13.380, 52.500), Center: orb.Point{13.355, 52.480}, AreaKm2: 10.5, Population: 118000},
		{Name: "Tempelhof", Bound: bound(13.380, 52.450, 13.420, 52.490), Center: orb.Point{13.400, 52.470}, AreaKm2: 12.2, Population: 60000},
		{Name: "Steglitz", Bound: bound(13.310, 52.440, 13.360, 52.480), Center: orb.Point{13.335, 52.460}, AreaKm2: 9.2, Population: 105000},
		{Name: "Wilmersdorf", Bound: bound(13.280, 52.470, 13.330, 52.510), Center: orb.Point{13.305, 52.490}, AreaKm2: 8.9, Population: 101000},
		{Name: "Spandau", Bound: bound(13.160, 52.520, 13.280, 52.580), Center: orb.Point{13.220, 52.550}, AreaKm2: 91.9, Population: 245000},
	}
}

// GrowthContexts returns the assumed development pattern per district.
func GrowthContexts() map[string]GrowthContext {
	return map[string]GrowthContext{
		"Prenzlauer Berg": {Pattern: "early_strong_then_stable", BaseGrowthRate: 0.08, PeakYears: []int{2015, 2016, 2017}, Description: "Early gentrification leader, sustained growth"},
		"Neukölln":        {Pattern: "explosive_recent", BaseGrowthRate: 0.15, PeakYears: []int{2018, 2019, 2020, 2021}, Description: "Rapid recent development, cultural hub emergence"},
		"Friedrichshain":  {Pattern: "steady_strong", BaseGrowthRate: 0.12, PeakYears: []int{2017, 2018, 2019}, Description: "Consistent strong growth, tech/creative scene"},
		"Kreuzberg":       {Pattern: "early_strong_maturing", BaseGrowthRate: 0.10, PeakYears: []int{2016, 2017, 2018}, Description: "Early adopter, now maturing market"},
		"Wedding":         {Pattern: "recent_emergence", BaseGrowthRate: 0.18, PeakYears: []int{2021, 2022, 2023}, Description: "Latest growth area, rapid recent development"},
		"Mitte":           {Pattern: "early_plateau", BaseGrowthRate: 0.05, PeakYears: []int{2014, 2015, 2016}, Description: "Early development, now mature/saturated"},
		"Charlottenburg":  {Pattern: "slow_steady", BaseGrowthRate: 0.06, PeakYears: []int{2019, 2020, 2021}, Description: "Stable, established growth pattern"},
		"Schöneberg":      {Pattern: "cultural_driven", BaseGrowthRate: 0.09, PeakYears: []int{2017, 2018, 2019}, Description: "Community-driven sustainable growth"},
		"Tempelhof":       {Pattern: "slow_recent", BaseGrowthRate: 0.07, PeakYears: []int{2020, 2021, 2022}, Description: "Gradual family-oriented development"},
		"Steglitz":        {Pattern: "family_driven", BaseGrowthRate: 0.08, PeakYears: []int{2018, 2019, 2020}, Description: "Family-oriented steady growth"},
		"Wilmersdorf":     {Pattern: "upscale_steady", BaseGrowthRate: 0.07, PeakYears: []int{2019, 2020, 2021}, Description: "Upscale market, measured growth"},
		"Spandau":         {Pattern: "late_emerging", BaseGrowthRate: 0.12, PeakYears: []int{2022, 2023, 2024}, Description: "Latest frontier, emerging growth"},
	}
}

// Landmark is a fixed reference point drawn on generated maps.
type Landmark struct {
	Name  string
	Point orb.Point // (lon, lat)
}

// Landmarks returns well-known Berlin reference points for map overlays.
func Landmarks() []Landmark {
	return []Landmark{
		{Name: "Brandenburg Gate", Point: orb.Point{13.3777, 52.5163}},
		{Name: "TV Tower (Alexanderplatz)", Point: orb.Point{13.4094, 52.5208}},
		{Name: "Potsdamer Platz", Point: orb.Point{13.3759, 52.5096}},
		{Name: "Berlin Cathedral", Point: orb.Point{13.4013, 52.5192}},
		{Name: "Checkpoint Charlie", Point: orb.Point{13.3904, 52.5074}},
		{Name: "Berlin Wall Memorial", Point: orb.Point{13.3889, 52.5354}},
		{Name: "Charlottenburg Palace", Point: orb.Point{13.2957, 52.5209}},
	}
}

// DefaultRegion is the Berlin bounding envelope used when no region is
// configured. Records outside the configured region are discarded.
func DefaultRegion() orb.Bound {
	return bound(13.0883, 52.3387, 13.7611, 52.6755)
}
