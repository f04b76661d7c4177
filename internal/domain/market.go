package domain

import "math/rand"

// MarketEstimate holds ESTIMATED real-estate figures for one district over the
// series window. Figures approximate published market trends; they are model
// input for the correlation reports, not measured transaction data.
type MarketEstimate struct {
	Price2014EurSqm   float64
	Price2024EurSqm   float64
	AvgAnnualIncrease float64
	TotalIncrease     float64
	PeakYears         []int
	Pattern           string
	Description       string
}

// MarketEstimates returns the fixed per-district real-estate table.
func MarketEstimates() map[string]MarketEstimate {
	return map[string]MarketEstimate{
		"Prenzlauer Berg": {Price2014EurSqm: 4200, Price2024EurSqm: 6800, AvgAnnualIncrease: 0.062, TotalIncrease: 0.619, PeakYears: []int{2015, 2016, 2017}, Pattern: "early_high_then_moderate", Description: "Early gentrification, now premium market"},
		"Mitte":           {Price2014EurSqm: 4500, Price2024EurSqm: 7200, AvgAnnualIncrease: 0.060, TotalIncrease: 0.600, PeakYears: []int{2016, 2017, 2018}, Pattern: "steady_high", Description: "Central location premium, consistent growth"},
		"Friedrichshain":  {Price2014EurSqm: 3200, Price2024EurSqm: 5800, AvgAnnualIncrease: 0.081, TotalIncrease: 0.813, PeakYears: []int{2017, 2018, 2019, 2020}, Pattern: "explosive_growth", Description: "Tech hub transformation, highest appreciation"},
		"Kreuzberg":       {Price2014EurSqm: 3400, Price2024EurSqm: 5900, AvgAnnualIncrease: 0.073, TotalIncrease: 0.735, PeakYears: []int{2016, 2017, 2018}, Pattern: "strong_consistent", Description: "Cultural district premium, strong growth"},
		"Neukölln":        {Price2014EurSqm: 2400, Price2024EurSqm: 4600, AvgAnnualIncrease: 0.092, TotalIncrease: 0.917, PeakYears: []int{2018, 2019, 2020, 2021}, Pattern: "explosive_recent", Description: "Rapid gentrification, highest total appreciation"},
		"Wedding":         {Price2014EurSqm: 2100, Price2024EurSqm: 3900, AvgAnnualIncrease: 0.086, TotalIncrease: 0.857, PeakYears: []int{2020, 2021, 2022, 2023}, Pattern: "late_acceleration", Description: "Latest gentrification wave, rapid recent growth"},
		"Charlottenburg":  {Price2014EurSqm: 3800, Price2024EurSqm: 5600, AvgAnnualIncrease: 0.047, TotalIncrease: 0.474, PeakYears: []int{2017, 2018, 2019}, Pattern: "moderate_steady", Description: "Established area, moderate appreciation"},
		"Schöneberg":      {Price2014EurSqm: 3300, Price2024EurSqm: 5100, AvgAnnualIncrease: 0.055, TotalIncrease: 0.545, PeakYears: []int{2017, 2018, 2019}, Pattern: "cultural_driven", Description: "Cultural district, steady appreciation"},
		"Tempelhof":       {Price2014EurSqm: 2800, Price2024EurSqm: 4200, AvgAnnualIncrease: 0.050, TotalIncrease: 0.500, PeakYears: []int{2019, 2020, 2021}, Pattern: "family_area_growth", Description: "Family area, moderate steady growth"},
		"Steglitz":        {Price2014EurSqm: 3000, Price2024EurSqm: 4400, AvgAnnualIncrease: 0.047, TotalIncrease: 0.467, PeakYears: []int{2018, 2019, 2020}, Pattern: "family_steady", Description: "Family residential, conservative growth"},
		"Wilmersdorf":     {Price2014EurSqm: 3600, Price2024EurSqm: 5200, AvgAnnualIncrease: 0.044, TotalIncrease: 0.444, PeakYears: []int{2017, 2018, 2019}, Pattern: "upscale_moderate", Description: "Upscale residential, moderate growth"},
		"Spandau":         {Price2014EurSqm: 1800, Price2024EurSqm: 2900, AvgAnnualIncrease: 0.061, TotalIncrease: 0.611, PeakYears: []int{2021, 2022, 2023}, Pattern: "frontier_emerging", Description: "Frontier area, emerging appreciation"},
	}
}

// annualRatePattern is the assumed per-year appreciation curve for districts
// in the temporal analysis. Index 0 is the rate applied during SeriesStartYear.
var marketAnnualRates = map[string][]float64{
	"Neukölln":        {0.03, 0.05, 0.08, 0.12, 0.15, 0.18, 0.14, 0.10, 0.08, 0.06, 0.04},
	"Wedding":         {0.02, 0.03, 0.04, 0.05, 0.06, 0.08, 0.12, 0.15, 0.18, 0.14, 0.10},
	"Friedrichshain":  {0.04, 0.06, 0.09, 0.12, 0.15, 0.12, 0.10, 0.08, 0.06, 0.05, 0.04},
	"Kreuzberg":       {0.05, 0.07, 0.10, 0.12, 0.09, 0.08, 0.07, 0.06, 0.05, 0.04, 0.03},
	"Prenzlauer Berg": {0.08, 0.10, 0.09, 0.07, 0.06, 0.05, 0.04, 0.04, 0.03, 0.03, 0.02},
	"Mitte":           {0.06, 0.08, 0.09, 0.08, 0.07, 0.06, 0.05, 0.04, 0.04, 0.03, 0.03},
}

// EstimateMarketSeries builds the ESTIMATED annual price series for a district,
// or ok=false when no annual pattern is defined for it.
func EstimateMarketSeries(district string) (EstimatedSeries, bool) {
	rates, ok := marketAnnualRates[district]
	if !ok {
		return EstimatedSeries{}, false
	}
	est, ok := MarketEstimates()[district]
	if !ok {
		return EstimatedSeries{}, false
	}

	rng := rand.New(rand.NewSource(seedFor("market:" + district)))

	years := make([]int, 0, SeriesEndYear-SeriesStartYear+1)
	values := make([]float64, 0, SeriesEndYear-SeriesStartYear+1)
	price := est.Price2014EurSqm
	for i, y := 0, SeriesStartYear; y <= SeriesEndYear; i, y = i+1, y+1 {
		years = append(years, y)
		values = append(values, price)
		if y == SeriesEndYear {
			break
		}
		rate := rates[i] + rng.NormFloat64()*0.01
		if rate < 0 {
			rate = 0
		}
		price *= 1 + rate
	}

	return EstimatedSeries{District: district, Years: years, Values: values}, true
}
