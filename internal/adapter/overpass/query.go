package overpass

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// TagFilter is a single Overpass tag predicate.
type TagFilter struct {
	Key   string
	Value string
	Regex bool // match Value as a case-insensitive regex instead of equality
}

func (f TagFilter) clause() string {
	if f.Regex {
		return fmt.Sprintf("[%q~%q,i]", f.Key, f.Value)
	}
	return fmt.Sprintf("[%q=%q]", f.Key, f.Value)
}

// Selector is one conjunction of tag filters, applied to nodes, ways, and
// relations alike. Multiple selectors are unioned by the query.
type Selector []TagFilter

// Query describes one bounded-region Overpass request.
type Query struct {
	Region    orb.Bound
	Selectors []Selector
	TimeoutS  int // server-side [timeout:] in seconds
}

// Validate checks the query invariants before any request is issued.
func (q Query) Validate() error {
	if q.Region.IsEmpty() || q.Region.IsZero() {
		return errors.New("overpass: bounding region must be a non-empty envelope")
	}
	if len(q.Selectors) == 0 {
		return errors.New("overpass: at least one tag selector is required")
	}
	for _, sel := range q.Selectors {
		if len(sel) == 0 {
			return errors.New("overpass: empty tag selector")
		}
	}
	return nil
}

// QL renders the query as Overpass QL with "out center meta" so ways and
// relations carry centroids and all elements carry edit metadata.
func (q Query) QL() string {
	timeout := q.TimeoutS
	if timeout <= 0 {
		timeout = 25
	}

	// Overpass bbox order is (south, west, north, east).
	bbox := fmt.Sprintf("(%.4f,%.4f,%.4f,%.4f)",
		q.Region.Min.Lat(), q.Region.Min.Lon(), q.Region.Max.Lat(), q.Region.Max.Lon())

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", timeout)
	for _, sel := range q.Selectors {
		clauses := ""
		for _, f := range sel {
			clauses += f.clause()
		}
		for _, kind := range []string{"node", "way", "relation"} {
			fmt.Fprintf(&b, "  %s%s%s;\n", kind, clauses, bbox)
		}
	}
	b.WriteString(");\nout center meta;\n")
	return b.String()
}

// WinerySelectors matches wineries and wine-focused businesses: wine shops,
// winery amenities and crafts, and bars with a wine specialization.
func WinerySelectors() []Selector {
	return []Selector{
		{{Key: "amenity", Value: "bar"}, {Key: "drink:wine", Value: "yes"}},
		{{Key: "shop", Value: "wine"}},
		{{Key: "amenity", Value: "winery"}},
		{{Key: "craft", Value: "winery"}},
	}
}

// supermarketChains are the grocery brands matched when no explicit brand
// filter is given.
var supermarketChains = []string{
	"REWE", "EDEKA", "ALDI", "LIDL", "NETTO", "PENNY",
	"Kaufland", "Alnatura", "BIO COMPANY", "denn's",
}

// SupermarketSelectors matches supermarkets of the given brand, by exact
// brand tag or by case-insensitive name match. An empty brand matches the
// known chains instead of everything tagged shop=supermarket.
func SupermarketSelectors(brand string) []Selector {
	if brand == "" {
		pattern := strings.Join(supermarketChains, "|")
		return []Selector{
			{{Key: "shop", Value: "supermarket"}, {Key: "brand", Value: pattern, Regex: true}},
			{{Key: "shop", Value: "supermarket"}, {Key: "name", Value: pattern, Regex: true}},
		}
	}
	return []Selector{
		{{Key: "shop", Value: "supermarket"}, {Key: "brand", Value: brand}},
		{{Key: "shop", Value: "supermarket"}, {Key: "name", Value: brand, Regex: true}},
	}
}
