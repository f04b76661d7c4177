// Package geo provides the spatial index used for district assignment.
package geo

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/kellerweis/poi-atlas/internal/domain"
)

const (
	dimensions  = 2
	minChildren = 2
	maxChildren = 8

	// pointTolerance is the side length of the degenerate rect used for
	// point-in-rect queries against the tree.
	pointTolerance = 1e-9

	// maxCenterDistanceM caps the nearest-center fallback. A point farther
	// than this from every district center stays "Other".
	maxCenterDistanceM = 3000.0
)

// districtEntry wraps a district to implement rtreego.Spatial.
type districtEntry struct {
	district domain.District
	order    int // position in the fixed table, used as containment tie-break
	rect     *rtreego.Rect
}

func (e *districtEntry) Bounds() *rtreego.Rect { return e.rect }

// DistrictIndex answers point-to-district lookups against the fixed district
// table. Lookups are pure: the same coordinate always yields the same label.
type DistrictIndex struct {
	tree *rtreego.Rtree
}

// NewDistrictIndex builds an R-tree over the district envelopes.
func NewDistrictIndex(districts []domain.District) (*DistrictIndex, error) {
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)

	for i, d := range districts {
		rect, err := rtreego.NewRect(
			rtreego.Point{d.Bound.Min.Lat(), d.Bound.Min.Lon()},
			[]float64{d.Bound.Max.Lat() - d.Bound.Min.Lat(), d.Bound.Max.Lon() - d.Bound.Min.Lon()},
		)
		if err != nil {
			return nil, err
		}
		tree.Insert(&districtEntry{district: d, order: i, rect: rect})
	}

	return &DistrictIndex{tree: tree}, nil
}

// Locate returns the name of the district whose envelope contains the
// coordinate. Overlapping envelopes resolve to the district that appears
// first in the fixed table. A point inside no envelope falls back to the
// nearest district center within maxCenterDistanceM, then to
// domain.DistrictOther.
func (idx *DistrictIndex) Locate(lat, lon float64) string {
	p := rtreego.Point{lat, lon}
	probe := p.ToRect(pointTolerance)

	entries := make([]*districtEntry, 0, 2)
	for _, m := range idx.tree.SearchIntersect(probe) {
		e, ok := m.(*districtEntry)
		if !ok {
			continue
		}
		// SearchIntersect is approximate at rect edges; confirm containment
		// against the exact envelope.
		if e.district.Bound.Contains(orb.Point{lon, lat}) {
			entries = append(entries, e)
		}
	}
	if len(entries) > 0 {
		sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })
		return entries[0].district.Name
	}

	return idx.nearestWithin(lat, lon, maxCenterDistanceM)
}

// nearestWithin returns the district whose center is closest to the
// coordinate, provided it lies within maxMeters.
func (idx *DistrictIndex) nearestWithin(lat, lon float64, maxMeters float64) string {
	nearest := idx.tree.NearestNeighbor(rtreego.Point{lat, lon})
	e, ok := nearest.(*districtEntry)
	if !ok {
		return domain.DistrictOther
	}
	if orbgeo.Distance(orb.Point{lon, lat}, e.district.Center) > maxMeters {
		return domain.DistrictOther
	}
	return e.district.Name
}
