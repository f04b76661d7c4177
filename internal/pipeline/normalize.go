package pipeline

import (
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/kellerweis/poi-atlas/internal/domain"
)

// TableNormalizer applies the coverage-area filter and district assignment
// to raw elements.
type TableNormalizer struct {
	region  orb.Bound
	locator domain.DistrictLocator
	logger  *slog.Logger
}

// NewNormalizer creates a TableNormalizer for the given coverage area.
func NewNormalizer(region orb.Bound, locator domain.DistrictLocator, logger *slog.Logger) *TableNormalizer {
	return &TableNormalizer{region: region, locator: locator, logger: logger}
}

// Normalize implements the Normalizer interface.
func (n *TableNormalizer) Normalize(elements []domain.RawElement) domain.NormalizeResult {
	return domain.Normalize(elements, n.region, n.locator, n.logger)
}
