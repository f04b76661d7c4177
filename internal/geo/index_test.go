package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kellerweis/poi-atlas/internal/domain"
)

func TestDistrictIndex(t *testing.T) {
	index, err := NewDistrictIndex(domain.Districts())
	require.NoError(t, err)

	t.Run("district centers resolve to their own district", func(t *testing.T) {
		for _, d := range domain.Districts() {
			got := index.Locate(d.Center.Lat(), d.Center.Lon())
			assert.Equal(t, d.Name, got, "center of %s", d.Name)
		}
	})

	t.Run("point outside every district is Other", func(t *testing.T) {
		// Far southwest corner of the coverage area, well away from any
		// district envelope.
		assert.Equal(t, domain.DistrictOther, index.Locate(52.34, 13.09))
	})

	t.Run("overlap resolves to the earlier table entry", func(t *testing.T) {
		// Prenzlauer Berg and Mitte envelopes overlap around (52.545, 13.41);
		// Prenzlauer Berg comes first in the table.
		assert.Equal(t, "Prenzlauer Berg", index.Locate(52.545, 13.410))
	})

	t.Run("locate is pure", func(t *testing.T) {
		first := index.Locate(52.515, 13.450)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, index.Locate(52.515, 13.450))
		}
	})

	t.Run("just outside an envelope falls back to the nearest center", func(t *testing.T) {
		// Slightly south of the Steglitz envelope, well within 3km of its
		// center and far from every other district.
		assert.Equal(t, "Steglitz", index.Locate(52.435, 13.335))
	})

	t.Run("boundary point is contained", func(t *testing.T) {
		// Southwest corner of the Spandau envelope.
		assert.Equal(t, "Spandau", index.Locate(52.520, 13.160))
	})
}
