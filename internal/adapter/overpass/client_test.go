package overpass

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kellerweis/poi-atlas/internal/domain"
	"github.com/kellerweis/poi-atlas/internal/observability"
)

func testRegion() orb.Bound {
	return orb.Bound{Min: orb.Point{13.0883, 52.3387}, Max: orb.Point{13.7611, 52.6755}}
}

func testQuery() Query {
	return Query{Region: testRegion(), Selectors: WinerySelectors(), TimeoutS: 30}
}

func newTestClient(endpoint string, maxAttempts int) *Client {
	return NewClient(
		endpoint, 5*time.Second, maxAttempts, time.Millisecond,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting(),
	)
}

func TestQueryQL(t *testing.T) {
	ql := testQuery().QL()

	assert.Contains(t, ql, "[out:json][timeout:30];")
	assert.Contains(t, ql, "out center meta;")
	// bbox order is (south, west, north, east)
	assert.Contains(t, ql, "(52.3387,13.0883,52.6755,13.7611)")
	assert.Contains(t, ql, `node["shop"="wine"]`)
	assert.Contains(t, ql, `way["shop"="wine"]`)
	assert.Contains(t, ql, `relation["shop"="wine"]`)
	assert.Contains(t, ql, `["amenity"="bar"]["drink:wine"="yes"]`)
}

func TestQueryValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, testQuery().Validate())
	})

	t.Run("zero region", func(t *testing.T) {
		q := testQuery()
		q.Region = orb.Bound{}
		assert.Error(t, q.Validate())
	})

	t.Run("no selectors", func(t *testing.T) {
		q := testQuery()
		q.Selectors = nil
		assert.Error(t, q.Validate())
	})
}

func TestSupermarketSelectors(t *testing.T) {
	t.Run("explicit brand", func(t *testing.T) {
		ql := Query{Region: testRegion(), Selectors: SupermarketSelectors("REWE"), TimeoutS: 30}.QL()
		assert.Contains(t, ql, `["brand"="REWE"]`)
		assert.Contains(t, ql, `["name"~"REWE",i]`)
	})

	t.Run("empty brand matches known chains", func(t *testing.T) {
		ql := Query{Region: testRegion(), Selectors: SupermarketSelectors(""), TimeoutS: 30}.QL()
		assert.NotContains(t, ql, `=""`)
		assert.Contains(t, ql, "REWE|EDEKA")
	})
}

func TestFetch(t *testing.T) {
	const payload = `{"elements":[
		{"type":"node","id":1,"lat":52.52,"lon":13.40,"tags":{"shop":"wine","name":"Weinladen"},"version":3,"timestamp":"2023-04-01T10:00:00Z"},
		{"type":"way","id":2,"center":{"lat":52.50,"lon":13.42},"tags":{"amenity":"winery"}}
	]}`

	t.Run("decodes elements and posts the query", func(t *testing.T) {
		var gotBody string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotBody = r.Form.Get("data")
			w.Write([]byte(payload))
		}))
		defer srv.Close()

		elements, err := newTestClient(srv.URL, 3).Fetch(context.Background(), testQuery())

		require.NoError(t, err)
		require.Len(t, elements, 2)
		assert.Equal(t, int64(1), elements[0].ID)
		assert.Equal(t, "wine", elements[0].Tags["shop"])
		assert.Equal(t, 3, elements[0].Version)
		require.NotNil(t, elements[1].Center)
		assert.Equal(t, 52.50, elements[1].Center.Lat)
		assert.Contains(t, gotBody, "out center meta;")
	})

	t.Run("retries transient failures then succeeds", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			if calls <= 2 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(payload))
		}))
		defer srv.Close()

		elements, err := newTestClient(srv.URL, 3).Fetch(context.Background(), testQuery())

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Len(t, elements, 2)
	})

	t.Run("gives up after the attempt budget", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			w.WriteHeader(http.StatusGatewayTimeout)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL, 3).Fetch(context.Background(), testQuery())

		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("malformed response is fatal without retry", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			w.Write([]byte("<html>not json</html>"))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL, 5).Fetch(context.Background(), testQuery())

		require.Error(t, err)
		assert.Equal(t, 1, calls)

		var formatErr *domain.UpstreamFormatError
		assert.True(t, errors.As(err, &formatErr))
	})

	t.Run("client error status is fatal without retry", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL, 5).Fetch(context.Background(), testQuery())

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("empty element list is not an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"elements":[]}`))
		}))
		defer srv.Close()

		elements, err := newTestClient(srv.URL, 3).Fetch(context.Background(), testQuery())

		require.NoError(t, err)
		assert.Empty(t, elements)
	})

	t.Run("invalid query never hits the network", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("unexpected request")
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL, 3).Fetch(context.Background(), Query{})
		assert.Error(t, err)
	})
}
