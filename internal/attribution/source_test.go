package attribution_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecobalance/ecobalance/internal/attribution"
	"github.com/ecobalance/ecobalance/internal/provider/resilience"
)

const feed = `{
  "project": "EcoBalance Score System",
  "version": "2.0",
  "cities": [
    {"name": "Singapore", "country": "Singapore",
     "green_space_data": {"source": "HUGSI", "description": "satellite"},
     "emissions_data": {"source": "Climate TRACE", "description": "sectors", "last_updated": "2025-08-01"}},
    {"name": "Madrid", "country": "Spain",
     "emissions_data": {"source": "Ayuntamiento", "description": "inventory"}},
    {"name": "Atlantis"}
  ]
}`

func quickClient() *resilience.Client {
	return resilience.NewClient(resilience.ClientConfig{
		Name:            "attribution",
		MaxRetries:      -1,
		InitialInterval: time.Millisecond,
		Logger:          zerolog.Nop(),
	})
}

func TestFileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.json")
	require.NoError(t, os.WriteFile(path, []byte(feed), 0o600))

	p, err := attribution.NewSource(path, nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.0", p.Version)
	require.Len(t, p.Cities, 3)

	sg := p.Find("Singapore")
	require.NotNil(t, sg)
	a := sg.Attribution()
	require.NotNil(t, a)
	assert.Equal(t, "HUGSI", a.GreenSpace.Source)
	assert.Equal(t, "2025-08-01", a.Emissions.LastUpdated)

	madrid := p.Find("Madrid").Attribution()
	require.NotNil(t, madrid)
	assert.Nil(t, madrid.GreenSpace)

	assert.Nil(t, p.Find("Atlantis").Attribution())
	assert.Nil(t, p.Find("singapore"), "names match exactly")
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := attribution.NewFileSource(filepath.Join(dir, "missing.json")).Fetch(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = attribution.NewFileSource(bad).Fetch(context.Background())
	assert.Error(t, err)

	null := filepath.Join(dir, "null.json")
	require.NoError(t, os.WriteFile(null, []byte(`null`), 0o600))
	_, err = attribution.NewFileSource(null).Fetch(context.Background())
	assert.ErrorIs(t, err, attribution.ErrEmptyPayload)
}

func TestFileSource_EmptyCityList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"project": "Pilot", "version": "3.1", "cities": []}`), 0o600))

	p, err := attribution.NewFileSource(path).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pilot", p.Project)
	assert.Empty(t, p.Cities)
	assert.Nil(t, p.Find("Singapore"))
}

func TestBundledDemoFeed(t *testing.T) {
	p, err := attribution.NewFileSource(filepath.Join("..", "..", attribution.DefaultLocation)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, p.Cities, 9)
	assert.Equal(t, "EcoBalance Score System", p.Project)
}

func TestHTTPSource_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feed))
	}))
	defer server.Close()

	src := attribution.NewSource(server.URL, quickClient())
	_, isHTTP := src.(*attribution.HTTPSource)
	require.True(t, isHTTP)

	p, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, p.Find("Madrid"))
}

func TestHTTPSource_Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := attribution.NewHTTPSource(server.URL, quickClient()).Fetch(context.Background())
	assert.ErrorIs(t, err, resilience.ErrUnexpectedStatus)
}

func TestPayloadFind_Nil(t *testing.T) {
	var p *attribution.Payload
	assert.Nil(t, p.Find("Singapore"))
}
