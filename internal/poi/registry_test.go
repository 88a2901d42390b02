package poi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	data := `{
		"points_of_interest": [
			{
				"name": "Water Tower",
				"description": "north water tower",
				"coordinates": {"latitude": 48.87895, "longitude": 2.36754, "altitude_meters": 35}
			},
			{
				"name": "Warehouse A",
				"coordinates": {"latitude": 48.87812, "longitude": 2.36601, "altitude_meters": 12}
			}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	p, err := reg.Lookup("Water Tower")
	require.NoError(t, err)
	assert.Equal(t, 48.87895, p.Coordinates.Latitude)
	assert.Equal(t, 35.0, p.Coordinates.AltitudeMeters)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/map.json")
	assert.Error(t, err)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLookup_CaseInsensitive(t *testing.T) {
	reg := NewRegistry([]Point{
		{Name: "Solar Array", Coordinates: Coordinates{Latitude: 1, Longitude: 2}},
	})

	for _, name := range []string{"Solar Array", "solar array", "SOLAR ARRAY"} {
		p, err := reg.Lookup(name)
		require.NoError(t, err, "name %q", name)
		assert.Equal(t, "Solar Array", p.Name)
	}

	_, err := reg.Lookup("Control Tower")
	assert.Error(t, err)
}

func TestPoints_PreservesOrderAndCopies(t *testing.T) {
	reg := NewRegistry([]Point{{Name: "A"}, {Name: "B"}})

	points := reg.Points()
	require.Len(t, points, 2)
	assert.Equal(t, "A", points[0].Name)

	points[0].Name = "mutated"
	again := reg.Points()
	assert.Equal(t, "A", again[0].Name)
}
