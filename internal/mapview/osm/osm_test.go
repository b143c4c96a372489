package osm

import (
	"testing"

	"ipgeo-client/internal/mapview"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidget_DrivenByController(t *testing.T) {
	w := NewWidget()
	c := mapview.NewController(w, zerolog.Nop())

	c.Activate("geo-map")
	assert.Nil(t, w.Current())

	c.Update("37.4", "-122.1", "Mountain View, US")
	c.Update("40", "-74", "New York, US")

	m := w.Current()
	require.NotNil(t, m)
	assert.Equal(t, 1, w.Created())
	require.Len(t, m.Markers(), 1)
	assert.Equal(t, "https://www.openstreetmap.org/?mlat=40&mlon=-74#map=13/40/-74", m.Link())
	assert.Equal(t, "New York, US [40, -74] zoom 13", m.Summary())

	popup, open := m.Markers()[0].(*Marker).Popup()
	assert.Equal(t, "New York, US", popup)
	assert.True(t, open)

	c.Deactivate()
	assert.True(t, m.Destroyed())
	assert.Equal(t, "(map closed)", m.Summary())
}

func TestMap_LinkWithoutMarker(t *testing.T) {
	w := NewWidget()
	m, err := w.CreateMap("c", mapview.LatLng{Lat: 1.5, Lon: 2}, 5)
	require.NoError(t, err)

	assert.Equal(t, "https://www.openstreetmap.org/#map=5/1.5/2", m.(*Map).Link())
	assert.Equal(t, "(no marker)", m.(*Map).Summary())
}

func TestMap_DestroyedIgnoresCalls(t *testing.T) {
	w := NewWidget()
	m, err := w.CreateMap("c", mapview.LatLng{}, 3)
	require.NoError(t, err)

	m.Destroy()
	m.AddMarker(mapview.LatLng{Lat: 1, Lon: 1}, mapview.DefaultIcon)
	m.SetView(mapview.LatLng{Lat: 9, Lon: 9}, 10)

	assert.Empty(t, m.Markers())
	assert.Equal(t, "https://www.openstreetmap.org/#map=3/0/0", m.(*Map).Link())
}

func TestWidget_RequiresContainer(t *testing.T) {
	_, err := NewWidget().CreateMap("", mapview.LatLng{}, 1)
	assert.Error(t, err)
}
