// Package osm is an in-process map widget for terminal output. It keeps the
// map's layers in memory and renders them as an OpenStreetMap link.
package osm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"ipgeo-client/internal/mapview"
)

const baseURL = "https://www.openstreetmap.org/"

// Widget creates Maps. The most recently created map stays reachable through
// Current so the caller can render it.
type Widget struct {
	mu      sync.Mutex
	current *Map
	created int
}

// NewWidget returns a widget with no maps.
func NewWidget() *Widget {
	return &Widget{}
}

// CreateMap implements mapview.Widget.
func (w *Widget) CreateMap(container string, center mapview.LatLng, zoom int) (mapview.Map, error) {
	if container == "" {
		return nil, errors.New("osm: container is required")
	}
	m := &Map{container: container, center: center, zoom: zoom}

	w.mu.Lock()
	w.current = m
	w.created++
	w.mu.Unlock()

	return m, nil
}

// Current returns the last created map, or nil.
func (w *Widget) Current() *Map {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Created returns how many maps this widget has created.
func (w *Widget) Created() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.created
}

// Map implements mapview.Map. Calls on a destroyed map are ignored.
type Map struct {
	mu        sync.Mutex
	container string
	center    mapview.LatLng
	zoom      int
	tiles     []mapview.TileLayer
	markers   []*Marker
	destroyed bool
}

func (m *Map) AddTileLayer(layer mapview.TileLayer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return
	}
	m.tiles = append(m.tiles, layer)
}

func (m *Map) SetView(center mapview.LatLng, zoom int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return
	}
	m.center = center
	m.zoom = zoom
}

func (m *Map) AddMarker(at mapview.LatLng, icon mapview.Icon) mapview.Marker {
	marker := &Marker{pos: at, icon: icon}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.destroyed {
		m.markers = append(m.markers, marker)
	}
	return marker
}

func (m *Map) Markers() []mapview.Marker {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mapview.Marker, len(m.markers))
	for i, mk := range m.markers {
		out[i] = mk
	}
	return out
}

func (m *Map) RemoveLayer(layer mapview.Marker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, mk := range m.markers {
		if mapview.Marker(mk) == layer {
			m.markers = append(m.markers[:i], m.markers[i+1:]...)
			return
		}
	}
}

func (m *Map) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed = true
	m.markers = nil
	m.tiles = nil
}

// Destroyed reports whether Destroy was called.
func (m *Map) Destroyed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyed
}

// Link renders the map view as an openstreetmap.org URL, with a marker
// parameter when the map has one.
func (m *Map) Link() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder
	b.WriteString(baseURL)
	if len(m.markers) > 0 {
		p := m.markers[len(m.markers)-1].pos
		fmt.Fprintf(&b, "?mlat=%s&mlon=%s", format(p.Lat), format(p.Lon))
	}
	fmt.Fprintf(&b, "#map=%d/%s/%s", m.zoom, format(m.center.Lat), format(m.center.Lon))
	return b.String()
}

// Summary describes the visible marker in one line.
func (m *Map) Summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return "(map closed)"
	}
	if len(m.markers) == 0 {
		return "(no marker)"
	}
	mk := m.markers[len(m.markers)-1]
	popup := mk.popup
	if !mk.open {
		popup = ""
	}
	return fmt.Sprintf("%s [%s, %s] zoom %d", popup, format(mk.pos.Lat), format(mk.pos.Lon), m.zoom)
}

// Marker implements mapview.Marker.
type Marker struct {
	pos   mapview.LatLng
	icon  mapview.Icon
	popup string
	open  bool
}

func (mk *Marker) Position() mapview.LatLng { return mk.pos }
func (mk *Marker) BindPopup(text string)    { mk.popup = text }
func (mk *Marker) OpenPopup()               { mk.open = true }

// Popup returns the bound popup text and whether it is open.
func (mk *Marker) Popup() (string, bool) { return mk.popup, mk.open }

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
