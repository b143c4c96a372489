// Package mapview drives a map widget through the lifetime of one mounted view:
// lazy creation on the first valid coordinates, marker replacement on every
// update, and guaranteed teardown.
package mapview

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// State is the lifecycle state of a Controller.
type State int

const (
	Unmounted State = iota
	MountedNoData
	MountedWithMarker
)

func (s State) String() string {
	switch s {
	case Unmounted:
		return "unmounted"
	case MountedNoData:
		return "mounted_no_data"
	case MountedWithMarker:
		return "mounted_with_marker"
	default:
		return "unknown"
	}
}

// Controller owns at most one map and at most one marker on it.
type Controller struct {
	mu        sync.Mutex
	widget    Widget
	log       zerolog.Logger
	state     State
	container string
	m         Map
	marker    Marker
	pos       LatLng
	label     string
}

// NewController returns an unmounted controller for widget.
func NewController(widget Widget, logger zerolog.Logger) *Controller {
	return &Controller{widget: widget, log: logger}
}

// Activate mounts the controller on container. No map is created until the
// first valid coordinates arrive. Activating a mounted controller, or with an
// empty container, does nothing.
func (c *Controller) Activate(container string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Unmounted || container == "" {
		return
	}
	c.container = container
	c.state = MountedNoData
}

// Update centers the map on (lat, lon) and replaces the marker. Input that is
// absent or not a finite number leaves everything as it was.
func (c *Controller) Update(lat, lon, label string) {
	latNum, ok := parseCoord(lat)
	if !ok {
		return
	}
	lonNum, ok := parseCoord(lon)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Unmounted {
		return
	}

	at := LatLng{Lat: latNum, Lon: lonNum}
	if c.m == nil {
		m, err := c.widget.CreateMap(c.container, at, DefaultZoom)
		if err != nil {
			c.log.Warn().Err(err).Str("container", c.container).Msg("mapview: create map failed")
			return
		}
		m.AddTileLayer(OpenStreetMapTiles)
		c.m = m
	}

	for _, existing := range c.m.Markers() {
		c.m.RemoveLayer(existing)
	}

	if label == "" {
		label = formatCoord(latNum) + ", " + formatCoord(lonNum)
	}

	marker := c.m.AddMarker(at, DefaultIcon)
	marker.BindPopup(label)
	c.m.SetView(at, DefaultZoom)
	marker.OpenPopup()

	c.marker = marker
	c.pos = at
	c.label = label
	c.state = MountedWithMarker
}

// Deactivate destroys the map, if one was created, and unmounts. Safe to call
// in any state and more than once.
func (c *Controller) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.m != nil {
		c.m.Destroy()
		c.m = nil
	}
	c.marker = nil
	c.pos = LatLng{}
	c.label = ""
	c.container = ""
	c.state = Unmounted
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Marker returns the position and popup label of the current marker.
func (c *Controller) Marker() (LatLng, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.marker == nil {
		return LatLng{}, "", false
	}
	return c.pos, c.label, true
}

// HasMap reports whether a map instance is currently held.
func (c *Controller) HasMap() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m != nil
}

func parseCoord(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
