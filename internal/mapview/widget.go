package mapview

// LatLng is a geographic position in degrees.
type LatLng struct {
	Lat float64
	Lon float64
}

// TileLayer describes a raster tile source.
type TileLayer struct {
	URLTemplate string
	Attribution string
}

// Icon describes how a marker is drawn.
type Icon struct {
	URL         string
	RetinaURL   string
	ShadowURL   string
	Size        [2]int
	Anchor      [2]int
	PopupAnchor [2]int
	ShadowSize  [2]int
}

// Widget creates map instances inside a container.
type Widget interface {
	CreateMap(container string, center LatLng, zoom int) (Map, error)
}

// Map is one live map instance.
type Map interface {
	AddTileLayer(layer TileLayer)
	SetView(center LatLng, zoom int)
	AddMarker(at LatLng, icon Icon) Marker
	Markers() []Marker
	RemoveLayer(m Marker)
	Destroy()
}

// Marker is a point layer with an optional popup.
type Marker interface {
	Position() LatLng
	BindPopup(text string)
	OpenPopup()
}

// DefaultZoom is the zoom level used when centering on a record.
const DefaultZoom = 13

// OpenStreetMapTiles is the tile layer added to every new map.
var OpenStreetMapTiles = TileLayer{
	URLTemplate: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
	Attribution: "© OpenStreetMap contributors",
}

// DefaultIcon is the standard pin.
var DefaultIcon = Icon{
	URL:         "https://unpkg.com/leaflet@1.9.4/dist/images/marker-icon.png",
	RetinaURL:   "https://unpkg.com/leaflet@1.9.4/dist/images/marker-icon-2x.png",
	ShadowURL:   "https://unpkg.com/leaflet@1.9.4/dist/images/marker-shadow.png",
	Size:        [2]int{25, 41},
	Anchor:      [2]int{12, 41},
	PopupAnchor: [2]int{1, -34},
	ShadowSize:  [2]int{41, 41},
}
