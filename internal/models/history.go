package models

// HistoryEntry is one persisted past lookup.
type HistoryEntry struct {
	ID        string    `json:"id"`
	IP        string    `json:"ip"`
	GeoData   GeoRecord `json:"geoData"`
	Timestamp int64     `json:"timestamp"`
}
