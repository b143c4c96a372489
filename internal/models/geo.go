package models

import "strings"

// GeoRecord is the geolocation payload for one IP address. Optional fields are
// empty when the lookup service did not report them.
type GeoRecord struct {
	IP       string `json:"ip"`
	City     string `json:"city,omitempty"`
	Region   string `json:"region,omitempty"`
	Country  string `json:"country,omitempty"`
	Postal   string `json:"postal,omitempty"`
	Org      string `json:"org,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Loc      string `json:"loc,omitempty"`
}

// Coordinates splits Loc into its raw latitude and longitude parts. Parsing is
// left to the consumer.
func (g GeoRecord) Coordinates() (lat, lon string, ok bool) {
	if g.Loc == "" {
		return "", "", false
	}
	parts := strings.SplitN(g.Loc, ",", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// Label is the text shown next to the record on a map.
func (g GeoRecord) Label() string {
	if g.City != "" {
		return g.City + ", " + g.Country
	}
	return g.IP
}

// MaybeRecord is either a GeoRecord or nothing.
type MaybeRecord struct {
	record  GeoRecord
	present bool
}

// Some wraps a record.
func Some(r GeoRecord) MaybeRecord {
	return MaybeRecord{record: r, present: true}
}

// None is the empty MaybeRecord.
func None() MaybeRecord {
	return MaybeRecord{}
}

// Get returns the record and whether one is present.
func (m MaybeRecord) Get() (GeoRecord, bool) {
	return m.record, m.present
}

// IsSome reports whether a record is present.
func (m MaybeRecord) IsSome() bool {
	return m.present
}

// IP returns the wrapped record's address, or "" when empty.
func (m MaybeRecord) IP() string {
	if !m.present {
		return ""
	}
	return m.record.IP
}
