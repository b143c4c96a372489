package repository

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"ipgeo-client/internal/models"

	"github.com/oschwald/geoip2-golang"
)

// GeoIPRepository resolves addresses from local MaxMind databases
type GeoIPRepository struct {
	cityReader *geoip2.Reader
	asnReader  *geoip2.Reader
}

// NewGeoIPRepository opens the City database and, when asnDBPath is set, the
// ASN database used for the org field
func NewGeoIPRepository(cityDBPath, asnDBPath string) (*GeoIPRepository, error) {
	cityReader, err := geoip2.Open(cityDBPath)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to open city database: %w", err)
	}

	repo := &GeoIPRepository{cityReader: cityReader}
	if asnDBPath == "" {
		return repo, nil
	}

	asnReader, err := geoip2.Open(asnDBPath)
	if err != nil {
		cityReader.Close()
		return nil, fmt.Errorf("repository: failed to open asn database: %w", err)
	}
	repo.asnReader = asnReader
	return repo, nil
}

// Close releases the database readers
func (r *GeoIPRepository) Close() {
	if r.cityReader != nil {
		r.cityReader.Close()
	}
	if r.asnReader != nil {
		r.asnReader.Close()
	}
}

// FindByIP returns the record for ip, or nil when the database has no data for it
func (r *GeoIPRepository) FindByIP(_ context.Context, ipAddress string) (*models.GeoRecord, error) {
	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return nil, fmt.Errorf("repository: invalid ip address: %s", ipAddress)
	}

	city, err := r.cityReader.City(ip)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to read city record: %w", err)
	}
	if city.Country.IsoCode == "" && city.Location.Latitude == 0 && city.Location.Longitude == 0 {
		return nil, nil
	}

	record := &models.GeoRecord{
		IP:       ipAddress,
		City:     city.City.Names["en"],
		Country:  city.Country.IsoCode,
		Postal:   city.Postal.Code,
		Timezone: city.Location.TimeZone,
		Loc:      formatLoc(city.Location.Latitude, city.Location.Longitude),
	}
	if len(city.Subdivisions) > 0 {
		record.Region = city.Subdivisions[0].Names["en"]
	}

	if r.asnReader != nil {
		asn, err := r.asnReader.ASN(ip)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to read asn record: %w", err)
		}
		if asn.AutonomousSystemNumber != 0 {
			record.Org = fmt.Sprintf("AS%d %s", asn.AutonomousSystemNumber, asn.AutonomousSystemOrganization)
		}
	}

	return record, nil
}

func formatLoc(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', 4, 64) + "," + strconv.FormatFloat(lon, 'f', 4, 64)
}
