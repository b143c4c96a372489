// Package geo is the client of the geolocation lookup service.
package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"ipgeo-client/internal/apiclient"
	"ipgeo-client/internal/models"
)

// Client fetches GeoRecords from the lookup service.
type Client struct {
	api *apiclient.Client
}

// NewClient returns a client on api.
func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// FetchGeo looks up ip, or the caller's own address when ip is empty.
func (c *Client) FetchGeo(ctx context.Context, ip string) (models.GeoRecord, error) {
	var query url.Values
	if ip != "" {
		query = url.Values{"ip": []string{ip}}
	}

	var record models.GeoRecord
	if err := c.api.Do(ctx, http.MethodGet, "/api/geo", query, nil, &record); err != nil {
		return models.GeoRecord{}, fmt.Errorf("geo: fetch %q: %w", ip, err)
	}
	return record, nil
}
