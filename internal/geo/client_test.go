package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ipgeo-client/internal/apiclient"
	"ipgeo-client/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/geo", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer tok" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		switch ip := c.Query("ip"); ip {
		case "":
			c.JSON(http.StatusOK, models.GeoRecord{IP: "203.0.113.7", City: "Home", Loc: "1,2"})
		case "8.8.8.8":
			c.JSON(http.StatusOK, models.GeoRecord{IP: ip, City: "Mountain View", Country: "US", Loc: "37.4056,-122.0775"})
		default:
			c.JSON(http.StatusNotFound, gin.H{"error": "no data for " + ip})
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchGeo(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name        string
		token       string
		ip          string
		expected    models.GeoRecord
		expectedErr string
	}{
		{
			name:     "own address",
			token:    "tok",
			expected: models.GeoRecord{IP: "203.0.113.7", City: "Home", Loc: "1,2"},
		},
		{
			name:     "queried address",
			token:    "tok",
			ip:       "8.8.8.8",
			expected: models.GeoRecord{IP: "8.8.8.8", City: "Mountain View", Country: "US", Loc: "37.4056,-122.0775"},
		},
		{
			name:        "server error message",
			token:       "tok",
			ip:          "10.0.0.1",
			expectedErr: "no data for 10.0.0.1",
		},
		{
			name:        "missing token",
			ip:          "8.8.8.8",
			expectedErr: "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := tt.token
			api := apiclient.New(srv.URL, nil, time.Second, func() string { return token })
			client := NewClient(api)

			got, err := client.FetchGeo(context.Background(), tt.ip)

			if tt.expectedErr != "" {
				require.Error(t, err)
				var apiErr *apiclient.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.expectedErr, apiErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
