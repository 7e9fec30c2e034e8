package geoip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkpress/internal/config"
)

func TestResolveShortCircuits(t *testing.T) {
	testCases := []struct {
		name string
		ip   string
	}{
		{name: "loopback v4", ip: "127.0.0.1"},
		{name: "loopback v6", ip: "::1"},
		{name: "private range", ip: "192.168.1.5"},
		{name: "unspecified", ip: "0.0.0.0"},
		{name: "empty", ip: ""},
		{name: "garbage", ip: "not-an-ip"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			location := Resolve(context.Background(), tc.ip)
			assert.True(t, location.IsZero())
		})
	}
}

func TestLookupRemoteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/8.8.8.8", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"country": "United States",
			"countryCode": "US",
			"regionName": "Virginia",
			"city": "Ashburn",
			"lat": 39.03,
			"lon": -77.5,
			"timezone": "America/New_York"
		}`))
	}))
	defer server.Close()

	location, err := lookupRemote(context.Background(), server.URL, "8.8.8.8")
	require.NoError(t, err)

	assert.Equal(t, "United States", location.Country)
	assert.Equal(t, "US", location.CountryCode)
	assert.Equal(t, "Virginia", location.Region)
	assert.Equal(t, "Ashburn", location.City)
	assert.InDelta(t, 39.03, location.Latitude, 0.001)
	assert.InDelta(t, -77.5, location.Longitude, 0.001)
	assert.Equal(t, "America/New_York", location.Timezone)
}

func TestLookupRemoteFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "fail", "message": "reserved range"}`))
	}))
	defer server.Close()

	_, err := lookupRemote(context.Background(), server.URL, "8.8.8.8")
	assert.Error(t, err)
}

func TestLookupRemoteNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := lookupRemote(context.Background(), server.URL, "8.8.8.8")
	assert.Error(t, err)
}

func TestResolveFoldsRemoteErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := config.GetConfig()
	previous := cfg.GeoAPIBaseURL
	cfg.GeoAPIBaseURL = server.URL
	t.Cleanup(func() { cfg.GeoAPIBaseURL = previous })

	location := Resolve(context.Background(), "8.8.8.8")
	assert.True(t, location.IsZero())
}
