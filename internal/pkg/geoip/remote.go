package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 3 * time.Second}

// remoteResponse mirrors the ip-api.com JSON contract. A "fail" status still
// comes back as HTTP 200, so the status field is the real success signal.
type remoteResponse struct {
	Status      string  `json:"status"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
}

// lookupRemote queries the configured ip-api-style endpoint for one IP.
// Single attempt, no caching, no retry.
func lookupRemote(ctx context.Context, baseURL, ip string) (Location, error) {
	if baseURL == "" {
		return Location{}, errors.New("geolocation API base URL not configured")
	}

	url := strings.TrimSuffix(baseURL, "/") + "/" + ip
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Location{}, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geolocation api returned status %d", resp.StatusCode)
	}

	var body remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, err
	}
	if body.Status != "success" {
		return Location{}, fmt.Errorf("geolocation api reported status %q", body.Status)
	}

	return Location{
		Country:     body.Country,
		CountryCode: body.CountryCode,
		Region:      body.RegionName,
		City:        body.City,
		Latitude:    body.Lat,
		Longitude:   body.Lon,
		Timezone:    body.Timezone,
	}, nil
}
