package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	nominatimBaseURL   = "https://nominatim.openstreetmap.org"
	nominatimUserAgent = "zcontacts/1.0 (+https://github.com/zarlcorp/zcontacts)"
)

// NominatimClient calls the OpenStreetMap Nominatim search API. It needs no
// key but the usage policy requires an identifying User-Agent.
type NominatimClient struct {
	baseURL string
	http    *http.Client
}

var _ Geocoder = (*NominatimClient)(nil)

// NewNominatimClient creates a Nominatim client.
func NewNominatimClient(cfg Config) *NominatimClient {
	base := cfg.BaseURL
	if base == "" {
		base = nominatimBaseURL
	}
	return &NominatimClient{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: timeoutOr(cfg.Timeout)},
	}
}

// Geocode returns the location of the best match for query.
func (c *NominatimClient) Geocode(ctx context.Context, query string) (Coordinates, error) {
	if strings.TrimSpace(query) == "" {
		return Coordinates{}, fmt.Errorf("geocode: empty query: %w", ErrAddressNotFound)
	}

	v := url.Values{}
	v.Set("q", query)
	v.Set("format", "jsonv2")
	v.Set("limit", "1")
	u := c.baseURL + "/search?" + v.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode: create request: %w", err)
	}
	req.Header.Set("User-Agent", nominatimUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode: %w: %w", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode: %w: read response: %w", ErrServiceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("geocode: %w", &APIError{
			Status:  fmt.Sprintf("HTTP %d", resp.StatusCode),
			Message: strings.TrimSpace(string(body)),
		})
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return Coordinates{}, fmt.Errorf("geocode: %w: unmarshal: %w", ErrServiceUnavailable, err)
	}
	if len(places) == 0 {
		return Coordinates{}, fmt.Errorf("geocode %q: %w", query, ErrAddressNotFound)
	}

	// nominatim encodes coordinates as strings
	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode: %w: parse lat: %w", ErrServiceUnavailable, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode: %w: parse lon: %w", ErrServiceUnavailable, err)
	}

	return Coordinates{Latitude: lat, Longitude: lon}, nil
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
