package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const googleBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleClient calls the Google Geocoding API.
type GoogleClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

var _ Geocoder = (*GoogleClient)(nil)

// NewGoogleClient creates a Google Geocoding client.
func NewGoogleClient(cfg Config) *GoogleClient {
	base := cfg.BaseURL
	if base == "" {
		base = googleBaseURL
	}
	return &GoogleClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: timeoutOr(cfg.Timeout)},
	}
}

// Geocode returns the location of the first result for query.
func (c *GoogleClient) Geocode(ctx context.Context, query string) (Coordinates, error) {
	if strings.TrimSpace(query) == "" {
		return Coordinates{}, fmt.Errorf("geocode: empty query: %w", ErrAddressNotFound)
	}

	v := url.Values{}
	v.Set("address", query)
	v.Set("key", c.apiKey)
	u := c.baseURL + "?" + v.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode: create request: %w", err)
	}

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

	var r googleResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return Coordinates{}, fmt.Errorf("geocode: %w: unmarshal: %w", ErrServiceUnavailable, err)
	}

	switch r.Status {
	case "OK":
	case "ZERO_RESULTS":
		return Coordinates{}, fmt.Errorf("geocode %q: %w", query, ErrAddressNotFound)
	default:
		return Coordinates{}, fmt.Errorf("geocode %q: %w", query, &APIError{Status: r.Status, Message: r.ErrorMessage})
	}

	if len(r.Results) == 0 {
		return Coordinates{}, fmt.Errorf("geocode %q: %w", query, ErrAddressNotFound)
	}

	loc := r.Results[0].Geometry.Location
	return Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}
