// Package geocode turns a free-text address into coordinates using Google
// Geocoding or, without an API key, OpenStreetMap Nominatim.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrAddressNotFound is returned when the provider has no match.
	ErrAddressNotFound = errors.New("address not found")

	// ErrServiceUnavailable is returned for transport failures and provider
	// errors such as a denied key or an exceeded quota.
	ErrServiceUnavailable = errors.New("geocoding service unavailable")
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// IsZero reports whether c is the unset position.
func (c Coordinates) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// Geocoder resolves a single address query.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Coordinates, error)
}

// APIError is a non-OK status reported by a provider.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "geocode: " + e.Status
	}
	return "geocode: " + e.Status + ": " + e.Message
}

// Unwrap classifies every provider error as a service failure.
func (e *APIError) Unwrap() error {
	return ErrServiceUnavailable
}

// Query joins the non-empty address parts into the text sent to a provider.
// The country is appended so bare street names resolve within Brazil.
func Query(street, locality, region string) string {
	var parts []string
	for _, p := range []string{street, locality, region} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(append(parts, "Brasil"), ", ")
}

// Config selects and configures a provider.
type Config struct {
	APIKey  string // google key; empty selects nominatim
	BaseURL string // override for either provider
	Timeout time.Duration
}

// New returns the Google client when an API key is configured, otherwise the
// Nominatim client.
func New(cfg Config) Geocoder {
	if cfg.APIKey != "" {
		return NewGoogleClient(cfg)
	}
	return NewNominatimClient(cfg)
}

func timeoutOr(d time.Duration) time.Duration {
	if d == 0 {
		return 10 * time.Second
	}
	return d
}
