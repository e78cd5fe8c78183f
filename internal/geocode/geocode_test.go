package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestQuery(t *testing.T) {
	tests := []struct {
		street, locality, region string
		want                     string
	}{
		{"Praça da Sé", "São Paulo", "SP", "Praça da Sé, São Paulo, SP, Brasil"},
		{"", "São Paulo", "SP", "São Paulo, SP, Brasil"},
		{"  ", " ", "", ""},
	}

	for _, tt := range tests {
		if got := Query(tt.street, tt.locality, tt.region); got != tt.want {
			t.Errorf("Query(%q, %q, %q) = %q, want %q", tt.street, tt.locality, tt.region, got, tt.want)
		}
	}
}

func TestNewSelectsProvider(t *testing.T) {
	if _, ok := New(Config{APIKey: "k"}).(*GoogleClient); !ok {
		t.Error("api key should select google")
	}
	if _, ok := New(Config{}).(*NominatimClient); !ok {
		t.Error("no api key should select nominatim")
	}
}

func TestGoogleGeocode(t *testing.T) {
	url := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != "Praça da Sé, São Paulo, SP, Brasil" {
			t.Errorf("address = %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q", got)
		}
		w.Write([]byte(`{
			"status": "OK",
			"results": [
				{"geometry": {"location": {"lat": -23.5503, "lng": -46.6342}}},
				{"geometry": {"location": {"lat": 1, "lng": 1}}}
			]
		}`))
	})

	c := NewGoogleClient(Config{APIKey: "test-key", BaseURL: url})
	got, err := c.Geocode(context.Background(), Query("Praça da Sé", "São Paulo", "SP"))
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}

	want := Coordinates{Latitude: -23.5503, Longitude: -46.6342}
	if got != want {
		t.Errorf("coords = %v, want %v", got, want)
	}
}

func TestGoogleErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"zero results", 200, `{"status": "ZERO_RESULTS", "results": []}`, ErrAddressNotFound},
		{"ok but empty", 200, `{"status": "OK", "results": []}`, ErrAddressNotFound},
		{"denied", 200, `{"status": "REQUEST_DENIED", "error_message": "invalid key"}`, ErrServiceUnavailable},
		{"quota", 200, `{"status": "OVER_QUERY_LIMIT"}`, ErrServiceUnavailable},
		{"http error", 503, `down`, ErrServiceUnavailable},
		{"bad json", 200, `not json`, ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			c := NewGoogleClient(Config{APIKey: "k", BaseURL: url})
			got, err := c.Geocode(context.Background(), "Rua A, São Paulo")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !got.IsZero() {
				t.Errorf("coords = %v, want zero on failure", got)
			}
		})
	}
}

func TestGoogleDeniedIsAPIError(t *testing.T) {
	url := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`))
	})

	c := NewGoogleClient(Config{APIKey: "bad", BaseURL: url})
	_, err := c.Geocode(context.Background(), "Rua A")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != "REQUEST_DENIED" {
		t.Errorf("status = %q", apiErr.Status)
	}
}

func TestEmptyQueryIsNotFound(t *testing.T) {
	called := false
	url := testServer(t, func(http.ResponseWriter, *http.Request) { called = true })

	for _, g := range []Geocoder{
		NewGoogleClient(Config{APIKey: "k", BaseURL: url}),
		NewNominatimClient(Config{BaseURL: url}),
	} {
		if _, err := g.Geocode(context.Background(), " "); !errors.Is(err, ErrAddressNotFound) {
			t.Errorf("%T: err = %v, want ErrAddressNotFound", g, err)
		}
	}
	if called {
		t.Error("empty query must not reach the provider")
	}
}

func TestNominatimGeocode(t *testing.T) {
	url := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("format") != "jsonv2" || q.Get("limit") != "1" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing user agent")
		}
		w.Write([]byte(`[{"lat": "-23.5503", "lon": "-46.6342", "display_name": "Praça da Sé"}]`))
	})

	c := NewNominatimClient(Config{BaseURL: url})
	got, err := c.Geocode(context.Background(), "Praça da Sé, São Paulo")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if got.Latitude != -23.5503 || got.Longitude != -46.6342 {
		t.Errorf("coords = %v", got)
	}
}

func TestNominatimErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"no match", 200, `[]`, ErrAddressNotFound},
		{"rate limited", 429, ``, ErrServiceUnavailable},
		{"bad coordinate", 200, `[{"lat": "north", "lon": "1"}]`, ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			c := NewNominatimClient(Config{BaseURL: url})
			if _, err := c.Geocode(context.Background(), "Rua A"); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
