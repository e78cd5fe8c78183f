package postal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const seResponse = `{
  "cep": "01001-000",
  "logradouro": "Praça da Sé",
  "complemento": "lado ímpar",
  "bairro": "Sé",
  "localidade": "São Paulo",
  "uf": "SP",
  "ibge": "3550308",
  "ddd": "11"
}`

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL})
}

func TestLookup(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method: got %s, want GET", r.Method)
		}
		if want := "/01001000/json/"; r.URL.Path != want {
			t.Errorf("path: got %s, want %s", r.URL.Path, want)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(seResponse))
	}))

	addr, err := c.Lookup(context.Background(), "01001000")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	want := Address{
		PostalCode: "01001000",
		Street:     "Praça da Sé",
		Complement: "lado ímpar",
		District:   "Sé",
		Locality:   "São Paulo",
		Region:     "SP",
	}
	if addr != want {
		t.Errorf("address: got %+v, want %+v", addr, want)
	}
}

func TestLookupAcceptsDashedCode(t *testing.T) {
	var gotPath string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(seResponse))
	}))

	if _, err := c.Lookup(context.Background(), "01001-000"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if gotPath != "/01001000/json/" {
		t.Errorf("path = %s", gotPath)
	}
}

func TestLookupNotFoundFlag(t *testing.T) {
	for _, body := range []string{`{"erro": true}`, `{"erro": "true"}`} {
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(body))
		}))

		_, err := c.Lookup(context.Background(), "99999999")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("body %s: err = %v, want ErrNotFound", body, err)
		}
	}
}

func TestLookupBadRequest(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := c.Lookup(context.Background(), "00000000")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLookupServerError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.Lookup(context.Background(), "01001000")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestLookupMalformedBody(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))

	_, err := c.Lookup(context.Background(), "01001000")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestLookupTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: url})
	_, err := c.Lookup(context.Background(), "01001000")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestLookupIncompleteCodeSkipsRequest(t *testing.T) {
	called := false
	c := testClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	_, err := c.Lookup(context.Background(), "0100")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if called {
		t.Error("incomplete code must not reach the service")
	}
}

func TestComplete(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"01001000", true},
		{"01001-000", true},
		{" 01001000 ", true},
		{"0100100", false},
		{"010010000", false},
		{"0100100a", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := Complete(tt.code); got != tt.want {
			t.Errorf("Complete(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
