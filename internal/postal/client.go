// Package postal resolves Brazilian postal codes (CEP) to street addresses
// through the ViaCEP web service.
package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://viacep.com.br/ws"

// CodeLength is the number of digits in a complete postal code.
const CodeLength = 8

var (
	// ErrNotFound is returned when the service flags the code as unknown.
	ErrNotFound = errors.New("postal code not found")

	// ErrUnavailable is returned for transport failures, unexpected status
	// codes and unreadable responses.
	ErrUnavailable = errors.New("postal service unavailable")
)

// Address is the part of a ViaCEP response the contact form uses.
type Address struct {
	PostalCode string `json:"postal_code"`
	Street     string `json:"street"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district"`
	Locality   string `json:"locality"`
	Region     string `json:"region"`
}

// Config holds ViaCEP client settings. Zero values use the public service.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client looks up postal codes.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a ViaCEP client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Normalize strips the dash and surrounding spaces from a postal code.
func Normalize(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), "-", "")
}

// Complete reports whether code, once normalized, is a full eight digit CEP.
// Callers only look up complete codes.
func Complete(code string) bool {
	code = Normalize(code)
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// Lookup resolves a complete postal code.
func (c *Client) Lookup(ctx context.Context, code string) (Address, error) {
	code = Normalize(code)
	if !Complete(code) {
		return Address{}, fmt.Errorf("lookup %q: incomplete code: %w", code, ErrNotFound)
	}

	u := c.baseURL + "/" + code + "/json/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Address{}, fmt.Errorf("lookup %s: create request: %w", code, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Address{}, fmt.Errorf("lookup %s: %w: %w", code, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Address{}, fmt.Errorf("lookup %s: %w: read response: %w", code, ErrUnavailable, err)
	}

	// viacep answers 400 for malformed codes
	if resp.StatusCode == http.StatusBadRequest {
		return Address{}, fmt.Errorf("lookup %s: %w", code, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return Address{}, fmt.Errorf("lookup %s: %w: unexpected status %d", code, ErrUnavailable, resp.StatusCode)
	}

	var r viacepResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return Address{}, fmt.Errorf("lookup %s: %w: unmarshal: %w", code, ErrUnavailable, err)
	}

	if r.Erro {
		return Address{}, fmt.Errorf("lookup %s: %w", code, ErrNotFound)
	}

	return Address{
		PostalCode: Normalize(r.CEP),
		Street:     r.Logradouro,
		Complement: r.Complemento,
		District:   r.Bairro,
		Locality:   r.Localidade,
		Region:     r.UF,
	}, nil
}

// json wire types for API responses

type viacepResponse struct {
	CEP         string   `json:"cep"`
	Logradouro  string   `json:"logradouro"`
	Complemento string   `json:"complemento"`
	Bairro      string   `json:"bairro"`
	Localidade  string   `json:"localidade"`
	UF          string   `json:"uf"`
	Erro        flexBool `json:"erro"`
}

// flexBool accepts both true and "true"; viacep has sent each over time.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "true":
		*b = true
	default:
		*b = false
	}
	return nil
}
