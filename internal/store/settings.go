package store

// GeocodeKey is the config key holding GeocodeSettings.
const GeocodeKey = "geocode"

// GeocodeSettings holds the geocoding provider key entered in settings.
type GeocodeSettings struct {
	APIKey string `json:"api_key"`
}

// Configured reports whether a Google API key has been saved.
func (s GeocodeSettings) Configured() bool {
	return s.APIKey != ""
}

// GeocodeAPIKey returns the saved key, falling back to def.
func (v *Vault) GeocodeAPIKey(def string) string {
	if s := LoadConfig[GeocodeSettings](v, GeocodeKey); s.Configured() {
		return s.APIKey
	}
	return def
}
