package models

import "encoding/json"

// BackendConfig is the model selection state owned by the backend.
// Every field is optional on the wire; absent means false.
type BackendConfig struct {
	UseAlternateModel bool `json:"use_gemini"`
	HasAPIKey         bool `json:"has_api_key"`
	ModelAvailable    bool `json:"model_available"`
}

// ConfigUpdate is a partial write to the backend config. Nil fields are omitted.
type ConfigUpdate struct {
	UseAlternateModel *bool   `json:"use_gemini,omitempty"`
	APIKey            *string `json:"gemini_api_key,omitempty"`
}

// IsEmpty reports whether the update carries no fields
func (u ConfigUpdate) IsEmpty() bool {
	return u.UseAlternateModel == nil && u.APIKey == nil
}

// String redacts the API key so updates can be logged.
func (u ConfigUpdate) String() string {
	redacted := u
	if redacted.APIKey != nil {
		masked := "****"
		redacted.APIKey = &masked
	}
	b, _ := json.Marshal(redacted)
	return string(b)
}

// PingResult is the outcome of a successful ping
type PingResult struct {
	Online    bool
	ModelMode string
}
