// Package models contains data types and constants for the neurochat backend API.
package models

// DefaultBaseURL is where the backend listens when started locally.
const DefaultBaseURL = "http://127.0.0.1:5000"

// Backend endpoint paths, relative to the base URL
const (
	EndpointPing        = "/ping"
	EndpointChat        = "/chat"
	EndpointMemory      = "/memory"
	EndpointClearMemory = "/clear_memory"
	EndpointConfig      = "/config"
)

// NoResponsePlaceholder is shown when the backend answers without a reply field.
const NoResponsePlaceholder = "[no response]"

// Model mode labels reported to the user when toggling
const (
	ModeLocal     = "Local Model"
	ModeAlternate = "Gemini API"
)

// ModeName returns the human label for the model selection flag.
func ModeName(useAlternate bool) string {
	if useAlternate {
		return ModeAlternate
	}
	return ModeLocal
}

// DefaultHeaders returns the headers sent with every backend request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":     "application/json",
		"User-Agent": "neurochat",
	}
}
