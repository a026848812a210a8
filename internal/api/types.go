// Package api provides HTTP handlers for the REST API endpoints.
package api

// ErrorResponse represents an error returned to API clients
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
