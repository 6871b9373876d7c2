package models

// ErrorResponse is the body written for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Msg   string `json:"msg"`
}

// HealthResponse is the body written by the health endpoints
type HealthResponse struct {
	Status    string         `json:"status"`
	Service   string         `json:"service"`
	Timestamp string         `json:"timestamp"`
	Database  map[string]any `json:"database,omitempty"`
}
