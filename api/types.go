// Package api - API types for save analysis
// These types define the contract for the /analyze endpoint.
package api

import (
	"encoding/json"
	"time"

	"synergism-calc/adapters/storage"
	"synergism-calc/core/pricing"
	"synergism-calc/core/report"
	"synergism-calc/core/settings"
)

// AnalyzeRequest is the input to POST /analyze
type AnalyzeRequest struct {
	// Save is the save document, either as a JSON object or as the
	// base64 export string the game produces
	Save json.RawMessage `json:"save"`

	// Settings attach the calculator settings (optional)
	Settings *settings.Settings `json:"settings,omitempty"`

	// Prices are the shop price tables (optional, needs Settings)
	Prices []pricing.Table `json:"prices,omitempty"`

	// At fixes the time used for the ascension timer (optional, defaults to now)
	At *time.Time `json:"at,omitempty"`

	// Record keeps the report in the server's history (optional)
	Record bool `json:"record,omitempty"`

	// Profile groups recorded reports (optional, defaults to "default")
	Profile string `json:"profile,omitempty"`
}

// AnalyzeResponse is the output of POST /analyze
type AnalyzeResponse struct {
	RequestID  string         `json:"request_id"`
	DurationMs int64          `json:"duration_ms"`
	Report     *report.Report `json:"report"`

	// Profile is set when the report was recorded
	Profile string `json:"profile,omitempty"`
}

// ListReportsResponse is the output of GET /reports
type ListReportsResponse struct {
	Reports []storage.Summary `json:"reports"`
}

// ErrorResponse wraps an error body
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	RequestID string                 `json:"request_id,omitempty"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
}
