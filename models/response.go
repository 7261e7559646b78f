package models

import "redirect-analytics/aggregator"

type StatsResponse struct {
	UptimeSeconds int64                  `json:"uptime_seconds"`
	TrackedCodes  int                    `json:"tracked_codes"`
	Top           []aggregator.CodeCount `json:"top"`
}

type CodeStatsResponse struct {
	Code  string `json:"code"`
	Count uint64 `json:"count"`
}

type AcceptedResponse struct {
	Accepted bool   `json:"accepted"`
	Code     string `json:"code"`
}

// ErrorResponse is the body of every non-2xx response. Error is a stable
// machine-readable tag.
type ErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Error tags.
const (
	ErrPayloadTooLarge      = "payload_too_large"
	ErrInvalidContentLength = "invalid_content_length"
	ErrInvalidJSON          = "invalid_json"
	ErrValidation           = "validation_error"
	ErrInvalidCode          = "invalid_code"
	ErrNotFound             = "not_found"
	ErrMethodNotAllowed     = "method_not_allowed"
	ErrRateLimited          = "rate_limited"
	ErrInternal             = "internal_error"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type ReadyResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
