package models

import (
	"net/http"
	"time"
)

// Class groups routes that share a limit.
type Class string

const (
	ClassRead  Class = "read"
	ClassWrite Class = "write"
)

// ClassOf puts safe methods in ClassRead and everything else in ClassWrite.
func ClassOf(method string) Class {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ClassRead
	default:
		return ClassWrite
	}
}

// Limit is a sliding-window budget.
type Limit struct {
	RequestsPerWindow int
	Window            time.Duration
}

// RateLimitResult is the outcome of one check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds
}

// NewKey builds the bucket key for a caller and class.
func NewKey(caller string, class Class) string {
	return "soulbound:ratelimit:" + string(class) + ":" + caller
}

type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}
