package models

import (
	"time"

	"soulbound/internal/resolution"
	"soulbound/pkg/domain"
)

// Status is where a submitted request stands.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCommitted Status = "committed"
	StatusAborted   Status = "aborted"
)

// Outcome is the caller-visible result of a request, keyed by the token the
// entry point returned.
type Outcome struct {
	Token         resolution.Token     `json:"token"`
	Op            Op                   `json:"op"`
	AchievementID domain.AchievementID `json:"achievement_id"`
	Status        Status               `json:"status"`
	// Code and Message are set for aborted requests.
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
