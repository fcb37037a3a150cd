package admin

import "time"

// AuditEventResponse is one audit entry as served to operators.
type AuditEventResponse struct {
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Subject   string    `json:"subject"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource,omitempty"`
	Token     string    `json:"token,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Device    string    `json:"device,omitempty"`
}

// AuditTrailResponse wraps a subject's events.
type AuditTrailResponse struct {
	Subject string                `json:"subject"`
	Events  []*AuditEventResponse `json:"events"`
	Total   int                   `json:"total"`
}

// HealthResponse reports each dependency check by name.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
