package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers identity lifecycle and value movements.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers rejected authorizations.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine registry activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted after a state change has been persisted. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Subject is the account the event is about (usually the signer).
	Subject string
	Action  string
	// Resource names the affected soul or achievement id.
	Resource  string
	Token     string
	Amount    string
	Reason    string
	RequestID string
	// ClientIP and UserAgent are set only for events emitted while serving
	// an HTTP request.
	ClientIP  string
	UserAgent string
}

type AuditEvent string

const (
	// Identity events
	EventSoulMinted  AuditEvent = "soul_minted"
	EventSoulClaimed AuditEvent = "soul_claimed"
	EventSoulBurned  AuditEvent = "soul_burned"

	// Achievement events
	EventAchievementMinted       AuditEvent = "achievement_minted"
	EventAchievementBurned       AuditEvent = "achievement_burned"
	EventAchievementOwnerUpdated AuditEvent = "achievement_owner_updated"
	EventAchievementAccepted     AuditEvent = "achievement_accepted"
	EventAchievementVerified     AuditEvent = "achievement_verified"
	EventAchievementReplenished  AuditEvent = "achievement_replenished"

	// Protocol events
	EventRequestAborted AuditEvent = "request_aborted"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventSoulMinted:             CategoryCompliance,
	EventSoulClaimed:            CategoryCompliance,
	EventSoulBurned:             CategoryCompliance,
	EventAchievementVerified:    CategoryCompliance,
	EventAchievementReplenished: CategoryCompliance,

	EventRequestAborted: CategorySecurity,

	EventAchievementMinted:       CategoryOperations,
	EventAchievementBurned:       CategoryOperations,
	EventAchievementOwnerUpdated: CategoryOperations,
	EventAchievementAccepted:     CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}

// Emitter is the narrow port services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
