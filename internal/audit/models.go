package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - actor and ip capture are best-effort; do not block critical flows on audit failures.
//
// Storage (Postgres): table audit_events, INSERT-only.
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	// ActorEmail is the authenticated caller causing the event.
	ActorEmail string `json:"actor_email" db:"actor_email"`

	// IPAddress is the client IP as resolved by gin.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Target identifies the document that changed.
	Collection string `json:"collection" db:"collection"`
	TargetID   string `json:"target_id" db:"target_id"`

	// Role is the role granted, for role events.
	Role string `json:"role,omitempty" db:"role"`

	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeRoleGranted  EventType = "role_granted"
	EventTypeClassDeleted EventType = "class_deleted"
)
