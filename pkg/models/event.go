package models

import "time"

// EventKind enumerates the append-only audit event types emitted by C9.
// New kinds are added as new behaviors are instrumented; existing kinds are
// never renumbered or removed once observed in the log.
type EventKind string

const (
	EventFileCreated                      EventKind = "FileCreated"
	EventFileDeleted                      EventKind = "FileDeleted"
	EventFileVersionCreated                EventKind = "FileVersionCreated"
	EventFileVersionContentCommitted       EventKind = "FileVersionContentCommitted"
	EventFileSharedDataWrittenByForeignApp EventKind = "FileSharedDataWrittenByForeignApp"
	EventAccessDenied                      EventKind = "AccessDenied"
	EventQuotaExceeded                     EventKind = "QuotaExceeded"
	EventJobFailed                         EventKind = "JobFailed"
)

// Event is one append-only audit log row (C9). Payload carries kind-specific
// detail as JSON; the log is never updated or deleted in place.
type Event struct {
	ID         EventID   `gorm:"primaryKey;type:uuid" json:"id"`
	Kind       EventKind `json:"kind"`
	ActorID    *UserID   `gorm:"type:uuid" json:"actor_id,omitempty"`
	AppID      *ApplicationID `gorm:"type:uuid" json:"app_id,omitempty"`
	ResourceType string  `json:"resource_type"`
	ResourceID   *ID     `gorm:"type:uuid" json:"resource_id,omitempty"`
	Payload    map[string]any `gorm:"serializer:json" json:"payload,omitempty"`
	CreatedTime time.Time `json:"created_time"`
}

func (Event) TableName() string { return "events" }
