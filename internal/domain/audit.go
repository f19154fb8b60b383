package domain

import (
	"context"
	"time"
)

const (
	EntityCandidate = "candidate"
	EntityUser      = "user"
	EntityNote      = "note"

	// BulkEntityID marks events that cover many records at once.
	BulkEntityID = "bulk"
)

const (
	AuditCreated     = "created"
	AuditUpdated     = "updated"
	AuditDeleted     = "deleted"
	AuditNoteAdded   = "note_added"
	AuditNoteDeleted = "note_deleted"
	AuditImported    = "imported"
	AuditDeactivated = "deactivated"
	AuditReactivated = "reactivated"
	AuditInvited     = "invited"
)

// AuditDiff is the free-form payload of an audit entry. For updates every
// value is a FieldChange keyed by field name.
type AuditDiff map[string]any

type FieldChange struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

// AuditEntry is append-only.
type AuditEntry struct {
	ID         string    `json:"id"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Action     string    `json:"action"`
	Diff       AuditDiff `json:"diff,omitempty"`
	ActorID    string    `json:"actorId"`
	ActorName  string    `json:"actorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

type AuditRepository interface {
	Create(ctx context.Context, entry *AuditEntry) error
	// Both queries return newest first.
	ListByEntity(ctx context.Context, entityID, entityType string) ([]AuditEntry, error)
	ListByActor(ctx context.Context, actorID string) ([]AuditEntry, error)
}

// AuditRecorder is the write side used by mutating usecases. RecordEvent
// never fails the caller.
type AuditRecorder interface {
	RecordEvent(ctx context.Context, entityType, entityID, action string, diff AuditDiff)
}

type AuditUsecase interface {
	AuditRecorder
	Record(ctx context.Context, entityType, entityID, action string, diff AuditDiff) error
	ListByEntity(ctx context.Context, entityID, entityType string) ([]AuditEntry, error)
	ListByActor(ctx context.Context, actorID string) ([]AuditEntry, error)
}
