package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntityType identifies the kind of domain entity (used in audit logs).
type EntityType string

const (
	EntityTypePublication EntityType = "PUBLICATION"
)

func (e EntityType) String() string { return string(e) }

func (e EntityType) IsValid() bool {
	switch e {
	case EntityTypePublication:
		return true
	}
	return false
}

// AuditAction represents the kind of mutation recorded in the audit log.
type AuditAction string

const (
	AuditActionCreate  AuditAction = "CREATE"
	AuditActionUpdate  AuditAction = "UPDATE"
	AuditActionPublish AuditAction = "PUBLISH"
	AuditActionDelete  AuditAction = "DELETE"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionPublish, AuditActionDelete:
		return true
	}
	return false
}

// AuditRecord is an append-only log entry describing one mutation.
type AuditRecord struct {
	ID         uuid.UUID
	EntityType EntityType
	EntityID   uuid.UUID
	Action     AuditAction
	Changes    map[string]any
	CreatedAt  time.Time
}

// NewAuditRecord builds a publication audit record stamped at now.
func NewAuditRecord(entityID uuid.UUID, action AuditAction, changes map[string]any, now time.Time) AuditRecord {
	return AuditRecord{
		ID:         uuid.New(),
		EntityType: EntityTypePublication,
		EntityID:   entityID,
		Action:     action,
		Changes:    changes,
		CreatedAt:  now.UTC(),
	}
}
