package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditEntry records an administrative change to a profile.
type AuditEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActorID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"actor_id"`
	TargetID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"target_id"`
	Action    string         `gorm:"size:50;not null" json:"action"`
	Details   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"details"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}
