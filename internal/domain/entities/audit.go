package entities

import (
	"time"

	"github.com/google/uuid"

	"gorm.io/datatypes"
)

// AuditEntry is one row of the merge audit trail
type AuditEntry struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Actor      uuid.UUID      `json:"actor" gorm:"type:uuid;not null;index"`
	Action     string         `json:"action" gorm:"type:varchar(50);not null"` // create, update, close, supersede
	EntityType string         `json:"entity_type" gorm:"type:varchar(50);not null"`
	EntityID   uuid.UUID      `json:"entity_id" gorm:"type:uuid;not null;index"`
	Before     datatypes.JSON `json:"before,omitempty" gorm:"type:jsonb"`
	After      datatypes.JSON `json:"after,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (AuditEntry) TableName() string {
	return "audit_entries"
}

// ModelAttempt is the telemetry payload recorded for every generative-model
// call. It is handed to the metrics sink fire-and-forget; sink failures must
// never fail the pipeline.
type ModelAttempt struct {
	Model      string `json:"model"`
	IsFallback bool   `json:"is_fallback"`
	Success    bool   `json:"success"`
	LatencyMs  int64  `json:"latency_ms"`
	Error      string `json:"error,omitempty"`
}
