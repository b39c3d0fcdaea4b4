package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessLogEntry is the raw lock event recorded by the vendor-side
// monitoring collaborator. AccessCodeID is nil for events the vendor
// could not attribute to a provisioned code (e.g. mechanical key).
type AccessLogEntry struct {
	ID           uuid.UUID  `json:"id"`
	PropertyID   uuid.UUID  `json:"property_id"`
	SmartLockID  uuid.UUID  `json:"smart_lock_id"`
	AccessCodeID *uuid.UUID `json:"access_code_id,omitempty"`
	AccessTime   time.Time  `json:"access_time"`
	EventType    string     `json:"event_type"`
	CreatedAt    time.Time  `json:"created_at"`
}
