package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/stayflow/access-service/internal/models"
)

// MonitorAccessRequest is the lock-vendor webhook payload for one
// physical access event. AccessCodeID is omitted when the vendor could
// not attribute the event to a provisioned code.
type MonitorAccessRequest struct {
	PropertyID   uuid.UUID  `json:"property_id" validate:"required"`
	SmartLockID  uuid.UUID  `json:"smart_lock_id" validate:"required"`
	AccessCodeID *uuid.UUID `json:"access_code_id,omitempty"`
	AccessTime   time.Time  `json:"access_time" validate:"required"`
	EventType    string     `json:"event_type" validate:"required,oneof=UNLOCK LOCK FAILED_ATTEMPT"`
}

// ViolationSummary is returned to the webhook caller when the event was
// classified as a violation. Clean events get a 204.
type ViolationSummary struct {
	MonitoringID   uuid.UUID              `json:"monitoring_id"`
	PropertyID     uuid.UUID              `json:"property_id"`
	AccessTime     time.Time              `json:"access_time"`
	AccessorName   string                 `json:"accessor_name"`
	AccessorType   string                 `json:"accessor_type"`
	ViolationTypes []models.ViolationType `json:"violation_types"`
	Severity       models.SeverityType    `json:"severity"`
	Details        string                 `json:"details"`
	AlertsSent     bool                   `json:"alerts_sent"`
}

type ViolationListResponse struct {
	Violations []*models.AccessMonitoring `json:"violations"`
	Count      int                        `json:"count"`
}
