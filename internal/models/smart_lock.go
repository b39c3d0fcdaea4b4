package models

import (
	"time"

	"github.com/google/uuid"
)

// LockPlatformType enumerates the lock-vendor platforms a smart lock can
// belong to. The gateway client dispatches on this value.
type LockPlatformType string

const (
	LockPlatformTTLock   LockPlatformType = "TTLOCK"
	LockPlatformNuki     LockPlatformType = "NUKI"
	LockPlatformYale     LockPlatformType = "YALE"
	LockPlatformAugust   LockPlatformType = "AUGUST"
	LockPlatformUplisting LockPlatformType = "UPLISTING"
)

// SmartLock is one physical lock installed at a property. ExternalLockID
// is the vendor-side identifier used when provisioning codes.
type SmartLock struct {
	ID             uuid.UUID        `json:"id"`
	PropertyID     uuid.UUID        `json:"property_id"`
	Platform       LockPlatformType `json:"platform"`
	ExternalLockID string           `json:"external_lock_id"`
	Name           string           `json:"name"`
	IsActive       bool             `json:"is_active"`
	CreatedAt      time.Time        `json:"created_at"`
}
