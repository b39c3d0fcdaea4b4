package locks

import (
	"context"
	"time"

	"github.com/stayflow/access-service/internal/models"
)

// ProvisionParams describes one code to install on one physical lock.
// Weekdays use the 1=Mon..7=Sun scale; TimeStart/TimeEnd are minutes
// since midnight and ignored by platforms without schedule support.
type ProvisionParams struct {
	Name      string
	Code      string
	StartDate time.Time
	EndDate   time.Time
	Weekdays  []int
	TimeStart int
	TimeEnd   int
}

// Gateway provisions access codes on vendor-hosted smart locks. One call
// per lock; implementations dispatch on the lock's platform.
type Gateway interface {
	CreateAccessCode(ctx context.Context, platform models.LockPlatformType, externalLockID string, params ProvisionParams) error
}
