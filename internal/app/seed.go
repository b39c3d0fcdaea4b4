package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/stayflow/access-service/internal/models"
	"github.com/stayflow/access-service/internal/repositories"
	"github.com/stayflow/access-service/internal/utils"
)

// Helper to check for unique violation error (PostgreSQL specific code)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Sentinel IDs so re-runs detect existing seed data.
var (
	seedPropertyID = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	seedLock1ID    = uuid.MustParse("44444444-4444-4444-4444-444444444441")
	seedLock2ID    = uuid.MustParse("44444444-4444-4444-4444-444444444442")
	seedProviderID = uuid.MustParse("55555555-5555-5555-5555-555555555555")
	seedTenantID   = uuid.MustParse("66666666-6666-6666-6666-666666666666")
)

// SeedTestData creates a dev property with two smart locks, one provider
// and one tenant, so the setup endpoints can be exercised locally.
func SeedTestData(
	ctx context.Context,
	propRepo repositories.PropertyRepository,
	lockRepo repositories.SmartLockRepository,
	providerRepo repositories.ProviderRepository,
	tenantRepo repositories.TenantRepository,
) error {
	if existing, err := propRepo.GetByID(ctx, seedPropertyID); err != nil {
		return fmt.Errorf("check existing seed property: %w", err)
	} else if existing != nil {
		utils.Logger.Info("access-service: seed data already present; skipping seeding")
		return nil
	}

	prop := &models.Property{
		ID:           seedPropertyID,
		ManagerID:    uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		PropertyName: "Seaside Villa",
		Address:      "12 Harbor Lane",
		City:         "Santa Cruz",
		State:        "CA",
		ZipCode:      "95060",
		TimeZone:     "America/Los_Angeles",
		ManagerPhone: utils.Ptr("+15550001111"),
		ManagerEmail: utils.Ptr("manager@stayflow.app"),
	}
	if err := propRepo.Create(ctx, prop); err != nil && !isUniqueViolation(err) {
		return fmt.Errorf("seed property: %w", err)
	}

	lockDefs := []*models.SmartLock{
		{
			ID:             seedLock1ID,
			PropertyID:     seedPropertyID,
			Platform:       models.LockPlatformTTLock,
			ExternalLockID: "ttl-front-0001",
			Name:           "Front Door",
			IsActive:       true,
		},
		{
			ID:             seedLock2ID,
			PropertyID:     seedPropertyID,
			Platform:       models.LockPlatformNuki,
			ExternalLockID: "nuki-side-0002",
			Name:           "Side Entrance",
			IsActive:       true,
		},
	}
	for _, l := range lockDefs {
		if err := lockRepo.Create(ctx, l); err != nil && !isUniqueViolation(err) {
			return fmt.Errorf("seed smart lock %s: %w", l.Name, err)
		}
	}

	provider := &models.Provider{
		ID:          seedProviderID,
		CompanyName: "Coastal Cleaning Co",
		ContactName: "Maria Lopez",
		PhoneNumber: "+15550002222",
		Email:       utils.Ptr("ops@coastalcleaning.example"),
	}
	if err := providerRepo.Create(ctx, provider); err != nil && !isUniqueViolation(err) {
		return fmt.Errorf("seed provider: %w", err)
	}

	tenant := &models.Tenant{
		ID:          seedTenantID,
		FirstName:   "Jordan",
		LastName:    "Reyes",
		PhoneNumber: "+15550093344",
		Email:       utils.Ptr("jordan.reyes@example.com"),
	}
	if err := tenantRepo.Create(ctx, tenant); err != nil && !isUniqueViolation(err) {
		return fmt.Errorf("seed tenant: %w", err)
	}

	utils.Logger.Info("access-service: seeded dev property, locks, provider and tenant")
	return nil
}
