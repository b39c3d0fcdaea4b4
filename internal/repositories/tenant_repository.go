package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/stayflow/access-service/internal/models"
)

type TenantRepository interface {
	Create(ctx context.Context, t *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

type tenantRepo struct {
	db DB
}

func NewTenantRepository(db DB) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, t *models.Tenant) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO tenants (
            id, first_name, last_name, phone_number, email, created_at
        ) VALUES ($1,$2,$3,$4,$5, NOW())
    `, t.ID, t.FirstName, t.LastName, t.PhoneNumber, t.Email)
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, first_name, last_name, phone_number, email, created_at
        FROM tenants WHERE id=$1
    `, id)

	var t models.Tenant
	err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &t.PhoneNumber, &t.Email, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
