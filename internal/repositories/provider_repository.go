package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/stayflow/access-service/internal/models"
)

type ProviderRepository interface {
	Create(ctx context.Context, p *models.Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error)
}

type providerRepo struct {
	db DB
}

func NewProviderRepository(db DB) ProviderRepository {
	return &providerRepo{db: db}
}

func (r *providerRepo) Create(ctx context.Context, p *models.Provider) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO providers (
            id, company_name, contact_name, phone_number, email, created_at
        ) VALUES ($1,$2,$3,$4,$5, NOW())
    `, p.ID, p.CompanyName, p.ContactName, p.PhoneNumber, p.Email)
	return err
}

func (r *providerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, company_name, contact_name, phone_number, email, created_at
        FROM providers WHERE id=$1
    `, id)

	var p models.Provider
	err := row.Scan(&p.ID, &p.CompanyName, &p.ContactName, &p.PhoneNumber, &p.Email, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
