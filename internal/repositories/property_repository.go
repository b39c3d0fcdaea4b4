package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/stayflow/access-service/internal/models"
)

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListAllProperties(ctx context.Context) ([]*models.Property, error)
}

type propertyRepo struct {
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	return &propertyRepo{db: db}
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO properties (
            id, manager_id, property_name, address, city, state, zip_code, time_zone,
            manager_phone, manager_email, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, NOW())
    `,
		p.ID,
		p.ManagerID,
		p.PropertyName,
		p.Address,
		p.City,
		p.State,
		p.ZipCode,
		p.TimeZone,
		p.ManagerPhone,
		p.ManagerEmail,
	)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	row := r.db.QueryRow(ctx, baseSelectProperty()+" WHERE id=$1", id)
	return scanProperty(row)
}

func (r *propertyRepo) ListAllProperties(ctx context.Context) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, baseSelectProperty()+" ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func baseSelectProperty() string {
	return `
        SELECT
            id, manager_id, property_name,
            address, city, state, zip_code, time_zone,
            manager_phone, manager_email, created_at
        FROM properties
    `
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.ManagerID,
		&p.PropertyName,
		&p.Address,
		&p.City,
		&p.State,
		&p.ZipCode,
		&p.TimeZone,
		&p.ManagerPhone,
		&p.ManagerEmail,
		&p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
