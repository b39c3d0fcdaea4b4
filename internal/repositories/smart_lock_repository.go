package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/stayflow/access-service/internal/models"
)

type SmartLockRepository interface {
	Create(ctx context.Context, l *models.SmartLock) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SmartLock, error)
	ListActiveByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.SmartLock, error)
}

type smartLockRepo struct {
	db DB
}

func NewSmartLockRepository(db DB) SmartLockRepository {
	return &smartLockRepo{db: db}
}

func (r *smartLockRepo) Create(ctx context.Context, l *models.SmartLock) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO smart_locks (
            id, property_id, platform, external_lock_id, name, is_active, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6, NOW())
    `, l.ID, l.PropertyID, l.Platform, l.ExternalLockID, l.Name, l.IsActive)
	return err
}

func (r *smartLockRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SmartLock, error) {
	row := r.db.QueryRow(ctx, baseSelectSmartLock()+" WHERE id=$1", id)
	return scanSmartLock(row)
}

func (r *smartLockRepo) ListActiveByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.SmartLock, error) {
	rows, err := r.db.Query(ctx, baseSelectSmartLock()+" WHERE property_id=$1 AND is_active=TRUE ORDER BY created_at", propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.SmartLock
	for rows.Next() {
		l, err := scanSmartLock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func baseSelectSmartLock() string {
	return `
        SELECT id, property_id, platform, external_lock_id, name, is_active, created_at
        FROM smart_locks
    `
}

func scanSmartLock(row pgx.Row) (*models.SmartLock, error) {
	var l models.SmartLock
	err := row.Scan(
		&l.ID,
		&l.PropertyID,
		&l.Platform,
		&l.ExternalLockID,
		&l.Name,
		&l.IsActive,
		&l.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}
