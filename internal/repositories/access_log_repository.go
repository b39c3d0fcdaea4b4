package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/stayflow/access-service/internal/models"
)

type AccessLogRepository interface {
	Create(ctx context.Context, e *models.AccessLogEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AccessLogEntry, error)
}

type accessLogRepo struct {
	db DB
}

func NewAccessLogRepository(db DB) AccessLogRepository {
	return &accessLogRepo{db: db}
}

func (r *accessLogRepo) Create(ctx context.Context, e *models.AccessLogEntry) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO access_logs (
            id, property_id, smart_lock_id, access_code_id, access_time, event_type, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6, NOW())
    `, e.ID, e.PropertyID, e.SmartLockID, e.AccessCodeID, e.AccessTime, e.EventType)
	return err
}

func (r *accessLogRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AccessLogEntry, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, property_id, smart_lock_id, access_code_id, access_time, event_type, created_at
        FROM access_logs WHERE id=$1
    `, id)

	var e models.AccessLogEntry
	err := row.Scan(
		&e.ID,
		&e.PropertyID,
		&e.SmartLockID,
		&e.AccessCodeID,
		&e.AccessTime,
		&e.EventType,
		&e.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
