package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/stayflow/access-service/internal/models"
)

// AccessMonitoringRepository is append-only: records are written once and
// only the alerts_sent flag may flip afterwards.
type AccessMonitoringRepository interface {
	Create(ctx context.Context, m *models.AccessMonitoring) error
	MarkAlertsSent(ctx context.Context, id uuid.UUID) error
	ListByPropertyID(ctx context.Context, propertyID uuid.UUID, violationsOnly bool, limit int) ([]*models.AccessMonitoring, error)
}

type accessMonitoringRepo struct {
	db DB
}

func NewAccessMonitoringRepository(db DB) AccessMonitoringRepository {
	return &accessMonitoringRepo{db: db}
}

func (r *accessMonitoringRepo) Create(ctx context.Context, m *models.AccessMonitoring) error {
	kinds := &pgtype.TextArray{}
	if err := kinds.Set(violationStrings(m.ViolationTypes)); err != nil {
		return err
	}

	_, err := r.db.Exec(ctx, `
        INSERT INTO access_monitoring (
            id, property_id, smart_lock_id, access_log_id, access_time,
            accessor_type, accessor_id, accessor_name, accessor_phone,
            was_authorized, rule_id, code_id, within_time_limit, expected_window,
            is_violation, violation_types, severity, alerts_sent, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18, NOW())
    `,
		m.ID,
		m.PropertyID,
		m.SmartLockID,
		m.AccessLogID,
		m.AccessTime,
		m.AccessorType,
		m.AccessorID,
		m.AccessorName,
		m.AccessorPhone,
		m.WasAuthorized,
		m.RuleID,
		m.CodeID,
		m.WithinTimeLimit,
		m.ExpectedWindow,
		m.IsViolation,
		kinds,
		m.Severity,
		m.AlertsSent,
	)
	return err
}

func (r *accessMonitoringRepo) MarkAlertsSent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE access_monitoring SET alerts_sent=TRUE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accessMonitoringRepo) ListByPropertyID(
	ctx context.Context,
	propertyID uuid.UUID,
	violationsOnly bool,
	limit int,
) ([]*models.AccessMonitoring, error) {
	sql := baseSelectAccessMonitoring() + " WHERE property_id=$1"
	if violationsOnly {
		sql += " AND is_violation=TRUE"
	}
	sql += " ORDER BY access_time DESC LIMIT $2"

	rows, err := r.db.Query(ctx, sql, propertyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AccessMonitoring
	for rows.Next() {
		m, err := scanAccessMonitoring(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func baseSelectAccessMonitoring() string {
	return `
        SELECT
            id, property_id, smart_lock_id, access_log_id, access_time,
            accessor_type, accessor_id, accessor_name, accessor_phone,
            was_authorized, rule_id, code_id, within_time_limit, expected_window,
            is_violation, violation_types, severity, alerts_sent, created_at
        FROM access_monitoring
    `
}

func scanAccessMonitoring(row pgx.Row) (*models.AccessMonitoring, error) {
	var (
		m     models.AccessMonitoring
		kinds pgtype.TextArray
	)
	err := row.Scan(
		&m.ID,
		&m.PropertyID,
		&m.SmartLockID,
		&m.AccessLogID,
		&m.AccessTime,
		&m.AccessorType,
		&m.AccessorID,
		&m.AccessorName,
		&m.AccessorPhone,
		&m.WasAuthorized,
		&m.RuleID,
		&m.CodeID,
		&m.WithinTimeLimit,
		&m.ExpectedWindow,
		&m.IsViolation,
		&kinds,
		&m.Severity,
		&m.AlertsSent,
		&m.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	var raw []string
	if err := kinds.AssignTo(&raw); err != nil {
		return nil, err
	}
	for _, k := range raw {
		m.ViolationTypes = append(m.ViolationTypes, models.ViolationType(k))
	}
	return &m, nil
}

func violationStrings(kinds []models.ViolationType) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
