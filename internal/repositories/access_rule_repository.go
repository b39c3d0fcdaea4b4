package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/stayflow/access-service/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type AccessRuleRepository interface {
	Create(ctx context.Context, r *models.AccessRule) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.AccessRule, error)
	ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.AccessRule, error)

	// ListActiveDueForRenewal returns ACTIVE rules whose next_renewal_date
	// is at or before the cutoff, in renewal-date order.
	ListActiveDueForRenewal(ctx context.Context, cutoff time.Time) ([]*models.AccessRule, error)

	Update(ctx context.Context, r *models.AccessRule) error
	UpdateIfVersion(ctx context.Context, r *models.AccessRule, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.AccessRule) error) error

	SetRenewalStatus(ctx context.Context, id uuid.UUID, status models.RenewalStatusType) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type accessRuleRepo struct {
	*BaseVersionedRepo[*models.AccessRule]
	db DB
}

func NewAccessRuleRepository(db DB) AccessRuleRepository {
	r := &accessRuleRepo{db: db}
	selectStmt := baseSelectAccessRule() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanAccessRule)
	return r
}

func (r *accessRuleRepo) Create(ctx context.Context, rule *models.AccessRule) error {
	weekdays, err := weekdayArray(rule.AllowedWeekdays)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
        INSERT INTO access_rules (
            id, property_id, family,
            provider_id, provider_type, tenant_id, tenant_type,
            time_restriction, custom_time_start, custom_time_end, allowed_weekdays,
            renewal_period_days, renewal_status, last_renewal_date, next_renewal_date,
            auto_generate_code, code_generation_rule, notes,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18, NOW(), NOW(), 1)
    `,
		rule.ID,
		rule.PropertyID,
		rule.Family,
		rule.ProviderID,
		rule.ProviderType,
		rule.TenantID,
		rule.TenantType,
		rule.TimeRestriction,
		rule.CustomTimeStart,
		rule.CustomTimeEnd,
		weekdays,
		rule.RenewalPeriodDays,
		rule.RenewalStatus,
		rule.LastRenewalDate,
		rule.NextRenewalDate,
		rule.AutoGenerateCode,
		rule.CodeGenerationRule,
		rule.Notes,
	)
	return err
}

func (r *accessRuleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AccessRule, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *accessRuleRepo) ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.AccessRule, error) {
	rows, err := r.db.Query(ctx, baseSelectAccessRule()+" WHERE property_id=$1 ORDER BY created_at", propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccessRules(rows)
}

func (r *accessRuleRepo) ListActiveDueForRenewal(ctx context.Context, cutoff time.Time) ([]*models.AccessRule, error) {
	rows, err := r.db.Query(ctx,
		baseSelectAccessRule()+` WHERE renewal_status=$1 AND next_renewal_date<=$2 ORDER BY next_renewal_date`,
		models.RenewalStatusActive, cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccessRules(rows)
}

func (r *accessRuleRepo) Update(ctx context.Context, rule *models.AccessRule) error {
	_, err := r.update(ctx, rule, false, 0)
	return err
}

func (r *accessRuleRepo) UpdateIfVersion(ctx context.Context, rule *models.AccessRule, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, rule, true, expected)
}

func (r *accessRuleRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.AccessRule) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *accessRuleRepo) update(ctx context.Context, rule *models.AccessRule, check bool, expected int64) (pgconn.CommandTag, error) {
	weekdays, err := weekdayArray(rule.AllowedWeekdays)
	if err != nil {
		return pgconn.CommandTag{}, err
	}

	sql := `
        UPDATE access_rules SET
            time_restriction=$1, custom_time_start=$2, custom_time_end=$3,
            allowed_weekdays=$4, renewal_period_days=$5, renewal_status=$6,
            last_renewal_date=$7, next_renewal_date=$8,
            auto_generate_code=$9, code_generation_rule=$10, notes=$11,
            updated_at=NOW()
    `
	args := []any{
		rule.TimeRestriction, rule.CustomTimeStart, rule.CustomTimeEnd,
		weekdays, rule.RenewalPeriodDays, rule.RenewalStatus,
		rule.LastRenewalDate, rule.NextRenewalDate,
		rule.AutoGenerateCode, rule.CodeGenerationRule, rule.Notes,
	}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$12 AND row_version=$13`
		args = append(args, rule.ID, expected)
	} else {
		sql += ` WHERE id=$12`
		args = append(args, rule.ID)
	}

	return r.db.Exec(ctx, sql, args...)
}

func (r *accessRuleRepo) SetRenewalStatus(ctx context.Context, id uuid.UUID, status models.RenewalStatusType) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE access_rules SET renewal_status=$1, updated_at=NOW(), row_version=row_version+1
        WHERE id=$2
    `, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

/* ------------------------------------------------------------------
   Row mapping
------------------------------------------------------------------ */

func baseSelectAccessRule() string {
	return `
        SELECT
            id, property_id, family,
            provider_id, provider_type, tenant_id, tenant_type,
            time_restriction, custom_time_start, custom_time_end, allowed_weekdays,
            renewal_period_days, renewal_status, last_renewal_date, next_renewal_date,
            auto_generate_code, code_generation_rule, notes,
            created_at, updated_at, row_version
        FROM access_rules
    `
}

func scanAccessRule(row pgx.Row) (*models.AccessRule, error) {
	var (
		rule     models.AccessRule
		weekdays pgtype.Int4Array
	)
	err := row.Scan(
		&rule.ID,
		&rule.PropertyID,
		&rule.Family,
		&rule.ProviderID,
		&rule.ProviderType,
		&rule.TenantID,
		&rule.TenantType,
		&rule.TimeRestriction,
		&rule.CustomTimeStart,
		&rule.CustomTimeEnd,
		&weekdays,
		&rule.RenewalPeriodDays,
		&rule.RenewalStatus,
		&rule.LastRenewalDate,
		&rule.NextRenewalDate,
		&rule.AutoGenerateCode,
		&rule.CodeGenerationRule,
		&rule.Notes,
		&rule.CreatedAt,
		&rule.UpdatedAt,
		&rule.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := weekdays.AssignTo(&rule.AllowedWeekdays); err != nil {
		return nil, err
	}
	return &rule, nil
}

func collectAccessRules(rows pgx.Rows) ([]*models.AccessRule, error) {
	var out []*models.AccessRule
	for rows.Next() {
		rule, err := scanAccessRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// weekdayArray encodes the domain's []int weekday set as a Postgres int[].
// Encoding happens only here, at the persistence edge.
func weekdayArray(days []int) (*pgtype.Int4Array, error) {
	arr := &pgtype.Int4Array{}
	if err := arr.Set(days); err != nil {
		return nil, err
	}
	return arr, nil
}
