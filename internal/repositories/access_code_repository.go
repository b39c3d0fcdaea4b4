package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/stayflow/access-service/internal/models"
)

// AccessCodeRepository has no update methods on purpose: codes are
// superseded by new rows on renewal, never mutated.
type AccessCodeRepository interface {
	Create(ctx context.Context, c *models.AccessCode) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AccessCode, error)
	ListByRuleID(ctx context.Context, ruleID uuid.UUID) ([]*models.AccessCode, error)
}

type accessCodeRepo struct {
	db DB
}

func NewAccessCodeRepository(db DB) AccessCodeRepository {
	return &accessCodeRepo{db: db}
}

func (r *accessCodeRepo) Create(ctx context.Context, c *models.AccessCode) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO access_codes (
            id, smart_lock_id, property_id, rule_id,
            code, code_type, grantee_type, issued_by,
            start_date, end_date, purpose, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, NOW())
    `,
		c.ID,
		c.SmartLockID,
		c.PropertyID,
		c.RuleID,
		c.Code,
		c.CodeType,
		c.GranteeType,
		c.IssuedBy,
		c.StartDate,
		c.EndDate,
		c.Purpose,
	)
	return err
}

func (r *accessCodeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AccessCode, error) {
	row := r.db.QueryRow(ctx, baseSelectAccessCode()+" WHERE id=$1", id)
	return scanAccessCode(row)
}

func (r *accessCodeRepo) ListByRuleID(ctx context.Context, ruleID uuid.UUID) ([]*models.AccessCode, error) {
	rows, err := r.db.Query(ctx, baseSelectAccessCode()+" WHERE rule_id=$1 ORDER BY created_at", ruleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AccessCode
	for rows.Next() {
		c, err := scanAccessCode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func baseSelectAccessCode() string {
	return `
        SELECT
            id, smart_lock_id, property_id, rule_id,
            code, code_type, grantee_type, issued_by,
            start_date, end_date, purpose, created_at
        FROM access_codes
    `
}

func scanAccessCode(row pgx.Row) (*models.AccessCode, error) {
	var c models.AccessCode
	err := row.Scan(
		&c.ID,
		&c.SmartLockID,
		&c.PropertyID,
		&c.RuleID,
		&c.Code,
		&c.CodeType,
		&c.GranteeType,
		&c.IssuedBy,
		&c.StartDate,
		&c.EndDate,
		&c.Purpose,
		&c.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
