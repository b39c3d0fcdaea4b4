package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/stayflow/access-service/internal/locks"
	"github.com/stayflow/access-service/internal/models"
	"github.com/stayflow/access-service/internal/utils"
)

/* ------------------------------------------------------------------
   In-memory repository fakes
------------------------------------------------------------------ */

type fakeRuleRepo struct {
	rules       map[uuid.UUID]*models.AccessRule
	errOnUpdate map[uuid.UUID]error
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{
		rules:       map[uuid.UUID]*models.AccessRule{},
		errOnUpdate: map[uuid.UUID]error{},
	}
}

func (f *fakeRuleRepo) Create(_ context.Context, r *models.AccessRule) error {
	cp := *r
	f.rules[r.ID] = &cp
	return nil
}

func (f *fakeRuleRepo) GetByID(_ context.Context, id uuid.UUID) (*models.AccessRule, error) {
	r, ok := f.rules[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRuleRepo) ListByPropertyID(_ context.Context, propertyID uuid.UUID) ([]*models.AccessRule, error) {
	var out []*models.AccessRule
	for _, r := range f.rules {
		if r.PropertyID == propertyID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) ListActiveDueForRenewal(_ context.Context, cutoff time.Time) ([]*models.AccessRule, error) {
	var out []*models.AccessRule
	for _, r := range f.rules {
		if r.RenewalStatus == models.RenewalStatusActive && !r.NextRenewalDate.After(cutoff) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextRenewalDate.Before(out[j].NextRenewalDate) })
	return out, nil
}

func (f *fakeRuleRepo) Update(_ context.Context, r *models.AccessRule) error {
	if err := f.errOnUpdate[r.ID]; err != nil {
		return err
	}
	cp := *r
	f.rules[r.ID] = &cp
	return nil
}

func (f *fakeRuleRepo) UpdateIfVersion(ctx context.Context, r *models.AccessRule, expected int64) (pgconn.CommandTag, error) {
	if err := f.errOnUpdate[r.ID]; err != nil {
		return nil, err
	}
	current, ok := f.rules[r.ID]
	if !ok || current.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	cp := *r
	cp.RowVersion = expected + 1
	f.rules[r.ID] = &cp
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (f *fakeRuleRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.AccessRule) error) error {
	if err := f.errOnUpdate[id]; err != nil {
		return err
	}
	r, ok := f.rules[id]
	if !ok {
		return utils.ErrRuleNotFound
	}
	if err := mutate(r); err != nil {
		return err
	}
	r.RowVersion++
	return nil
}

func (f *fakeRuleRepo) SetRenewalStatus(_ context.Context, id uuid.UUID, status models.RenewalStatusType) error {
	r, ok := f.rules[id]
	if !ok {
		return utils.ErrNoRowsUpdated
	}
	r.RenewalStatus = status
	return nil
}

type fakeCodeRepo struct {
	codes         map[uuid.UUID]*models.AccessCode
	created       []*models.AccessCode
	failForLockID map[uuid.UUID]error
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{
		codes:         map[uuid.UUID]*models.AccessCode{},
		failForLockID: map[uuid.UUID]error{},
	}
}

func (f *fakeCodeRepo) Create(_ context.Context, c *models.AccessCode) error {
	if err := f.failForLockID[c.SmartLockID]; err != nil {
		return err
	}
	cp := *c
	f.codes[c.ID] = &cp
	f.created = append(f.created, &cp)
	return nil
}

func (f *fakeCodeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.AccessCode, error) {
	c, ok := f.codes[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCodeRepo) ListByRuleID(_ context.Context, ruleID uuid.UUID) ([]*models.AccessCode, error) {
	var out []*models.AccessCode
	for _, c := range f.codes {
		if c.RuleID == ruleID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeLockRepo struct {
	locks map[uuid.UUID][]*models.SmartLock // keyed by propertyID
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{locks: map[uuid.UUID][]*models.SmartLock{}}
}

func (f *fakeLockRepo) Create(_ context.Context, l *models.SmartLock) error {
	f.locks[l.PropertyID] = append(f.locks[l.PropertyID], l)
	return nil
}

func (f *fakeLockRepo) GetByID(_ context.Context, id uuid.UUID) (*models.SmartLock, error) {
	for _, list := range f.locks {
		for _, l := range list {
			if l.ID == id {
				return l, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeLockRepo) ListActiveByPropertyID(_ context.Context, propertyID uuid.UUID) ([]*models.SmartLock, error) {
	var out []*models.SmartLock
	for _, l := range f.locks[propertyID] {
		if l.IsActive {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakePropertyRepo struct {
	props map[uuid.UUID]*models.Property
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{props: map[uuid.UUID]*models.Property{}}
}

func (f *fakePropertyRepo) Create(_ context.Context, p *models.Property) error {
	f.props[p.ID] = p
	return nil
}

func (f *fakePropertyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	return f.props[id], nil
}

func (f *fakePropertyRepo) ListAllProperties(_ context.Context) ([]*models.Property, error) {
	var out []*models.Property
	for _, p := range f.props {
		out = append(out, p)
	}
	return out, nil
}

type fakeProviderRepo struct {
	providers map[uuid.UUID]*models.Provider
}

func newFakeProviderRepo() *fakeProviderRepo {
	return &fakeProviderRepo{providers: map[uuid.UUID]*models.Provider{}}
}

func (f *fakeProviderRepo) Create(_ context.Context, p *models.Provider) error {
	f.providers[p.ID] = p
	return nil
}

func (f *fakeProviderRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Provider, error) {
	return f.providers[id], nil
}

type fakeTenantRepo struct {
	tenants map[uuid.UUID]*models.Tenant
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{tenants: map[uuid.UUID]*models.Tenant{}}
}

func (f *fakeTenantRepo) Create(_ context.Context, t *models.Tenant) error {
	f.tenants[t.ID] = t
	return nil
}

func (f *fakeTenantRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	return f.tenants[id], nil
}

type fakeLogRepo struct {
	entries map[uuid.UUID]*models.AccessLogEntry
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{entries: map[uuid.UUID]*models.AccessLogEntry{}}
}

func (f *fakeLogRepo) Create(_ context.Context, e *models.AccessLogEntry) error {
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeLogRepo) GetByID(_ context.Context, id uuid.UUID) (*models.AccessLogEntry, error) {
	return f.entries[id], nil
}

type fakeMonitoringRepo struct {
	records []*models.AccessMonitoring
}

func newFakeMonitoringRepo() *fakeMonitoringRepo {
	return &fakeMonitoringRepo{}
}

func (f *fakeMonitoringRepo) Create(_ context.Context, m *models.AccessMonitoring) error {
	cp := *m
	f.records = append(f.records, &cp)
	return nil
}

func (f *fakeMonitoringRepo) MarkAlertsSent(_ context.Context, id uuid.UUID) error {
	for _, m := range f.records {
		if m.ID == id {
			m.AlertsSent = true
			return nil
		}
	}
	return utils.ErrNoRowsUpdated
}

func (f *fakeMonitoringRepo) ListByPropertyID(
	_ context.Context,
	propertyID uuid.UUID,
	violationsOnly bool,
	limit int,
) ([]*models.AccessMonitoring, error) {
	var out []*models.AccessMonitoring
	for _, m := range f.records {
		if m.PropertyID != propertyID {
			continue
		}
		if violationsOnly && !m.IsViolation {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

/* ------------------------------------------------------------------
   Gateway fake
------------------------------------------------------------------ */

type gatewayCall struct {
	Platform       models.LockPlatformType
	ExternalLockID string
	Params         locks.ProvisionParams
}

type fakeGateway struct {
	calls   []gatewayCall
	failFor map[string]error // keyed by external lock ID
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failFor: map[string]error{}}
}

func (f *fakeGateway) CreateAccessCode(
	_ context.Context,
	platform models.LockPlatformType,
	externalLockID string,
	params locks.ProvisionParams,
) error {
	f.calls = append(f.calls, gatewayCall{Platform: platform, ExternalLockID: externalLockID, Params: params})
	if err := f.failFor[externalLockID]; err != nil {
		return err
	}
	return nil
}

/* ------------------------------------------------------------------
   Shared fixture helpers
------------------------------------------------------------------ */

func newTestLock(propertyID uuid.UUID, n int) *models.SmartLock {
	return &models.SmartLock{
		ID:             uuid.New(),
		PropertyID:     propertyID,
		Platform:       models.LockPlatformTTLock,
		ExternalLockID: fmt.Sprintf("ext-lock-%d", n),
		Name:           fmt.Sprintf("Lock %d", n),
		IsActive:       true,
	}
}
