package businessflow

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vasooli-labs/vasooli/models"
	"github.com/vasooli-labs/vasooli/utils"
)

// fakeCustomerRepo is an in-memory CustomerRepository for flow tests
type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers map[uint]*models.Customer
	nextID    uint
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[uint]*models.Customer), nextID: 1}
}

func (r *fakeCustomerRepo) ByID(ctx context.Context, id uint) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.customers[id], nil
}

func (r *fakeCustomerRepo) ByFilter(ctx context.Context, filter models.CustomerFilter, orderBy string, limit, offset int) ([]*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Customer
	for _, c := range r.customers {
		if filter.Email != nil && c.Email != *filter.Email {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCustomerRepo) Save(ctx context.Context, entity *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entity.ID == 0 {
		entity.ID = r.nextID
		r.nextID++
	}
	if entity.UUID == uuid.Nil {
		entity.UUID = uuid.New()
	}
	r.customers[entity.ID] = entity
	return nil
}

func (r *fakeCustomerRepo) SaveBatch(ctx context.Context, entities []*models.Customer) error {
	for _, e := range entities {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeCustomerRepo) Count(ctx context.Context, filter models.CustomerFilter) (int64, error) {
	list, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(list)), nil
}

func (r *fakeCustomerRepo) Exists(ctx context.Context, filter models.CustomerFilter) (bool, error) {
	count, _ := r.Count(ctx, filter)
	return count > 0, nil
}

func (r *fakeCustomerRepo) ByEmail(ctx context.Context, email string) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) ByUUID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.UUID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) UpdateLastLogin(ctx context.Context, customerID uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.customers[customerID]; ok {
		c.LastLoginAt = &at
	}
	return nil
}

// fakeCampaignRepo is an in-memory CampaignRepository for flow tests
type fakeCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[uint]*models.Campaign
	nextID    uint
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: make(map[uint]*models.Campaign), nextID: 1}
}

func (r *fakeCampaignRepo) ByID(ctx context.Context, id uint) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.campaigns[id], nil
}

func (r *fakeCampaignRepo) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Campaign
	for _, c := range r.campaigns {
		if filter.CustomerID != nil && c.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCampaignRepo) Save(ctx context.Context, entity *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entity.ID == 0 {
		entity.ID = r.nextID
		r.nextID++
	}
	if entity.UUID == uuid.Nil {
		entity.UUID = uuid.New()
	}
	r.campaigns[entity.ID] = entity
	return nil
}

func (r *fakeCampaignRepo) SaveBatch(ctx context.Context, entities []*models.Campaign) error {
	for _, e := range entities {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeCampaignRepo) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	list, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(list)), nil
}

func (r *fakeCampaignRepo) Exists(ctx context.Context, filter models.CampaignFilter) (bool, error) {
	count, _ := r.Count(ctx, filter)
	return count > 0, nil
}

func (r *fakeCampaignRepo) ByUUID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.campaigns {
		if c.UUID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCampaignRepo) UpdateStatus(ctx context.Context, campaignID uint, status models.CampaignStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.campaigns[campaignID]; ok {
		c.Status = status
		now := utils.UTCNow()
		switch status {
		case models.CampaignStatusActive:
			c.StartedAt = &now
		case models.CampaignStatusCompleted:
			c.CompletedAt = &now
		}
	}
	return nil
}

func (r *fakeCampaignRepo) ListByCustomer(ctx context.Context, customerID uint, limit, offset int) ([]*models.Campaign, error) {
	return r.ByFilter(ctx, models.CampaignFilter{CustomerID: &customerID}, "created_at DESC", limit, offset)
}

// fakeCallRecordRepo is an in-memory CallRecordRepository for flow tests
type fakeCallRecordRepo struct {
	mu      sync.Mutex
	records map[uint]*models.CallRecord
	nextID  uint

	markReconciledErr error
}

func newFakeCallRecordRepo() *fakeCallRecordRepo {
	return &fakeCallRecordRepo{records: make(map[uint]*models.CallRecord), nextID: 1}
}

func (r *fakeCallRecordRepo) ByID(ctx context.Context, id uint) (*models.CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[id], nil
}

func (r *fakeCallRecordRepo) ByFilter(ctx context.Context, filter models.CallRecordFilter, orderBy string, limit, offset int) ([]*models.CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.CallRecord
	for _, rec := range r.records {
		if filter.CustomerID != nil && rec.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.CampaignID != nil && (rec.CampaignID == nil || *rec.CampaignID != *filter.CampaignID) {
			continue
		}
		if filter.Status != nil && rec.Status != *filter.Status {
			continue
		}
		if filter.UserResponse != nil && rec.UserResponse != *filter.UserResponse {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *fakeCallRecordRepo) Save(ctx context.Context, entity *models.CallRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entity.ID == 0 {
		entity.ID = r.nextID
		r.nextID++
	}
	if entity.UUID == uuid.Nil {
		entity.UUID = uuid.New()
	}
	r.records[entity.ID] = entity
	return nil
}

func (r *fakeCallRecordRepo) SaveBatch(ctx context.Context, entities []*models.CallRecord) error {
	for _, e := range entities {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeCallRecordRepo) Count(ctx context.Context, filter models.CallRecordFilter) (int64, error) {
	list, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(list)), nil
}

func (r *fakeCallRecordRepo) Exists(ctx context.Context, filter models.CallRecordFilter) (bool, error) {
	count, _ := r.Count(ctx, filter)
	return count > 0, nil
}

func (r *fakeCallRecordRepo) ByUUID(ctx context.Context, id uuid.UUID) (*models.CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.UUID == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *fakeCallRecordRepo) ByProviderCallID(ctx context.Context, providerCallID string) (*models.CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ProviderCallID != nil && *rec.ProviderCallID == providerCallID {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *fakeCallRecordRepo) SetProviderCallID(ctx context.Context, recordID uint, providerCallID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[recordID]
	if !ok {
		return nil
	}
	rec.ProviderCallID = &providerCallID
	return nil
}

func (r *fakeCallRecordRepo) MarkReconciled(ctx context.Context, recordID uint, update models.CallReconcileUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markReconciledErr != nil {
		return false, r.markReconciledErr
	}
	rec, ok := r.records[recordID]
	if !ok || rec.ReconciledAt != nil {
		return false, nil
	}
	now := utils.UTCNow()
	rec.Status = update.Status
	rec.UserResponse = update.UserResponse
	rec.CallSummary = &update.CallSummary
	rec.CallDuration = update.CallDuration
	rec.EndedReason = update.EndedReason
	rec.ReconciledAt = &now
	return true, nil
}

func (r *fakeCallRecordRepo) MarkSMSSent(ctx context.Context, recordID uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[recordID]; ok {
		rec.SMSSent = true
		rec.SMSSentAt = &at
	}
	return nil
}

func (r *fakeCallRecordRepo) ListPendingUndialed(ctx context.Context, campaignID uint) ([]*models.CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.CallRecord
	for _, rec := range r.records {
		if rec.CampaignID == nil || *rec.CampaignID != campaignID {
			continue
		}
		if rec.Status != models.CallStatusPending || rec.ProviderCallID != nil {
			continue
		}
		out = append(out, rec)
	}
	// Submission order, like the real repository
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCallRecordRepo) CountPendingByCampaign(ctx context.Context, campaignID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, rec := range r.records {
		if rec.CampaignID != nil && *rec.CampaignID == campaignID && rec.Status == models.CallStatusPending {
			count++
		}
	}
	return count, nil
}

func (r *fakeCallRecordRepo) StatusSummary(ctx context.Context, customerID uint, campaignID *uint) (*models.CallStatusSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := &models.CallStatusSummary{}
	for _, rec := range r.records {
		if rec.CustomerID != customerID {
			continue
		}
		if campaignID != nil && (rec.CampaignID == nil || *rec.CampaignID != *campaignID) {
			continue
		}
		summary.Total++
		switch rec.Status {
		case models.CallStatusPending:
			summary.Pending++
		case models.CallStatusCompleted:
			summary.Completed++
		case models.CallStatusFailed:
			summary.Failed++
		case models.CallStatusNoAnswer:
			summary.NoAnswer++
		}
		switch rec.UserResponse {
		case models.UserResponseNow:
			summary.PayingNow++
		case models.UserResponseLater:
			summary.PayLater++
		case models.UserResponseRefused:
			summary.Refused++
		case models.UserResponseNoResponse:
			summary.NoResponse++
		}
		if rec.SMSSent {
			summary.SMSSent++
		}
	}
	return summary, nil
}

// fakeSourceFileRepo is an in-memory SourceFileRepository for flow tests
type fakeSourceFileRepo struct {
	mu     sync.Mutex
	files  map[uint]*models.SourceFile
	nextID uint
}

func newFakeSourceFileRepo() *fakeSourceFileRepo {
	return &fakeSourceFileRepo{files: make(map[uint]*models.SourceFile), nextID: 1}
}

func (r *fakeSourceFileRepo) ByID(ctx context.Context, id uint) (*models.SourceFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.files[id], nil
}

func (r *fakeSourceFileRepo) ByFilter(ctx context.Context, filter models.SourceFileFilter, orderBy string, limit, offset int) ([]*models.SourceFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SourceFile
	for _, f := range r.files {
		if filter.CustomerID != nil && f.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *fakeSourceFileRepo) Save(ctx context.Context, entity *models.SourceFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entity.ID == 0 {
		entity.ID = r.nextID
		r.nextID++
	}
	if entity.UUID == uuid.Nil {
		entity.UUID = uuid.New()
	}
	r.files[entity.ID] = entity
	return nil
}

func (r *fakeSourceFileRepo) SaveBatch(ctx context.Context, entities []*models.SourceFile) error {
	for _, e := range entities {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeSourceFileRepo) Count(ctx context.Context, filter models.SourceFileFilter) (int64, error) {
	list, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(list)), nil
}

func (r *fakeSourceFileRepo) Exists(ctx context.Context, filter models.SourceFileFilter) (bool, error) {
	count, _ := r.Count(ctx, filter)
	return count > 0, nil
}

func (r *fakeSourceFileRepo) ByUUID(ctx context.Context, id uuid.UUID) (*models.SourceFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.UUID == id {
			return f, nil
		}
	}
	return nil, nil
}

func (r *fakeSourceFileRepo) ListByCustomer(ctx context.Context, customerID uint, limit, offset int) ([]*models.SourceFile, error) {
	return r.ByFilter(ctx, models.SourceFileFilter{CustomerID: &customerID}, "created_at DESC", limit, offset)
}
