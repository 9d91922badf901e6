// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vasooli-labs/vasooli/models"
	"github.com/vasooli-labs/vasooli/utils"
	"gorm.io/gorm"
)

// CallRecordRepositoryImpl implements CallRecordRepository interface
type CallRecordRepositoryImpl struct {
	*BaseRepository[models.CallRecord, models.CallRecordFilter]
}

// NewCallRecordRepository creates a new call record repository
func NewCallRecordRepository(db *gorm.DB) CallRecordRepository {
	return &CallRecordRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CallRecord, models.CallRecordFilter](db),
	}
}

func (r *CallRecordRepositoryImpl) applyFilter(db *gorm.DB, filter models.CallRecordFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.CampaignID != nil {
		db = db.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.Phone != nil {
		db = db.Where("phone = ?", *filter.Phone)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.UserResponse != nil {
		db = db.Where("user_response = ?", *filter.UserResponse)
	}
	if filter.ProviderCallID != nil {
		db = db.Where("provider_call_id = ?", *filter.ProviderCallID)
	}
	if filter.SMSSent != nil {
		db = db.Where("sms_sent = ?", *filter.SMSSent)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter retrieves call records based on filter criteria
func (r *CallRecordRepositoryImpl) ByFilter(ctx context.Context, filter models.CallRecordFilter, orderBy string, limit, offset int) ([]*models.CallRecord, error) {
	db := r.getDB(ctx)

	query := r.applyFilter(db.Model(&models.CallRecord{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var records []*models.CallRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find call records by filter: %w", err)
	}

	return records, nil
}

// Count returns the number of call records matching the filter
func (r *CallRecordRepositoryImpl) Count(ctx context.Context, filter models.CallRecordFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	if err := r.applyFilter(db.Model(&models.CallRecord{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count call records: %w", err)
	}

	return count, nil
}

// Exists checks if any call record matching the filter exists
func (r *CallRecordRepositoryImpl) Exists(ctx context.Context, filter models.CallRecordFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ByUUID retrieves a call record by UUID
func (r *CallRecordRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.CallRecord, error) {
	records, err := r.ByFilter(ctx, models.CallRecordFilter{UUID: &id}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find call record by uuid: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	return records[0], nil
}

// ByProviderCallID retrieves the call record bound to a provider call id
func (r *CallRecordRepositoryImpl) ByProviderCallID(ctx context.Context, providerCallID string) (*models.CallRecord, error) {
	records, err := r.ByFilter(ctx, models.CallRecordFilter{ProviderCallID: &providerCallID}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find call record by provider call id: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	return records[0], nil
}

// SetProviderCallID binds a provider call id to a call record. The column
// carries a unique index so a duplicate id surfaces as ErrDuplicateProviderCallID.
func (r *CallRecordRepositoryImpl) SetProviderCallID(ctx context.Context, recordID uint, providerCallID string) error {
	db := r.getDB(ctx)

	err := db.Model(&models.CallRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]any{
			"provider_call_id": providerCallID,
			"updated_at":       utils.UTCNow(),
		}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateProviderCallID
		}
		return fmt.Errorf("failed to set provider call id: %w", err)
	}

	return nil
}

// MarkReconciled applies a call-end outcome to a record exactly once.
// Returns false when the record was already reconciled by an earlier event.
func (r *CallRecordRepositoryImpl) MarkReconciled(ctx context.Context, recordID uint, update models.CallReconcileUpdate) (bool, error) {
	db := r.getDB(ctx)

	now := utils.UTCNow()
	result := db.Model(&models.CallRecord{}).
		Where("id = ? AND reconciled_at IS NULL", recordID).
		Updates(map[string]any{
			"status":        update.Status,
			"user_response": update.UserResponse,
			"call_summary":  update.CallSummary,
			"call_duration": update.CallDuration,
			"ended_reason":  update.EndedReason,
			"reconciled_at": now,
			"updated_at":    now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to reconcile call record: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// MarkSMSSent records that the payment prompt SMS went out for this call
func (r *CallRecordRepositoryImpl) MarkSMSSent(ctx context.Context, recordID uint, at time.Time) error {
	db := r.getDB(ctx)

	err := db.Model(&models.CallRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]any{
			"sms_sent":    true,
			"sms_sent_at": at,
			"updated_at":  utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark sms sent: %w", err)
	}

	return nil
}

// ListPendingUndialed retrieves campaign records the provider has not
// accepted yet, in submission order
func (r *CallRecordRepositoryImpl) ListPendingUndialed(ctx context.Context, campaignID uint) ([]*models.CallRecord, error) {
	db := r.getDB(ctx)

	var records []*models.CallRecord
	err := db.Where("campaign_id = ? AND status = ? AND provider_call_id IS NULL", campaignID, models.CallStatusPending).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending undialed records: %w", err)
	}

	return records, nil
}

// CountPendingByCampaign counts campaign records still awaiting an outcome
func (r *CallRecordRepositoryImpl) CountPendingByCampaign(ctx context.Context, campaignID uint) (int64, error) {
	pending := models.CallStatusPending
	return r.Count(ctx, models.CallRecordFilter{CampaignID: &campaignID, Status: &pending})
}

// StatusSummary aggregates call outcomes for a customer, optionally scoped
// to one campaign, in a single grouped query
func (r *CallRecordRepositoryImpl) StatusSummary(ctx context.Context, customerID uint, campaignID *uint) (*models.CallStatusSummary, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.CallRecord{}).Where("customer_id = ?", customerID)
	if campaignID != nil {
		query = query.Where("campaign_id = ?", *campaignID)
	}

	var summary models.CallStatusSummary
	err := query.Select(`
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'completed') AS completed,
		COUNT(*) FILTER (WHERE status = 'failed') AS failed,
		COUNT(*) FILTER (WHERE status = 'no_answer') AS no_answer,
		COUNT(*) FILTER (WHERE user_response = 'now') AS paying_now,
		COUNT(*) FILTER (WHERE user_response = 'later') AS pay_later,
		COUNT(*) FILTER (WHERE user_response = 'refused') AS refused,
		COUNT(*) FILTER (WHERE user_response = 'no_response') AS no_response,
		COUNT(*) FILTER (WHERE sms_sent) AS sms_sent
	`).Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate call status summary: %w", err)
	}

	return &summary, nil
}
