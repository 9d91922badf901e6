// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vasooli-labs/vasooli/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// ErrDuplicateProviderCallID is returned when a provider call id is already
// bound to another call record
var ErrDuplicateProviderCallID = errors.New("provider call id already assigned")

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CustomerRepository defines operations for platform accounts
type CustomerRepository interface {
	Repository[models.Customer, models.CustomerFilter]
	ByEmail(ctx context.Context, email string) (*models.Customer, error)
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Customer, error)
	UpdateLastLogin(ctx context.Context, customerID uint, at time.Time) error
}

// CampaignRepository defines operations for collection campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Campaign, error)
	UpdateStatus(ctx context.Context, campaignID uint, status models.CampaignStatus) error
	ListByCustomer(ctx context.Context, customerID uint, limit, offset int) ([]*models.Campaign, error)
}

// CallRecordRepository defines operations for call attempts
type CallRecordRepository interface {
	Repository[models.CallRecord, models.CallRecordFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.CallRecord, error)
	ByProviderCallID(ctx context.Context, providerCallID string) (*models.CallRecord, error)
	SetProviderCallID(ctx context.Context, recordID uint, providerCallID string) error
	MarkReconciled(ctx context.Context, recordID uint, update models.CallReconcileUpdate) (bool, error)
	MarkSMSSent(ctx context.Context, recordID uint, at time.Time) error
	ListPendingUndialed(ctx context.Context, campaignID uint) ([]*models.CallRecord, error)
	CountPendingByCampaign(ctx context.Context, campaignID uint) (int64, error)
	StatusSummary(ctx context.Context, customerID uint, campaignID *uint) (*models.CallStatusSummary, error)
}

// SourceFileRepository defines operations for uploaded debtor files
type SourceFileRepository interface {
	Repository[models.SourceFile, models.SourceFileFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.SourceFile, error)
	ListByCustomer(ctx context.Context, customerID uint, limit, offset int) ([]*models.SourceFile, error)
}
