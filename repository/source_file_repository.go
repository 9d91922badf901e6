// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vasooli-labs/vasooli/models"
	"gorm.io/gorm"
)

// SourceFileRepositoryImpl implements SourceFileRepository interface
type SourceFileRepositoryImpl struct {
	*BaseRepository[models.SourceFile, models.SourceFileFilter]
}

// NewSourceFileRepository creates a new source file repository
func NewSourceFileRepository(db *gorm.DB) SourceFileRepository {
	return &SourceFileRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SourceFile, models.SourceFileFilter](db),
	}
}

func (r *SourceFileRepositoryImpl) applyFilter(db *gorm.DB, filter models.SourceFileFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.FileName != nil {
		db = db.Where("file_name = ?", *filter.FileName)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter retrieves source files based on filter criteria
func (r *SourceFileRepositoryImpl) ByFilter(ctx context.Context, filter models.SourceFileFilter, orderBy string, limit, offset int) ([]*models.SourceFile, error) {
	db := r.getDB(ctx)

	query := r.applyFilter(db.Model(&models.SourceFile{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var files []*models.SourceFile
	if err := query.Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to find source files by filter: %w", err)
	}

	return files, nil
}

// Count returns the number of source files matching the filter
func (r *SourceFileRepositoryImpl) Count(ctx context.Context, filter models.SourceFileFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	if err := r.applyFilter(db.Model(&models.SourceFile{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count source files: %w", err)
	}

	return count, nil
}

// Exists checks if any source file matching the filter exists
func (r *SourceFileRepositoryImpl) Exists(ctx context.Context, filter models.SourceFileFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ByUUID retrieves a source file by UUID
func (r *SourceFileRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.SourceFile, error) {
	files, err := r.ByFilter(ctx, models.SourceFileFilter{UUID: &id}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find source file by uuid: %w", err)
	}

	if len(files) == 0 {
		return nil, nil
	}

	return files[0], nil
}

// ListByCustomer retrieves uploaded files owned by a customer, newest first
func (r *SourceFileRepositoryImpl) ListByCustomer(ctx context.Context, customerID uint, limit, offset int) ([]*models.SourceFile, error) {
	files, err := r.ByFilter(ctx, models.SourceFileFilter{CustomerID: &customerID}, "created_at DESC", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list source files by customer: %w", err)
	}

	return files, nil
}
