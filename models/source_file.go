package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/vasooli-labs/vasooli/utils"
	"gorm.io/gorm"
)

// SourceFile represents an uploaded debtor list stored in object storage
type SourceFile struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_source_files_uuid" json:"uuid"`
	CustomerID uint      `gorm:"not null;index:idx_source_files_customer_id" json:"customer_id"`

	FileName    string `gorm:"size:255;not null" json:"file_name"`
	ContentType string `gorm:"size:100;not null" json:"content_type"`
	SizeBytes   int64  `gorm:"not null" json:"size_bytes"`
	StorageKey  string `gorm:"size:512;not null" json:"storage_key"`
	URL         string `gorm:"size:1024;not null" json:"url"`

	// Parsed row counts recorded at upload time
	RowCount     int `gorm:"not null;default:0" json:"row_count"`
	InvalidCount int `gorm:"not null;default:0" json:"invalid_count"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_source_files_created_at" json:"created_at"`

	// Relations
	Customer *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
}

// TableName returns the table name for the model
func (SourceFile) TableName() string {
	return "source_files"
}

// BeforeCreate is called before creating a new record
func (f *SourceFile) BeforeCreate(tx *gorm.DB) error {
	if f.UUID == uuid.Nil {
		f.UUID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = utils.UTCNow()
	}
	return nil
}

// SourceFileFilter represents filter criteria for source file queries
type SourceFileFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	CustomerID    *uint      `json:"customer_id,omitempty"`
	FileName      *string    `json:"file_name,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
