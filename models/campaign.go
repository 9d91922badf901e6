package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vasooli-labs/vasooli/utils"
	"gorm.io/gorm"
)

// CampaignStatus represents the status of a collection campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// String returns the string representation of the status
func (s CampaignStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive,
		CampaignStatusPaused, CampaignStatusCompleted:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CampaignStatus
func (s *CampaignStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = CampaignStatus(v)
	case []byte:
		*s = CampaignStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignStatus
func (s CampaignStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid CampaignStatus: %s", s)
	}
	return string(s), nil
}

// AssistantConfig represents the JSON configuration for the voice assistant
// used when dialing debtors in a campaign
type AssistantConfig struct {
	ModelProvider *string `json:"model_provider,omitempty"`
	Model         *string `json:"model,omitempty"`
	VoiceProvider *string `json:"voice_provider,omitempty"`
	VoiceID       *string `json:"voice_id,omitempty"`
	SystemPrompt  *string `json:"system_prompt,omitempty"`
	FirstMessage  *string `json:"first_message,omitempty"`
}

// Value implements the driver.Valuer interface for AssistantConfig
func (c AssistantConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements the sql.Scanner interface for AssistantConfig
func (c *AssistantConfig) Scan(value any) error {
	if value == nil {
		*c = AssistantConfig{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into AssistantConfig", value)
	}

	return json.Unmarshal(bytes, c)
}

// Campaign represents a batch of debtors dialed together
type Campaign struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	CustomerID uint            `gorm:"not null;index:idx_campaigns_customer_id" json:"customer_id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Status     CampaignStatus  `gorm:"type:varchar(20);not null;default:'draft';index:idx_campaigns_status" json:"status"`
	Assistant  AssistantConfig `gorm:"type:jsonb;not null;default:'{}'" json:"assistant"`

	SourceFileID *uint `gorm:"index:idx_campaigns_source_file_id" json:"source_file_id,omitempty"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"index:idx_campaigns_updated_at" json:"updated_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Relations
	Customer    *Customer    `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
	SourceFile  *SourceFile  `gorm:"foreignKey:SourceFileID;references:ID" json:"source_file,omitempty"`
	CallRecords []CallRecord `gorm:"foreignKey:CampaignID" json:"call_records,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CampaignStatusDraft
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// IsEditable checks if the campaign can be edited
func (c *Campaign) IsEditable() bool {
	return c.Status == CampaignStatusDraft || c.Status == CampaignStatusPaused
}

// IsStartable checks if the campaign can begin dialing
func (c *Campaign) IsStartable() bool {
	return c.Status == CampaignStatusDraft || c.Status == CampaignStatusPaused
}

// CanTransitionTo checks if the campaign can transition to the given status
func (c *Campaign) CanTransitionTo(newStatus CampaignStatus) bool {
	switch c.Status {
	case CampaignStatusDraft:
		return newStatus == CampaignStatusActive
	case CampaignStatusActive:
		return newStatus == CampaignStatusPaused ||
			newStatus == CampaignStatusCompleted
	case CampaignStatusPaused:
		return newStatus == CampaignStatusActive ||
			newStatus == CampaignStatusCompleted
	default:
		return false
	}
}

// GetStatusDisplayName returns a human-readable status name
func (c *Campaign) GetStatusDisplayName() string {
	switch c.Status {
	case CampaignStatusDraft:
		return "Draft"
	case CampaignStatusActive:
		return "Active"
	case CampaignStatusPaused:
		return "Paused"
	case CampaignStatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID            *uint           `json:"id,omitempty"`
	UUID          *uuid.UUID      `json:"uuid,omitempty"`
	CustomerID    *uint           `json:"customer_id,omitempty"`
	Status        *CampaignStatus `json:"status,omitempty"`
	Name          *string         `json:"name,omitempty"`
	CreatedAfter  *time.Time      `json:"created_after,omitempty"`
	CreatedBefore *time.Time      `json:"created_before,omitempty"`
}
