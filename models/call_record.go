package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vasooli-labs/vasooli/utils"
	"gorm.io/gorm"
)

// CallStatus represents the lifecycle state of an outbound call attempt
type CallStatus string

const (
	CallStatusPending   CallStatus = "pending"
	CallStatusCompleted CallStatus = "completed"
	CallStatusFailed    CallStatus = "failed"
	CallStatusNoAnswer  CallStatus = "no_answer"
)

// String returns the string representation of the status
func (s CallStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s CallStatus) Valid() bool {
	switch s {
	case CallStatusPending, CallStatusCompleted,
		CallStatusFailed, CallStatusNoAnswer:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CallStatus
func (s *CallStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = CallStatus(v)
	case []byte:
		*s = CallStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CallStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CallStatus
func (s CallStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid CallStatus: %s", s)
	}
	return string(s), nil
}

// CallStatusFromProvider maps a provider ended-call status onto our
// lifecycle states. The provider's casing is not trusted.
func CallStatusFromProvider(status string) CallStatus {
	switch strings.ToLower(status) {
	case "completed":
		return CallStatusCompleted
	case "failed", "error":
		return CallStatusFailed
	case "busy", "no-answer":
		return CallStatusNoAnswer
	default:
		return CallStatusPending
	}
}

// UserResponse represents the debtor's classified payment intent
type UserResponse string

const (
	UserResponseNow        UserResponse = "now"
	UserResponseLater      UserResponse = "later"
	UserResponseRefused    UserResponse = "refused"
	UserResponseNoResponse UserResponse = "no_response"
)

// String returns the string representation of the response
func (r UserResponse) String() string {
	return string(r)
}

// Valid checks if the response is valid
func (r UserResponse) Valid() bool {
	switch r {
	case UserResponseNow, UserResponseLater,
		UserResponseRefused, UserResponseNoResponse:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for UserResponse
func (r *UserResponse) Scan(value any) error {
	if value == nil {
		*r = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*r = UserResponse(v)
	case []byte:
		*r = UserResponse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into UserResponse", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for UserResponse
func (r UserResponse) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid UserResponse: %s", r)
	}
	return string(r), nil
}

// CallRecord represents a single outbound call attempt to a debtor.
// Rows are created when a campaign is dialed and reconciled once the
// provider reports the call ended.
type CallRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_call_records_uuid" json:"uuid"`
	CustomerID uint      `gorm:"not null;index:idx_call_records_customer_id" json:"customer_id"`
	CampaignID *uint     `gorm:"index:idx_call_records_campaign_id" json:"campaign_id,omitempty"`

	// Debtor details as submitted
	Name   string  `gorm:"size:255;not null" json:"name"`
	Phone  string  `gorm:"size:20;not null;index:idx_call_records_phone" json:"phone"`
	Amount float64 `gorm:"not null" json:"amount"`

	// Provider linkage. Unique so a provider call maps to exactly one attempt.
	ProviderCallID *string `gorm:"size:255;uniqueIndex:uk_call_records_provider_call_id" json:"provider_call_id,omitempty"`

	// Outcome, populated by webhook reconciliation
	Status       CallStatus   `gorm:"type:varchar(20);not null;default:'pending';index:idx_call_records_status" json:"status"`
	UserResponse UserResponse `gorm:"type:varchar(20);not null;default:'no_response'" json:"user_response"`
	CallSummary  *string      `gorm:"type:text" json:"call_summary,omitempty"`
	CallDuration *int         `json:"call_duration,omitempty"` // seconds
	EndedReason  *string      `gorm:"size:255" json:"ended_reason,omitempty"`
	ReconciledAt *time.Time   `json:"reconciled_at,omitempty"`

	// Payment prompt tracking
	SMSSent   bool       `gorm:"not null;default:false" json:"sms_sent"`
	SMSSentAt *time.Time `json:"sms_sent_at,omitempty"`

	Timestamp time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_call_records_timestamp" json:"timestamp"`
	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_call_records_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	Customer *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
	Campaign *Campaign `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
}

// TableName returns the table name for the model
func (CallRecord) TableName() string {
	return "call_records"
}

// BeforeCreate is called before creating a new record
func (c *CallRecord) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CallStatusPending
	}
	if c.UserResponse == "" {
		c.UserResponse = UserResponseNoResponse
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = utils.UTCNow()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *CallRecord) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// IsReconciled reports whether a call-end event has already been applied
func (c *CallRecord) IsReconciled() bool {
	return c.ReconciledAt != nil
}

// IsDialed reports whether the attempt was accepted by the provider
func (c *CallRecord) IsDialed() bool {
	return c.ProviderCallID != nil && *c.ProviderCallID != ""
}

// CallRecordFilter represents filter criteria for call record queries
type CallRecordFilter struct {
	ID             *uint         `json:"id,omitempty"`
	UUID           *uuid.UUID    `json:"uuid,omitempty"`
	CustomerID     *uint         `json:"customer_id,omitempty"`
	CampaignID     *uint         `json:"campaign_id,omitempty"`
	Phone          *string       `json:"phone,omitempty"`
	Status         *CallStatus   `json:"status,omitempty"`
	UserResponse   *UserResponse `json:"user_response,omitempty"`
	ProviderCallID *string       `json:"provider_call_id,omitempty"`
	SMSSent        *bool         `json:"sms_sent,omitempty"`
	CreatedAfter   *time.Time    `json:"created_after,omitempty"`
	CreatedBefore  *time.Time    `json:"created_before,omitempty"`
}

// CallReconcileUpdate carries the fields applied to a call record when the
// provider reports the call ended
type CallReconcileUpdate struct {
	Status       CallStatus
	UserResponse UserResponse
	CallSummary  string
	CallDuration *int
	EndedReason  *string
}

// CallStatusSummary aggregates call outcomes for reporting
type CallStatusSummary struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	NoAnswer   int64 `json:"no_answer"`
	PayingNow  int64 `json:"paying_now"`
	PayLater   int64 `json:"pay_later"`
	Refused    int64 `json:"refused"`
	NoResponse int64 `json:"no_response"`
	SMSSent    int64 `json:"sms_sent"`
}
