package dto

import (
	"time"
)

// ListCallRecordsRequest represents the request to list call attempts
type ListCallRecordsRequest struct {
	CustomerID   uint    `json:"-"`
	CampaignUUID *string `json:"-"`
	Status       *string `json:"-"`
	UserResponse *string `json:"-"`
	Page         int     `json:"-"`
	PageSize     int     `json:"-"`
}

// CallRecordDTO represents one call attempt in responses
type CallRecordDTO struct {
	UUID           string     `json:"uuid"`
	CampaignUUID   *string    `json:"campaign_uuid,omitempty"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	Amount         float64    `json:"amount"`
	Status         string     `json:"status"`
	UserResponse   string     `json:"user_response"`
	CallSummary    *string    `json:"call_summary,omitempty"`
	CallDuration   *int       `json:"call_duration,omitempty"`
	ProviderCallID *string    `json:"provider_call_id,omitempty"`
	SMSSent        bool       `json:"sms_sent"`
	Timestamp      time.Time  `json:"timestamp"`
	ReconciledAt   *time.Time `json:"reconciled_at,omitempty"`
}

// CallStatusSummaryDTO aggregates call outcomes
type CallStatusSummaryDTO struct {
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

// ListCallRecordsResponse represents a page of call attempts with a summary
type ListCallRecordsResponse struct {
	Items   []CallRecordDTO      `json:"items"`
	Total   int64                `json:"total"`
	Summary CallStatusSummaryDTO `json:"summary"`
}
