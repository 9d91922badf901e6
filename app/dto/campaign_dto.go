package dto

import (
	"time"
)

// DebtorInput is one row of the debtor list attached to a campaign
type DebtorInput struct {
	Name   string  `json:"name" validate:"required,min=1,max=255"`
	Phone  string  `json:"phone" validate:"required,min=5,max=20"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// AssistantConfigDTO mirrors the campaign's voice assistant configuration
type AssistantConfigDTO struct {
	ModelProvider *string `json:"model_provider,omitempty"`
	Model         *string `json:"model,omitempty"`
	VoiceProvider *string `json:"voice_provider,omitempty"`
	VoiceID       *string `json:"voice_id,omitempty"`
	SystemPrompt  *string `json:"system_prompt,omitempty"`
	FirstMessage  *string `json:"first_message,omitempty"`
}

// CreateCampaignRequest represents the request to create a new campaign
type CreateCampaignRequest struct {
	CustomerID     uint                `json:"-"`
	Name           string              `json:"name" validate:"required,min=1,max=255"`
	Debtors        []DebtorInput       `json:"debtors" validate:"omitempty,dive"`
	SourceFileUUID *string             `json:"source_file_uuid,omitempty"`
	Assistant      *AssistantConfigDTO `json:"assistant,omitempty"`
	DialNow        bool                `json:"dial_now,omitempty"`
}

// RowError reports a per-row failure in a batch operation. Row is the
// 1-based position of the debtor in the submitted list.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// CreateCampaignResponse represents the response to create a new campaign.
// Submitted and Failed are only set when the campaign was dialed immediately.
type CreateCampaignResponse struct {
	UUID         string     `json:"uuid"`
	Status       string     `json:"status"`
	DebtorCount  int        `json:"debtor_count"`
	InvalidCount int        `json:"invalid_count"`
	Errors       []RowError `json:"errors"`
	Submitted    *int       `json:"submitted,omitempty"`
	Failed       *int       `json:"failed,omitempty"`
}

// GetCampaignRequest represents the request to fetch one campaign
type GetCampaignRequest struct {
	UUID       string `json:"-"`
	CustomerID uint   `json:"-"`
}

// CampaignDTO represents a campaign in responses
type CampaignDTO struct {
	UUID        string              `json:"uuid"`
	Name        string              `json:"name"`
	Status      string              `json:"status"`
	Assistant   *AssistantConfigDTO `json:"assistant,omitempty"`
	DebtorCount int64               `json:"debtor_count"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   *time.Time          `json:"updated_at,omitempty"`
	StartedAt   *time.Time          `json:"started_at,omitempty"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// ListCampaignsRequest represents the request to list campaigns
type ListCampaignsRequest struct {
	CustomerID uint `json:"-"`
	Page       int  `json:"-"`
	PageSize   int  `json:"-"`
}

// ListCampaignsResponse represents a page of campaigns
type ListCampaignsResponse struct {
	Items []CampaignDTO `json:"items"`
	Total int64         `json:"total"`
}

// StartCampaignRequest represents the request to begin dialing a campaign
type StartCampaignRequest struct {
	UUID       string `json:"-"`
	CustomerID uint   `json:"-"`
}

// StartCampaignResponse reports how the dialing run went. Errors are
// keyed by the row's position in this run's dial list.
type StartCampaignResponse struct {
	UUID      string     `json:"uuid"`
	Status    string     `json:"status"`
	Submitted int        `json:"submitted"`
	Failed    int        `json:"failed"`
	Errors    []RowError `json:"errors"`
}

// PauseCampaignRequest represents the request to pause a campaign
type PauseCampaignRequest struct {
	UUID       string `json:"-"`
	CustomerID uint   `json:"-"`
}

// PauseCampaignResponse confirms the pause
type PauseCampaignResponse struct {
	UUID   string `json:"uuid"`
	Status string `json:"status"`
}
