// Package businessflow contains the business logic for the application.
package businessflow

import (
	"strings"
	"time"

	"github.com/vasooli-labs/vasooli/app/dto"
	"github.com/vasooli-labs/vasooli/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for logging and tracing
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// NormalizePhone brings a phone number into E.164-ish shape. Bare national
// numbers get the default country prefix; separators are stripped.
func NormalizePhone(phone, defaultCountry string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))

	if cleaned == "" {
		return cleaned
	}
	if strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	if strings.HasPrefix(cleaned, "00") {
		return "+" + cleaned[2:]
	}
	return defaultCountry + cleaned
}

// ToCustomerDTO converts a customer model for API responses
func ToCustomerDTO(customer models.Customer) dto.CustomerDTO {
	return dto.CustomerDTO{
		ID:        customer.ID,
		UUID:      customer.UUID.String(),
		Name:      customer.Name,
		Email:     customer.Email,
		OrgName:   customer.OrgName,
		UPIID:     customer.UPIID,
		IsActive:  customer.IsActive,
		CreatedAt: customer.CreatedAt.Format(time.RFC3339),
	}
}

// ToCampaignDTO converts a campaign model for API responses
func ToCampaignDTO(campaign models.Campaign, debtorCount int64) dto.CampaignDTO {
	d := dto.CampaignDTO{
		UUID:        campaign.UUID.String(),
		Name:        campaign.Name,
		Status:      campaign.Status.String(),
		DebtorCount: debtorCount,
		CreatedAt:   campaign.CreatedAt,
		UpdatedAt:   campaign.UpdatedAt,
		StartedAt:   campaign.StartedAt,
		CompletedAt: campaign.CompletedAt,
	}

	if campaign.Assistant != (models.AssistantConfig{}) {
		d.Assistant = &dto.AssistantConfigDTO{
			ModelProvider: campaign.Assistant.ModelProvider,
			Model:         campaign.Assistant.Model,
			VoiceProvider: campaign.Assistant.VoiceProvider,
			VoiceID:       campaign.Assistant.VoiceID,
			SystemPrompt:  campaign.Assistant.SystemPrompt,
			FirstMessage:  campaign.Assistant.FirstMessage,
		}
	}

	return d
}

// ToCallRecordDTO converts a call record model for API responses
func ToCallRecordDTO(record models.CallRecord, campaignUUID *string) dto.CallRecordDTO {
	return dto.CallRecordDTO{
		UUID:           record.UUID.String(),
		CampaignUUID:   campaignUUID,
		Name:           record.Name,
		Phone:          record.Phone,
		Amount:         record.Amount,
		Status:         record.Status.String(),
		UserResponse:   record.UserResponse.String(),
		CallSummary:    record.CallSummary,
		CallDuration:   record.CallDuration,
		ProviderCallID: record.ProviderCallID,
		SMSSent:        record.SMSSent,
		Timestamp:      record.Timestamp,
		ReconciledAt:   record.ReconciledAt,
	}
}

// ToSourceFileDTO converts a source file model for API responses
func ToSourceFileDTO(file models.SourceFile) dto.SourceFileDTO {
	return dto.SourceFileDTO{
		UUID:         file.UUID.String(),
		FileName:     file.FileName,
		ContentType:  file.ContentType,
		SizeBytes:    file.SizeBytes,
		URL:          file.URL,
		RowCount:     file.RowCount,
		InvalidCount: file.InvalidCount,
		CreatedAt:    file.CreatedAt,
	}
}

// ValidatePagination normalizes page/page-size inputs
func ValidatePagination(page, pageSize, defaultSize, maxSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if pageSize == 0 {
		pageSize = defaultSize
	}
	if pageSize < 1 || pageSize > maxSize {
		return 0, 0, ErrInvalidPageSize
	}
	return page, pageSize, nil
}
