// Package testing provides shared fixtures for exercising collection workflows in tests
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/vasooli-labs/vasooli/models"
	"github.com/vasooli-labs/vasooli/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password used by customer fixtures
const TestPassword = "TestPass123!"

// NewTestCustomer builds an active customer with a hashed password
func NewTestCustomer(id uint) *models.Customer {
	hashed, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("failed to hash fixture password: %v", err))
	}

	return &models.Customer{
		ID:           id,
		UUID:         uuid.New(),
		Name:         fmt.Sprintf("Collector %d", id),
		Email:        fmt.Sprintf("collector.%d.%04d@example.com", id, rand.Intn(10000)),
		PasswordHash: string(hashed),
		OrgName:      utils.ToPtr("Acme Recoveries"),
		UPIID:        utils.ToPtr("acme@upi"),
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
	}
}

// NewTestCampaign builds a draft campaign owned by the given customer
func NewTestCampaign(id, customerID uint) *models.Campaign {
	return &models.Campaign{
		ID:         id,
		UUID:       uuid.New(),
		CustomerID: customerID,
		Name:       fmt.Sprintf("Recovery drive %d", id),
		Status:     models.CampaignStatusDraft,
		CreatedAt:  utils.UTCNow(),
	}
}

// NewTestCallRecord builds a pending call record attached to a campaign
func NewTestCallRecord(id, customerID uint, campaignID *uint) *models.CallRecord {
	return &models.CallRecord{
		ID:           id,
		UUID:         uuid.New(),
		CustomerID:   customerID,
		CampaignID:   campaignID,
		Name:         fmt.Sprintf("Debtor %d", id),
		Phone:        fmt.Sprintf("+9198765%05d", id),
		Amount:       2500,
		Status:       models.CallStatusPending,
		UserResponse: models.UserResponseNoResponse,
		Timestamp:    utils.UTCNow(),
		CreatedAt:    utils.UTCNow(),
	}
}

// NewDialedTestCallRecord builds a call record already accepted by the provider
func NewDialedTestCallRecord(id, customerID uint, campaignID *uint, providerCallID string) *models.CallRecord {
	record := NewTestCallRecord(id, customerID, campaignID)
	record.ProviderCallID = &providerCallID
	return record
}
