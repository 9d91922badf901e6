package businessflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasooli-labs/vasooli/app/dto"
	"github.com/vasooli-labs/vasooli/app/services"
	"github.com/vasooli-labs/vasooli/config"
	apptesting "github.com/vasooli-labs/vasooli/testing"
)

func newPaymentFlowFixture(t *testing.T, orgUPIID string) (PaymentFlow, *fakeCustomerRepo, *services.MockSMSService) {
	t.Helper()

	customers := newFakeCustomerRepo()
	smsService := services.NewMockSMSService()
	flow := NewPaymentFlow(customers, smsService, config.OrgConfig{
		Name:           "Vasooli Collections",
		UPIID:          orgUPIID,
		DefaultCountry: "+91",
	})
	return flow, customers, smsService
}

func TestComposePaymentLink(t *testing.T) {
	flow, customers, _ := newPaymentFlowFixture(t, "vasooli@upi")

	customer := apptesting.NewTestCustomer(1)
	require.NoError(t, customers.Save(context.Background(), customer))

	resp, err := flow.ComposePaymentLink(context.Background(), &dto.PaymentLinkRequest{
		CustomerID: customer.ID,
		Name:       "Ravi",
		Phone:      "98765 43210",
		Amount:     1500.50,
	})
	require.NoError(t, err)

	// The account's own org name and UPI ID override the platform defaults
	assert.Equal(t, "+919876543210", resp.Phone)
	assert.Equal(t, "Hi Ravi! Please pay ₹1500.50 to Acme Recoveries. UPI ID: acme@upi. Thank you!", resp.Message)
	assert.Contains(t, resp.UPILink, "upi://pay?")
	assert.Contains(t, resp.UPILink, "pa=acme%40upi")
	assert.Contains(t, resp.UPILink, "am=1500.50")
	assert.Contains(t, resp.UPILink, "cu=INR")
	assert.False(t, resp.Sent)
}

func TestComposePaymentLinkFallsBackToOrgConfig(t *testing.T) {
	flow, customers, _ := newPaymentFlowFixture(t, "vasooli@upi")

	customer := apptesting.NewTestCustomer(1)
	customer.OrgName = nil
	customer.UPIID = nil
	require.NoError(t, customers.Save(context.Background(), customer))

	resp, err := flow.ComposePaymentLink(context.Background(), &dto.PaymentLinkRequest{
		CustomerID: customer.ID,
		Name:       "Ravi",
		Phone:      "9876543210",
		Amount:     200,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "Vasooli Collections")
	assert.Contains(t, resp.Message, "vasooli@upi")
}

func TestComposePaymentLinkWithoutUPIID(t *testing.T) {
	flow, customers, _ := newPaymentFlowFixture(t, "")

	customer := apptesting.NewTestCustomer(1)
	customer.UPIID = nil
	require.NoError(t, customers.Save(context.Background(), customer))

	_, err := flow.ComposePaymentLink(context.Background(), &dto.PaymentLinkRequest{
		CustomerID: customer.ID,
		Name:       "Ravi",
		Phone:      "9876543210",
		Amount:     200,
	})
	assert.True(t, IsUPIIDNotConfigured(err))
}

func TestComposePaymentLinkSendsSMS(t *testing.T) {
	flow, customers, smsService := newPaymentFlowFixture(t, "vasooli@upi")

	customer := apptesting.NewTestCustomer(1)
	require.NoError(t, customers.Save(context.Background(), customer))

	resp, err := flow.ComposePaymentLink(context.Background(), &dto.PaymentLinkRequest{
		CustomerID: customer.ID,
		Name:       "Ravi",
		Phone:      "9876543210",
		Amount:     300,
		Send:       true,
	})
	require.NoError(t, err)
	assert.True(t, resp.Sent)

	sent := smsService.GetSentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "+919876543210", sent[0].Recipient)
	assert.Equal(t, resp.Message, sent[0].Message)
}

func TestComposePaymentLinkSMSFailureDoesNotFail(t *testing.T) {
	flow, customers, smsService := newPaymentFlowFixture(t, "vasooli@upi")
	smsService.FailNext = true

	customer := apptesting.NewTestCustomer(1)
	require.NoError(t, customers.Save(context.Background(), customer))

	resp, err := flow.ComposePaymentLink(context.Background(), &dto.PaymentLinkRequest{
		CustomerID: customer.ID,
		Name:       "Ravi",
		Phone:      "9876543210",
		Amount:     300,
		Send:       true,
	})
	require.NoError(t, err)
	assert.False(t, resp.Sent)
	assert.NotEmpty(t, resp.Message)
}
