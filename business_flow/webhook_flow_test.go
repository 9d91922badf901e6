package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasooli-labs/vasooli/app/dto"
	"github.com/vasooli-labs/vasooli/app/services"
	"github.com/vasooli-labs/vasooli/config"
	"github.com/vasooli-labs/vasooli/models"
	apptesting "github.com/vasooli-labs/vasooli/testing"
)

type webhookFlowFixture struct {
	flow       WebhookFlow
	customers  *fakeCustomerRepo
	campaigns  *fakeCampaignRepo
	records    *fakeCallRecordRepo
	smsService *services.MockSMSService
	org        config.OrgConfig
}

func newWebhookFlowFixture(t *testing.T) *webhookFlowFixture {
	t.Helper()

	f := &webhookFlowFixture{
		customers:  newFakeCustomerRepo(),
		campaigns:  newFakeCampaignRepo(),
		records:    newFakeCallRecordRepo(),
		smsService: services.NewMockSMSService(),
		org:        config.OrgConfig{Name: "Vasooli Collections", UPIID: "vasooli@upi", DefaultCountry: "+91"},
	}
	f.rebuildFlow()
	return f
}

func (f *webhookFlowFixture) rebuildFlow() {
	f.flow = NewWebhookFlow(
		f.records,
		f.campaigns,
		f.customers,
		f.smsService,
		f.org,
		nil,
	)
}

func (f *webhookFlowFixture) seedDialedRecord(t *testing.T, providerCallID string) (*models.Customer, *models.Campaign, *models.CallRecord) {
	t.Helper()

	customer := apptesting.NewTestCustomer(1)
	require.NoError(t, f.customers.Save(context.Background(), customer))

	campaign := apptesting.NewTestCampaign(0, customer.ID)
	campaign.Status = models.CampaignStatusActive
	require.NoError(t, f.campaigns.Save(context.Background(), campaign))

	record := apptesting.NewDialedTestCallRecord(0, customer.ID, &campaign.ID, providerCallID)
	require.NoError(t, f.records.Save(context.Background(), record))

	return customer, campaign, record
}

func callEndEvent(callID, status, summary string) *dto.VapiWebhookRequest {
	return &dto.VapiWebhookRequest{
		Type: "call-end",
		Call: &dto.VapiWebhookCall{
			ID:      callID,
			Status:  status,
			Summary: summary,
		},
	}
}

func TestHandleCallEventIgnoresOtherEventTypes(t *testing.T) {
	f := newWebhookFlowFixture(t)

	resp, err := f.flow.HandleCallEvent(context.Background(), &dto.VapiWebhookRequest{Type: "status-update"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.False(t, resp.Updated)
}

func TestHandleCallEventUnknownCall(t *testing.T) {
	f := newWebhookFlowFixture(t)

	_, err := f.flow.HandleCallEvent(context.Background(), callEndEvent("missing-call", "completed", "paid"))
	assert.True(t, IsCallRecordNotFound(err))

	_, err = f.flow.HandleCallEvent(context.Background(), &dto.VapiWebhookRequest{Type: "call-end"})
	assert.True(t, IsCallRecordNotFound(err))
}

// The provider posts a flat event: type and timestamp at the top level with
// everything about the call nested under "call". A payload in exactly that
// shape must reconcile the record.
func TestHandleCallEventDocumentedPayload(t *testing.T) {
	f := newWebhookFlowFixture(t)
	_, _, record := f.seedDialedRecord(t, "call-wire")

	raw := `{
		"type": "call-end",
		"call": {
			"id": "call-wire",
			"status": "completed",
			"phoneNumberId": "phone-123",
			"customer": {"number": "+919876543210", "name": "Ramesh"},
			"summary": "Debtor agreed to pay now",
			"transcript": "Agent: hello. Debtor: yes I will pay now.",
			"duration": 61.5,
			"endedReason": "customer-ended-call",
			"metadata": {"customerName": "Ramesh", "amountOwed": 4500, "orgUpiId": "acme@upi"}
		},
		"timestamp": "2026-08-30T10:15:00Z"
	}`

	var req dto.VapiWebhookRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	require.NotNil(t, req.Call)
	assert.Equal(t, "call-wire", req.Call.ID)
	require.NotNil(t, req.Call.Metadata)
	assert.Equal(t, 4500.0, req.Call.Metadata.AmountOwed)

	resp, err := f.flow.HandleCallEvent(context.Background(), &req)
	require.NoError(t, err)
	assert.True(t, resp.Updated)
	assert.Equal(t, models.CallStatusCompleted.String(), resp.CallStatus)
	assert.Equal(t, models.UserResponseNow.String(), resp.UserResponse)

	stored, err := f.records.ByID(context.Background(), record.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CallSummary)
	assert.Equal(t, "Debtor agreed to pay now", *stored.CallSummary)
	require.NotNil(t, stored.CallDuration)
	assert.Equal(t, 61, *stored.CallDuration)
	require.NotNil(t, stored.EndedReason)
	assert.Equal(t, "customer-ended-call", *stored.EndedReason)
}

func TestHandleCallEventReconcilesRecord(t *testing.T) {
	f := newWebhookFlowFixture(t)
	_, _, record := f.seedDialedRecord(t, "call-abc")

	duration := 42.7
	req := callEndEvent("call-abc", "completed", "Debtor will pay next week")
	req.Call.Duration = &duration
	req.Call.EndedReason = "customer-ended-call"

	resp, err := f.flow.HandleCallEvent(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Updated)
	assert.Equal(t, models.CallStatusCompleted.String(), resp.CallStatus)
	assert.Equal(t, models.UserResponseLater.String(), resp.UserResponse)

	stored, err := f.records.ByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CallStatusCompleted, stored.Status)
	assert.Equal(t, models.UserResponseLater, stored.UserResponse)
	require.NotNil(t, stored.CallSummary)
	assert.Equal(t, "Debtor will pay next week", *stored.CallSummary)
	require.NotNil(t, stored.CallDuration)
	assert.Equal(t, 42, *stored.CallDuration)
	require.NotNil(t, stored.EndedReason)
	assert.Equal(t, "customer-ended-call", *stored.EndedReason)
	assert.NotNil(t, stored.ReconciledAt)

	// No payment prompt for a deferred payer
	assert.Empty(t, f.smsService.GetSentMessages())
}

func TestHandleCallEventProviderStatusMapping(t *testing.T) {
	tests := []struct {
		provider string
		expected models.CallStatus
	}{
		{"completed", models.CallStatusCompleted},
		{"Completed", models.CallStatusCompleted},
		{"failed", models.CallStatusFailed},
		{"FAILED", models.CallStatusFailed},
		{"error", models.CallStatusFailed},
		{"busy", models.CallStatusNoAnswer},
		{"no-answer", models.CallStatusNoAnswer},
		{"No-Answer", models.CallStatusNoAnswer},
		{"something-else", models.CallStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			f := newWebhookFlowFixture(t)
			_, _, record := f.seedDialedRecord(t, "call-"+tt.provider)

			resp, err := f.flow.HandleCallEvent(context.Background(), callEndEvent("call-"+tt.provider, tt.provider, "summary"))
			require.NoError(t, err)
			assert.Equal(t, tt.expected.String(), resp.CallStatus)

			stored, _ := f.records.ByID(context.Background(), record.ID)
			assert.Equal(t, tt.expected, stored.Status)
		})
	}
}

// Intent comes from the transcript when one was delivered; the summary is a
// description of the call, not what the debtor said.
func TestHandleCallEventTranscriptDrivesIntent(t *testing.T) {
	f := newWebhookFlowFixture(t)
	_, _, record := f.seedDialedRecord(t, "call-transcript")

	req := callEndEvent("call-transcript", "completed", "Customer asked the agent to call back later")
	req.Call.Transcript = "Debtor: I can pay right now, share the UPI id."

	resp, err := f.flow.HandleCallEvent(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.UserResponseNow.String(), resp.UserResponse)

	// The summary is still stored verbatim
	stored, _ := f.records.ByID(context.Background(), record.ID)
	require.NotNil(t, stored.CallSummary)
	assert.Equal(t, "Customer asked the agent to call back later", *stored.CallSummary)
}

func TestHandleCallEventSummaryClassifiedWithoutTranscript(t *testing.T) {
	f := newWebhookFlowFixture(t)
	f.seedDialedRecord(t, "call-summary-only")

	resp, err := f.flow.HandleCallEvent(context.Background(), callEndEvent("call-summary-only", "completed", "Debtor refused to pay"))
	require.NoError(t, err)
	assert.Equal(t, models.UserResponseRefused.String(), resp.UserResponse)
}

func TestHandleCallEventSendsPaymentPrompt(t *testing.T) {
	f := newWebhookFlowFixture(t)
	_, _, record := f.seedDialedRecord(t, "call-pay")

	resp, err := f.flow.HandleCallEvent(context.Background(), callEndEvent("call-pay", "completed", "Debtor agreed to pay now"))
	require.NoError(t, err)
	assert.Equal(t, models.UserResponseNow.String(), resp.UserResponse)

	sent := f.smsService.GetSentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, record.Phone, sent[0].Recipient)
	assert.Contains(t, sent[0].Message, "Thank you for agreeing to pay")
	assert.Contains(t, sent[0].Message, "acme@upi")

	stored, _ := f.records.ByID(context.Background(), record.ID)
	assert.True(t, stored.SMSSent)
	assert.NotNil(t, stored.SMSSentAt)
}

// A UPI id carried in the event metadata wins over the account's own
func TestHandleCallEventMetadataUPIPreferred(t *testing.T) {
	f := newWebhookFlowFixture(t)
	f.seedDialedRecord(t, "call-meta-upi")

	req := callEndEvent("call-meta-upi", "completed", "will pay now")
	req.Call.Metadata = &dto.VapiCallMetadata{OrgUpiID: "campaign@upi"}

	_, err := f.flow.HandleCallEvent(context.Background(), req)
	require.NoError(t, err)

	sent := f.smsService.GetSentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Message, "campaign@upi")
	assert.NotContains(t, sent[0].Message, "acme@upi")
}

// With no UPI id anywhere the prompt is skipped rather than sent with an
// empty payment destination.
func TestHandleCallEventSkipsPromptWithoutUPI(t *testing.T) {
	f := newWebhookFlowFixture(t)
	f.org.UPIID = ""
	f.rebuildFlow()

	customer, _, record := f.seedDialedRecord(t, "call-no-upi")
	customer.UPIID = nil
	require.NoError(t, f.customers.Save(context.Background(), customer))

	resp, err := f.flow.HandleCallEvent(context.Background(), callEndEvent("call-no-upi", "completed", "yes, paying right now"))
	require.NoError(t, err)
	assert.True(t, resp.Updated)
	assert.Equal(t, models.UserResponseNow.String(), resp.UserResponse)

	// The record is still reconciled, just without a text
	assert.Empty(t, f.smsService.GetSentMessages())
	stored, _ := f.records.ByID(context.Background(), record.ID)
	assert.False(t, stored.SMSSent)
	assert.NotNil(t, stored.ReconciledAt)
}

func TestHandleCallEventSMSFailureIsSwallowed(t *testing.T) {
	f := newWebhookFlowFixture(t)
	_, _, record := f.seedDialedRecord(t, "call-sms-fail")
	f.smsService.FailNext = true

	resp, err := f.flow.HandleCallEvent(context.Background(), callEndEvent("call-sms-fail", "completed", "yes, paying right now"))
	require.NoError(t, err)
	assert.True(t, resp.Updated)

	stored, _ := f.records.ByID(context.Background(), record.ID)
	assert.False(t, stored.SMSSent)
	assert.Equal(t, models.UserResponseNow, stored.UserResponse)
}

func TestHandleCallEventReplayIsAcknowledgedOnce(t *testing.T) {
	f := newWebhookFlowFixture(t)
	f.seedDialedRecord(t, "call-replay")

	first, err := f.flow.HandleCallEvent(context.Background(), callEndEvent("call-replay", "completed", "will pay now"))
	require.NoError(t, err)
	assert.True(t, first.Updated)

	second, err := f.flow.HandleCallEvent(context.Background(), callEndEvent("call-replay", "failed", "changed their mind"))
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.False(t, second.Updated)
	assert.Equal(t, models.CallStatusCompleted.String(), second.CallStatus)
	assert.Equal(t, models.UserResponseNow.String(), second.UserResponse)

	// A replay never sends another payment prompt
	assert.Len(t, f.smsService.GetSentMessages(), 1)
}

func TestHandleCallEventReconcileErrorSurfaces(t *testing.T) {
	f := newWebhookFlowFixture(t)
	f.seedDialedRecord(t, "call-db-err")
	f.records.markReconciledErr = errors.New("connection reset")

	_, err := f.flow.HandleCallEvent(context.Background(), callEndEvent("call-db-err", "completed", "ok"))
	require.Error(t, err)
	assert.False(t, IsCallRecordNotFound(err))
}

func TestHandleCallEventCompletesCampaign(t *testing.T) {
	f := newWebhookFlowFixture(t)
	_, campaign, _ := f.seedDialedRecord(t, "call-last")

	resp, err := f.flow.HandleCallEvent(context.Background(), callEndEvent("call-last", "completed", "paid"))
	require.NoError(t, err)
	assert.True(t, resp.Updated)

	stored, _ := f.campaigns.ByID(context.Background(), campaign.ID)
	assert.Equal(t, models.CampaignStatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedAt)
}

func TestHandleCallEventCampaignStaysActiveWithPendingRecords(t *testing.T) {
	f := newWebhookFlowFixture(t)
	customer, campaign, _ := f.seedDialedRecord(t, "call-one")

	other := apptesting.NewDialedTestCallRecord(0, customer.ID, &campaign.ID, "call-two")
	require.NoError(t, f.records.Save(context.Background(), other))

	_, err := f.flow.HandleCallEvent(context.Background(), callEndEvent("call-one", "completed", "paid"))
	require.NoError(t, err)

	stored, _ := f.campaigns.ByID(context.Background(), campaign.ID)
	assert.Equal(t, models.CampaignStatusActive, stored.Status)
}

func TestHandleCallEventSummaryFallbacks(t *testing.T) {
	f := newWebhookFlowFixture(t)
	_, _, record := f.seedDialedRecord(t, "call-fallback")

	// No summary anywhere, but the transcript still drives classification
	req := callEndEvent("call-fallback", "completed", "")
	req.Call.Transcript = "I will pay now, send the link"

	resp, err := f.flow.HandleCallEvent(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.UserResponseNow.String(), resp.UserResponse)

	stored, _ := f.records.ByID(context.Background(), record.ID)
	require.NotNil(t, stored.CallSummary)
	assert.Equal(t, "No summary available", *stored.CallSummary)
}
