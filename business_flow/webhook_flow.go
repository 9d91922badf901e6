package businessflow

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/vasooli-labs/vasooli/app/dto"
	"github.com/vasooli-labs/vasooli/app/services"
	"github.com/vasooli-labs/vasooli/config"
	"github.com/vasooli-labs/vasooli/models"
	"github.com/vasooli-labs/vasooli/repository"
	"github.com/vasooli-labs/vasooli/utils"
)

const callEndEventType = "call-end"

const noSummaryFallback = "No summary available"

// WebhookFlow reconciles provider call events against call records
type WebhookFlow interface {
	HandleCallEvent(ctx context.Context, request *dto.VapiWebhookRequest) (*dto.WebhookAckResponse, error)
}

// WebhookFlowImpl implements the webhook business flow
type WebhookFlowImpl struct {
	callRecordRepo repository.CallRecordRepository
	campaignRepo   repository.CampaignRepository
	customerRepo   repository.CustomerRepository
	smsService     services.SMSService
	org            config.OrgConfig
	redisClient    *redis.Client // optional, nil disables the dedup marker
}

// NewWebhookFlow creates a new webhook flow instance
func NewWebhookFlow(
	callRecordRepo repository.CallRecordRepository,
	campaignRepo repository.CampaignRepository,
	customerRepo repository.CustomerRepository,
	smsService services.SMSService,
	org config.OrgConfig,
	redisClient *redis.Client,
) WebhookFlow {
	return &WebhookFlowImpl{
		callRecordRepo: callRecordRepo,
		campaignRepo:   campaignRepo,
		customerRepo:   customerRepo,
		smsService:     smsService,
		org:            org,
		redisClient:    redisClient,
	}
}

// HandleCallEvent applies a provider call event. Only call-end events
// mutate state, each provider call is reconciled exactly once, and replays
// are acknowledged with updated=false.
func (wf *WebhookFlowImpl) HandleCallEvent(ctx context.Context, request *dto.VapiWebhookRequest) (*dto.WebhookAckResponse, error) {
	if request.Type != callEndEventType {
		return &dto.WebhookAckResponse{Success: true, Updated: false}, nil
	}

	call := request.Call
	if call == nil || call.ID == "" {
		return nil, NewBusinessError("CALL_NOT_FOUND", "Call log not found", ErrCallRecordNotFound)
	}
	callID := call.ID

	record, err := wf.callRecordRepo.ByProviderCallID(ctx, callID)
	if err != nil {
		return nil, NewBusinessError("WEBHOOK_FAILED", "Webhook processing failed", err)
	}
	if record == nil {
		return nil, NewBusinessError("CALL_NOT_FOUND", "Call log not found", ErrCallRecordNotFound)
	}

	// Fast replay check via Redis marker. The database reconcile below is
	// the authoritative guard; this only short-circuits obvious replays.
	if !wf.acquireDedupMarker(ctx, callID) {
		return &dto.WebhookAckResponse{
			Success:      true,
			Updated:      false,
			UserResponse: record.UserResponse.String(),
			CallStatus:   record.Status.String(),
		}, nil
	}

	// Intent is read from what the debtor actually said; the summary is
	// only a stand-in when no transcript was delivered
	classifierInput := call.Transcript
	if classifierInput == "" {
		classifierInput = call.Summary
	}

	summary := call.Summary
	if summary == "" {
		summary = noSummaryFallback
	}

	update := models.CallReconcileUpdate{
		Status:       models.CallStatusFromProvider(call.Status),
		UserResponse: ClassifyUserResponse(classifierInput),
		CallSummary:  summary,
	}
	if call.Duration != nil {
		duration := int(*call.Duration)
		update.CallDuration = &duration
	}
	if call.EndedReason != "" {
		update.EndedReason = &call.EndedReason
	}

	updated, err := wf.callRecordRepo.MarkReconciled(ctx, record.ID, update)
	if err != nil {
		// Release the marker so the provider's retry is not swallowed
		wf.releaseDedupMarker(ctx, callID)
		return nil, NewBusinessError("WEBHOOK_FAILED", "Webhook processing failed", err)
	}
	if !updated {
		return &dto.WebhookAckResponse{
			Success:      true,
			Updated:      false,
			UserResponse: record.UserResponse.String(),
			CallStatus:   record.Status.String(),
		}, nil
	}

	if update.UserResponse == models.UserResponseNow {
		wf.sendPaymentPrompt(ctx, record, eventUPIID(call))
	}

	wf.maybeCompleteCampaign(ctx, record)

	return &dto.WebhookAckResponse{
		Success:      true,
		Updated:      true,
		UserResponse: update.UserResponse.String(),
		CallStatus:   update.Status.String(),
	}, nil
}

// sendPaymentPrompt texts the debtor the UPI payment instructions. SMS
// failures are logged, never surfaced to the provider.
func (wf *WebhookFlowImpl) sendPaymentPrompt(ctx context.Context, record *models.CallRecord, eventUPI string) {
	upiID := eventUPI
	if upiID == "" {
		customer, err := wf.customerRepo.ByID(ctx, record.CustomerID)
		if err == nil && customer != nil && customer.UPIID != nil && *customer.UPIID != "" {
			upiID = *customer.UPIID
		}
	}
	if upiID == "" {
		upiID = wf.org.UPIID
	}
	if upiID == "" {
		log.Printf("skipping payment prompt for record %d: no UPI ID configured", record.ID)
		return
	}

	message := fmt.Sprintf("Thank you for agreeing to pay ₹%.2f. Please pay to UPI ID: %s", record.Amount, upiID)

	customerID := int64(record.CustomerID)
	if err := wf.smsService.SendSMS(ctx, record.Phone, message, &customerID); err != nil {
		log.Printf("payment prompt SMS failed for record %d (%s): %v", record.ID, record.Phone, err)
		return
	}

	if err := wf.callRecordRepo.MarkSMSSent(ctx, record.ID, utils.UTCNow()); err != nil {
		log.Printf("failed to mark SMS sent for record %d: %v", record.ID, err)
	}
}

// maybeCompleteCampaign completes the campaign once no pending records remain
func (wf *WebhookFlowImpl) maybeCompleteCampaign(ctx context.Context, record *models.CallRecord) {
	if record.CampaignID == nil {
		return
	}

	pending, err := wf.callRecordRepo.CountPendingByCampaign(ctx, *record.CampaignID)
	if err != nil {
		log.Printf("failed to count pending records for campaign %d: %v", *record.CampaignID, err)
		return
	}
	if pending > 0 {
		return
	}

	if err := wf.campaignRepo.UpdateStatus(ctx, *record.CampaignID, models.CampaignStatusCompleted); err != nil {
		log.Printf("failed to complete campaign %d: %v", *record.CampaignID, err)
	}
}

func eventUPIID(call *dto.VapiWebhookCall) string {
	if call.Metadata == nil {
		return ""
	}
	return call.Metadata.OrgUpiID
}

func (wf *WebhookFlowImpl) acquireDedupMarker(ctx context.Context, callID string) bool {
	if wf.redisClient == nil {
		return true
	}

	key := "vasooli:webhook:call-end:" + callID
	ok, err := wf.redisClient.SetNX(ctx, key, 1, utils.WebhookDedupTTL).Result()
	if err != nil {
		// Redis being down must not drop events; fall through to the DB guard
		return true
	}
	return ok
}

func (wf *WebhookFlowImpl) releaseDedupMarker(ctx context.Context, callID string) {
	if wf.redisClient == nil {
		return
	}
	wf.redisClient.Del(ctx, "vasooli:webhook:call-end:"+callID)
}
