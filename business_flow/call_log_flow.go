package businessflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vasooli-labs/vasooli/app/dto"
	"github.com/vasooli-labs/vasooli/models"
	"github.com/vasooli-labs/vasooli/repository"
	"github.com/vasooli-labs/vasooli/utils"
)

// CallLogFlow serves call attempt listings and outcome summaries
type CallLogFlow interface {
	ListCallRecords(ctx context.Context, request *dto.ListCallRecordsRequest) (*dto.ListCallRecordsResponse, error)
}

// CallLogFlowImpl implements the call log business flow
type CallLogFlowImpl struct {
	callRecordRepo repository.CallRecordRepository
	campaignRepo   repository.CampaignRepository
	redisClient    *redis.Client // optional, nil disables summary caching
}

// NewCallLogFlow creates a new call log flow instance
func NewCallLogFlow(
	callRecordRepo repository.CallRecordRepository,
	campaignRepo repository.CampaignRepository,
	redisClient *redis.Client,
) CallLogFlow {
	return &CallLogFlowImpl{
		callRecordRepo: callRecordRepo,
		campaignRepo:   campaignRepo,
		redisClient:    redisClient,
	}
}

// ListCallRecords returns a page of the caller's call attempts plus an
// aggregate outcome summary
func (clf *CallLogFlowImpl) ListCallRecords(ctx context.Context, request *dto.ListCallRecordsRequest) (*dto.ListCallRecordsResponse, error) {
	page, pageSize, err := ValidatePagination(request.Page, request.PageSize, utils.DefaultPageSize, utils.MaxPageSize)
	if err != nil {
		return nil, NewBusinessError("CALL_LIST_FAILED", "Failed to list calls", err)
	}

	filter := models.CallRecordFilter{CustomerID: &request.CustomerID}

	var campaign *models.Campaign
	if request.CampaignUUID != nil && *request.CampaignUUID != "" {
		campaignUUID, err := uuid.Parse(*request.CampaignUUID)
		if err != nil {
			return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
		}
		campaign, err = clf.campaignRepo.ByUUID(ctx, campaignUUID)
		if err != nil {
			return nil, NewBusinessError("CALL_LIST_FAILED", "Failed to list calls", err)
		}
		if campaign == nil || campaign.CustomerID != request.CustomerID {
			return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
		}
		filter.CampaignID = &campaign.ID
	}

	if request.Status != nil && *request.Status != "" {
		status := models.CallStatus(*request.Status)
		if status.Valid() {
			filter.Status = &status
		}
	}
	if request.UserResponse != nil && *request.UserResponse != "" {
		response := models.UserResponse(*request.UserResponse)
		if response.Valid() {
			filter.UserResponse = &response
		}
	}

	records, err := clf.callRecordRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("CALL_LIST_FAILED", "Failed to list calls", err)
	}

	total, err := clf.callRecordRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CALL_LIST_FAILED", "Failed to list calls", err)
	}

	summary, err := clf.statusSummary(ctx, request.CustomerID, filter.CampaignID)
	if err != nil {
		return nil, NewBusinessError("CALL_LIST_FAILED", "Failed to list calls", err)
	}

	var campaignUUIDStr *string
	if campaign != nil {
		s := campaign.UUID.String()
		campaignUUIDStr = &s
	}

	items := make([]dto.CallRecordDTO, 0, len(records))
	for _, r := range records {
		items = append(items, ToCallRecordDTO(*r, campaignUUIDStr))
	}

	return &dto.ListCallRecordsResponse{
		Items:   items,
		Total:   total,
		Summary: *summary,
	}, nil
}

// statusSummary aggregates outcomes, served from a short-lived Redis cache
// when available to keep dashboard polling off the database
func (clf *CallLogFlowImpl) statusSummary(ctx context.Context, customerID uint, campaignID *uint) (*dto.CallStatusSummaryDTO, error) {
	cacheKey := fmt.Sprintf("vasooli:call-summary:%d", customerID)
	if campaignID != nil {
		cacheKey = fmt.Sprintf("vasooli:call-summary:%d:%d", customerID, *campaignID)
	}

	if clf.redisClient != nil {
		if cached, err := clf.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var summary dto.CallStatusSummaryDTO
			if json.Unmarshal([]byte(cached), &summary) == nil {
				return &summary, nil
			}
		}
	}

	aggregate, err := clf.callRecordRepo.StatusSummary(ctx, customerID, campaignID)
	if err != nil {
		return nil, err
	}

	summary := &dto.CallStatusSummaryDTO{
		Total:      aggregate.Total,
		Pending:    aggregate.Pending,
		Completed:  aggregate.Completed,
		Failed:     aggregate.Failed,
		NoAnswer:   aggregate.NoAnswer,
		PayingNow:  aggregate.PayingNow,
		PayLater:   aggregate.PayLater,
		Refused:    aggregate.Refused,
		NoResponse: aggregate.NoResponse,
		SMSSent:    aggregate.SMSSent,
	}

	if clf.redisClient != nil {
		if payload, err := json.Marshal(summary); err == nil {
			clf.redisClient.Set(ctx, cacheKey, payload, utils.CallSummaryCacheTTL)
		}
	}

	return summary, nil
}
