package businessflow

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vasooli-labs/vasooli/app/dto"
	"github.com/vasooli-labs/vasooli/app/services"
	"github.com/vasooli-labs/vasooli/config"
	"github.com/vasooli-labs/vasooli/models"
	"github.com/vasooli-labs/vasooli/repository"
	"github.com/vasooli-labs/vasooli/utils"
	"gorm.io/gorm"
)

// CampaignFlow handles campaign lifecycle and outbound dialing
type CampaignFlow interface {
	CreateCampaign(ctx context.Context, request *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error)
	GetCampaign(ctx context.Context, request *dto.GetCampaignRequest) (*dto.CampaignDTO, error)
	ListCampaigns(ctx context.Context, request *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error)
	StartCampaign(ctx context.Context, request *dto.StartCampaignRequest, metadata *ClientMetadata) (*dto.StartCampaignResponse, error)
	PauseCampaign(ctx context.Context, request *dto.PauseCampaignRequest, metadata *ClientMetadata) (*dto.PauseCampaignResponse, error)
}

// CampaignFlowImpl implements the campaign business flow
type CampaignFlowImpl struct {
	campaignRepo   repository.CampaignRepository
	callRecordRepo repository.CallRecordRepository
	sourceFileRepo repository.SourceFileRepository
	customerRepo   repository.CustomerRepository
	vapiClient     services.VapiClient
	dialer         config.DialerConfig
	org            config.OrgConfig
	db             *gorm.DB
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	callRecordRepo repository.CallRecordRepository,
	sourceFileRepo repository.SourceFileRepository,
	customerRepo repository.CustomerRepository,
	vapiClient services.VapiClient,
	dialer config.DialerConfig,
	org config.OrgConfig,
	db *gorm.DB,
) CampaignFlow {
	return &CampaignFlowImpl{
		campaignRepo:   campaignRepo,
		callRecordRepo: callRecordRepo,
		sourceFileRepo: sourceFileRepo,
		customerRepo:   customerRepo,
		vapiClient:     vapiClient,
		dialer:         dialer,
		org:            org,
		db:             db,
	}
}

// CreateCampaign stores a campaign with its debtor list. Rows failing
// validation are counted and skipped, never aborting the batch.
func (cf *CampaignFlowImpl) CreateCampaign(ctx context.Context, request *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error) {
	if request.Name == "" {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", ErrCampaignNameRequired)
	}
	if len(request.Debtors) == 0 {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", ErrNoDebtorsProvided)
	}
	if len(request.Debtors) > utils.MaxContactsPerCampaign {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", ErrTooManyDebtors)
	}

	campaign := &models.Campaign{
		CustomerID: request.CustomerID,
		Name:       request.Name,
		Status:     models.CampaignStatusDraft,
	}
	if request.Assistant != nil {
		campaign.Assistant = models.AssistantConfig{
			ModelProvider: request.Assistant.ModelProvider,
			Model:         request.Assistant.Model,
			VoiceProvider: request.Assistant.VoiceProvider,
			VoiceID:       request.Assistant.VoiceID,
			SystemPrompt:  request.Assistant.SystemPrompt,
			FirstMessage:  request.Assistant.FirstMessage,
		}
	}

	// Per-row isolation: a bad row is reported by its 1-based position
	// and never aborts the batch
	var rowErrors []dto.RowError
	var valid []dto.DebtorInput
	var validRows []int
	for i, d := range request.Debtors {
		if msg := validateDebtorRow(d); msg != "" {
			rowErrors = append(rowErrors, dto.RowError{Row: i + 1, Error: msg})
			continue
		}
		valid = append(valid, d)
		validRows = append(validRows, i+1)
	}
	if len(valid) == 0 {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", ErrNoDebtorsProvided)
	}

	err := repository.WithTransaction(ctx, cf.db, func(ctx context.Context) error {
		if request.SourceFileUUID != nil {
			fileUUID, err := uuid.Parse(*request.SourceFileUUID)
			if err != nil {
				return ErrSourceFileNotFound
			}
			file, err := cf.sourceFileRepo.ByUUID(ctx, fileUUID)
			if err != nil {
				return err
			}
			if file == nil || file.CustomerID != request.CustomerID {
				return ErrSourceFileNotFound
			}
			campaign.SourceFileID = &file.ID
		}

		if err := cf.campaignRepo.Save(ctx, campaign); err != nil {
			return err
		}

		records := make([]*models.CallRecord, 0, len(valid))
		for _, d := range valid {
			records = append(records, &models.CallRecord{
				CustomerID: request.CustomerID,
				CampaignID: &campaign.ID,
				Name:       d.Name,
				Phone:      NormalizePhone(d.Phone, cf.org.DefaultCountry),
				Amount:     d.Amount,
				Status:     models.CallStatusPending,
			})
		}

		return cf.callRecordRepo.SaveBatch(ctx, records)
	})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_CREATE_FAILED", "Campaign creation failed", err)
	}

	response := &dto.CreateCampaignResponse{
		UUID:         campaign.UUID.String(),
		Status:       campaign.Status.String(),
		DebtorCount:  len(valid),
		InvalidCount: len(rowErrors),
		Errors:       rowErrors,
	}

	// Ad-hoc batches are dialed in the same request
	if request.DialNow {
		startResp, err := cf.StartCampaign(ctx, &dto.StartCampaignRequest{
			UUID:       campaign.UUID.String(),
			CustomerID: request.CustomerID,
		}, metadata)
		if err != nil {
			return nil, err
		}
		response.Status = startResp.Status
		response.Submitted = &startResp.Submitted
		response.Failed = &startResp.Failed

		// Dial rows index the just-created pending records, which are in
		// valid-row order; map them back to the submitted row numbers
		for _, e := range startResp.Errors {
			if e.Row >= 1 && e.Row <= len(validRows) {
				e.Row = validRows[e.Row-1]
			}
			response.Errors = append(response.Errors, e)
		}
	}

	return response, nil
}

func validateDebtorRow(d dto.DebtorInput) string {
	switch {
	case d.Name == "":
		return "name is required"
	case d.Phone == "":
		return "phone is required"
	case d.Amount <= 0:
		return "amount must be positive"
	default:
		return ""
	}
}

// GetCampaign fetches one campaign owned by the caller
func (cf *CampaignFlowImpl) GetCampaign(ctx context.Context, request *dto.GetCampaignRequest) (*dto.CampaignDTO, error) {
	campaign, err := cf.loadOwnedCampaign(ctx, request.UUID, request.CustomerID)
	if err != nil {
		return nil, err
	}

	count, err := cf.callRecordRepo.Count(ctx, models.CallRecordFilter{CampaignID: &campaign.ID})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_GET_FAILED", "Failed to load campaign", err)
	}

	d := ToCampaignDTO(*campaign, count)
	return &d, nil
}

// ListCampaigns returns a page of the caller's campaigns
func (cf *CampaignFlowImpl) ListCampaigns(ctx context.Context, request *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error) {
	page, pageSize, err := ValidatePagination(request.Page, request.PageSize, utils.DefaultPageSize, utils.MaxPageSize)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}

	campaigns, err := cf.campaignRepo.ListByCustomer(ctx, request.CustomerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}

	total, err := cf.campaignRepo.Count(ctx, models.CampaignFilter{CustomerID: &request.CustomerID})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}

	items := make([]dto.CampaignDTO, 0, len(campaigns))
	for _, c := range campaigns {
		count, err := cf.callRecordRepo.Count(ctx, models.CallRecordFilter{CampaignID: &c.ID})
		if err != nil {
			return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
		}
		items = append(items, ToCampaignDTO(*c, count))
	}

	return &dto.ListCampaignsResponse{
		Items: items,
		Total: total,
	}, nil
}

// StartCampaign activates a campaign and dials every debtor the provider
// has not accepted yet. Submission is paced by a token bucket and bounded
// by a worker pool; rows the provider rejects stay pending for a later run.
func (cf *CampaignFlowImpl) StartCampaign(ctx context.Context, request *dto.StartCampaignRequest, metadata *ClientMetadata) (*dto.StartCampaignResponse, error) {
	campaign, err := cf.loadOwnedCampaign(ctx, request.UUID, request.CustomerID)
	if err != nil {
		return nil, err
	}

	if !campaign.IsStartable() {
		return nil, NewBusinessError("CAMPAIGN_START_FAILED", "Campaign start failed", ErrCampaignNotStartable)
	}

	records, err := cf.callRecordRepo.ListPendingUndialed(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_START_FAILED", "Campaign start failed", err)
	}
	if len(records) == 0 {
		return nil, NewBusinessError("CAMPAIGN_START_FAILED", "Campaign start failed", ErrCampaignHasNoPending)
	}

	if err := cf.campaignRepo.UpdateStatus(ctx, campaign.ID, models.CampaignStatusActive); err != nil {
		return nil, NewBusinessError("CAMPAIGN_START_FAILED", "Campaign start failed", err)
	}

	customer, err := cf.customerRepo.ByID(ctx, request.CustomerID)
	if err != nil || customer == nil {
		return nil, NewBusinessError("CAMPAIGN_START_FAILED", "Campaign start failed", ErrCustomerNotFound)
	}

	submitted, dialErrors := cf.dialRecords(ctx, campaign, customer, records)

	return &dto.StartCampaignResponse{
		UUID:      campaign.UUID.String(),
		Status:    models.CampaignStatusActive.String(),
		Submitted: submitted,
		Failed:    len(dialErrors),
		Errors:    dialErrors,
	}, nil
}

// PauseCampaign stops an active campaign from being dialed further
func (cf *CampaignFlowImpl) PauseCampaign(ctx context.Context, request *dto.PauseCampaignRequest, metadata *ClientMetadata) (*dto.PauseCampaignResponse, error) {
	campaign, err := cf.loadOwnedCampaign(ctx, request.UUID, request.CustomerID)
	if err != nil {
		return nil, err
	}

	if !campaign.CanTransitionTo(models.CampaignStatusPaused) {
		return nil, NewBusinessError("CAMPAIGN_PAUSE_FAILED", "Campaign pause failed", ErrCampaignNotPausable)
	}

	if err := cf.campaignRepo.UpdateStatus(ctx, campaign.ID, models.CampaignStatusPaused); err != nil {
		return nil, NewBusinessError("CAMPAIGN_PAUSE_FAILED", "Campaign pause failed", err)
	}

	return &dto.PauseCampaignResponse{
		UUID:   campaign.UUID.String(),
		Status: models.CampaignStatusPaused.String(),
	}, nil
}

type dialJob struct {
	row    int // 1-based position in this run's dial list
	record *models.CallRecord
}

// dialRecords submits call attempts to the provider. A token goroutine
// releases one submission slot per dial interval (the first immediately)
// while a fixed worker pool performs the HTTP calls. Per-row failures are
// logged and reported by dial-list position; they never abort the run.
func (cf *CampaignFlowImpl) dialRecords(ctx context.Context, campaign *models.Campaign, customer *models.Customer, records []*models.CallRecord) (int, []dto.RowError) {
	concurrency := cf.dialer.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	tokens := make(chan struct{})
	jobs := make(chan dialJob)

	dialCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer close(tokens)
		for i := 0; i < len(records); i++ {
			if i > 0 && cf.dialer.Interval > 0 {
				select {
				case <-time.After(cf.dialer.Interval):
				case <-dialCtx.Done():
					return
				}
			}
			select {
			case tokens <- struct{}{}:
			case <-dialCtx.Done():
				return
			}
		}
	}()

	var submitted int
	var dialErrors []dto.RowError

	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if _, ok := <-tokens; !ok {
					return
				}

				err := cf.dialOne(dialCtx, campaign, customer, job.record)

				mu.Lock()
				if err == nil {
					submitted++
				} else {
					dialErrors = append(dialErrors, dto.RowError{Row: job.row, Error: err.Error()})
				}
				mu.Unlock()
			}
		}()
	}

	for i, record := range records {
		select {
		case jobs <- dialJob{row: i + 1, record: record}:
		case <-dialCtx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	sort.Slice(dialErrors, func(i, j int) bool { return dialErrors[i].Row < dialErrors[j].Row })

	return submitted, dialErrors
}

func (cf *CampaignFlowImpl) dialOne(ctx context.Context, campaign *models.Campaign, customer *models.Customer, record *models.CallRecord) error {
	orgName := cf.org.Name
	if customer.OrgName != nil && *customer.OrgName != "" {
		orgName = *customer.OrgName
	}
	orgUPIID := cf.org.UPIID
	if customer.UPIID != nil && *customer.UPIID != "" {
		orgUPIID = *customer.UPIID
	}

	req := services.VapiCallRequest{
		CustomerName: record.Name,
		Phone:        record.Phone,
		Amount:       record.Amount,
		OrgName:      orgName,
		OrgUPIID:     orgUPIID,
	}
	if campaign.Assistant != (models.AssistantConfig{}) {
		a := campaign.Assistant
		req.Assistant = services.VapiAssistantOverrides{
			ModelProvider: derefOrEmpty(a.ModelProvider),
			Model:         derefOrEmpty(a.Model),
			VoiceProvider: derefOrEmpty(a.VoiceProvider),
			VoiceID:       derefOrEmpty(a.VoiceID),
			SystemPrompt:  derefOrEmpty(a.SystemPrompt),
			FirstMessage:  derefOrEmpty(a.FirstMessage),
		}
	}

	resp, err := cf.vapiClient.CreateCall(ctx, req)
	if err != nil {
		log.Printf("call submission failed for record %d (%s): %v", record.ID, record.Phone, err)
		return err
	}

	if err := cf.callRecordRepo.SetProviderCallID(ctx, record.ID, resp.ID); err != nil {
		log.Printf("failed to bind provider call %s to record %d: %v", resp.ID, record.ID, err)
		return err
	}

	return nil
}

func (cf *CampaignFlowImpl) loadOwnedCampaign(ctx context.Context, rawUUID string, customerID uint) (*models.Campaign, error) {
	if rawUUID == "" {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", ErrCampaignUUIDRequired)
	}

	campaignUUID, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	campaign, err := cf.campaignRepo.ByUUID(ctx, campaignUUID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_GET_FAILED", "Failed to load campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	if campaign.CustomerID != customerID {
		return nil, NewBusinessError("CAMPAIGN_ACCESS_DENIED", "Campaign access denied", ErrCampaignAccessDenied)
	}

	return campaign, nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
