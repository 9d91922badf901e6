package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/vasooli-labs/vasooli/app/dto"
	"github.com/vasooli-labs/vasooli/app/middleware"
	businessflow "github.com/vasooli-labs/vasooli/business_flow"
)

// CampaignHandler handles campaign lifecycle endpoints
type CampaignHandler struct {
	campaignFlow businessflow.CampaignFlow
	validator    *validator.Validate
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignFlow businessflow.CampaignFlow) *CampaignHandler {
	return &CampaignHandler{
		campaignFlow: campaignFlow,
		validator:    validator.New(),
	}
}

// Create stores a new campaign with its debtor list
// @Summary Create campaign
// @Tags campaigns
// @Accept json
// @Produce json
// @Param request body dto.CreateCampaignRequest true "Campaign payload"
// @Success 201 {object} dto.APIResponse{data=dto.CreateCampaignResponse}
// @Router /api/v1/campaigns [post]
func (h *CampaignHandler) Create(c fiber.Ctx) error {
	customerID, ok := customerIDFromContext(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", "INVALID_REQUEST", nil)
	}
	req.CustomerID = customerID

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx := createRequestContext(c, "campaign_create")
	if req.DialNow {
		// Dialing runs synchronously and can outlive the default request budget
		ctx = createRequestContextWithTimeout(c, "campaign_create", campaignStartTimeout)
	}
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.campaignFlow.CreateCampaign(ctx, &req, metadata)
	if err != nil {
		return campaignErrorResponse(c, err, "Campaign creation failed", "CAMPAIGN_CREATE_FAILED")
	}

	if result.Submitted != nil && result.Failed != nil {
		middleware.RecordCallSubmissions(*result.Submitted, *result.Failed)
	}

	return SuccessResponse(c, fiber.StatusCreated, "Campaign created successfully", result)
}

// Get fetches one campaign by UUID
// @Summary Get campaign
// @Tags campaigns
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignDTO}
// @Router /api/v1/campaigns/{uuid} [get]
func (h *CampaignHandler) Get(c fiber.Ctx) error {
	customerID, ok := customerIDFromContext(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	req := dto.GetCampaignRequest{
		UUID:       c.Params("uuid"),
		CustomerID: customerID,
	}

	ctx := createRequestContext(c, "campaign_get")

	result, err := h.campaignFlow.GetCampaign(ctx, &req)
	if err != nil {
		return campaignErrorResponse(c, err, "Failed to load campaign", "CAMPAIGN_GET_FAILED")
	}

	return SuccessResponse(c, fiber.StatusOK, "Campaign retrieved successfully", result)
}

// List returns a page of the caller's campaigns
// @Summary List campaigns
// @Tags campaigns
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListCampaignsResponse}
// @Router /api/v1/campaigns [get]
func (h *CampaignHandler) List(c fiber.Ctx) error {
	customerID, ok := customerIDFromContext(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	req := dto.ListCampaignsRequest{
		CustomerID: customerID,
		Page:       fiber.Query(c, "page", 0),
		PageSize:   fiber.Query(c, "page_size", 0),
	}

	ctx := createRequestContext(c, "campaign_list")

	result, err := h.campaignFlow.ListCampaigns(ctx, &req)
	if err != nil {
		return campaignErrorResponse(c, err, "Failed to list campaigns", "CAMPAIGN_LIST_FAILED")
	}

	return SuccessResponse(c, fiber.StatusOK, "Campaigns retrieved successfully", result)
}

// Start activates a campaign and dials its pending debtors
// @Summary Start campaign
// @Tags campaigns
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.StartCampaignResponse}
// @Router /api/v1/campaigns/{uuid}/start [post]
func (h *CampaignHandler) Start(c fiber.Ctx) error {
	customerID, ok := customerIDFromContext(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	req := dto.StartCampaignRequest{
		UUID:       c.Params("uuid"),
		CustomerID: customerID,
	}

	// Dialing runs synchronously and can outlive the default request budget
	ctx := createRequestContextWithTimeout(c, "campaign_start", campaignStartTimeout)
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.campaignFlow.StartCampaign(ctx, &req, metadata)
	if err != nil {
		return campaignErrorResponse(c, err, "Campaign start failed", "CAMPAIGN_START_FAILED")
	}

	middleware.RecordCallSubmissions(result.Submitted, result.Failed)

	return SuccessResponse(c, fiber.StatusOK, "Campaign started successfully", result)
}

// Pause stops an active campaign from further dialing
// @Summary Pause campaign
// @Tags campaigns
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.PauseCampaignResponse}
// @Router /api/v1/campaigns/{uuid}/pause [post]
func (h *CampaignHandler) Pause(c fiber.Ctx) error {
	customerID, ok := customerIDFromContext(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	req := dto.PauseCampaignRequest{
		UUID:       c.Params("uuid"),
		CustomerID: customerID,
	}

	ctx := createRequestContext(c, "campaign_pause")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.campaignFlow.PauseCampaign(ctx, &req, metadata)
	if err != nil {
		return campaignErrorResponse(c, err, "Campaign pause failed", "CAMPAIGN_PAUSE_FAILED")
	}

	return SuccessResponse(c, fiber.StatusOK, "Campaign paused successfully", result)
}

// campaignErrorResponse maps campaign flow errors to HTTP responses
func campaignErrorResponse(c fiber.Ctx, err error, fallbackMessage, fallbackCode string) error {
	switch {
	case businessflow.IsCampaignNotFound(err):
		return ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
	case businessflow.IsCampaignAccessDenied(err):
		return ErrorResponse(c, fiber.StatusForbidden, "Campaign access denied", "CAMPAIGN_ACCESS_DENIED", nil)
	case businessflow.IsCampaignNameRequired(err),
		businessflow.IsCampaignUUIDRequired(err),
		businessflow.IsNoDebtorsProvided(err),
		businessflow.IsTooManyDebtors(err),
		businessflow.IsSourceFileNotFound(err):
		return ErrorResponse(c, fiber.StatusBadRequest, businessMessage(err, fallbackMessage), "CAMPAIGN_VALIDATION_FAILED", nil)
	case businessflow.IsCampaignNotStartable(err),
		businessflow.IsCampaignNotPausable(err),
		businessflow.IsCampaignHasNoPending(err):
		return ErrorResponse(c, fiber.StatusConflict, businessMessage(err, fallbackMessage), fallbackCode, nil)
	case businessflow.IsInvalidPage(err), businessflow.IsInvalidPageSize(err):
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
	default:
		return ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
	}
}
