package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/vasooli-labs/vasooli/app/dto"
	businessflow "github.com/vasooli-labs/vasooli/business_flow"
)

// CallLogHandler handles call attempt listing endpoints
type CallLogHandler struct {
	callLogFlow businessflow.CallLogFlow
}

// NewCallLogHandler creates a new call log handler
func NewCallLogHandler(callLogFlow businessflow.CallLogFlow) *CallLogHandler {
	return &CallLogHandler{
		callLogFlow: callLogFlow,
	}
}

// List returns a page of the caller's call attempts with an outcome summary
// @Summary List calls
// @Tags calls
// @Produce json
// @Param campaign query string false "Campaign UUID"
// @Param status query string false "Call status filter"
// @Param user_response query string false "Intent filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListCallRecordsResponse}
// @Router /api/v1/calls [get]
func (h *CallLogHandler) List(c fiber.Ctx) error {
	customerID, ok := customerIDFromContext(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	req := dto.ListCallRecordsRequest{
		CustomerID: customerID,
		Page:       fiber.Query(c, "page", 0),
		PageSize:   fiber.Query(c, "page_size", 0),
	}
	if v := c.Query("campaign"); v != "" {
		req.CampaignUUID = &v
	}
	if v := c.Query("status"); v != "" {
		req.Status = &v
	}
	if v := c.Query("user_response"); v != "" {
		req.UserResponse = &v
	}

	ctx := createRequestContext(c, "call_list")

	result, err := h.callLogFlow.ListCallRecords(ctx, &req)
	if err != nil {
		switch {
		case businessflow.IsCampaignNotFound(err):
			return ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		case businessflow.IsInvalidPage(err), businessflow.IsInvalidPageSize(err):
			return ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		default:
			return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list calls", "CALL_LIST_FAILED", nil)
		}
	}

	return SuccessResponse(c, fiber.StatusOK, "Calls retrieved successfully", result)
}
