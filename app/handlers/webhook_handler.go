package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/vasooli-labs/vasooli/app/dto"
	"github.com/vasooli-labs/vasooli/app/middleware"
	businessflow "github.com/vasooli-labs/vasooli/business_flow"
)

// WebhookHandler receives call event callbacks from the voice provider.
// Responses use the provider's raw JSON shapes rather than the API envelope.
type WebhookHandler struct {
	webhookFlow businessflow.WebhookFlow
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookFlow businessflow.WebhookFlow) *WebhookHandler {
	return &WebhookHandler{
		webhookFlow: webhookFlow,
	}
}

// HandleVapiEvent processes a provider call event. Non call-end events and
// replays are acknowledged without mutating state.
// @Summary Voice provider webhook
// @Tags webhooks
// @Accept json
// @Produce json
// @Param request body dto.VapiWebhookRequest true "Provider event"
// @Success 200 {object} dto.WebhookAckResponse
// @Failure 404 {object} dto.WebhookErrorResponse
// @Router /api/v1/webhooks/vapi [post]
func (h *WebhookHandler) HandleVapiEvent(c fiber.Ctx) error {
	var req dto.VapiWebhookRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.WebhookErrorResponse{Error: "Invalid request body"})
	}

	ctx := createRequestContext(c, "webhook_vapi")

	result, err := h.webhookFlow.HandleCallEvent(ctx, &req)
	if err != nil {
		if businessflow.IsCallRecordNotFound(err) {
			middleware.RecordWebhookEvent("not_found")
			return c.Status(fiber.StatusNotFound).JSON(dto.WebhookErrorResponse{Error: "Call log not found"})
		}
		middleware.RecordWebhookEvent("error")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.WebhookErrorResponse{Error: "Webhook processing failed"})
	}

	if result.Updated {
		middleware.RecordWebhookEvent("reconciled")
	} else {
		middleware.RecordWebhookEvent("ignored")
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
