package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/vasooli-labs/vasooli/app/dto"
	businessflow "github.com/vasooli-labs/vasooli/business_flow"
)

// PaymentHandler handles UPI payment prompt endpoints
type PaymentHandler struct {
	paymentFlow businessflow.PaymentFlow
	validator   *validator.Validate
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentFlow businessflow.PaymentFlow) *PaymentHandler {
	return &PaymentHandler{
		paymentFlow: paymentFlow,
		validator:   validator.New(),
	}
}

// Compose builds a payment message and UPI deep link from query parameters
// @Summary Compose payment link
// @Tags payments
// @Produce json
// @Param name query string true "Debtor name"
// @Param phone query string true "Debtor phone"
// @Param amount query number true "Amount owed"
// @Param send query bool false "Send by SMS"
// @Success 200 {object} dto.APIResponse{data=dto.PaymentLinkResponse}
// @Router /api/v1/payment-link [get]
func (h *PaymentHandler) Compose(c fiber.Ctx) error {
	customerID, ok := customerIDFromContext(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	req := dto.PaymentLinkRequest{
		CustomerID: customerID,
		Name:       c.Query("name"),
		Phone:      c.Query("phone"),
		Amount:     fiber.Query(c, "amount", 0.0),
		Send:       fiber.Query(c, "send", false),
	}

	return h.compose(c, &req)
}

// Send composes a payment prompt from a JSON body and optionally texts it
// @Summary Send payment link
// @Tags payments
// @Accept json
// @Produce json
// @Param request body dto.PaymentLinkRequest true "Payment payload"
// @Success 200 {object} dto.APIResponse{data=dto.PaymentLinkResponse}
// @Router /api/v1/payment-link [post]
func (h *PaymentHandler) Send(c fiber.Ctx) error {
	customerID, ok := customerIDFromContext(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.PaymentLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", "INVALID_REQUEST", nil)
	}
	req.CustomerID = customerID

	return h.compose(c, &req)
}

func (h *PaymentHandler) compose(c fiber.Ctx, req *dto.PaymentLinkRequest) error {
	if err := h.validator.Struct(req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx := createRequestContext(c, "payment_link")

	result, err := h.paymentFlow.ComposePaymentLink(ctx, req)
	if err != nil {
		if businessflow.IsUPIIDNotConfigured(err) {
			return ErrorResponse(c, fiber.StatusBadRequest, "UPI ID is not configured for this account", "UPI_ID_NOT_CONFIGURED", nil)
		}
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compose payment link", "PAYMENT_LINK_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Payment link composed successfully", result)
}
