package businessflow

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/vasooli-labs/vasooli/app/dto"
	"github.com/vasooli-labs/vasooli/app/services"
	"github.com/vasooli-labs/vasooli/config"
	"github.com/vasooli-labs/vasooli/repository"
)

// PaymentFlow composes UPI payment prompts for debtors
type PaymentFlow interface {
	ComposePaymentLink(ctx context.Context, request *dto.PaymentLinkRequest) (*dto.PaymentLinkResponse, error)
}

// PaymentFlowImpl implements the payment business flow
type PaymentFlowImpl struct {
	customerRepo repository.CustomerRepository
	smsService   services.SMSService
	org          config.OrgConfig
}

// NewPaymentFlow creates a new payment flow instance
func NewPaymentFlow(
	customerRepo repository.CustomerRepository,
	smsService services.SMSService,
	org config.OrgConfig,
) PaymentFlow {
	return &PaymentFlowImpl{
		customerRepo: customerRepo,
		smsService:   smsService,
		org:          org,
	}
}

// ComposePaymentLink builds the payment message and UPI deep link for one
// debtor, optionally sending it by SMS. SMS failures do not fail the
// request; the caller still gets the composed message.
func (pf *PaymentFlowImpl) ComposePaymentLink(ctx context.Context, request *dto.PaymentLinkRequest) (*dto.PaymentLinkResponse, error) {
	orgName := pf.org.Name
	upiID := pf.org.UPIID

	customer, err := pf.customerRepo.ByID(ctx, request.CustomerID)
	if err != nil {
		return nil, NewBusinessError("PAYMENT_LINK_FAILED", "Failed to compose payment link", err)
	}
	if customer != nil {
		if customer.OrgName != nil && *customer.OrgName != "" {
			orgName = *customer.OrgName
		}
		if customer.UPIID != nil && *customer.UPIID != "" {
			upiID = *customer.UPIID
		}
	}

	if upiID == "" {
		return nil, NewBusinessError("PAYMENT_LINK_FAILED", "Failed to compose payment link", ErrUPIIDNotConfigured)
	}

	phone := NormalizePhone(request.Phone, pf.org.DefaultCountry)
	message := fmt.Sprintf("Hi %s! Please pay ₹%.2f to %s. UPI ID: %s. Thank you!",
		request.Name, request.Amount, orgName, upiID)

	params := url.Values{}
	params.Set("pa", upiID)
	params.Set("pn", orgName)
	params.Set("am", fmt.Sprintf("%.2f", request.Amount))
	params.Set("cu", "INR")
	upiLink := "upi://pay?" + params.Encode()

	sent := false
	if request.Send {
		customerID := int64(request.CustomerID)
		if err := pf.smsService.SendSMS(ctx, phone, message, &customerID); err != nil {
			log.Printf("payment link SMS failed for %s: %v", phone, err)
		} else {
			sent = true
		}
	}

	return &dto.PaymentLinkResponse{
		Phone:   phone,
		Message: message,
		UPILink: upiLink,
		Sent:    sent,
	}, nil
}
