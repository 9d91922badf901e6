package dto

// PaymentLinkRequest represents the request to compose a payment prompt
type PaymentLinkRequest struct {
	CustomerID uint    `json:"-"`
	Name       string  `json:"name" validate:"required,min=1,max=255"`
	Phone      string  `json:"phone" validate:"required,min=5,max=20"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Send       bool    `json:"send"`
}

// PaymentLinkResponse carries the composed message and UPI deep link
type PaymentLinkResponse struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	UPILink string `json:"upi_link"`
	Sent    bool   `json:"sent"`
}
