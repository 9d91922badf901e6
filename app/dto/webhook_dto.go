package dto

// VapiWebhookRequest is the body the voice provider posts on call events.
// Only call-end events mutate state; everything else is acknowledged and
// ignored.
type VapiWebhookRequest struct {
	Type      string           `json:"type"`
	Call      *VapiWebhookCall `json:"call,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
}

// VapiWebhookCall carries the ended call's outcome
type VapiWebhookCall struct {
	ID            string               `json:"id"`
	Status        string               `json:"status,omitempty"`
	PhoneNumberID string               `json:"phoneNumberId,omitempty"`
	Customer      *VapiWebhookCustomer `json:"customer,omitempty"`
	Summary       string               `json:"summary,omitempty"`
	Transcript    string               `json:"transcript,omitempty"`
	Duration      *float64             `json:"duration,omitempty"` // seconds
	EndedReason   string               `json:"endedReason,omitempty"`
	Metadata      *VapiCallMetadata    `json:"metadata,omitempty"`
}

// VapiWebhookCustomer identifies the dialed party
type VapiWebhookCustomer struct {
	Number string `json:"number"`
	Name   string `json:"name,omitempty"`
}

// VapiCallMetadata echoes the metadata attached at call creation
type VapiCallMetadata struct {
	CustomerName string  `json:"customerName,omitempty"`
	AmountOwed   float64 `json:"amountOwed,omitempty"`
	OrgUpiID     string  `json:"orgUpiId,omitempty"`
}

// WebhookAckResponse is returned to the provider after a call-end event
// is processed. Replays are acknowledged with updated=false.
type WebhookAckResponse struct {
	Success      bool   `json:"success"`
	Updated      bool   `json:"updated"`
	UserResponse string `json:"userResponse,omitempty"`
	CallStatus   string `json:"callStatus,omitempty"`
}

// WebhookErrorResponse is the provider-facing error shape
type WebhookErrorResponse struct {
	Error string `json:"error"`
}
