// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vasooli-labs/vasooli/config"
)

// VapiClient places outbound calls through the Vapi voice-AI API
type VapiClient interface {
	CreateCall(ctx context.Context, req VapiCallRequest) (*VapiCallResponse, error)
}

// VapiCallRequest carries everything needed to dial one debtor
type VapiCallRequest struct {
	CustomerName string
	Phone        string
	Amount       float64
	OrgName      string
	OrgUPIID     string
	Assistant    VapiAssistantOverrides
}

// VapiAssistantOverrides optionally replaces the default assistant setup
type VapiAssistantOverrides struct {
	ModelProvider string
	Model         string
	VoiceProvider string
	VoiceID       string
	SystemPrompt  string
	FirstMessage  string
}

// VapiCallResponse is the provider's acknowledgement of a placed call
type VapiCallResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type vapiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type vapiModel struct {
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	Messages []vapiMessage `json:"messages"`
}

type vapiVoice struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
}

type vapiAssistant struct {
	Model        vapiModel      `json:"model"`
	Voice        vapiVoice      `json:"voice"`
	FirstMessage string         `json:"firstMessage"`
	Metadata     map[string]any `json:"metadata"`
}

type vapiCallPayload struct {
	Assistant     vapiAssistant `json:"assistant"`
	PhoneNumberID string        `json:"phoneNumberId"`
	Customer      struct {
		Number string `json:"number"`
	} `json:"customer"`
}

type httpVapiClient struct {
	cfg    config.VapiConfig
	client *http.Client
}

// NewVapiClient creates an HTTP client for the Vapi API
func NewVapiClient(cfg config.VapiConfig) VapiClient {
	return &httpVapiClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// CreateCall submits one outbound call to the provider
func (c *httpVapiClient) CreateCall(ctx context.Context, req VapiCallRequest) (*VapiCallResponse, error) {
	payload := vapiCallPayload{
		Assistant: vapiAssistant{
			Model: vapiModel{
				Provider: valueOrDefault(req.Assistant.ModelProvider, "openai"),
				Model:    valueOrDefault(req.Assistant.Model, "gpt-4o"),
				Messages: []vapiMessage{
					{
						Role:    "system",
						Content: valueOrDefault(req.Assistant.SystemPrompt, defaultSystemPrompt(req)),
					},
				},
			},
			Voice: vapiVoice{
				Provider: valueOrDefault(req.Assistant.VoiceProvider, "11labs"),
				VoiceID:  valueOrDefault(req.Assistant.VoiceID, "burt"),
			},
			FirstMessage: valueOrDefault(req.Assistant.FirstMessage, defaultFirstMessage(req)),
			Metadata: map[string]any{
				"customerName": req.CustomerName,
				"amountOwed":   req.Amount,
				"orgUpiId":     req.OrgUPIID,
			},
		},
		PhoneNumberID: c.cfg.PhoneNumberID,
	}
	payload.Customer.Number = req.Phone

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal call payload: %w", err)
	}

	url := fmt.Sprintf("%s/call", strings.TrimSuffix(c.cfg.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send call request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		body := strings.TrimSpace(string(bodyBytes))
		if readErr != nil {
			body = fmt.Sprintf("unable to read response body: %v", readErr)
		}
		return nil, fmt.Errorf("vapi call http status: %d, body: %s", resp.StatusCode, body)
	}

	var out VapiCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode call response: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("empty call id in provider response")
	}

	return &out, nil
}

func defaultSystemPrompt(req VapiCallRequest) string {
	return fmt.Sprintf(
		"You are a polite debt collection agent calling on behalf of %s. "+
			"The customer %s owes ₹%.2f. Ask when they plan to pay. "+
			"If they agree to pay now, tell them a payment link will be sent by SMS.",
		req.OrgName, req.CustomerName, req.Amount,
	)
}

func defaultFirstMessage(req VapiCallRequest) string {
	return fmt.Sprintf(
		"Hello %s, this is a call from %s regarding your pending payment of ₹%.2f.",
		req.CustomerName, req.OrgName, req.Amount,
	)
}

func valueOrDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
