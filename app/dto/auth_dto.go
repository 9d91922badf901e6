// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"time"
)

// SignupRequest represents the request payload for account registration
type SignupRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=255" example:"Acme Recoveries"`
	Email    string  `json:"email" validate:"required,email,max=255" example:"ops@acme.example"`
	Password string  `json:"password" validate:"required,min=6,max=100" example:"SecurePass123!"`
	OrgName  *string `json:"org_name,omitempty" validate:"omitempty,max=255" example:"Acme Recoveries Pvt Ltd"`
	UPIID    *string `json:"upi_id,omitempty" validate:"omitempty,max=255" example:"acme@upi"`
}

// LoginRequest represents the request payload for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"ops@acme.example"`
	Password string `json:"password" validate:"required,min=6,max=100" example:"SecurePass123!"`
}

// CustomerDTO represents account information returned in auth responses
type CustomerDTO struct {
	ID        uint    `json:"id" example:"123"`
	UUID      string  `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name      string  `json:"name" example:"Acme Recoveries"`
	Email     string  `json:"email" example:"ops@acme.example"`
	OrgName   *string `json:"org_name,omitempty" example:"Acme Recoveries Pvt Ltd"`
	UPIID     *string `json:"upi_id,omitempty" example:"acme@upi"`
	IsActive  *bool   `json:"is_active" example:"true"`
	CreatedAt string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// SessionDTO carries the issued tokens
type SessionDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int    `json:"expires_in" example:"86400"`
	CreatedAt    string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// SignupResponse represents the successful signup response payload
type SignupResponse struct {
	Customer CustomerDTO `json:"customer"`
	Session  SessionDTO  `json:"session"`
}

// LoginResponse represents the successful login response payload
type LoginResponse struct {
	Customer CustomerDTO `json:"customer"`
	Session  SessionDTO  `json:"session"`
}

// MeResponse represents the current account payload
type MeResponse struct {
	Customer CustomerDTO `json:"customer"`
}

// Common error codes for auth operations
const (
	ErrorUserNotFound      = "USER_NOT_FOUND"
	ErrorIncorrectPassword = "INCORRECT_PASSWORD"
	ErrorAccountInactive   = "ACCOUNT_INACTIVE"
	ErrorEmailExists       = "EMAIL_ALREADY_EXISTS"
)

// FormatTimestamp renders a time in the API's canonical format
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
