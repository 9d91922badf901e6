// Package businessflow contains the core business logic and use cases for collection workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Customer-related errors
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")

	// Campaign-related errors
	ErrCampaignNotFound      = errors.New("campaign not found")
	ErrCampaignAccessDenied  = errors.New("campaign access denied")
	ErrCampaignNotStartable  = errors.New("campaign cannot be started in its current status")
	ErrCampaignNotPausable   = errors.New("campaign cannot be paused in its current status")
	ErrCampaignNameRequired  = errors.New("campaign name is required")
	ErrCampaignUUIDRequired  = errors.New("campaign UUID is required")
	ErrNoDebtorsProvided     = errors.New("at least one debtor is required")
	ErrTooManyDebtors        = errors.New("debtor list exceeds campaign capacity")
	ErrCampaignHasNoPending  = errors.New("campaign has no pending debtors to dial")
	ErrSourceFileNotFound    = errors.New("source file not found")
	ErrSourceFileEmpty       = errors.New("source file contains no debtor rows")
	ErrUnsupportedFileFormat = errors.New("unsupported file format")
	ErrFileTooLarge          = errors.New("file exceeds the maximum allowed size")

	// Call record errors
	ErrCallRecordNotFound = errors.New("call log not found")

	// Payment errors
	ErrUPIIDNotConfigured = errors.New("UPI ID is not configured for this account")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsCustomerNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignAccessDenied(err error) bool {
	return errors.Is(err, ErrCampaignAccessDenied)
}

func IsCampaignNotStartable(err error) bool {
	return errors.Is(err, ErrCampaignNotStartable)
}

func IsCampaignNotPausable(err error) bool {
	return errors.Is(err, ErrCampaignNotPausable)
}

func IsCampaignNameRequired(err error) bool {
	return errors.Is(err, ErrCampaignNameRequired)
}

func IsCampaignUUIDRequired(err error) bool {
	return errors.Is(err, ErrCampaignUUIDRequired)
}

func IsCampaignHasNoPending(err error) bool {
	return errors.Is(err, ErrCampaignHasNoPending)
}

func IsNoDebtorsProvided(err error) bool {
	return errors.Is(err, ErrNoDebtorsProvided)
}

func IsTooManyDebtors(err error) bool {
	return errors.Is(err, ErrTooManyDebtors)
}

func IsSourceFileNotFound(err error) bool {
	return errors.Is(err, ErrSourceFileNotFound)
}

func IsSourceFileEmpty(err error) bool {
	return errors.Is(err, ErrSourceFileEmpty)
}

func IsUnsupportedFileFormat(err error) bool {
	return errors.Is(err, ErrUnsupportedFileFormat)
}

func IsFileTooLarge(err error) bool {
	return errors.Is(err, ErrFileTooLarge)
}

func IsCallRecordNotFound(err error) bool {
	return errors.Is(err, ErrCallRecordNotFound)
}

func IsUPIIDNotConfigured(err error) bool {
	return errors.Is(err, ErrUPIIDNotConfigured)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
