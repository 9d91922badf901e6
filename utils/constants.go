package utils

import (
	"time"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Contact file upload constants
const (
	// MaxContactFileSize is the maximum accepted debtor file size (5MB)
	MaxContactFileSize = 5 * 1024 * 1024

	// MaxContactsPerCampaign bounds the number of debtors in a single campaign
	MaxContactsPerCampaign = 5000
)

// Pagination constants
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Call log summary cache TTL
const (
	CallSummaryCacheTTL = 30 * time.Second

	// WebhookDedupTTL bounds how long an accepted call-end event id is remembered
	WebhookDedupTTL = 24 * time.Hour
)
