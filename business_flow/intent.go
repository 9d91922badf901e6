package businessflow

import (
	"strings"

	"github.com/vasooli-labs/vasooli/models"
)

// Keyword sets for classifying a debtor's payment intent from the call
// summary or transcript. Matching is case-insensitive substring search,
// checked in priority order: now beats later beats refused.
var (
	payNowKeywords = []string{"now", "yes", "pay now", "immediately", "right now"}

	payLaterKeywords = []string{"later", "tomorrow", "next week", "few days", "wait"}

	refusedKeywords = []string{"no", "refuse", "cannot", "can't", "unable"}
)

// ClassifyUserResponse derives the debtor's payment intent from free text.
// Empty or unmatchable text yields no_response.
func ClassifyUserResponse(text string) models.UserResponse {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return models.UserResponseNoResponse
	}

	if containsAny(lower, payNowKeywords) {
		return models.UserResponseNow
	}
	if containsAny(lower, payLaterKeywords) {
		return models.UserResponseLater
	}
	if containsAny(lower, refusedKeywords) {
		return models.UserResponseRefused
	}

	return models.UserResponseNoResponse
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
