package services

import (
	"context"

	"github.com/HSouheill/hireboard_notifications/models"
)

// Per-token delivery error codes reported by a PushProvider.
const (
	PushErrInvalidToken     = "invalid-token"
	PushErrNotRegistered    = "not-registered"
	PushErrInvalidArgument  = "invalid-argument"
	PushErrUnavailable      = "unavailable"
	PushErrInternal         = "internal"
	PushErrQuotaExceeded    = "quota-exceeded"
	PushErrSenderIDMismatch = "sender-id-mismatch"
	PushErrUnknown          = "unknown"
)

// PushProvider delivers one payload to many device tokens in one call.
// Per-token outcomes are reported in the results. A returned error means the
// provider could not be reached for some or all tokens; results then hold
// the verdicts received before the failure.
type PushProvider interface {
	SendMulticast(ctx context.Context, tokens []string, payload models.PushPayload) ([]TokenResult, error)
}

// TokenResult is the provider's verdict for one token.
type TokenResult struct {
	Token     string `json:"token"`
	Success   bool   `json:"success"`
	ErrorCode string `json:"errorCode,omitempty"`
}

// IsPermanentFailure reports whether code means the token is dead and
// should be pruned. Everything else is retryable later.
func IsPermanentFailure(code string) bool {
	return code == PushErrInvalidToken || code == PushErrNotRegistered
}
