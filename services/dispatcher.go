package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HSouheill/hireboard_notifications/apperrors"
	"github.com/HSouheill/hireboard_notifications/models"
)

// DefaultPushTimeout bounds one provider call.
const DefaultPushTimeout = 8 * time.Second

// DispatchResult partitions the tokens of one send.
type DispatchResult struct {
	Sent      int      `json:"sent"`
	Delivered []string `json:"delivered,omitempty"`
	Transient []string `json:"transient,omitempty"`
	Pruned    []string `json:"pruned,omitempty"`
}

// Dispatcher is what NotificationService needs from PushDispatcher.
type Dispatcher interface {
	Send(ctx context.Context, userID string, payload models.PushPayload) (DispatchResult, error)
}

// PushDispatcher fans one payload out to all of a user's devices and feeds
// dead tokens back to the registry.
type PushDispatcher struct {
	registry *TokenRegistry
	provider PushProvider
	timeout  time.Duration
	log      logrus.FieldLogger
}

// NewPushDispatcher builds a dispatcher. A nil provider disables push: sends
// resolve tokens but never leave the process.
func NewPushDispatcher(registry *TokenRegistry, provider PushProvider, timeout time.Duration, log logrus.FieldLogger) *PushDispatcher {
	if timeout <= 0 {
		timeout = DefaultPushTimeout
	}
	return &PushDispatcher{registry: registry, provider: provider, timeout: timeout, log: log}
}

// Send delivers payload to every token of userID. A returned error is
// always a delivery or lookup failure; callers treat it as best-effort.
func (d *PushDispatcher) Send(ctx context.Context, userID string, payload models.PushPayload) (DispatchResult, error) {
	log := d.log.WithField("userId", userID)

	tokens, err := d.registry.TokensFor(ctx, userID)
	if err != nil {
		return DispatchResult{}, err
	}
	if len(tokens) == 0 {
		log.Debug("no device tokens registered, skipping push")
		return DispatchResult{}, nil
	}
	if d.provider == nil {
		log.Debug("push provider disabled, skipping push")
		return DispatchResult{}, nil
	}

	result := DispatchResult{Sent: len(tokens)}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	// On error the provider may still have answered for some tokens; the
	// rest count as transient below.
	responses, sendErr := d.provider.SendMulticast(sendCtx, tokens, payload)
	if sendErr != nil {
		log.WithError(sendErr).WithFields(logrus.Fields{
			"tokens":   len(tokens),
			"answered": len(responses),
		}).Warn("push provider call failed")
	}

	byToken := make(map[string]TokenResult, len(responses))
	for _, r := range responses {
		byToken[r.Token] = r
	}

	var permanent []string
	codes := map[string]int{}
	for _, token := range tokens {
		r, ok := byToken[token]
		switch {
		case !ok:
			result.Transient = append(result.Transient, token)
		case r.Success:
			result.Delivered = append(result.Delivered, token)
		case IsPermanentFailure(r.ErrorCode):
			permanent = append(permanent, token)
			codes[r.ErrorCode]++
		default:
			result.Transient = append(result.Transient, token)
		}
	}

	if len(permanent) > 0 {
		rejected := apperrors.DeliveryPermanent(fmt.Sprintf("%d device tokens rejected", len(permanent))).WithDetails(codes)
		log.WithError(rejected).Info("pruning rejected device tokens")
		if err := d.registry.Prune(ctx, permanent); err != nil {
			log.WithError(err).WithField("tokens", len(permanent)).Error("failed to prune invalid device tokens")
		} else {
			result.Pruned = permanent
		}
	}

	log.WithFields(logrus.Fields{
		"sent":      result.Sent,
		"delivered": len(result.Delivered),
		"transient": len(result.Transient),
		"pruned":    len(permanent),
	}).Info("push dispatched")

	if sendErr != nil {
		return result, apperrors.DeliveryTransient(sendErr, "push provider call failed")
	}
	return result, nil
}
