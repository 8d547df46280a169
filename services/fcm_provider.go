package services

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"

	"github.com/HSouheill/hireboard_notifications/models"
)

// fcmMaxTokensPerCall is the FCM limit for one multicast request.
const fcmMaxTokensPerCall = 500

// FCMProvider sends through Firebase Cloud Messaging.
type FCMProvider struct {
	client    *messaging.Client
	channelID string
}

func NewFCMProvider(ctx context.Context, app *firebase.App, channelID string) (*FCMProvider, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize messaging client: %w", err)
	}
	if channelID == "" {
		channelID = "job_notifications"
	}
	return &FCMProvider{client: client, channelID: channelID}, nil
}

func (p *FCMProvider) SendMulticast(ctx context.Context, tokens []string, payload models.PushPayload) ([]TokenResult, error) {
	results := make([]TokenResult, 0, len(tokens))
	for start := 0; start < len(tokens); start += fcmMaxTokensPerCall {
		end := start + fcmMaxTokensPerCall
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := tokens[start:end]

		br, err := p.client.SendEachForMulticast(ctx, p.buildMessage(chunk, payload))
		if err != nil {
			// Earlier chunks were sent; their verdicts still count.
			return results, fmt.Errorf("failed to send FCM multicast: %w", err)
		}
		for i, token := range chunk {
			if i >= len(br.Responses) || br.Responses[i] == nil {
				results = append(results, TokenResult{Token: token, ErrorCode: PushErrUnknown})
				continue
			}
			resp := br.Responses[i]
			if resp.Success {
				results = append(results, TokenResult{Token: token, Success: true})
				continue
			}
			results = append(results, TokenResult{Token: token, ErrorCode: classifyFCMError(resp.Error)})
		}
	}
	return results, nil
}

func (p *FCMProvider) buildMessage(tokens []string, payload models.PushPayload) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: p.channelID,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: payload.Title,
						Body:  payload.Body,
					},
					Sound: "default",
				},
			},
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: payload.Title,
				Body:  payload.Body,
			},
		},
	}
}

// classifyFCMError maps an FCM per-token error to a provider error code.
// INVALID_ARGUMENT is only treated as a dead token when FCM says the
// registration token itself is malformed; a bad payload must not prune.
func classifyFCMError(err error) string {
	switch {
	case err == nil:
		return ""
	case messaging.IsUnregistered(err):
		return PushErrNotRegistered
	case messaging.IsInvalidArgument(err):
		if strings.Contains(strings.ToLower(err.Error()), "registration token") {
			return PushErrInvalidToken
		}
		return PushErrInvalidArgument
	case messaging.IsSenderIDMismatch(err):
		return PushErrSenderIDMismatch
	case messaging.IsQuotaExceeded(err):
		return PushErrQuotaExceeded
	case messaging.IsUnavailable(err):
		return PushErrUnavailable
	case messaging.IsInternal(err):
		return PushErrInternal
	default:
		return PushErrUnknown
	}
}
