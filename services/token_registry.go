package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HSouheill/hireboard_notifications/apperrors"
	"github.com/HSouheill/hireboard_notifications/models"
	"github.com/HSouheill/hireboard_notifications/repositories"
)

// TokenOwnershipPolicy decides whether userID may take over a token that is
// currently registered to somebody else.
type TokenOwnershipPolicy interface {
	Name() string
	AllowTakeover(existing models.DeviceToken, userID string, now time.Time) error
}

const (
	PolicyLastWriterWins    = "last-writer-wins"
	PolicyRejectActiveOwner = "reject-active-owner"
)

// LastWriterWins hands the token to whoever registered it last.
type LastWriterWins struct{}

func (LastWriterWins) Name() string { return PolicyLastWriterWins }

func (LastWriterWins) AllowTakeover(models.DeviceToken, string, time.Time) error { return nil }

// RejectActiveOwner refuses the takeover while the current owner has used
// the token within ActiveWindow. Meant for shared or kiosk devices.
type RejectActiveOwner struct {
	ActiveWindow time.Duration
}

func (RejectActiveOwner) Name() string { return PolicyRejectActiveOwner }

func (p RejectActiveOwner) AllowTakeover(existing models.DeviceToken, _ string, now time.Time) error {
	if now.Sub(existing.LastActive) < p.ActiveWindow {
		return apperrors.Conflict("device token is registered to another active user")
	}
	return nil
}

// PolicyByName resolves the TOKEN_OWNERSHIP_POLICY setting.
func PolicyByName(name string, activeWindow time.Duration) (TokenOwnershipPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyLastWriterWins:
		return LastWriterWins{}, nil
	case PolicyRejectActiveOwner:
		return RejectActiveOwner{ActiveWindow: activeWindow}, nil
	default:
		return nil, fmt.Errorf("unknown token ownership policy %q", name)
	}
}

// TokenRegistry owns the user -> device tokens mapping.
type TokenRegistry struct {
	store  repositories.TokenStore
	policy TokenOwnershipPolicy
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewTokenRegistry(store repositories.TokenStore, policy TokenOwnershipPolicy, log logrus.FieldLogger) *TokenRegistry {
	if policy == nil {
		policy = LastWriterWins{}
	}
	return &TokenRegistry{store: store, policy: policy, log: log, now: time.Now}
}

// Register upserts token for userID and refreshes lastActive.
func (r *TokenRegistry) Register(ctx context.Context, userID, token, platform string) error {
	token = strings.TrimSpace(token)
	if userID == "" || token == "" {
		return apperrors.Validation("userId and token are required")
	}
	now := r.now()

	existing, err := r.store.FindByToken(ctx, token)
	switch {
	case err == nil && existing.UserID != userID:
		if err := r.policy.AllowTakeover(*existing, userID, now); err != nil {
			r.log.WithFields(logrus.Fields{
				"userId":  userID,
				"ownerId": existing.UserID,
				"policy":  r.policy.Name(),
			}).Warn("device token takeover rejected")
			return err
		}
		r.log.WithFields(logrus.Fields{
			"userId":     userID,
			"previousId": existing.UserID,
			"policy":     r.policy.Name(),
		}).Info("device token ownership migrated")
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return err
	}

	return r.store.Upsert(ctx, userID, token, platform, now)
}

// Unregister removes one of userID's own tokens. Unknown tokens are a no-op.
func (r *TokenRegistry) Unregister(ctx context.Context, userID, token string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.Validation("token is required")
	}
	_, err := r.store.DeleteUserToken(ctx, userID, token)
	return err
}

// TokensFor returns every token currently registered to userID.
func (r *TokenRegistry) TokensFor(ctx context.Context, userID string) ([]string, error) {
	records, err := r.store.TokensFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(records))
	tokens := make([]string, 0, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.Token]; dup {
			continue
		}
		seen[rec.Token] = struct{}{}
		tokens = append(tokens, rec.Token)
	}
	return tokens, nil
}

// Prune deletes tokens regardless of their owner. Only pass tokens the
// provider reported as permanently invalid.
func (r *TokenRegistry) Prune(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	deleted, err := r.store.DeleteTokens(ctx, tokens)
	if err != nil {
		return err
	}
	r.log.WithFields(logrus.Fields{"requested": len(tokens), "deleted": deleted}).Info("pruned invalid device tokens")
	return nil
}
