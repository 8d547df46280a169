package repositories

import (
	"context"
	"time"

	"github.com/HSouheill/hireboard_notifications/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationStore persists notification records. Every read and mutation
// is scoped to one (audience, owner) pair.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) (primitive.ObjectID, error)
	ListByOwner(ctx context.Context, audience models.Audience, ownerID string, q models.ListQuery) ([]models.Notification, models.PageMeta, error)
	MarkRead(ctx context.Context, audience models.Audience, id, ownerID string) error
	MarkAllRead(ctx context.Context, audience models.Audience, ownerID string) error
	// MarkAllUnread is an administrative escape hatch, not part of the
	// notification lifecycle.
	MarkAllUnread(ctx context.Context, audience models.Audience, ownerID string) error
	CountUnread(ctx context.Context, audience models.Audience, ownerID string) (int64, error)
}

// TokenStore persists device tokens. Upsert must be atomic per token.
type TokenStore interface {
	FindByToken(ctx context.Context, token string) (*models.DeviceToken, error)
	Upsert(ctx context.Context, userID, token, platform string, at time.Time) error
	TokensFor(ctx context.Context, userID string) ([]models.DeviceToken, error)
	DeleteTokens(ctx context.Context, tokens []string) (int64, error)
	DeleteUserToken(ctx context.Context, userID, token string) (int64, error)
}
