package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/hireboard_notifications/apperrors"
	"github.com/HSouheill/hireboard_notifications/models"
)

const DeviceTokensCollection = "device_tokens"

type MongoTokenStore struct {
	collection *mongo.Collection
}

func NewMongoTokenStore(db *mongo.Database) *MongoTokenStore {
	return &MongoTokenStore{collection: db.Collection(DeviceTokensCollection)}
}

func (r *MongoTokenStore) FindByToken(ctx context.Context, token string) (*models.DeviceToken, error) {
	var dt models.DeviceToken
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&dt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("device token not found")
		}
		return nil, apperrors.StoreUnavailable(err, "failed to find device token")
	}
	return &dt, nil
}

// Upsert assigns token to userID. The unique index on token makes the
// single-document update the serialization point: the last writer owns it.
func (r *MongoTokenStore) Upsert(ctx context.Context, userID, token, platform string, at time.Time) error {
	set := bson.M{"userId": userID, "lastActive": at.UTC()}
	if platform != "" {
		set["platform"] = platform
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "createdAt": at.UTC()},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, bson.M{"token": token}, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// Lost an insert race on the same token; the document exists now.
		_, err = r.collection.UpdateOne(ctx, bson.M{"token": token}, update, opts)
	}
	if err != nil {
		return apperrors.StoreUnavailable(err, "failed to upsert device token")
	}
	return nil
}

func (r *MongoTokenStore) TokensFor(ctx context.Context, userID string) ([]models.DeviceToken, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, apperrors.StoreUnavailable(err, "failed to find device tokens")
	}
	defer cursor.Close(ctx)

	tokens := []models.DeviceToken{}
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, apperrors.StoreUnavailable(err, "failed to decode device tokens")
	}
	return tokens, nil
}

func (r *MongoTokenStore) DeleteTokens(ctx context.Context, tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	res, err := r.collection.DeleteMany(ctx, bson.M{"token": bson.M{"$in": tokens}})
	if err != nil {
		return 0, apperrors.StoreUnavailable(err, "failed to delete device tokens")
	}
	return res.DeletedCount, nil
}

func (r *MongoTokenStore) DeleteUserToken(ctx context.Context, userID, token string) (int64, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "token": token})
	if err != nil {
		return 0, apperrors.StoreUnavailable(err, "failed to delete device token")
	}
	return res.DeletedCount, nil
}
