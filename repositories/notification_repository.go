package repositories

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/hireboard_notifications/apperrors"
	"github.com/HSouheill/hireboard_notifications/models"
)

const NotificationsCollection = "notifications"

type MongoNotificationStore struct {
	collection *mongo.Collection
	validate   *validator.Validate
	now        func() time.Time
}

func NewMongoNotificationStore(db *mongo.Database, validate *validator.Validate) *MongoNotificationStore {
	return &MongoNotificationStore{
		collection: db.Collection(NotificationsCollection),
		validate:   validate,
		now:        time.Now,
	}
}

func (r *MongoNotificationStore) Create(ctx context.Context, n *models.Notification) (primitive.ObjectID, error) {
	if err := validateNotification(r.validate, n); err != nil {
		return primitive.NilObjectID, err
	}

	now := r.now().UTC()
	n.ID = primitive.NewObjectID()
	n.IsRead = false
	n.CreatedAt = now
	n.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, n); err != nil {
		return primitive.NilObjectID, apperrors.StoreUnavailable(err, "failed to insert notification")
	}
	return n.ID, nil
}

func (r *MongoNotificationStore) ListByOwner(ctx context.Context, audience models.Audience, ownerID string, q models.ListQuery) ([]models.Notification, models.PageMeta, error) {
	q = q.Normalize(models.DefaultPageSize, models.MaxPageSize)
	filter := ownerFilter(audience, ownerID)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, models.PageMeta{}, apperrors.StoreUnavailable(err, "failed to count notifications")
	}
	meta := models.NewPageMeta(q.Current, q.PageSize, total)
	result := []models.Notification{}
	if meta.Offset() >= total {
		return result, meta, nil
	}

	dir := 1
	if q.Sort.Desc {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: q.Sort.Field, Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(meta.Offset()).
		SetLimit(int64(q.PageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, models.PageMeta{}, apperrors.StoreUnavailable(err, "failed to list notifications")
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &result); err != nil {
		return nil, models.PageMeta{}, apperrors.StoreUnavailable(err, "failed to decode notifications")
	}
	return result, meta, nil
}

func (r *MongoNotificationStore) MarkRead(ctx context.Context, audience models.Audience, id, ownerID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.NotFound("notification not found")
	}

	filter := ownerFilter(audience, ownerID)
	filter["_id"] = objID
	filter["isRead"] = false

	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"isRead":    true,
		"updatedAt": r.now().UTC(),
	}})
	if err != nil {
		return apperrors.StoreUnavailable(err, "failed to mark notification read")
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Nothing unread matched: either already read (no-op) or not ours.
	delete(filter, "isRead")
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return apperrors.StoreUnavailable(err, "failed to look up notification")
	}
	if n == 0 {
		return apperrors.NotFound("notification not found")
	}
	return nil
}

func (r *MongoNotificationStore) MarkAllRead(ctx context.Context, audience models.Audience, ownerID string) error {
	return r.setAllRead(ctx, audience, ownerID, true)
}

func (r *MongoNotificationStore) MarkAllUnread(ctx context.Context, audience models.Audience, ownerID string) error {
	return r.setAllRead(ctx, audience, ownerID, false)
}

func (r *MongoNotificationStore) setAllRead(ctx context.Context, audience models.Audience, ownerID string, read bool) error {
	filter := ownerFilter(audience, ownerID)
	filter["isRead"] = !read

	_, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{
		"isRead":    read,
		"updatedAt": r.now().UTC(),
	}})
	if err != nil {
		return apperrors.StoreUnavailable(err, "failed to update notifications")
	}
	return nil
}

func (r *MongoNotificationStore) CountUnread(ctx context.Context, audience models.Audience, ownerID string) (int64, error) {
	filter := ownerFilter(audience, ownerID)
	filter["isRead"] = false

	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, apperrors.StoreUnavailable(err, "failed to count unread notifications")
	}
	return n, nil
}

func ownerFilter(audience models.Audience, ownerID string) bson.M {
	return bson.M{"audience": audience, "ownerId": ownerID}
}
