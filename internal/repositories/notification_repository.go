package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuslink/backend/internal/errs"
	"github.com/campuslink/backend/internal/models"
)

// NotificationRepository defines the interface for notification document
// operations. FindAndDelete locates a notification by its full identity
// (recipient, sender, type, target) so an inverse action removes exactly
// the notification its action created, and no other.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	FindAndDelete(ctx context.Context, recipient, sender primitive.ObjectID, notifType string, target primitive.ObjectID) (*models.Notification, error)
	DeleteByTarget(ctx context.Context, target primitive.ObjectID) ([]models.Notification, error)
	ListByRecipient(ctx context.Context, recipient primitive.ObjectID, skip, limit int64) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, recipient primitive.ObjectID) error
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// Create inserts a new notification document.
func (r *MongoNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	if _, err := r.collection.InsertOne(ctx, n); err != nil {
		return errs.Wrap(errs.KindStoreFailure, "notifications.Create", err)
	}
	return nil
}

// GetByID retrieves a notification by id.
func (r *MongoNotificationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var n models.Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.E(errs.KindNotFound, "notifications.Get", "notification not found")
		}
		return nil, errs.Wrap(errs.KindStoreFailure, "notifications.Get", err)
	}
	return &n, nil
}

// FindAndDelete removes the notification matching the full identity and
// returns it. Returns (nil, nil) when no such notification exists; the
// inverse action treats that as a no-op.
func (r *MongoNotificationRepository) FindAndDelete(ctx context.Context, recipient, sender primitive.ObjectID, notifType string, target primitive.ObjectID) (*models.Notification, error) {
	filter := bson.M{
		"recipient": recipient,
		"sender":    sender,
		"type":      notifType,
		"target":    target,
	}
	var n models.Notification
	err := r.collection.FindOneAndDelete(ctx, filter).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, errs.Wrap(errs.KindStoreFailure, "notifications.FindAndDelete", err)
	}
	return &n, nil
}

// DeleteByTarget removes every notification referencing the target and
// returns the removed documents so their ids can be pulled from the
// recipients' notification sets.
func (r *MongoNotificationRepository) DeleteByTarget(ctx context.Context, target primitive.ObjectID) ([]models.Notification, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"target": target})
	if err != nil {
		return nil, errs.Wrap(errs.KindStoreFailure, "notifications.DeleteByTarget", err)
	}
	var removed []models.Notification
	if err = cursor.All(ctx, &removed); err != nil {
		return nil, errs.Wrap(errs.KindStoreFailure, "notifications.DeleteByTarget", err)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"target": target}); err != nil {
		return nil, errs.Wrap(errs.KindStoreFailure, "notifications.DeleteByTarget", err)
	}
	return removed, nil
}

// ListByRecipient retrieves a recipient's notifications, newest first.
func (r *MongoNotificationRepository) ListByRecipient(ctx context.Context, recipient primitive.ObjectID, skip, limit int64) ([]models.Notification, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"recipient": recipient}, findOptions)
	if err != nil {
		return nil, errs.Wrap(errs.KindStoreFailure, "notifications.ListByRecipient", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, errs.Wrap(errs.KindStoreFailure, "notifications.ListByRecipient", err)
	}
	return notifications, nil
}

// CountUnread returns the number of unread notifications for a recipient.
func (r *MongoNotificationRepository) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"recipient": recipient, "is_read": false})
	if err != nil {
		return 0, errs.Wrap(errs.KindStoreFailure, "notifications.CountUnread", err)
	}
	return count, nil
}

// MarkRead flags a single notification as read.
func (r *MongoNotificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"is_read": true, "updated_at": time.Now()},
	})
	if err != nil {
		return errs.Wrap(errs.KindStoreFailure, "notifications.MarkRead", err)
	}
	if res.MatchedCount == 0 {
		return errs.E(errs.KindNotFound, "notifications.MarkRead", "notification not found")
	}
	return nil
}

// MarkAllRead flags every unread notification of a recipient as read.
func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, recipient primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"recipient": recipient, "is_read": false}, bson.M{
		"$set": bson.M{"is_read": true, "updated_at": time.Now()},
	})
	if err != nil {
		return errs.Wrap(errs.KindStoreFailure, "notifications.MarkAllRead", err)
	}
	return nil
}
