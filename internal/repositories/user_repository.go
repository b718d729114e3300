package repositories

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campuslink/backend/internal/errs"
	"github.com/campuslink/backend/internal/models"
)

// UserRepository defines the interface for user document operations.
// Set mutations use $addToSet/$pull semantics; the paired counters on
// the user document (count_followers, count_friends) move by exactly 1
// per mutation and never go below 0.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error
	RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error
	AddFavoritePost(ctx context.Context, userID, postID primitive.ObjectID) error
	RemoveFavoritePost(ctx context.Context, userID, postID primitive.ObjectID) error

	PushPost(ctx context.Context, userID, postID primitive.ObjectID) error
	PullPost(ctx context.Context, userID, postID primitive.ObjectID) error

	AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
	RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error

	PushNotification(ctx context.Context, userID, notificationID primitive.ObjectID) error
	PullNotification(ctx context.Context, userID, notificationID primitive.ObjectID) error
	MarkNotificationRead(ctx context.Context, userID, notificationID primitive.ObjectID) error
	ClearUnreadNotifications(ctx context.Context, userID primitive.ObjectID) error
	ListAll(ctx context.Context) ([]models.User, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// Create inserts a new user document with empty relationship sets.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Role == "" {
		user.Role = models.RoleStudent
	}
	ensureUserSets(user)
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return errs.Wrap(errs.KindStoreFailure, "users.Create", errors.Wrap(err, "inserting user"))
	}
	return nil
}

func ensureUserSets(u *models.User) {
	if u.Posts == nil {
		u.Posts = []primitive.ObjectID{}
	}
	if u.LikedPosts == nil {
		u.LikedPosts = []primitive.ObjectID{}
	}
	if u.FavoritePosts == nil {
		u.FavoritePosts = []primitive.ObjectID{}
	}
	if u.BlockedUsers == nil {
		u.BlockedUsers = []primitive.ObjectID{}
	}
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.Friends == nil {
		u.Friends = []primitive.ObjectID{}
	}
	if u.Notifications == nil {
		u.Notifications = []primitive.ObjectID{}
	}
	if u.UnreadNotifications == nil {
		u.UnreadNotifications = []primitive.ObjectID{}
	}
}

// GetByID retrieves a user by id.
func (r *MongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByFirebaseUID retrieves a user by Firebase UID.
func (r *MongoUserRepository) GetByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"firebase_uid": firebaseUID})
}

// GetByEmail retrieves a user by email.
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.E(errs.KindNotFound, "users.Get", "user not found")
		}
		return nil, errs.Wrap(errs.KindStoreFailure, "users.Get", err)
	}
	return &user, nil
}

// AddLikedPost adds postID to the user's likedPosts set.
func (r *MongoUserRepository) AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.updateByID(ctx, "users.AddLikedPost", userID, bson.M{
		"$addToSet": bson.M{"liked_posts": postID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
}

// RemoveLikedPost removes postID from the user's likedPosts set.
func (r *MongoUserRepository) RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.updateByID(ctx, "users.RemoveLikedPost", userID, bson.M{
		"$pull": bson.M{"liked_posts": postID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}

// AddFavoritePost adds postID to the user's favoritePosts set.
// $addToSet makes repeated adds a no-op rather than an error.
func (r *MongoUserRepository) AddFavoritePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.updateByID(ctx, "users.AddFavoritePost", userID, bson.M{
		"$addToSet": bson.M{"favorite_posts": postID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
}

// RemoveFavoritePost removes postID from the user's favoritePosts set.
func (r *MongoUserRepository) RemoveFavoritePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.updateByID(ctx, "users.RemoveFavoritePost", userID, bson.M{
		"$pull": bson.M{"favorite_posts": postID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}

// PushPost prepends postID to the user's posts list.
func (r *MongoUserRepository) PushPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.updateByID(ctx, "users.PushPost", userID, bson.M{
		"$push": bson.M{"posts": bson.M{"$each": bson.A{postID}, "$position": 0}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}

// PullPost removes postID from the user's posts list.
func (r *MongoUserRepository) PullPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.updateByID(ctx, "users.PullPost", userID, bson.M{
		"$pull": bson.M{"posts": postID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}

// AddFollower adds followerID to the user's followers set and bumps the counter.
func (r *MongoUserRepository) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.updateByID(ctx, "users.AddFollower", userID, bson.M{
		"$addToSet": bson.M{"followers": followerID},
		"$inc":      bson.M{"count_followers": 1},
		"$set":      bson.M{"updated_at": time.Now()},
	})
}

// RemoveFollower removes followerID from the followers set with a
// clamped counter decrement.
func (r *MongoUserRepository) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.pipelineUpdate(ctx, "users.RemoveFollower", userID, "followers", "count_followers", followerID)
}

// AddFriend adds friendID to the user's friends set and bumps the counter.
func (r *MongoUserRepository) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	return r.updateByID(ctx, "users.AddFriend", userID, bson.M{
		"$addToSet": bson.M{"friends": friendID},
		"$inc":      bson.M{"count_friends": 1},
		"$set":      bson.M{"updated_at": time.Now()},
	})
}

// RemoveFriend removes friendID from the friends set with a clamped
// counter decrement.
func (r *MongoUserRepository) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	return r.pipelineUpdate(ctx, "users.RemoveFriend", userID, "friends", "count_friends", friendID)
}

// PushNotification appends the notification id to both the notifications
// and unreadNotifications sets.
func (r *MongoUserRepository) PushNotification(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	return r.updateByID(ctx, "users.PushNotification", userID, bson.M{
		"$push": bson.M{
			"notifications":        notificationID,
			"unread_notifications": notificationID,
		},
	})
}

// PullNotification removes the notification id from both notification
// sets. A dangling id left in either set is a bug.
func (r *MongoUserRepository) PullNotification(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	return r.updateByID(ctx, "users.PullNotification", userID, bson.M{
		"$pull": bson.M{
			"notifications":        notificationID,
			"unread_notifications": notificationID,
		},
	})
}

// MarkNotificationRead removes the notification id from the unread set
// only; it stays in the notifications set.
func (r *MongoUserRepository) MarkNotificationRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	return r.updateByID(ctx, "users.MarkNotificationRead", userID, bson.M{
		"$pull": bson.M{"unread_notifications": notificationID},
	})
}

// ClearUnreadNotifications empties the unread set.
func (r *MongoUserRepository) ClearUnreadNotifications(ctx context.Context, userID primitive.ObjectID) error {
	return r.updateByID(ctx, "users.ClearUnreadNotifications", userID, bson.M{
		"$set": bson.M{"unread_notifications": []primitive.ObjectID{}, "updated_at": time.Now()},
	})
}

// ListAll returns every user; used by the consistency checker.
func (r *MongoUserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, errs.Wrap(errs.KindStoreFailure, "users.ListAll", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, errs.Wrap(errs.KindStoreFailure, "users.ListAll", err)
	}
	return users, nil
}

func (r *MongoUserRepository) updateByID(ctx context.Context, op string, id primitive.ObjectID, update interface{}) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return errs.Wrap(errs.KindStoreFailure, op, err)
	}
	if res.MatchedCount == 0 {
		return errs.E(errs.KindNotFound, op, "user not found")
	}
	return nil
}

// pipelineUpdate removes member from a set field and decrements its
// paired counter by 1, clamped at 0, in a single update.
func (r *MongoUserRepository) pipelineUpdate(ctx context.Context, op string, id primitive.ObjectID, setField, counterField string, member primitive.ObjectID) error {
	update := bson.A{bson.M{"$set": bson.M{
		setField: bson.M{"$filter": bson.M{
			"input": "$" + setField,
			"as":    "m",
			"cond":  bson.M{"$ne": bson.A{"$$m", member}},
		}},
		counterField: bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$" + counterField, 1}}}},
		"updated_at": time.Now(),
	}}}
	return r.updateByID(ctx, op, id, update)
}
