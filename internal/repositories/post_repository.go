package repositories

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuslink/backend/internal/errs"
	"github.com/campuslink/backend/internal/models"
)

// PostRepository defines the interface for post document operations.
// The counter mutations are paired with their set mutations: AddLike
// pushes the user id and increments likes_count in one update, and the
// decrementing updates clamp the counter at 0.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	List(ctx context.Context, before time.Time, limit int64) ([]models.Post, error)
	ListByUserID(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Post, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	AddLike(ctx context.Context, postID, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error
	PushComment(ctx context.Context, postID, commentID primitive.ObjectID) error
	PullComment(ctx context.Context, postID, commentID primitive.ObjectID) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// Create inserts a new post with zeroed counters and empty sets.
func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []primitive.ObjectID{}
	}
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return errs.Wrap(errs.KindStoreFailure, "posts.Create", errors.Wrap(err, "inserting post"))
	}
	return nil
}

// GetByID retrieves a post by id.
func (r *MongoPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.E(errs.KindNotFound, "posts.Get", "post not found")
		}
		return nil, errs.Wrap(errs.KindStoreFailure, "posts.Get", err)
	}
	return &post, nil
}

// List retrieves posts created before the given time, newest first.
func (r *MongoPostRepository) List(ctx context.Context, before time.Time, limit int64) ([]models.Post, error) {
	filter := bson.M{}
	if !before.IsZero() {
		filter["created_at"] = bson.M{"$lt": before}
	}
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, filter, findOptions)
}

// ListByUserID retrieves posts by a specific author, newest first.
func (r *MongoPostRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"user_id": userID}, findOptions)
}

// ListAll returns every post; used by the consistency checker.
func (r *MongoPostRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, bson.M{}, options.Find())
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.Wrap(errs.KindStoreFailure, "posts.List", err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, errs.Wrap(errs.KindStoreFailure, "posts.List", err)
	}
	return posts, nil
}

// Delete removes a post document.
func (r *MongoPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.Wrap(errs.KindStoreFailure, "posts.Delete", err)
	}
	if res.DeletedCount == 0 {
		return errs.E(errs.KindNotFound, "posts.Delete", "post not found")
	}
	return nil
}

// AddLike adds userID to the post's likes set and increments likes_count by 1.
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return r.updateByID(ctx, "posts.AddLike", postID, bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$inc":      bson.M{"likes_count": 1},
		"$set":      bson.M{"updated_at": time.Now()},
	})
}

// RemoveLike removes userID from the likes set and decrements
// likes_count by 1, clamped at 0, in a single update.
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return r.pullWithClampedCounter(ctx, "posts.RemoveLike", postID, "likes", "likes_count", userID)
}

// PushComment prepends commentID (newest first) and increments comments_count by 1.
func (r *MongoPostRepository) PushComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	return r.updateByID(ctx, "posts.PushComment", postID, bson.M{
		"$push": bson.M{"comments": bson.M{"$each": bson.A{commentID}, "$position": 0}},
		"$inc":  bson.M{"comments_count": 1},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}

// PullComment removes commentID and decrements comments_count by 1, clamped at 0.
func (r *MongoPostRepository) PullComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	return r.pullWithClampedCounter(ctx, "posts.PullComment", postID, "comments", "comments_count", commentID)
}

func (r *MongoPostRepository) updateByID(ctx context.Context, op string, id primitive.ObjectID, update interface{}) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return errs.Wrap(errs.KindStoreFailure, op, err)
	}
	if res.MatchedCount == 0 {
		return errs.E(errs.KindNotFound, op, "post not found")
	}
	return nil
}

func (r *MongoPostRepository) pullWithClampedCounter(ctx context.Context, op string, id primitive.ObjectID, setField, counterField string, member primitive.ObjectID) error {
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
