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

// FollowRepository defines the interface for follow edge operations.
// Edges are unique per ordered (follower, following) pair.
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	Delete(ctx context.Context, follower, following primitive.ObjectID) (bool, error)
	Exists(ctx context.Context, follower, following primitive.ObjectID) (bool, error)
	SetFollowBack(ctx context.Context, follower, following primitive.ObjectID, followBack bool) error
	ListFollowing(ctx context.Context, follower primitive.ObjectID) ([]models.Follow, error)
}

// MongoFollowRepository implements FollowRepository for MongoDB
type MongoFollowRepository struct {
	collection *mongo.Collection
}

// NewMongoFollowRepository creates a new MongoFollowRepository and
// ensures the unique (follower, following) index.
func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	r := &MongoFollowRepository{collection: db.Collection("follows")}

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "follower", Value: 1}, {Key: "following", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Index creation failure is not fatal here; duplicate edges are also
	// rejected by the existence check inside the follow transaction.
	_, _ = r.collection.Indexes().CreateOne(ctx, indexModel)

	return r
}

// Create inserts a new follow edge.
func (r *MongoFollowRepository) Create(ctx context.Context, follow *models.Follow) error {
	follow.ID = primitive.NewObjectID()
	follow.CreatedAt = time.Now()
	if _, err := r.collection.InsertOne(ctx, follow); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.E(errs.KindConflict, "follows.Create", "already following this user")
		}
		return errs.Wrap(errs.KindStoreFailure, "follows.Create", err)
	}
	return nil
}

// Delete removes the (follower, following) edge and reports whether an
// edge actually existed.
func (r *MongoFollowRepository) Delete(ctx context.Context, follower, following primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"follower": follower, "following": following})
	if err != nil {
		return false, errs.Wrap(errs.KindStoreFailure, "follows.Delete", err)
	}
	return res.DeletedCount > 0, nil
}

// Exists reports whether the (follower, following) edge is present.
func (r *MongoFollowRepository) Exists(ctx context.Context, follower, following primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"follower": follower, "following": following})
	if err != nil {
		return false, errs.Wrap(errs.KindStoreFailure, "follows.Exists", err)
	}
	return count > 0, nil
}

// SetFollowBack updates the mutual-edge flag on an existing edge.
func (r *MongoFollowRepository) SetFollowBack(ctx context.Context, follower, following primitive.ObjectID, followBack bool) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"follower": follower, "following": following},
		bson.M{"$set": bson.M{"follow_back": followBack}},
	)
	if err != nil {
		return errs.Wrap(errs.KindStoreFailure, "follows.SetFollowBack", err)
	}
	return nil
}

// ListFollowing retrieves every edge originating from follower.
func (r *MongoFollowRepository) ListFollowing(ctx context.Context, follower primitive.ObjectID) ([]models.Follow, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"follower": follower})
	if err != nil {
		return nil, errs.Wrap(errs.KindStoreFailure, "follows.ListFollowing", err)
	}
	defer cursor.Close(ctx)

	var follows []models.Follow
	if err = cursor.All(ctx, &follows); err != nil {
		return nil, errs.Wrap(errs.KindStoreFailure, "follows.ListFollowing", err)
	}
	return follows, nil
}
