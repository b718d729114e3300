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

// CommentRepository defines the interface for comment document operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) error
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// Create inserts a new comment document.
func (r *MongoCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	if _, err := r.collection.InsertOne(ctx, comment); err != nil {
		return errs.Wrap(errs.KindStoreFailure, "comments.Create", err)
	}
	return nil
}

// GetByID retrieves a comment by id.
func (r *MongoCommentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.E(errs.KindNotFound, "comments.Get", "comment not found")
		}
		return nil, errs.Wrap(errs.KindStoreFailure, "comments.Get", err)
	}
	return &comment, nil
}

// ListByPost retrieves all comments on a post, newest first.
func (r *MongoCommentRepository) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"post_id": postID}, findOptions)
	if err != nil {
		return nil, errs.Wrap(errs.KindStoreFailure, "comments.ListByPost", err)
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, errs.Wrap(errs.KindStoreFailure, "comments.ListByPost", err)
	}
	return comments, nil
}

// Delete removes a comment document.
func (r *MongoCommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.Wrap(errs.KindStoreFailure, "comments.Delete", err)
	}
	if res.DeletedCount == 0 {
		return errs.E(errs.KindNotFound, "comments.Delete", "comment not found")
	}
	return nil
}

// DeleteByPost removes every comment belonging to a post; used when the
// post itself is deleted.
func (r *MongoCommentRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"post_id": postID}); err != nil {
		return errs.Wrap(errs.KindStoreFailure, "comments.DeleteByPost", err)
	}
	return nil
}
