package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campuslink/backend/internal/models"
)

// AddToFavorites adds the post to the user's favoritePosts set. Unlike
// LikePost this is idempotent: favoriting twice leaves one occurrence
// and is not an error. Only the user document changes; no counter, no
// notification. Returns the updated actor.
func (e *Engine) AddToFavorites(ctx context.Context, userID, postID primitive.ObjectID) (*models.User, error) {
	var updated *models.User

	err := e.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := e.posts.GetByID(ctx, postID); err != nil {
			return err
		}
		if err := e.users.AddFavoritePost(ctx, userID, postID); err != nil {
			return err
		}
		var err error
		updated, err = e.users.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveFromFavorites removes the post from the user's favoritePosts
// set; removing an absent post is a no-op. Returns the updated actor.
func (e *Engine) RemoveFromFavorites(ctx context.Context, userID, postID primitive.ObjectID) (*models.User, error) {
	var updated *models.User

	err := e.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := e.posts.GetByID(ctx, postID); err != nil {
			return err
		}
		if err := e.users.RemoveFavoritePost(ctx, userID, postID); err != nil {
			return err
		}
		var err error
		updated, err = e.users.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
