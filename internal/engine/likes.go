package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campuslink/backend/internal/errs"
	"github.com/campuslink/backend/internal/models"
)

// LikePost adds the user's like to a post: the user id joins the post's
// likes set, likesCount moves up by 1, the post id joins the user's
// likedPosts set, and the post's author receives a LIKE notification
// (suppressed when the actor likes their own post). A repeated like is
// a Conflict, not a no-op. Returns the updated actor.
func (e *Engine) LikePost(ctx context.Context, userID, postID primitive.ObjectID) (*models.User, error) {
	const op = "engine.LikePost"

	var updated *models.User
	var created *models.Notification

	err := e.txn.WithTransaction(ctx, func(ctx context.Context) error {
		post, err := e.posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		user, err := e.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		// The duplicate check and the mutation share the transaction
		// snapshot: two overlapping likes from the same user cannot
		// both pass this check and commit.
		if user.HasLiked(postID) {
			return errs.E(errs.KindConflict, op, "post already liked")
		}

		if err := e.users.AddLikedPost(ctx, userID, postID); err != nil {
			return err
		}
		if err := e.posts.AddLike(ctx, postID, userID); err != nil {
			return err
		}

		if post.UserID != userID {
			created, err = e.createNotification(ctx, post.UserID, userID, models.NotificationLike, postID, models.TargetPost)
			if err != nil {
				return err
			}
		}

		updated, err = e.users.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.fire(created)
	return updated, nil
}

// UnlikePost is the inverse of LikePost: it removes the paired set
// memberships, decrements likesCount with a floor of 0, and deletes the
// matching LIKE notification. Unliking a post that was never liked is a
// Conflict. Returns the updated actor.
func (e *Engine) UnlikePost(ctx context.Context, userID, postID primitive.ObjectID) (*models.User, error) {
	const op = "engine.UnlikePost"

	var updated *models.User

	err := e.txn.WithTransaction(ctx, func(ctx context.Context) error {
		post, err := e.posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		user, err := e.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if !user.HasLiked(postID) {
			return errs.E(errs.KindConflict, op, "post not liked yet")
		}

		if err := e.users.RemoveLikedPost(ctx, userID, postID); err != nil {
			return err
		}
		if err := e.posts.RemoveLike(ctx, postID, userID); err != nil {
			return err
		}
		if err := e.retractNotification(ctx, post.UserID, userID, models.NotificationLike, postID); err != nil {
			return err
		}

		updated, err = e.users.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
