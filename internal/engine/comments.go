package engine

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campuslink/backend/internal/errs"
	"github.com/campuslink/backend/internal/models"
)

// CreateComment creates a comment on a post, pushes its id to the front
// of the post's comments list, increments commentsCount by 1, and
// notifies the post's author (suppressed for self-comments). Empty
// content is a validation failure detected before any write.
func (e *Engine) CreateComment(ctx context.Context, userID, postID primitive.ObjectID, content string) (*models.Comment, error) {
	const op = "engine.CreateComment"

	if strings.TrimSpace(content) == "" {
		return nil, errs.E(errs.KindValidation, op, "comment content is required")
	}

	var comment *models.Comment
	var created *models.Notification

	err := e.txn.WithTransaction(ctx, func(ctx context.Context) error {
		post, err := e.posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if _, err := e.users.GetByID(ctx, userID); err != nil {
			return err
		}

		comment = &models.Comment{
			UserID:  userID,
			PostID:  postID,
			Content: content,
		}
		if err := e.comments.Create(ctx, comment); err != nil {
			return err
		}
		if err := e.posts.PushComment(ctx, postID, comment.ID); err != nil {
			return err
		}

		if post.UserID != userID {
			created, err = e.createNotification(ctx, post.UserID, userID, models.NotificationComment, postID, models.TargetPost)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.fire(created)
	return comment, nil
}

// DeleteComment removes a comment authored by userID: the comment id is
// pulled from its parent post, commentsCount moves down by 1 with a
// floor of 0, the comment document is deleted, and the matching COMMENT
// notification is retracted. Deleting someone else's comment is
// Forbidden and leaves everything untouched.
func (e *Engine) DeleteComment(ctx context.Context, userID, commentID primitive.ObjectID) error {
	const op = "engine.DeleteComment"

	return e.txn.WithTransaction(ctx, func(ctx context.Context) error {
		comment, err := e.comments.GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		if comment.UserID != userID {
			return errs.E(errs.KindForbidden, op, "not authorized to delete this comment")
		}

		post, err := e.posts.GetByID(ctx, comment.PostID)
		if err == nil {
			if err := e.posts.PullComment(ctx, post.ID, commentID); err != nil {
				return err
			}
			if err := e.retractNotification(ctx, post.UserID, userID, models.NotificationComment, post.ID); err != nil {
				return err
			}
		} else if !errs.Is(err, errs.KindNotFound) {
			// A missing parent post is tolerated: the comment can still
			// be deleted after its post is gone.
			return err
		}

		return e.comments.Delete(ctx, commentID)
	})
}
