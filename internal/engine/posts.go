package engine

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campuslink/backend/internal/errs"
	"github.com/campuslink/backend/internal/models"
)

// CreatePost inserts a new post and prepends its id to the author's
// posts list. A post needs a description or an attachment; the
// attachment URI, when present, was already resolved by the media
// collaborator before this transaction begins.
func (e *Engine) CreatePost(ctx context.Context, userID primitive.ObjectID, req models.CreatePostRequest) (*models.Post, error) {
	const op = "engine.CreatePost"

	if strings.TrimSpace(req.Description) == "" && req.Attachment == "" {
		return nil, errs.E(errs.KindValidation, op, "please provide a description or an attachment")
	}

	var post *models.Post

	err := e.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := e.users.GetByID(ctx, userID); err != nil {
			return err
		}

		post = &models.Post{
			UserID:           userID,
			Description:      req.Description,
			Attachment:       req.Attachment,
			AttachmentType:   req.AttachmentType,
			OriginalFileName: req.OriginalFileName,
			Category:         req.Category,
		}
		if err := e.posts.Create(ctx, post); err != nil {
			return err
		}
		return e.users.PushPost(ctx, userID, post.ID)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post owned by userID, pulls its id from the
// owner's posts list, deletes its comments, and retracts every
// notification targeting it so none outlives the post. Deleting someone
// else's post is Forbidden.
func (e *Engine) DeletePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	const op = "engine.DeletePost"

	return e.txn.WithTransaction(ctx, func(ctx context.Context) error {
		post, err := e.posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return errs.E(errs.KindForbidden, op, "you are not allowed to delete this post")
		}

		if err := e.posts.Delete(ctx, postID); err != nil {
			return err
		}
		if err := e.users.PullPost(ctx, userID, postID); err != nil {
			return err
		}
		if err := e.comments.DeleteByPost(ctx, postID); err != nil {
			return err
		}

		removed, err := e.notifications.DeleteByTarget(ctx, postID)
		if err != nil {
			return err
		}
		for _, n := range removed {
			if err := e.users.PullNotification(ctx, n.Recipient, n.ID); err != nil {
				return err
			}
		}
		return nil
	})
}
