// Package engine implements the social-graph interaction engine: every
// compound operation (like, unlike, favorite, comment, delete-comment,
// follow, unfollow, create/delete post) runs as one atomic unit against
// the document store, so a reader never observes a post counter without
// its paired set mutation.
package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/repositories"
)

// PostCommitHook is invoked synchronously after a transaction commits,
// once per notification the transaction created. Hook failures are the
// hook's own problem; they can never roll back the committed work.
type PostCommitHook func(n *models.Notification)

// Engine coordinates interaction transactions over the repositories.
type Engine struct {
	txn           repositories.TxnRunner
	users         repositories.UserRepository
	posts         repositories.PostRepository
	comments      repositories.CommentRepository
	notifications repositories.NotificationRepository
	follows       repositories.FollowRepository
	hook          PostCommitHook
}

// New creates an Engine. hook may be nil.
func New(
	txn repositories.TxnRunner,
	users repositories.UserRepository,
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	notifications repositories.NotificationRepository,
	follows repositories.FollowRepository,
	hook PostCommitHook,
) *Engine {
	return &Engine{
		txn:           txn,
		users:         users,
		posts:         posts,
		comments:      comments,
		notifications: notifications,
		follows:       follows,
		hook:          hook,
	}
}

// createNotification inserts the notification document and attaches its
// id to the recipient's notifications and unreadNotifications sets,
// all inside the caller's transaction.
func (e *Engine) createNotification(ctx context.Context, recipient, sender primitive.ObjectID, notifType string, target primitive.ObjectID, targetModel string) (*models.Notification, error) {
	n := &models.Notification{
		Recipient:   recipient,
		Sender:      sender,
		Type:        notifType,
		Target:      target,
		TargetModel: targetModel,
	}
	if err := e.notifications.Create(ctx, n); err != nil {
		return nil, err
	}
	if err := e.users.PushNotification(ctx, recipient, n.ID); err != nil {
		return nil, err
	}
	return n, nil
}

// retractNotification deletes the notification matching the identity of
// a retracted action and pulls its id from the recipient's notification
// sets. Absence is a no-op.
func (e *Engine) retractNotification(ctx context.Context, recipient, sender primitive.ObjectID, notifType string, target primitive.ObjectID) error {
	deleted, err := e.notifications.FindAndDelete(ctx, recipient, sender, notifType, target)
	if err != nil {
		return err
	}
	if deleted == nil {
		return nil
	}
	return e.users.PullNotification(ctx, recipient, deleted.ID)
}

// fire delivers created notifications to the post-commit hook.
func (e *Engine) fire(notifications ...*models.Notification) {
	if e.hook == nil {
		return
	}
	for _, n := range notifications {
		if n != nil {
			e.hook(n)
		}
	}
}
