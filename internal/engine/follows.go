package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campuslink/backend/internal/errs"
	"github.com/campuslink/backend/internal/models"
)

// FollowUser creates the directed follow edge and adds the follower to
// the target's followers set. When the target already follows the actor
// the edge is mutual: both users gain each other in their friends sets
// and both edges get followBack=true. Following yourself is rejected,
// and a duplicate edge is a Conflict. The target receives a FOLLOW
// notification.
func (e *Engine) FollowUser(ctx context.Context, followerID, followingID primitive.ObjectID) error {
	const op = "engine.FollowUser"

	if followerID == followingID {
		return errs.E(errs.KindInvalidArgument, op, "you cannot follow yourself")
	}

	var created *models.Notification

	err := e.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := e.users.GetByID(ctx, followingID); err != nil {
			return err
		}
		if _, err := e.users.GetByID(ctx, followerID); err != nil {
			return err
		}

		exists, err := e.follows.Exists(ctx, followerID, followingID)
		if err != nil {
			return err
		}
		if exists {
			return errs.E(errs.KindConflict, op, "already following this user")
		}

		// Mutual edge check happens under the same snapshot as the
		// writes, so the friendship promotion cannot miss a reciprocal
		// follow committed in between.
		reciprocal, err := e.follows.Exists(ctx, followingID, followerID)
		if err != nil {
			return err
		}

		follow := &models.Follow{
			Follower:   followerID,
			Following:  followingID,
			FollowBack: reciprocal,
		}
		if err := e.follows.Create(ctx, follow); err != nil {
			return err
		}
		if err := e.users.AddFollower(ctx, followingID, followerID); err != nil {
			return err
		}

		if reciprocal {
			if err := e.users.AddFriend(ctx, followerID, followingID); err != nil {
				return err
			}
			if err := e.users.AddFriend(ctx, followingID, followerID); err != nil {
				return err
			}
			if err := e.follows.SetFollowBack(ctx, followingID, followerID, true); err != nil {
				return err
			}
		}

		created, err = e.createNotification(ctx, followingID, followerID, models.NotificationFollow, followerID, models.TargetUser)
		return err
	})
	if err != nil {
		return err
	}

	e.fire(created)
	return nil
}

// UnfollowUser removes the directed follow edge and the follower from
// the target's followers set. When the relationship was mutual both
// friends sets are demoted and the reciprocal edge loses its followBack
// flag. Unfollowing a user you do not follow is a Conflict.
func (e *Engine) UnfollowUser(ctx context.Context, followerID, followingID primitive.ObjectID) error {
	const op = "engine.UnfollowUser"

	if followerID == followingID {
		return errs.E(errs.KindInvalidArgument, op, "you cannot unfollow yourself")
	}

	return e.txn.WithTransaction(ctx, func(ctx context.Context) error {
		deleted, err := e.follows.Delete(ctx, followerID, followingID)
		if err != nil {
			return err
		}
		if !deleted {
			return errs.E(errs.KindConflict, op, "you are not following this user")
		}

		follower, err := e.users.GetByID(ctx, followerID)
		if err != nil {
			return err
		}
		if err := e.users.RemoveFollower(ctx, followingID, followerID); err != nil {
			return err
		}

		if follower.HasFriend(followingID) {
			if err := e.users.RemoveFriend(ctx, followerID, followingID); err != nil {
				return err
			}
			if err := e.users.RemoveFriend(ctx, followingID, followerID); err != nil {
				return err
			}
			if err := e.follows.SetFollowBack(ctx, followingID, followerID, false); err != nil {
				return err
			}
		}
		return nil
	})
}
