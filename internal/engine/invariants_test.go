package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/backend/internal/consistency"
	"github.com/campuslink/backend/internal/models"
)

type discardReports struct{ count int }

func (d *discardReports) Save(ctx context.Context, r *models.DriftReport) error {
	d.count++
	return nil
}

func (d *discardReports) ListRecent(ctx context.Context, limit int) ([]models.DriftReport, error) {
	return nil, nil
}

// A mixed committed sequence of interactions must leave zero drift:
// every counter equals its set size and every like is bidirectional.
func TestCommittedSequencesLeaveNoDrift(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	users := make([]*models.User, 4)
	for i, name := range []string{"alice", "bob", "carol", "dave"} {
		users[i] = env.createUser(t, name)
	}
	posts := make([]*models.Post, 3)
	for i := range posts {
		posts[i] = env.createPost(t, users[i].ID, "post")
	}

	// Likes, some of them undone.
	for _, u := range users {
		for _, p := range posts {
			if u.ID == p.UserID {
				continue
			}
			_, err := env.engine.LikePost(ctx, u.ID, p.ID)
			require.NoError(t, err)
		}
	}
	_, err := env.engine.UnlikePost(ctx, users[3].ID, posts[0].ID)
	require.NoError(t, err)
	_, err = env.engine.UnlikePost(ctx, users[2].ID, posts[1].ID)
	require.NoError(t, err)

	// Comments, one deleted.
	c1, err := env.engine.CreateComment(ctx, users[1].ID, posts[0].ID, "one")
	require.NoError(t, err)
	_, err = env.engine.CreateComment(ctx, users[2].ID, posts[0].ID, "two")
	require.NoError(t, err)
	require.NoError(t, env.engine.DeleteComment(ctx, users[1].ID, c1.ID))

	// Follows, including a promotion and a demotion.
	require.NoError(t, env.engine.FollowUser(ctx, users[0].ID, users[1].ID))
	require.NoError(t, env.engine.FollowUser(ctx, users[1].ID, users[0].ID))
	require.NoError(t, env.engine.FollowUser(ctx, users[2].ID, users[0].ID))
	require.NoError(t, env.engine.UnfollowUser(ctx, users[1].ID, users[0].ID))

	// One post removed with everything attached to it.
	require.NoError(t, env.engine.DeletePost(ctx, users[2].ID, posts[2].ID))

	reports := &discardReports{}
	checker := consistency.NewChecker(env.store, env.store.Posts(), reports)
	found, err := checker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, found)
	assert.Zero(t, reports.count)
}
