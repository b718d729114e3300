package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/backend/internal/errs"
)

func TestAddToFavoritesIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	fan := env.createUser(t, "fan")
	post := env.createPost(t, author.ID, "keep this")

	for i := 0; i < 3; i++ {
		updated, err := env.engine.AddToFavorites(context.Background(), fan.ID, post.ID)
		require.NoError(t, err)
		assert.Len(t, updated.FavoritePosts, 1)
	}

	// Favoriting touches only the user document: no counter, no
	// notification, no change to the post.
	got := env.post(t, post.ID)
	assert.Equal(t, 0, got.LikesCount)
	assert.Empty(t, got.Likes)
	assert.Empty(t, env.notificationsFor(t, author.ID))
	assert.Empty(t, env.fired)
}

func TestRemoveFromFavoritesAbsentIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	fan := env.createUser(t, "fan")
	post := env.createPost(t, author.ID, "never favorited")

	updated, err := env.engine.RemoveFromFavorites(context.Background(), fan.ID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.FavoritePosts)
}

func TestFavoriteMissingPostIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	fan := env.createUser(t, "fan")

	_, err := env.engine.AddToFavorites(context.Background(), fan.ID, fakeID())
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestFavoritesIndependentOfLikes(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	fan := env.createUser(t, "fan")
	post := env.createPost(t, author.ID, "both")

	_, err := env.engine.AddToFavorites(context.Background(), fan.ID, post.ID)
	require.NoError(t, err)
	_, err = env.engine.LikePost(context.Background(), fan.ID, post.ID)
	require.NoError(t, err)

	// Removing the favorite leaves the like intact.
	updated, err := env.engine.RemoveFromFavorites(context.Background(), fan.ID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.FavoritePosts)
	assert.True(t, updated.HasLiked(post.ID))
	assert.Equal(t, 1, env.post(t, post.ID).LikesCount)
}
