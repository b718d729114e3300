package repositories

import (
	"context"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campuslink/backend/internal/models"
)

func TestMemoryTransactionRollback(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	u := &models.User{FullName: "alice", Email: "alice@campus.test"}
	require.NoError(t, store.Create(ctx, u))
	p := &models.Post{UserID: u.ID, Description: "hello"}
	require.NoError(t, store.Posts().Create(ctx, p))

	boom := pkgerrors.New("boom")
	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, store.AddLikedPost(ctx, u.ID, p.ID))
		require.NoError(t, store.Posts().AddLike(ctx, p.ID, u.ID))
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Every write inside the failed transaction is undone.
	got, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.LikedPosts)
	gotPost, err := store.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, gotPost.Likes)
	assert.Equal(t, 0, gotPost.LikesCount)
}

func TestMemoryTransactionCommit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	u := &models.User{FullName: "bob", Email: "bob@campus.test"}
	require.NoError(t, store.Create(ctx, u))
	p := &models.Post{UserID: u.ID, Description: "hello"}
	require.NoError(t, store.Posts().Create(ctx, p))

	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := store.AddLikedPost(ctx, u.ID, p.ID); err != nil {
			return err
		}
		return store.Posts().AddLike(ctx, p.ID, u.ID)
	})
	require.NoError(t, err)

	gotPost, err := store.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotPost.LikesCount)
	assert.Equal(t, []primitive.ObjectID{u.ID}, gotPost.Likes)
}

func TestMemoryClampedDecrements(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	u := &models.User{FullName: "carol", Email: "carol@campus.test"}
	require.NoError(t, store.Create(ctx, u))
	p := &models.Post{UserID: u.ID, Description: "hello"}
	require.NoError(t, store.Posts().Create(ctx, p))

	// Decrementing an already-zero counter stays at zero.
	require.NoError(t, store.Posts().RemoveLike(ctx, p.ID, u.ID))
	gotPost, err := store.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, gotPost.LikesCount)

	other := &models.User{FullName: "dave", Email: "dave@campus.test"}
	require.NoError(t, store.Create(ctx, other))
	require.NoError(t, store.RemoveFollower(ctx, u.ID, other.ID))
	require.NoError(t, store.RemoveFriend(ctx, u.ID, other.ID))
	got, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CountFollowers)
	assert.Equal(t, 0, got.CountFriends)
}

func TestMemoryReadsReturnCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	u := &models.User{FullName: "erin", Email: "erin@campus.test"}
	require.NoError(t, store.Create(ctx, u))

	got, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.LikedPosts = append(got.LikedPosts, primitive.NewObjectID())

	// Mutating the returned document must not leak into the store.
	again, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, again.LikedPosts)
}

func TestMemoryFollowUniqueness(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	require.NoError(t, store.Follows().Create(ctx, &models.Follow{Follower: a, Following: b}))
	err := store.Follows().Create(ctx, &models.Follow{Follower: a, Following: b})
	require.Error(t, err)

	// The reverse edge is a different edge.
	require.NoError(t, store.Follows().Create(ctx, &models.Follow{Follower: b, Following: a}))

	deleted, err := store.Follows().Delete(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = store.Follows().Delete(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, deleted)
}
