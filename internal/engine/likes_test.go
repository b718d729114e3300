package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campuslink/backend/internal/errs"
	"github.com/campuslink/backend/internal/models"
)

func TestLikePost(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	liker := env.createUser(t, "liker")
	post := env.createPost(t, author.ID, "hello")

	updated, err := env.engine.LikePost(context.Background(), liker.ID, post.ID)
	require.NoError(t, err)

	// The returned actor reflects the committed state.
	assert.True(t, updated.HasLiked(post.ID))

	got := env.post(t, post.ID)
	assert.True(t, got.HasLike(liker.ID))
	assert.Equal(t, 1, got.LikesCount)
	assert.Len(t, got.Likes, got.LikesCount)

	// The author received a LIKE notification, attached to both
	// notification sets and delivered through the hook.
	ns := env.notificationsFor(t, author.ID)
	require.Len(t, ns, 1)
	assert.Equal(t, models.NotificationLike, ns[0].Type)
	assert.Equal(t, liker.ID, ns[0].Sender)
	assert.Equal(t, post.ID, ns[0].Target)
	assert.Equal(t, models.TargetPost, ns[0].TargetModel)

	gotAuthor := env.user(t, author.ID)
	assert.Equal(t, []string{ns[0].ID.Hex()}, hexIDs(gotAuthor.Notifications))
	assert.Equal(t, []string{ns[0].ID.Hex()}, hexIDs(gotAuthor.UnreadNotifications))

	require.Len(t, env.fired, 1)
	assert.Equal(t, ns[0].ID, env.fired[0].ID)
}

func TestLikeOwnPostSkipsNotification(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "self like")

	_, err := env.engine.LikePost(context.Background(), author.ID, post.ID)
	require.NoError(t, err)

	assert.Empty(t, env.notificationsFor(t, author.ID))
	assert.Empty(t, env.fired)
	assert.Equal(t, 1, env.post(t, post.ID).LikesCount)
}

func TestLikePostTwiceIsConflict(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	liker := env.createUser(t, "liker")
	post := env.createPost(t, author.ID, "hello")

	_, err := env.engine.LikePost(context.Background(), liker.ID, post.ID)
	require.NoError(t, err)

	_, err = env.engine.LikePost(context.Background(), liker.ID, post.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))

	// The failed attempt changed nothing.
	got := env.post(t, post.ID)
	assert.Equal(t, 1, got.LikesCount)
	assert.Len(t, got.Likes, 1)
	assert.Len(t, env.notificationsFor(t, author.ID), 1)
}

func TestLikeMissingPostIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	liker := env.createUser(t, "liker")

	_, err := env.engine.LikePost(context.Background(), liker.ID, fakeID())
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Empty(t, env.user(t, liker.ID).LikedPosts)
}

func TestUnlikePost(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	liker := env.createUser(t, "liker")
	post := env.createPost(t, author.ID, "hello")

	_, err := env.engine.LikePost(context.Background(), liker.ID, post.ID)
	require.NoError(t, err)

	updated, err := env.engine.UnlikePost(context.Background(), liker.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, updated.HasLiked(post.ID))

	got := env.post(t, post.ID)
	assert.False(t, got.HasLike(liker.ID))
	assert.Equal(t, 0, got.LikesCount)

	// The LIKE notification was retracted end to end: the document is
	// gone and the author's sets no longer reference it.
	assert.Empty(t, env.notificationsFor(t, author.ID))
	gotAuthor := env.user(t, author.ID)
	assert.Empty(t, gotAuthor.Notifications)
	assert.Empty(t, gotAuthor.UnreadNotifications)
}

func TestUnlikeNeverLikedIsConflict(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	liker := env.createUser(t, "liker")
	post := env.createPost(t, author.ID, "hello")

	_, err := env.engine.UnlikePost(context.Background(), liker.ID, post.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	assert.Equal(t, 0, env.post(t, post.ID).LikesCount)
}

func TestLikeRollsBackWhenNotificationFails(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	liker := env.createUser(t, "liker")
	post := env.createPost(t, author.ID, "hello")

	// Swap in a notification store that fails after the like mutations
	// already ran inside the transaction.
	env.engine.notifications = &failingNotifications{NotificationRepository: env.store.Notifications()}

	_, err := env.engine.LikePost(context.Background(), liker.ID, post.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindStoreFailure, errs.KindOf(err))

	// Everything rolled back: no half-applied like, no hook delivery.
	got := env.post(t, post.ID)
	assert.Equal(t, 0, got.LikesCount)
	assert.Empty(t, got.Likes)
	assert.False(t, env.user(t, liker.ID).HasLiked(post.ID))
	assert.Empty(t, env.fired)
}

func TestConcurrentDuplicateLikes(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	liker := env.createUser(t, "liker")
	post := env.createPost(t, author.ID, "contended")

	const attempts = 16
	var wg sync.WaitGroup
	errCh := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.engine.LikePost(context.Background(), liker.ID, post.ID)
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	succeeded := 0
	for err := range errCh {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, errs.KindConflict, errs.KindOf(err))
		}
	}
	assert.Equal(t, 1, succeeded)

	got := env.post(t, post.ID)
	assert.Equal(t, 1, got.LikesCount)
	assert.Len(t, got.Likes, 1)
	assert.Len(t, env.notificationsFor(t, author.ID), 1)
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
