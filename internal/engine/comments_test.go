package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/backend/internal/errs"
	"github.com/campuslink/backend/internal/models"
)

func TestCreateComment(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	commenter := env.createUser(t, "commenter")
	post := env.createPost(t, author.ID, "discuss")

	first, err := env.engine.CreateComment(context.Background(), commenter.ID, post.ID, "first")
	require.NoError(t, err)
	second, err := env.engine.CreateComment(context.Background(), commenter.ID, post.ID, "second")
	require.NoError(t, err)

	got := env.post(t, post.ID)
	assert.Equal(t, 2, got.CommentsCount)
	// Newest comment sits at the front of the list.
	require.Len(t, got.Comments, 2)
	assert.Equal(t, second.ID, got.Comments[0])
	assert.Equal(t, first.ID, got.Comments[1])

	ns := env.notificationsFor(t, author.ID)
	require.Len(t, ns, 2)
	assert.Equal(t, models.NotificationComment, ns[0].Type)
	assert.Equal(t, post.ID, ns[0].Target)
	assert.Len(t, env.fired, 2)
}

func TestCreateCommentEmptyContentIsValidation(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	commenter := env.createUser(t, "commenter")
	post := env.createPost(t, author.ID, "discuss")

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := env.engine.CreateComment(context.Background(), commenter.ID, post.ID, content)
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	}
	assert.Equal(t, 0, env.post(t, post.ID).CommentsCount)
}

func TestCommentOwnPostSkipsNotification(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "note to self")

	_, err := env.engine.CreateComment(context.Background(), author.ID, post.ID, "reminder")
	require.NoError(t, err)

	assert.Empty(t, env.notificationsFor(t, author.ID))
	assert.Empty(t, env.fired)
	assert.Equal(t, 1, env.post(t, post.ID).CommentsCount)
}

func TestDeleteComment(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	commenter := env.createUser(t, "commenter")
	post := env.createPost(t, author.ID, "discuss")

	comment, err := env.engine.CreateComment(context.Background(), commenter.ID, post.ID, "remove me")
	require.NoError(t, err)

	require.NoError(t, env.engine.DeleteComment(context.Background(), commenter.ID, comment.ID))

	got := env.post(t, post.ID)
	assert.Equal(t, 0, got.CommentsCount)
	assert.Empty(t, got.Comments)

	_, err = env.store.Comments().GetByID(context.Background(), comment.ID)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	// The COMMENT notification was retracted with the comment.
	assert.Empty(t, env.notificationsFor(t, author.ID))
	gotAuthor := env.user(t, author.ID)
	assert.Empty(t, gotAuthor.Notifications)
	assert.Empty(t, gotAuthor.UnreadNotifications)
}

func TestDeleteCommentNotAuthorIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	commenter := env.createUser(t, "commenter")
	intruder := env.createUser(t, "intruder")
	post := env.createPost(t, author.ID, "discuss")

	comment, err := env.engine.CreateComment(context.Background(), commenter.ID, post.ID, "mine")
	require.NoError(t, err)

	err = env.engine.DeleteComment(context.Background(), intruder.ID, comment.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))

	// Nothing changed.
	assert.Equal(t, 1, env.post(t, post.ID).CommentsCount)
	assert.Len(t, env.notificationsFor(t, author.ID), 1)
}

func TestDeleteCommentMissingIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "user")

	err := env.engine.DeleteComment(context.Background(), user.ID, fakeID())
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestDeleteCommentSurvivesMissingPost(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	commenter := env.createUser(t, "commenter")
	post := env.createPost(t, author.ID, "short lived")

	comment, err := env.engine.CreateComment(context.Background(), commenter.ID, post.ID, "orphan")
	require.NoError(t, err)

	// Remove the parent post out from under the comment.
	require.NoError(t, env.store.Posts().Delete(context.Background(), post.ID))

	require.NoError(t, env.engine.DeleteComment(context.Background(), commenter.ID, comment.ID))
	_, err = env.store.Comments().GetByID(context.Background(), comment.ID)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestCreateCommentRollsBackWhenNotificationFails(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	commenter := env.createUser(t, "commenter")
	post := env.createPost(t, author.ID, "discuss")

	env.engine.notifications = &failingNotifications{NotificationRepository: env.store.Notifications()}

	_, err := env.engine.CreateComment(context.Background(), commenter.ID, post.ID, "doomed")
	require.Error(t, err)

	got := env.post(t, post.ID)
	assert.Equal(t, 0, got.CommentsCount)
	assert.Empty(t, got.Comments)
	comments, err := env.store.Comments().ListByPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
