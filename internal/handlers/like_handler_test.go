package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campuslink/backend/internal/engine"
	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/repositories"
)

func newLikeTestHandler(t *testing.T) (*LikeHandler, *repositories.MemoryStore) {
	t.Helper()
	store := repositories.NewMemoryStore()
	eng := engine.New(store, store, store.Posts(), store.Comments(), store.Notifications(), store.Follows(), nil)
	return NewLikeHandler(eng, store), store
}

// invoke runs a handler with the authenticated user and the post_id
// path parameter set, the way the JWT middleware and router would.
func invoke(t *testing.T, fn echo.HandlerFunc, method, path, userID, postID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("userID", userID)
	c.SetParamNames("post_id")
	c.SetParamValues(postID)

	if err := fn(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func hexList(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

func TestLikePostHandler(t *testing.T) {
	h, store := newLikeTestHandler(t)
	ctx := context.Background()

	author := &models.User{FullName: "author", Email: "author@campus.test"}
	require.NoError(t, store.Create(ctx, author))
	liker := &models.User{FullName: "liker", Email: "liker@campus.test"}
	require.NoError(t, store.Create(ctx, liker))
	post := &models.Post{UserID: author.ID, Description: "hello"}
	require.NoError(t, store.Posts().Create(ctx, post))

	rec := invoke(t, h.LikePost, http.MethodPost, "/posts/x/likes", liker.ID.Hex(), post.ID.Hex())
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, []string{post.ID.Hex()}, hexList(updated.LikedPosts))

	// Liking again surfaces the duplicate as 409.
	rec = invoke(t, h.LikePost, http.MethodPost, "/posts/x/likes", liker.ID.Hex(), post.ID.Hex())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLikePostHandlerUnknownPost(t *testing.T) {
	h, store := newLikeTestHandler(t)
	ctx := context.Background()

	liker := &models.User{FullName: "liker", Email: "liker@campus.test"}
	require.NoError(t, store.Create(ctx, liker))

	rec := invoke(t, h.LikePost, http.MethodPost, "/posts/x/likes", liker.ID.Hex(), "64c2aefa000000000000aaaa")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLikePostHandlerBadID(t *testing.T) {
	h, store := newLikeTestHandler(t)
	ctx := context.Background()

	liker := &models.User{FullName: "liker", Email: "liker@campus.test"}
	require.NoError(t, store.Create(ctx, liker))

	rec := invoke(t, h.LikePost, http.MethodPost, "/posts/x/likes", liker.ID.Hex(), "not-an-id")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLikePostHandlerUnauthenticated(t *testing.T) {
	h, _ := newLikeTestHandler(t)

	rec := invoke(t, h.LikePost, http.MethodPost, "/posts/x/likes", "", "64c2aefa000000000000aaaa")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnlikePostHandlerNeverLiked(t *testing.T) {
	h, store := newLikeTestHandler(t)
	ctx := context.Background()

	author := &models.User{FullName: "author", Email: "author@campus.test"}
	require.NoError(t, store.Create(ctx, author))
	liker := &models.User{FullName: "liker", Email: "liker@campus.test"}
	require.NoError(t, store.Create(ctx, liker))
	post := &models.Post{UserID: author.ID, Description: "hello"}
	require.NoError(t, store.Posts().Create(ctx, post))

	rec := invoke(t, h.UnlikePost, http.MethodDelete, "/posts/x/likes", liker.ID.Hex(), post.ID.Hex())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFavoriteHandlersAreIdempotent(t *testing.T) {
	h, store := newLikeTestHandler(t)
	ctx := context.Background()

	author := &models.User{FullName: "author", Email: "author@campus.test"}
	require.NoError(t, store.Create(ctx, author))
	fan := &models.User{FullName: "fan", Email: "fan@campus.test"}
	require.NoError(t, store.Create(ctx, fan))
	post := &models.Post{UserID: author.ID, Description: "hello"}
	require.NoError(t, store.Posts().Create(ctx, post))

	for i := 0; i < 2; i++ {
		rec := invoke(t, h.AddToFavorites, http.MethodPost, "/posts/x/favorites", fan.ID.Hex(), post.ID.Hex())
		require.Equal(t, http.StatusOK, rec.Code)
	}
	got, err := store.GetByID(ctx, fan.ID)
	require.NoError(t, err)
	assert.Len(t, got.FavoritePosts, 1)

	rec := invoke(t, h.RemoveFromFavorites, http.MethodDelete, "/posts/x/favorites", fan.ID.Hex(), post.ID.Hex())
	require.Equal(t, http.StatusOK, rec.Code)
	got, err = store.GetByID(ctx, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, got.FavoritePosts)
}
