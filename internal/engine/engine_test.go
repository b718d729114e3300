package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campuslink/backend/internal/errs"
	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/repositories"
)

// testEnv wires an Engine to an in-memory store and records every
// notification delivered through the post-commit hook.
type testEnv struct {
	store  *repositories.MemoryStore
	engine *Engine
	fired  []*models.Notification
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{store: repositories.NewMemoryStore()}
	env.engine = New(
		env.store,
		env.store,
		env.store.Posts(),
		env.store.Comments(),
		env.store.Notifications(),
		env.store.Follows(),
		func(n *models.Notification) { env.fired = append(env.fired, n) },
	)
	return env
}

func (env *testEnv) createUser(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{FullName: name, Email: name + "@campus.test"}
	require.NoError(t, env.store.Create(context.Background(), u))
	return u
}

func (env *testEnv) createPost(t *testing.T, authorID primitive.ObjectID, description string) *models.Post {
	t.Helper()
	p := &models.Post{UserID: authorID, Description: description}
	require.NoError(t, env.store.Posts().Create(context.Background(), p))
	require.NoError(t, env.store.PushPost(context.Background(), authorID, p.ID))
	return p
}

func (env *testEnv) user(t *testing.T, id primitive.ObjectID) *models.User {
	t.Helper()
	u, err := env.store.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (env *testEnv) post(t *testing.T, id primitive.ObjectID) *models.Post {
	t.Helper()
	p, err := env.store.Posts().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (env *testEnv) notificationsFor(t *testing.T, recipient primitive.ObjectID) []models.Notification {
	t.Helper()
	ns, err := env.store.Notifications().ListByRecipient(context.Background(), recipient, 0, 0)
	require.NoError(t, err)
	return ns
}

func fakeID() primitive.ObjectID { return primitive.NewObjectID() }

// failingNotifications forces every notification insert to fail, so
// tests can verify that a failure late in a transaction rolls back the
// writes that preceded it.
type failingNotifications struct {
	repositories.NotificationRepository
}

func (f *failingNotifications) Create(ctx context.Context, n *models.Notification) error {
	return errs.E(errs.KindStoreFailure, "notifications.Create", "simulated store failure")
}
