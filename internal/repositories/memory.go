package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campuslink/backend/internal/errs"
	"github.com/campuslink/backend/internal/models"
)

// MemoryStore is an in-memory implementation of every repository
// interface plus TxnRunner. Transactions take the store mutex for their
// whole duration and restore a snapshot of the state when the function
// fails, giving the same all-or-nothing, isolated semantics the Mongo
// session provides. Used by unit tests and local runs without a
// replica set.
type MemoryStore struct {
	mu sync.Mutex

	users         map[primitive.ObjectID]*models.User
	posts         map[primitive.ObjectID]*models.Post
	comments      map[primitive.ObjectID]*models.Comment
	notifications map[primitive.ObjectID]*models.Notification
	follows       map[followKey]*models.Follow
}

type followKey struct {
	follower  primitive.ObjectID
	following primitive.ObjectID
}

var (
	_ TxnRunner              = (*MemoryStore)(nil)
	_ UserRepository         = (*MemoryStore)(nil)
	_ PostRepository         = (*memoryPosts)(nil)
	_ CommentRepository      = (*memoryComments)(nil)
	_ NotificationRepository = (*memoryNotifications)(nil)
	_ FollowRepository       = (*memoryFollows)(nil)
)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[primitive.ObjectID]*models.User),
		posts:         make(map[primitive.ObjectID]*models.Post),
		comments:      make(map[primitive.ObjectID]*models.Comment),
		notifications: make(map[primitive.ObjectID]*models.Notification),
		follows:       make(map[followKey]*models.Follow),
	}
}

type memTxnKey struct{}

// WithTransaction serializes transactions on the store mutex and rolls
// the state back to the pre-transaction snapshot when fn returns an error.
func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.clone()
	if err := fn(context.WithValue(ctx, memTxnKey{}, true)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

// lock acquires the store mutex unless the context already runs inside
// a transaction that holds it.
func (s *MemoryStore) lock(ctx context.Context) func() {
	if inTxn, _ := ctx.Value(memTxnKey{}).(bool); inTxn {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type memorySnapshot struct {
	users         map[primitive.ObjectID]*models.User
	posts         map[primitive.ObjectID]*models.Post
	comments      map[primitive.ObjectID]*models.Comment
	notifications map[primitive.ObjectID]*models.Notification
	follows       map[followKey]*models.Follow
}

func (s *MemoryStore) clone() memorySnapshot {
	snap := memorySnapshot{
		users:         make(map[primitive.ObjectID]*models.User, len(s.users)),
		posts:         make(map[primitive.ObjectID]*models.Post, len(s.posts)),
		comments:      make(map[primitive.ObjectID]*models.Comment, len(s.comments)),
		notifications: make(map[primitive.ObjectID]*models.Notification, len(s.notifications)),
		follows:       make(map[followKey]*models.Follow, len(s.follows)),
	}
	for id, u := range s.users {
		snap.users[id] = cloneUser(u)
	}
	for id, p := range s.posts {
		snap.posts[id] = clonePost(p)
	}
	for id, c := range s.comments {
		cc := *c
		snap.comments[id] = &cc
	}
	for id, n := range s.notifications {
		nn := *n
		snap.notifications[id] = &nn
	}
	for k, f := range s.follows {
		ff := *f
		snap.follows[k] = &ff
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.users = snap.users
	s.posts = snap.posts
	s.comments = snap.comments
	s.notifications = snap.notifications
	s.follows = snap.follows
}

func cloneUser(u *models.User) *models.User {
	cu := *u
	cu.Posts = cloneIDs(u.Posts)
	cu.LikedPosts = cloneIDs(u.LikedPosts)
	cu.FavoritePosts = cloneIDs(u.FavoritePosts)
	cu.BlockedUsers = cloneIDs(u.BlockedUsers)
	cu.Followers = cloneIDs(u.Followers)
	cu.Friends = cloneIDs(u.Friends)
	cu.Notifications = cloneIDs(u.Notifications)
	cu.UnreadNotifications = cloneIDs(u.UnreadNotifications)
	return &cu
}

func clonePost(p *models.Post) *models.Post {
	cp := *p
	cp.Likes = cloneIDs(p.Likes)
	cp.Comments = cloneIDs(p.Comments)
	return &cp
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(ids))
	copy(out, ids)
	return out
}

func addToSet(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

func pullID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func clampDec(n int) int {
	if n <= 0 {
		return 0
	}
	return n - 1
}

// ---- UserRepository ----

func (s *MemoryStore) Create(ctx context.Context, user *models.User) error {
	defer s.lock(ctx)()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Role == "" {
		user.Role = models.RoleStudent
	}
	ensureUserSets(user)
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	defer s.lock(ctx)()
	u, ok := s.users[id]
	if !ok {
		return nil, errs.E(errs.KindNotFound, "users.Get", "user not found")
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) GetByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	defer s.lock(ctx)()
	for _, u := range s.users {
		if u.FirebaseUID == firebaseUID {
			return cloneUser(u), nil
		}
	}
	return nil, errs.E(errs.KindNotFound, "users.Get", "user not found")
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer s.lock(ctx)()
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, errs.E(errs.KindNotFound, "users.Get", "user not found")
}

func (s *MemoryStore) mutateUser(ctx context.Context, op string, id primitive.ObjectID, fn func(u *models.User)) error {
	defer s.lock(ctx)()
	u, ok := s.users[id]
	if !ok {
		return errs.E(errs.KindNotFound, op, "user not found")
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.mutateUser(ctx, "users.AddLikedPost", userID, func(u *models.User) {
		u.LikedPosts = addToSet(u.LikedPosts, postID)
	})
}

func (s *MemoryStore) RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.mutateUser(ctx, "users.RemoveLikedPost", userID, func(u *models.User) {
		u.LikedPosts = pullID(u.LikedPosts, postID)
	})
}

func (s *MemoryStore) AddFavoritePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.mutateUser(ctx, "users.AddFavoritePost", userID, func(u *models.User) {
		u.FavoritePosts = addToSet(u.FavoritePosts, postID)
	})
}

func (s *MemoryStore) RemoveFavoritePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.mutateUser(ctx, "users.RemoveFavoritePost", userID, func(u *models.User) {
		u.FavoritePosts = pullID(u.FavoritePosts, postID)
	})
}

func (s *MemoryStore) PushPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.mutateUser(ctx, "users.PushPost", userID, func(u *models.User) {
		u.Posts = append([]primitive.ObjectID{postID}, u.Posts...)
	})
}

func (s *MemoryStore) PullPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.mutateUser(ctx, "users.PullPost", userID, func(u *models.User) {
		u.Posts = pullID(u.Posts, postID)
	})
}

func (s *MemoryStore) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return s.mutateUser(ctx, "users.AddFollower", userID, func(u *models.User) {
		u.Followers = addToSet(u.Followers, followerID)
		u.CountFollowers++
	})
}

func (s *MemoryStore) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return s.mutateUser(ctx, "users.RemoveFollower", userID, func(u *models.User) {
		u.Followers = pullID(u.Followers, followerID)
		u.CountFollowers = clampDec(u.CountFollowers)
	})
}

func (s *MemoryStore) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	return s.mutateUser(ctx, "users.AddFriend", userID, func(u *models.User) {
		u.Friends = addToSet(u.Friends, friendID)
		u.CountFriends++
	})
}

func (s *MemoryStore) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	return s.mutateUser(ctx, "users.RemoveFriend", userID, func(u *models.User) {
		u.Friends = pullID(u.Friends, friendID)
		u.CountFriends = clampDec(u.CountFriends)
	})
}

func (s *MemoryStore) PushNotification(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	return s.mutateUser(ctx, "users.PushNotification", userID, func(u *models.User) {
		u.Notifications = append(u.Notifications, notificationID)
		u.UnreadNotifications = append(u.UnreadNotifications, notificationID)
	})
}

func (s *MemoryStore) PullNotification(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	return s.mutateUser(ctx, "users.PullNotification", userID, func(u *models.User) {
		u.Notifications = pullID(u.Notifications, notificationID)
		u.UnreadNotifications = pullID(u.UnreadNotifications, notificationID)
	})
}

func (s *MemoryStore) MarkNotificationRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	return s.mutateUser(ctx, "users.MarkNotificationRead", userID, func(u *models.User) {
		u.UnreadNotifications = pullID(u.UnreadNotifications, notificationID)
	})
}

func (s *MemoryStore) ClearUnreadNotifications(ctx context.Context, userID primitive.ObjectID) error {
	return s.mutateUser(ctx, "users.ClearUnreadNotifications", userID, func(u *models.User) {
		u.UnreadNotifications = []primitive.ObjectID{}
	})
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]models.User, error) {
	defer s.lock(ctx)()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *cloneUser(u))
	}
	return users, nil
}

// ---- PostRepository ----

// Posts returns the store viewed as a PostRepository.
func (s *MemoryStore) Posts() PostRepository { return (*memoryPosts)(s) }

type memoryPosts MemoryStore

func (s *memoryPosts) store() *MemoryStore { return (*MemoryStore)(s) }

func (s *memoryPosts) Create(ctx context.Context, post *models.Post) error {
	st := s.store()
	defer st.lock(ctx)()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []primitive.ObjectID{}
	}
	st.posts[post.ID] = clonePost(post)
	return nil
}

func (s *memoryPosts) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	st := s.store()
	defer st.lock(ctx)()
	p, ok := st.posts[id]
	if !ok {
		return nil, errs.E(errs.KindNotFound, "posts.Get", "post not found")
	}
	return clonePost(p), nil
}

func (s *memoryPosts) List(ctx context.Context, before time.Time, limit int64) ([]models.Post, error) {
	st := s.store()
	defer st.lock(ctx)()
	var posts []models.Post
	for _, p := range st.posts {
		if before.IsZero() || p.CreatedAt.Before(before) {
			posts = append(posts, *clonePost(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	if limit > 0 && int64(len(posts)) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (s *memoryPosts) ListByUserID(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	st := s.store()
	defer st.lock(ctx)()
	var posts []models.Post
	for _, p := range st.posts {
		if p.UserID == userID {
			posts = append(posts, *clonePost(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	if skip > 0 {
		if int64(len(posts)) <= skip {
			return nil, nil
		}
		posts = posts[skip:]
	}
	if limit > 0 && int64(len(posts)) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (s *memoryPosts) ListAll(ctx context.Context) ([]models.Post, error) {
	return s.List(ctx, time.Time{}, 0)
}

func (s *memoryPosts) Delete(ctx context.Context, id primitive.ObjectID) error {
	st := s.store()
	defer st.lock(ctx)()
	if _, ok := st.posts[id]; !ok {
		return errs.E(errs.KindNotFound, "posts.Delete", "post not found")
	}
	delete(st.posts, id)
	return nil
}

func (s *memoryPosts) mutate(ctx context.Context, op string, id primitive.ObjectID, fn func(p *models.Post)) error {
	st := s.store()
	defer st.lock(ctx)()
	p, ok := st.posts[id]
	if !ok {
		return errs.E(errs.KindNotFound, op, "post not found")
	}
	fn(p)
	p.UpdatedAt = time.Now()
	return nil
}

func (s *memoryPosts) AddLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return s.mutate(ctx, "posts.AddLike", postID, func(p *models.Post) {
		p.Likes = addToSet(p.Likes, userID)
		p.LikesCount++
	})
}

func (s *memoryPosts) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return s.mutate(ctx, "posts.RemoveLike", postID, func(p *models.Post) {
		p.Likes = pullID(p.Likes, userID)
		p.LikesCount = clampDec(p.LikesCount)
	})
}

func (s *memoryPosts) PushComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	return s.mutate(ctx, "posts.PushComment", postID, func(p *models.Post) {
		p.Comments = append([]primitive.ObjectID{commentID}, p.Comments...)
		p.CommentsCount++
	})
}

func (s *memoryPosts) PullComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	return s.mutate(ctx, "posts.PullComment", postID, func(p *models.Post) {
		p.Comments = pullID(p.Comments, commentID)
		p.CommentsCount = clampDec(p.CommentsCount)
	})
}

// ---- CommentRepository ----

// Comments returns the store viewed as a CommentRepository.
func (s *MemoryStore) Comments() CommentRepository { return (*memoryComments)(s) }

type memoryComments MemoryStore

func (s *memoryComments) store() *MemoryStore { return (*MemoryStore)(s) }

func (s *memoryComments) Create(ctx context.Context, comment *models.Comment) error {
	st := s.store()
	defer st.lock(ctx)()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	cc := *comment
	st.comments[comment.ID] = &cc
	return nil
}

func (s *memoryComments) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	st := s.store()
	defer st.lock(ctx)()
	c, ok := st.comments[id]
	if !ok {
		return nil, errs.E(errs.KindNotFound, "comments.Get", "comment not found")
	}
	cc := *c
	return &cc, nil
}

func (s *memoryComments) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	st := s.store()
	defer st.lock(ctx)()
	var comments []models.Comment
	for _, c := range st.comments {
		if c.PostID == postID {
			comments = append(comments, *c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })
	return comments, nil
}

func (s *memoryComments) Delete(ctx context.Context, id primitive.ObjectID) error {
	st := s.store()
	defer st.lock(ctx)()
	if _, ok := st.comments[id]; !ok {
		return errs.E(errs.KindNotFound, "comments.Delete", "comment not found")
	}
	delete(st.comments, id)
	return nil
}

func (s *memoryComments) DeleteByPost(ctx context.Context, postID primitive.ObjectID) error {
	st := s.store()
	defer st.lock(ctx)()
	for id, c := range st.comments {
		if c.PostID == postID {
			delete(st.comments, id)
		}
	}
	return nil
}

// ---- NotificationRepository ----

// Notifications returns the store viewed as a NotificationRepository.
func (s *MemoryStore) Notifications() NotificationRepository { return (*memoryNotifications)(s) }

type memoryNotifications MemoryStore

func (s *memoryNotifications) store() *MemoryStore { return (*MemoryStore)(s) }

func (s *memoryNotifications) Create(ctx context.Context, n *models.Notification) error {
	st := s.store()
	defer st.lock(ctx)()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	nn := *n
	st.notifications[n.ID] = &nn
	return nil
}

func (s *memoryNotifications) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	st := s.store()
	defer st.lock(ctx)()
	n, ok := st.notifications[id]
	if !ok {
		return nil, errs.E(errs.KindNotFound, "notifications.Get", "notification not found")
	}
	nn := *n
	return &nn, nil
}

func (s *memoryNotifications) FindAndDelete(ctx context.Context, recipient, sender primitive.ObjectID, notifType string, target primitive.ObjectID) (*models.Notification, error) {
	st := s.store()
	defer st.lock(ctx)()
	for id, n := range st.notifications {
		if n.Recipient == recipient && n.Sender == sender && n.Type == notifType && n.Target == target {
			nn := *n
			delete(st.notifications, id)
			return &nn, nil
		}
	}
	return nil, nil
}

func (s *memoryNotifications) DeleteByTarget(ctx context.Context, target primitive.ObjectID) ([]models.Notification, error) {
	st := s.store()
	defer st.lock(ctx)()
	var removed []models.Notification
	for id, n := range st.notifications {
		if n.Target == target {
			removed = append(removed, *n)
			delete(st.notifications, id)
		}
	}
	return removed, nil
}

func (s *memoryNotifications) ListByRecipient(ctx context.Context, recipient primitive.ObjectID, skip, limit int64) ([]models.Notification, error) {
	st := s.store()
	defer st.lock(ctx)()
	var notifications []models.Notification
	for _, n := range st.notifications {
		if n.Recipient == recipient {
			notifications = append(notifications, *n)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	if skip > 0 {
		if int64(len(notifications)) <= skip {
			return nil, nil
		}
		notifications = notifications[skip:]
	}
	if limit > 0 && int64(len(notifications)) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (s *memoryNotifications) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	st := s.store()
	defer st.lock(ctx)()
	var count int64
	for _, n := range st.notifications {
		if n.Recipient == recipient && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *memoryNotifications) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	st := s.store()
	defer st.lock(ctx)()
	n, ok := st.notifications[id]
	if !ok {
		return errs.E(errs.KindNotFound, "notifications.MarkRead", "notification not found")
	}
	n.IsRead = true
	n.UpdatedAt = time.Now()
	return nil
}

func (s *memoryNotifications) MarkAllRead(ctx context.Context, recipient primitive.ObjectID) error {
	st := s.store()
	defer st.lock(ctx)()
	for _, n := range st.notifications {
		if n.Recipient == recipient && !n.IsRead {
			n.IsRead = true
			n.UpdatedAt = time.Now()
		}
	}
	return nil
}

// ---- FollowRepository ----

// Follows returns the store viewed as a FollowRepository.
func (s *MemoryStore) Follows() FollowRepository { return (*memoryFollows)(s) }

type memoryFollows MemoryStore

func (s *memoryFollows) store() *MemoryStore { return (*MemoryStore)(s) }

func (s *memoryFollows) Create(ctx context.Context, follow *models.Follow) error {
	st := s.store()
	defer st.lock(ctx)()
	key := followKey{follower: follow.Follower, following: follow.Following}
	if _, ok := st.follows[key]; ok {
		return errs.E(errs.KindConflict, "follows.Create", "already following this user")
	}
	follow.ID = primitive.NewObjectID()
	follow.CreatedAt = time.Now()
	ff := *follow
	st.follows[key] = &ff
	return nil
}

func (s *memoryFollows) Delete(ctx context.Context, follower, following primitive.ObjectID) (bool, error) {
	st := s.store()
	defer st.lock(ctx)()
	key := followKey{follower: follower, following: following}
	if _, ok := st.follows[key]; !ok {
		return false, nil
	}
	delete(st.follows, key)
	return true, nil
}

func (s *memoryFollows) Exists(ctx context.Context, follower, following primitive.ObjectID) (bool, error) {
	st := s.store()
	defer st.lock(ctx)()
	_, ok := st.follows[followKey{follower: follower, following: following}]
	return ok, nil
}

func (s *memoryFollows) SetFollowBack(ctx context.Context, follower, following primitive.ObjectID, followBack bool) error {
	st := s.store()
	defer st.lock(ctx)()
	if f, ok := st.follows[followKey{follower: follower, following: following}]; ok {
		f.FollowBack = followBack
	}
	return nil
}

func (s *memoryFollows) ListFollowing(ctx context.Context, follower primitive.ObjectID) ([]models.Follow, error) {
	st := s.store()
	defer st.lock(ctx)()
	var follows []models.Follow
	for key, f := range st.follows {
		if key.follower == follower {
			follows = append(follows, *f)
		}
	}
	return follows, nil
}
