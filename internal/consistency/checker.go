// Package consistency detects counter drift: divergence between a
// denormalized counter and the true size of its backing set, or a break
// in the bidirectional like invariant. The interaction engine prevents
// drift by construction; the checker exists to catch corruption coming
// from anywhere else (manual edits, partial restores, historical bugs).
package consistency

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/repositories"
)

// Checker scans posts and users and records every divergence as a
// DriftReport.
type Checker struct {
	users   repositories.UserRepository
	posts   repositories.PostRepository
	reports ReportStore
}

// NewChecker creates a Checker.
func NewChecker(users repositories.UserRepository, posts repositories.PostRepository, reports ReportStore) *Checker {
	return &Checker{users: users, posts: posts, reports: reports}
}

// RunOnce performs a full scan and returns the number of divergences found.
func (c *Checker) RunOnce(ctx context.Context) (int, error) {
	posts, err := c.posts.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	users, err := c.users.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	likedBy := make(map[string]map[string]bool) // postID -> userID -> liked
	for _, u := range users {
		for _, postID := range u.LikedPosts {
			key := postID.Hex()
			if likedBy[key] == nil {
				likedBy[key] = make(map[string]bool)
			}
			likedBy[key][u.ID.Hex()] = true
		}
	}

	found := 0
	for i := range posts {
		found += c.checkPost(ctx, &posts[i], likedBy[posts[i].ID.Hex()])
	}
	for i := range users {
		found += c.checkUser(ctx, &users[i])
	}
	return found, nil
}

func (c *Checker) checkPost(ctx context.Context, post *models.Post, likedBy map[string]bool) int {
	found := 0
	if post.LikesCount != len(post.Likes) {
		found += c.report(ctx, "post", post.ID.Hex(), "likes_count", len(post.Likes), post.LikesCount, "")
	}
	if post.CommentsCount != len(post.Comments) {
		found += c.report(ctx, "post", post.ID.Hex(), "comments_count", len(post.Comments), post.CommentsCount, "")
	}
	if post.LikesCount < 0 {
		found += c.report(ctx, "post", post.ID.Hex(), "likes_count", 0, post.LikesCount, "negative counter")
	}

	// Bidirectional invariant: every user id in post.likes must appear
	// in that user's likedPosts, and vice versa.
	for _, userID := range post.Likes {
		if !likedBy[userID.Hex()] {
			found += c.report(ctx, "post", post.ID.Hex(), "likes", 0, 0,
				fmt.Sprintf("user %s in post.likes but post missing from user.likedPosts", userID.Hex()))
		}
		delete(likedBy, userID.Hex())
	}
	for userID := range likedBy {
		found += c.report(ctx, "post", post.ID.Hex(), "likes", 0, 0,
			fmt.Sprintf("user %s has post in likedPosts but is missing from post.likes", userID))
	}
	return found
}

func (c *Checker) checkUser(ctx context.Context, user *models.User) int {
	found := 0
	if user.CountFollowers != len(user.Followers) {
		found += c.report(ctx, "user", user.ID.Hex(), "count_followers", len(user.Followers), user.CountFollowers, "")
	}
	if user.CountFriends != len(user.Friends) {
		found += c.report(ctx, "user", user.ID.Hex(), "count_friends", len(user.Friends), user.CountFriends, "")
	}
	return found
}

func (c *Checker) report(ctx context.Context, kind, id, field string, expected, actual int, detail string) int {
	r := &models.DriftReport{
		EntityKind: kind,
		EntityID:   id,
		Field:      field,
		Expected:   expected,
		Actual:     actual,
		Detail:     detail,
		DetectedAt: time.Now(),
	}
	if err := c.reports.Save(ctx, r); err != nil {
		log.Printf("consistency: failed to save drift report for %s %s: %v", kind, id, err)
	}
	return 1
}

// RunPeriodically runs scans on the given interval until the context is
// cancelled.
func (c *Checker) RunPeriodically(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			found, err := c.RunOnce(ctx)
			if err != nil {
				log.Printf("consistency: scan failed: %v", err)
				continue
			}
			if found > 0 {
				log.Printf("consistency: scan found %d divergences", found)
			}
		}
	}
}
