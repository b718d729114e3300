package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleStudent = "STUDENT"
	RoleTeacher = "TEACHER"
	RoleStaff   = "STAFF"
	RoleAdmin   = "ADMIN"
)

// User represents a user document stored in MongoDB.
//
// The relationship sets (LikedPosts, FavoritePosts, Followers, Friends,
// Notifications, UnreadNotifications) are only ever mutated by the
// interaction engine inside a transaction, never by unrelated code paths.
type User struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email       string             `json:"email" bson:"email"`
	FullName    string             `json:"full_name" bson:"full_name"`
	Role        string             `json:"role" bson:"role"`
	Password    string             `json:"-" bson:"password,omitempty"` // bcrypt hash, never serialized
	FirebaseUID string             `json:"firebase_uid,omitempty" bson:"firebase_uid,omitempty"`
	Bio         string             `json:"bio,omitempty" bson:"bio,omitempty"`
	Location    string             `json:"location,omitempty" bson:"location,omitempty"`
	ProfilePic  string             `json:"profile_pic,omitempty" bson:"profile_pic,omitempty"`

	Posts         []primitive.ObjectID `json:"posts" bson:"posts"`
	LikedPosts    []primitive.ObjectID `json:"liked_posts" bson:"liked_posts"`
	FavoritePosts []primitive.ObjectID `json:"favorite_posts" bson:"favorite_posts"`
	BlockedUsers  []primitive.ObjectID `json:"blocked_users" bson:"blocked_users"`

	Followers      []primitive.ObjectID `json:"followers" bson:"followers"`
	CountFollowers int                  `json:"count_followers" bson:"count_followers"`
	Friends        []primitive.ObjectID `json:"friends" bson:"friends"`
	CountFriends   int                  `json:"count_friends" bson:"count_friends"`

	Notifications       []primitive.ObjectID `json:"notifications" bson:"notifications"`
	UnreadNotifications []primitive.ObjectID `json:"unread_notifications" bson:"unread_notifications"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// HasLiked reports whether the user's likedPosts set contains postID.
func (u *User) HasLiked(postID primitive.ObjectID) bool {
	return containsID(u.LikedPosts, postID)
}

// HasFriend reports whether userID is in the user's friends set.
func (u *User) HasFriend(userID primitive.ObjectID) bool {
	return containsID(u.Friends, userID)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// CreateLocalUserRequest defines the request body for local email/password registration
type CreateLocalUserRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=STUDENT TEACHER STAFF ADMIN"`
	Password string `json:"password" validate:"required,min=8"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
