package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachment types accepted on a post
const (
	AttachmentImage    = "image"
	AttachmentDocument = "document"
	AttachmentLink     = "link"
	AttachmentText     = "text"
)

// Post represents a social media post stored in MongoDB.
//
// LikesCount must equal len(Likes) and CommentsCount must equal
// len(Comments) at rest; both counters are maintained by the interaction
// engine with increments of exactly 1, clamped at 0 on decrement.
type Post struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID           primitive.ObjectID `json:"user_id" bson:"user_id"`
	Description      string             `json:"description" bson:"description"`
	Attachment       string             `json:"attachment,omitempty" bson:"attachment,omitempty"`
	AttachmentType   string             `json:"attachment_type,omitempty" bson:"attachment_type,omitempty"`
	OriginalFileName string             `json:"original_file_name,omitempty" bson:"original_file_name,omitempty"`
	Category         string             `json:"category,omitempty" bson:"category,omitempty"`

	Likes      []primitive.ObjectID `json:"likes" bson:"likes"`
	LikesCount int                  `json:"likes_count" bson:"likes_count"`

	// Comments holds comment ids newest-first.
	Comments      []primitive.ObjectID `json:"comments" bson:"comments"`
	CommentsCount int                  `json:"comments_count" bson:"comments_count"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// HasLike reports whether the post's likes set contains userID.
func (p *Post) HasLike(userID primitive.ObjectID) bool {
	return containsID(p.Likes, userID)
}

// CreatePostRequest defines the request body for creating a new post.
// The attachment URI, when present, is already resolved by the media
// collaborator before the request reaches the engine.
type CreatePostRequest struct {
	Description      string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Attachment       string `json:"attachment,omitempty" validate:"omitempty,uri"`
	AttachmentType   string `json:"attachment_type,omitempty" validate:"omitempty,oneof=image document link text"`
	OriginalFileName string `json:"original_file_name,omitempty"`
	Category         string `json:"category,omitempty"`
}
