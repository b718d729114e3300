package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types (closed set)
const (
	NotificationLike    = "LIKE"
	NotificationComment = "COMMENT"
	NotificationFollow  = "FOLLOW"
	NotificationMessage = "MESSAGE"
	NotificationEvent   = "EVENT"
)

// Target models for the polymorphic notification target
const (
	TargetPost    = "POST"
	TargetUser    = "USER"
	TargetMessage = "MESSAGE"
	TargetEvent   = "EVENT"
	TargetComment = "COMMENT"
	TargetGroup   = "GROUP"
	TargetFollow  = "FOLLOW"
)

// Notification represents a user notification stored in MongoDB.
//
// Target is a tagged reference: TargetModel selects which collection the
// Target id resolves against. A LIKE or COMMENT notification is deleted
// when the underlying like/comment is retracted, so a notification never
// outlives the action it announces.
type Notification struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Recipient   primitive.ObjectID `json:"recipient" bson:"recipient"`
	Sender      primitive.ObjectID `json:"sender" bson:"sender"`
	Type        string             `json:"type" bson:"type"`
	Target      primitive.ObjectID `json:"target" bson:"target"`
	TargetModel string             `json:"target_model" bson:"target_model"`
	IsRead      bool               `json:"is_read" bson:"is_read"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
