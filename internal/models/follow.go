package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Follow represents a directed follow edge stored in MongoDB.
// A unique index on (follower, following) prevents duplicate edges;
// FollowBack is set on both edges when the relationship is mutual.
type Follow struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Follower   primitive.ObjectID `json:"follower" bson:"follower"`
	Following  primitive.ObjectID `json:"following" bson:"following"`
	FollowBack bool               `json:"follow_back" bson:"follow_back"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}
