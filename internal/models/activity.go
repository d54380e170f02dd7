package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity verbs recorded by the application.
const (
	VerbFollowing  = "is following"
	VerbRegistered = "has created an account"
)

// Target type tags for the optional polymorphic activity target.
const (
	TargetUser = "user"
)

// Activity is one immutable entry of the activity stream stored in MongoDB
type Activity struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ActorID    uint               `json:"actor_id" bson:"actor_id"`
	Verb       string             `json:"verb" bson:"verb"`
	TargetType string             `json:"target_type,omitempty" bson:"target_type,omitempty"`
	TargetID   string             `json:"target_id,omitempty" bson:"target_id,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// FeedEntry is an activity enriched with its resolved actor and, when the
// target is a user, the resolved target profile
type FeedEntry struct {
	Activity
	Actor  UserCompact  `json:"actor"`
	Target *UserCompact `json:"target,omitempty"`
}
