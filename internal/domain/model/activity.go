package model

import "time"

type ActivityType string

const (
	ActivityLogin      ActivityType = "login"
	ActivityCreateBlog ActivityType = "create_blog"
)

// Activity is an append-only audit entry.
type Activity struct {
	ID        string       `json:"id" bson:"_id"`
	UserID    string       `json:"userId" bson:"user"`
	User      *UserSummary `json:"user,omitempty" bson:"-"`
	Type      ActivityType `json:"type" bson:"type"`
	Timestamp time.Time    `json:"timestamp" bson:"timestamp"`
}

func (t ActivityType) Valid() bool {
	return t == ActivityLogin || t == ActivityCreateBlog
}
