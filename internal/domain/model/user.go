package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	DefaultAvatar = "/default-avatar.png"
	DefaultBio    = "Passionate writer."
)

type User struct {
	ID             string    `json:"id" bson:"_id"`
	Username       string    `json:"username" bson:"username"`
	Name           string    `json:"name" bson:"name"`
	Email          string    `json:"email" bson:"email"`
	HashedPassword string    `json:"-" bson:"password"`
	Role           string    `json:"role" bson:"role"`
	Avatar         string    `json:"avatar" bson:"avatar"`
	Bio            string    `json:"bio" bson:"bio"`
	IsActive       bool      `json:"isActive" bson:"isActive"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// UserSummary is the populated form of a user reference inside other
// resources. Which fields are set depends on the endpoint.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Bio      string `json:"bio,omitempty"`
}
