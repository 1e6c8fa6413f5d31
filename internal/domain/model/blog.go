package model

import "time"

type Blog struct {
	ID        string       `json:"id" bson:"_id"`
	Title     string       `json:"title" bson:"title"`
	Slug      string       `json:"slug" bson:"slug"`
	Content   string       `json:"content" bson:"content"`
	Excerpt   string       `json:"excerpt" bson:"excerpt"`
	AuthorID  string       `json:"authorId" bson:"author"`
	Author    *UserSummary `json:"author,omitempty" bson:"-"`
	Tags      []string     `json:"tags" bson:"tags"`
	Image     string       `json:"image" bson:"image"`
	Likes     []string     `json:"likes" bson:"likes"`
	Comments  []Comment    `json:"comments" bson:"comments"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// Comment is embedded in its blog. Username is a snapshot taken when the
// comment was written.
type Comment struct {
	ID        string    `json:"id" bson:"id"`
	UserID    string    `json:"user" bson:"user"`
	Username  string    `json:"username" bson:"username"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalBlogs  int `json:"totalBlogs"`
}
