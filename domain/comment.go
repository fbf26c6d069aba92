package domain

import "time"

// Comment is a text reply to a Post. It belongs to exactly one post and one author.
type Comment struct {
	ID       int    `json:"id"`
	PostID   int    `json:"post_id" gorm:"notNull;index"`
	AuthorID int    `json:"author_id" gorm:"notNull;index"`
	Author   User   `json:"author"`
	Text     string `json:"text" gorm:"type:text;notNull"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentService is a set of methods to manipulate and work with the Comment model.
type CommentService interface {
	ByPost(postID int) ([]Comment, error)
	Create(comment *Comment) error
}
