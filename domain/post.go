package domain

import "time"

// Post is a single authored text entry, optionally tagged with a Group and
// illustrated with an uploaded image. Image holds the image's path relative to
// the media root, or the empty string. Deleting a Post deletes its Comments.
type Post struct {
	ID       int    `json:"id"`
	Text     string `json:"text" gorm:"type:text;notNull"`
	AuthorID int    `json:"author_id" gorm:"notNull;index"`
	Author   User   `json:"author"`
	GroupID  *int   `json:"group_id,omitempty" gorm:"index"`
	Group    *Group `json:"group,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Image    string `json:"image,omitempty"`

	Comments []Comment `json:"comments,omitempty" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Excerpt returns the first n characters of the post's text.
func (p *Post) Excerpt(n int) string {
	runes := []rune(p.Text)
	if len(runes) <= n {
		return p.Text
	}
	return string(runes[:n])
}

// PostService is a set of methods to manipulate and work with the Post model.
// The list methods take the raw, untrusted page number of a request and
// always return a valid Page.
type PostService interface {
	ByID(id int) (*Post, error)
	All(page string) (*Page, error)
	ByGroup(groupID int, page string) (*Page, error)
	ByAuthor(authorID int, page string) (*Page, error)
	ByFollower(followerID int, page string) (*Page, error)
	Create(post *Post) error
	Update(post *Post) error
	Delete(post *Post) error
}
