package domain

import "time"

// Follow represents a self-referential many-to-many relationship between two users.
// A Follow is created when one user subscribes to the posts of another user.
// The FollowerID is the ID of the user that follows, and the AuthorID is the ID of the
// user that is being followed. The pair is unique, so a user follows an author at most once.
type Follow struct {
	ID         int       `json:"id"`
	FollowerID int       `json:"-" gorm:"notNull;uniqueIndex:idx_follow_pair"`
	Follower   User      `json:"follower"`
	AuthorID   int       `json:"-" gorm:"notNull;uniqueIndex:idx_follow_pair;index"`
	Author     User      `json:"author"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowService is a set of methods to manipulate and work with the Follow model.
type FollowService interface {
	Create(follow *Follow) error
	Delete(follow *Follow) error
	Exists(followerID, authorID int) (bool, error)
}
