package domain

import "time"

// User represents an account of the platform. Users author posts and comments
// and follow other users. The Username is unique and is the public lookup key
// used in profile urls.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username" gorm:"size:150;notNull;uniqueIndex"`
	Name     string `json:"name" gorm:"size:150"`

	Password     string `json:"-" gorm:"-"`
	PasswordHash string `json:"-" gorm:"notNull"`
	Remember     string `json:"-" gorm:"-"`
	RememberHash string `json:"-" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the user's display name, falling back to the username.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	ByID(id int) (*User, error)
	ByUsername(username string) (*User, error)
	ByRemember(token string) (*User, error)
	Authenticate(username, password string) (*User, error)
	MakeRememberToken() (string, error)
	Create(user *User) error
	Update(user *User) error
}
