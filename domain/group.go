package domain

// Group is a community or topic that posts may be tagged with.
// Its Slug is unique and used as the public lookup key.
type Group struct {
	ID          int    `json:"id"`
	Title       string `json:"title" gorm:"size:200;notNull"`
	Slug        string `json:"slug" gorm:"size:50;notNull;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
}

// String returns the group's title.
func (g Group) String() string {
	return g.Title
}

// GroupService is a set of methods to manipulate and work with the Group model.
type GroupService interface {
	ByID(id int) (*Group, error)
	BySlug(slug string) (*Group, error)
	All() ([]Group, error)
	Create(group *Group) error
}
