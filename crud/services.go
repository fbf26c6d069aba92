package crud

import (
	"gorm.io/gorm"

	"yatube/domain"
)

// A ServicesConfig is any function that takes in a pointer to a Services
// object and returns an error. It's basically just wrapping the constructor
// method of any given crud service. It exists to be able to easily create
// the crud services using functional options in main.go.
type ServicesConfig func(*Services) error

// Services is a container object holding pointers to all the crud services.
// The crud services all share the database connection provided by Services.
type Services struct {
	db      *gorm.DB
	User    *UserService
	Group   *GroupService
	Post    *PostService
	Comment *CommentService
	Follow  *FollowService
	Image   *ImageService
}

// NewServices returns a new Services object, containing any crud services
// it's told to create by one of the passed in ServicesConfig functions.
// It shares the passed in database connection with any crud service it creates.
func NewServices(db *gorm.DB, cfgs ...ServicesConfig) (*Services, error) {
	s := Services{
		db: db,
	}
	for _, cfg := range cfgs {
		if err := cfg(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// WithUser wraps the constructor of UserService, NewUserService.
func WithUser(pepper, hmacKey string) ServicesConfig {
	return func(s *Services) error {
		s.User = NewUserService(s.db, pepper, hmacKey)
		return nil
	}
}

// WithGroup wraps the constructor of GroupService, NewGroupService.
func WithGroup() ServicesConfig {
	return func(s *Services) error {
		s.Group = NewGroupService(s.db)
		return nil
	}
}

// WithPost wraps the constructor of PostService, NewPostService.
// perPage is the fixed number of posts on every page of a listing.
func WithPost(perPage int) ServicesConfig {
	return func(s *Services) error {
		s.Post = NewPostService(s.db, perPage)
		return nil
	}
}

// WithComment wraps the constructor of CommentService, NewCommentService.
func WithComment() ServicesConfig {
	return func(s *Services) error {
		s.Comment = NewCommentService(s.db)
		return nil
	}
}

// WithFollow wraps the constructor of FollowService, NewFollowService.
func WithFollow() ServicesConfig {
	return func(s *Services) error {
		s.Follow = NewFollowService(s.db)
		return nil
	}
}

// WithImage wraps the constructor of ImageService, NewImageService.
// Images are stored below mediaRoot.
func WithImage(mediaRoot string) ServicesConfig {
	return func(s *Services) error {
		s.Image = NewImageService(mediaRoot)
		return nil
	}
}

// models lists every table of the application in dependency order.
func models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Group{},
		&domain.Post{},
		&domain.Comment{},
		&domain.Follow{},
	}
}

// AutoMigrate runs database migrations for all tables.
func (s *Services) AutoMigrate() error {
	return s.db.AutoMigrate(models()...)
}

// DestructiveReset drops all tables and rebuilds them.
func (s *Services) DestructiveReset() error {
	ms := models()
	// Drop dependants first.
	for i, j := 0, len(ms)-1; i < j; i, j = i+1, j-1 {
		ms[i], ms[j] = ms[j], ms[i]
	}
	if err := s.db.Migrator().DropTable(ms...); err != nil {
		return err
	}
	return s.AutoMigrate()
}
