package crud

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/domain"
	"yatube/errs"
)

// PostService manages Posts.
// It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations on the database using incoming Post data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db      *gorm.DB
	perPage int
}

// NewPostService returns an instance of PostService. Listings are split into pages of perPage posts.
func NewPostService(db *gorm.DB, perPage int) *PostService {
	if perPage <= 0 {
		perPage = domain.DefaultPerPage
	}
	return &PostService{
		postValidator{
			postGorm{
				db:      db,
				perPage: perPage,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// Create runs validations needed for creating new Post database records.
func (pv *postValidator) Create(post *domain.Post) error {
	err := runPostValFns(post,
		pv.authorIdValid,
		pv.textRequired,
		pv.groupExists)
	if err != nil {
		return err
	}
	return pv.postGorm.Create(post)
}

// Update runs validations needed for updating existing Post database records.
func (pv *postValidator) Update(post *domain.Post) error {
	err := runPostValFns(post,
		pv.idValid,
		pv.authorIdValid,
		pv.textRequired,
		pv.groupExists)
	if err != nil {
		return err
	}
	return pv.postGorm.Update(post)
}

// Delete runs validations needed for deleting existing Post database records.
func (pv *postValidator) Delete(post *domain.Post) error {
	if err := runPostValFns(post, pv.idValid); err != nil {
		return err
	}
	return pv.postGorm.Delete(post)
}

// runPostValFns runs any number of functions of type postValFn on the passed in Post object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runPostValFns(post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(post); err != nil {
			return err
		}
	}
	return nil
}

// A postValFn is any function that takes in a pointer to a domain.Post object and returns an error.
type postValFn = func(post *domain.Post) error

// textRequired makes sure that the Post's text is not blank.
func (pv *postValidator) textRequired(post *domain.Post) error {
	if strings.TrimSpace(post.Text) == "" {
		return errs.FieldErrorf(errs.EINVALID, "text", "Post text must not be empty.")
	}
	return nil
}

// idValid makes sure that the ID of a Post to be changed is greater than 0.
func (pv *postValidator) idValid(post *domain.Post) error {
	if post.ID <= 0 {
		return errs.IdInvalid
	}
	return nil
}

// authorIdValid ensures that the post has an author.
func (pv *postValidator) authorIdValid(post *domain.Post) error {
	if post.AuthorID <= 0 {
		return errs.UserIdValid
	}
	return nil
}

// groupExists makes sure that the group the post is tagged with actually exists.
// This check only runs if the incoming Post object has a GroupID.
func (pv *postValidator) groupExists(post *domain.Post) error {
	if post.GroupID == nil {
		return nil
	}
	var group domain.Group
	if err := first(pv.db.Where("id = ?", *post.GroupID), &group); err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return errs.FieldErrorf(errs.EINVALID, "group", "The group does not exist.")
		}
		return err
	}
	return nil
}

// All returns a page of every post.
func (pg *postGorm) All(page string) (*domain.Page, error) {
	return paginate(pg.db, allPosts, page, pg.perPage)
}

// ByGroup returns a page of the posts tagged with a group.
func (pg *postGorm) ByGroup(groupID int, page string) (*domain.Page, error) {
	return paginate(pg.db, func(db *gorm.DB) *gorm.DB {
		return db.Where("group_id = ?", groupID)
	}, page, pg.perPage)
}

// ByAuthor returns a page of the posts written by a user.
func (pg *postGorm) ByAuthor(authorID int, page string) (*domain.Page, error) {
	return paginate(pg.db, func(db *gorm.DB) *gorm.DB {
		return db.Where("author_id = ?", authorID)
	}, page, pg.perPage)
}

// ByFollower returns a page of the posts written by the authors a user follows.
func (pg *postGorm) ByFollower(followerID int, page string) (*domain.Page, error) {
	followed := pg.db.Model(&domain.Follow{}).Select("author_id").Where("follower_id = ?", followerID)
	return paginate(pg.db, func(db *gorm.DB) *gorm.DB {
		return db.Where("author_id IN (?)", followed)
	}, page, pg.perPage)
}

// ByID retrieves a single Post by ID, along with its author and group.
// If the record doesn't exist, it returns errs.ENOTFOUND.
func (pg *postGorm) ByID(id int) (*domain.Post, error) {
	var post domain.Post
	db := pg.db.
		Preload("Author").
		Preload("Group").
		Where("id = ?", id)
	if err := first(db, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Create stores the data from the Post object in a new database record
// and loads its author and group afterwards.
func (pg *postGorm) Create(post *domain.Post) error {
	if err := pg.db.Omit(clause.Associations).Create(post).Error; err != nil {
		return err
	}
	return pg.reload(post)
}

// Update saves the changes to an existing post. Associated records are left untouched.
func (pg *postGorm) Update(post *domain.Post) error {
	if err := pg.db.Omit(clause.Associations).Save(post).Error; err != nil {
		return err
	}
	return pg.reload(post)
}

// Delete permanently deletes a Post record from the database, along with its Comments.
func (pg *postGorm) Delete(post *domain.Post) error {
	return pg.db.Select("Comments").Delete(post).Error
}

// reload refreshes the post's author and group after a write.
func (pg *postGorm) reload(post *domain.Post) error {
	post.Group = nil
	return pg.db.Preload("Author").Preload("Group").First(post, post.ID).Error
}
